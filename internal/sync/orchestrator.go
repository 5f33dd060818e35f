// Package sync provides the orchestrator that reconciles local and remote
// state on connectivity changes.
package sync

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/panhaneath12/sweet-delights-pos-system/internal/errors"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/logging"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/outbox"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/remote"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/store"
)

// Status is the snapshot pushed to subscribers after every transition.
type Status struct {
	IsOnline      bool         `json:"isOnline"`
	IsSyncing     bool         `json:"isSyncing"`
	LastSyncAt    *time.Time   `json:"lastSyncAt,omitempty"`
	LastSyncError string       `json:"lastSyncError,omitempty"`
	Queue         outbox.Stats `json:"queue"`
}

// Listener receives status snapshots. Listeners must not block; they are
// called synchronously on the transitioning goroutine.
type Listener func(Status)

// Orchestrator owns connectivity awareness and runs the two-phase
// reconciliation: bootstrap reference data, then flush the outbox. A run is
// single-flight; a request while one is in progress is a no-op.
type Orchestrator struct {
	ledger    *store.Ledger
	queue     *outbox.Queue
	remote    remote.Client
	batchSize int

	mu            sync.Mutex
	isOnline      bool
	isSyncing     bool
	lastSyncAt    *time.Time
	lastSyncError string
	listeners     map[int]Listener
	nextListener  int
}

// NewOrchestrator creates an Orchestrator. The terminal starts offline
// until the connectivity signal reports otherwise.
func NewOrchestrator(ledger *store.Ledger, queue *outbox.Queue, client remote.Client) *Orchestrator {
	return &Orchestrator{
		ledger:    ledger,
		queue:     queue,
		remote:    client,
		batchSize: outbox.DefaultBatchSize,
		listeners: make(map[int]Listener),
	}
}

// Online reports current connectivity.
func (o *Orchestrator) Online() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.isOnline
}

// Status returns the current snapshot.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot()
}

// snapshot builds a Status; callers hold o.mu.
func (o *Orchestrator) snapshot() Status {
	stats, err := o.queue.Stats()
	if err != nil {
		logging.Warn("queue stats unavailable", map[string]interface{}{"error": err.Error()})
	}
	return Status{
		IsOnline:      o.isOnline,
		IsSyncing:     o.isSyncing,
		LastSyncAt:    o.lastSyncAt,
		LastSyncError: o.lastSyncError,
		Queue:         stats,
	}
}

// Subscribe registers a listener and pushes one immediate snapshot. The
// returned function unsubscribes.
func (o *Orchestrator) Subscribe(listener Listener) func() {
	o.mu.Lock()
	id := o.nextListener
	o.nextListener++
	o.listeners[id] = listener
	snap := o.snapshot()
	o.mu.Unlock()

	listener(snap)

	return func() {
		o.mu.Lock()
		delete(o.listeners, id)
		o.mu.Unlock()
	}
}

// emit pushes the current snapshot to all listeners.
func (o *Orchestrator) emit() {
	o.mu.Lock()
	snap := o.snapshot()
	listeners := make([]Listener, 0, len(o.listeners))
	for _, l := range o.listeners {
		listeners = append(listeners, l)
	}
	o.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

// SetOnline records a connectivity transition. Going online triggers a
// reconciliation run unless one is already in flight; going offline only
// flips the flag and never interrupts an in-flight run.
func (o *Orchestrator) SetOnline(ctx context.Context, online bool) {
	o.mu.Lock()
	changed := o.isOnline != online
	o.isOnline = online
	o.mu.Unlock()

	if !changed {
		return
	}

	logging.Info("connectivity changed", map[string]interface{}{"online": online})
	o.emit()

	if online {
		o.Run(ctx)
	}
}

// Start performs the initial run when the terminal boots already online.
func (o *Orchestrator) Start(ctx context.Context) {
	if o.Online() {
		o.Run(ctx)
	}
}

// Run performs one reconciliation: bootstrap reference collections, then
// flush up to one batch of pending outbox events. Either phase failing
// records LastSyncError without rolling back the other phase; the run
// always terminates back to idle. A Run while one is already in progress
// is a no-op.
func (o *Orchestrator) Run(ctx context.Context) {
	o.mu.Lock()
	if o.isSyncing || !o.isOnline {
		o.mu.Unlock()
		return
	}
	o.isSyncing = true
	o.lastSyncError = ""
	o.mu.Unlock()
	o.emit()

	defer func() {
		o.mu.Lock()
		o.isSyncing = false
		o.mu.Unlock()
		o.emit()
	}()

	flushable := true
	if err := o.Bootstrap(ctx); err != nil {
		o.mu.Lock()
		o.lastSyncError = err.Error()
		o.mu.Unlock()
		// An unauthenticated session fails the flush the same way, so
		// don't attempt it.
		if apperrors.Is(err, apperrors.ErrSyncNotAuthenticated) {
			flushable = false
		}
		logging.Error("bootstrap failed", err)
	}

	if !flushable {
		return
	}

	result, err := o.queue.Flush(ctx, o.batchSize)
	if err != nil {
		o.mu.Lock()
		o.lastSyncError = err.Error()
		o.mu.Unlock()
		logging.Error("outbox flush failed", err)
		return
	}

	if !result.Skipped {
		now := time.Now()
		o.mu.Lock()
		o.lastSyncAt = &now
		o.mu.Unlock()
	}

	logging.Info("sync run finished", map[string]interface{}{
		"synced":  result.Synced,
		"failed":  result.Failed,
		"skipped": result.Skipped,
	})
}
