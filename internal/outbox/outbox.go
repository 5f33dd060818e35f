// Package outbox provides the durable queue of pending remote mutations.
// Orders and cash sessions written while offline wait here until a flush
// pushes them to the remote service.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/panhaneath12/sweet-delights-pos-system/internal/errors"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/logging"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/models"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/remote"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/store"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/uuid"
)

// KeyOutbox is the store key holding the event log.
const KeyOutbox = "pos_sync_outbox_v1"

// DefaultBatchSize caps how many pending events one flush drains.
const DefaultBatchSize = 50

// Stats summarizes the event log by status.
type Stats struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
	Synced  int `json:"synced"`
}

// FlushResult reports one flush run. Skipped is true when the flush did not
// touch any event because the terminal was offline or unauthenticated.
type FlushResult struct {
	Synced  int  `json:"synced"`
	Failed  int  `json:"failed"`
	Skipped bool `json:"skipped"`
}

// Queue is the outbox over a durable store key. Events are kept in enqueue
// order and only ever mutated by Flush, MarkAllPending and PurgeSynced.
type Queue struct {
	store  store.Store
	remote remote.Client
	online func() bool
}

// NewQueue creates a Queue. online reports current connectivity and is
// consulted at the start of every flush.
func NewQueue(s store.Store, r remote.Client, online func() bool) *Queue {
	return &Queue{
		store:  s,
		remote: r,
		online: online,
	}
}

// read loads the event log; a missing or corrupt key reads as empty.
func (q *Queue) read() ([]models.SyncEvent, error) {
	data, err := q.store.ReadKey(KeyOutbox)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var events []models.SyncEvent
	if err := json.Unmarshal(data, &events); err != nil {
		logging.Warn("outbox log corrupt, starting empty", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}
	return events, nil
}

// write replaces the event log.
func (q *Queue) write(events []models.SyncEvent) error {
	data, err := json.Marshal(events)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "encode outbox", err)
	}
	return q.store.WriteKey(KeyOutbox, data)
}

// Enqueue appends a PENDING event and returns its id.
func (q *Queue) Enqueue(eventType models.EventType, payload json.RawMessage) (models.UUID, error) {
	events, err := q.read()
	if err != nil {
		return "", err
	}

	now := time.Now()
	ev := models.SyncEvent{
		ID:        models.UUID(uuid.New()),
		Type:      eventType,
		Payload:   payload,
		Status:    models.EventPending,
		CreatedAt: now,
		UpdatedAt: now,
		TryCount:  0,
	}

	events = append(events, ev)
	if err := q.write(events); err != nil {
		return "", err
	}

	logging.Debug("enqueued sync event", map[string]interface{}{
		"id":   ev.ID.String(),
		"type": string(eventType),
	})

	return ev.ID, nil
}

// EnqueueOrderUpsert queues an order row for remote upsert.
func (q *Queue) EnqueueOrderUpsert(row models.OrderRow) (models.UUID, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal, "encode order payload", err)
	}
	return q.Enqueue(models.EventOrderUpsert, payload)
}

// EnqueueCashSessionUpsert queues a cash session row for remote upsert.
func (q *Queue) EnqueueCashSessionUpsert(row models.CashSessionRow) (models.UUID, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal, "encode session payload", err)
	}
	return q.Enqueue(models.EventCashSessionUpsert, payload)
}

// EnqueueCashSessionClose queues a session-close row. Closing is also an
// upsert remotely; the distinct type keeps the intent visible in the log.
func (q *Queue) EnqueueCashSessionClose(row models.CashSessionRow) (models.UUID, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal, "encode session payload", err)
	}
	return q.Enqueue(models.EventCashSessionClose, payload)
}

// Events returns a copy of the full event log in enqueue order.
func (q *Queue) Events() ([]models.SyncEvent, error) {
	return q.read()
}

// Stats summarizes the event log by status.
func (q *Queue) Stats() (Stats, error) {
	events, err := q.read()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(events)}
	for _, ev := range events {
		switch ev.Status {
		case models.EventPending:
			stats.Pending++
		case models.EventFailed:
			stats.Failed++
		case models.EventSynced:
			stats.Synced++
		}
	}

	return stats, nil
}

// Flush attempts up to maxEvents PENDING events in enqueue order. Events
// that succeed become SYNCED; events that fail become FAILED with the cause
// recorded and stay out of later flushes until MarkAllPending resets them.
// The whole run is skipped, touching nothing, when offline or when no
// authenticated remote session exists.
func (q *Queue) Flush(ctx context.Context, maxEvents int) (FlushResult, error) {
	if maxEvents <= 0 {
		maxEvents = DefaultBatchSize
	}

	if !q.online() {
		return FlushResult{Skipped: true}, nil
	}
	if !q.remote.HasSession() {
		return FlushResult{Skipped: true}, apperrors.New(apperrors.ErrSyncNotAuthenticated,
			"not authenticated, login first to sync")
	}

	events, err := q.read()
	if err != nil {
		return FlushResult{}, err
	}

	var result FlushResult
	attempted := 0

	for i := range events {
		if attempted >= maxEvents {
			break
		}
		ev := &events[i]
		if ev.Status != models.EventPending {
			continue
		}
		attempted++

		ev.TryCount++
		ev.UpdatedAt = time.Now()

		if err := q.dispatch(ctx, ev); err != nil {
			ev.Status = models.EventFailed
			ev.LastError = err.Error()
			result.Failed++
			logging.Warn("sync event failed", map[string]interface{}{
				"id":    ev.ID.String(),
				"type":  string(ev.Type),
				"tries": ev.TryCount,
				"error": err.Error(),
			})
			continue
		}

		ev.Status = models.EventSynced
		ev.LastError = ""
		result.Synced++
	}

	if attempted == 0 {
		return result, nil
	}

	if err := q.write(events); err != nil {
		return result, err
	}

	return result, nil
}

// dispatch sends one event to the remote service, decoding the payload into
// the concrete row type for its kind.
func (q *Queue) dispatch(ctx context.Context, ev *models.SyncEvent) error {
	switch ev.Type {
	case models.EventOrderUpsert:
		var row models.OrderRow
		if err := json.Unmarshal(ev.Payload, &row); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalid, "malformed order payload", err)
		}
		return q.remote.Upsert(ctx, remote.TableOrders, row, remote.ConflictOrderNo)

	case models.EventCashSessionUpsert, models.EventCashSessionClose:
		var row models.CashSessionRow
		if err := json.Unmarshal(ev.Payload, &row); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalid, "malformed session payload", err)
		}
		return q.remote.Upsert(ctx, remote.TableCashSessions, row, remote.ConflictID)

	default:
		// Should not occur in correct builds.
		return apperrors.New(apperrors.ErrUnknownEventType, "unknown sync event type "+string(ev.Type))
	}
}

// MarkAllPending resets every FAILED event to PENDING so the next flush
// retries it. This is the only retry path; flushes never retry FAILED
// events on their own.
func (q *Queue) MarkAllPending() error {
	events, err := q.read()
	if err != nil {
		return err
	}

	now := time.Now()
	changed := 0
	for i := range events {
		if events[i].Status == models.EventFailed {
			events[i].Status = models.EventPending
			events[i].LastError = ""
			events[i].UpdatedAt = now
			changed++
		}
	}

	if changed == 0 {
		return nil
	}

	logging.Info("reset failed sync events", map[string]interface{}{"count": changed})
	return q.write(events)
}

// PurgeSynced drops SYNCED events from the log. This is the only way the
// outbox reclaims storage.
func (q *Queue) PurgeSynced() error {
	events, err := q.read()
	if err != nil {
		return err
	}

	kept := events[:0]
	for _, ev := range events {
		if ev.Status != models.EventSynced {
			kept = append(kept, ev)
		}
	}

	if len(kept) == len(events) {
		return nil
	}

	return q.write(kept)
}
