// Package pos provides the point-of-sale business workflows: order
// completion and cash-session lifecycle. Both write through the local
// ledger before attempting any remote write, so the terminal keeps selling
// with no connectivity.
package pos

import (
	"sync"

	"github.com/panhaneath12/sweet-delights-pos-system/internal/outbox"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/remote"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/store"
)

// Service runs the POS workflows against the ledger and outbox.
type Service struct {
	ledger *store.Ledger
	queue  *outbox.Queue
	remote remote.Client
	online func() bool

	// orderNoMu serializes order-number allocation and the ledger write
	// that follows it, so two completions on one terminal cannot mint the
	// same number.
	orderNoMu sync.Mutex
}

// NewService creates a Service. online reports current connectivity and
// decides whether a workflow attempts the direct remote write or queues.
func NewService(ledger *store.Ledger, queue *outbox.Queue, client remote.Client, online func() bool) *Service {
	return &Service{
		ledger: ledger,
		queue:  queue,
		remote: client,
		online: online,
	}
}
