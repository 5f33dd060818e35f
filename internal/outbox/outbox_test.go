package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	apperrors "github.com/panhaneath12/sweet-delights-pos-system/internal/errors"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/models"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/store"
)

// fakeRemote is a remote.Client double that records upserts and can be
// told to fail.
type fakeRemote struct {
	session bool
	failErr error
	upserts []string // table names in dispatch order
}

func (f *fakeRemote) FetchCollection(ctx context.Context, table string) ([]json.RawMessage, error) {
	return nil, nil
}

func (f *fakeRemote) Upsert(ctx context.Context, table string, record interface{}, conflictKey string) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.upserts = append(f.upserts, table)
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, table string, id string) error {
	return nil
}

func (f *fakeRemote) HasSession() bool {
	return f.session
}

func newTestQueue(remote *fakeRemote, online bool) *Queue {
	return NewQueue(store.NewMemoryStore(), remote, func() bool { return online })
}

// TestEnqueueOrder tests that events keep enqueue order and start PENDING.
func TestEnqueueOrder(t *testing.T) {
	q := newTestQueue(&fakeRemote{session: true}, true)

	first, err := q.EnqueueOrderUpsert(models.OrderRow{ID: "o1", OrderNo: "20260831-0001"})
	if err != nil {
		t.Fatalf("EnqueueOrderUpsert failed: %v", err)
	}
	second, err := q.EnqueueCashSessionUpsert(models.CashSessionRow{ID: "s1", UserID: "u1"})
	if err != nil {
		t.Fatalf("EnqueueCashSessionUpsert failed: %v", err)
	}

	events, err := q.Events()
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].ID != first || events[1].ID != second {
		t.Error("Events not in enqueue order")
	}
	for _, ev := range events {
		if ev.Status != models.EventPending {
			t.Errorf("Expected PENDING status, got %s", ev.Status)
		}
		if ev.TryCount != 0 {
			t.Errorf("Expected TryCount 0, got %d", ev.TryCount)
		}
	}
}

// TestStats tests the status breakdown invariant.
func TestStats(t *testing.T) {
	remote := &fakeRemote{session: true, failErr: errors.New("remote down")}
	q := newTestQueue(remote, true)

	q.EnqueueOrderUpsert(models.OrderRow{ID: "o1", OrderNo: "20260831-0001"})
	q.EnqueueOrderUpsert(models.OrderRow{ID: "o2", OrderNo: "20260831-0002"})

	// First event fails, then fix the remote so the second flush after a
	// reset succeeds only for re-pending events.
	if _, err := q.Flush(context.Background(), 1); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	stats, err := q.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 2 || stats.Pending != 1 || stats.Failed != 1 || stats.Synced != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.Total != stats.Pending+stats.Failed+stats.Synced {
		t.Error("Stats total does not equal sum of statuses")
	}
}

// TestFlushOffline tests that an offline flush is skipped without error.
func TestFlushOffline(t *testing.T) {
	q := newTestQueue(&fakeRemote{session: true}, false)
	q.EnqueueOrderUpsert(models.OrderRow{ID: "o1", OrderNo: "20260831-0001"})

	result, err := q.Flush(context.Background(), 0)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if !result.Skipped {
		t.Error("Expected skipped flush while offline")
	}
	if result.Synced != 0 || result.Failed != 0 {
		t.Errorf("Expected no events touched, got %+v", result)
	}

	events, _ := q.Events()
	if events[0].TryCount != 0 {
		t.Error("Offline flush must not increment TryCount")
	}
}

// TestFlushNotAuthenticated tests the unauthenticated skip.
func TestFlushNotAuthenticated(t *testing.T) {
	q := newTestQueue(&fakeRemote{session: false}, true)
	q.EnqueueOrderUpsert(models.OrderRow{ID: "o1", OrderNo: "20260831-0001"})

	result, err := q.Flush(context.Background(), 0)
	if err == nil {
		t.Fatal("Expected authentication error")
	}
	if !apperrors.Is(err, apperrors.ErrSyncNotAuthenticated) {
		t.Errorf("Expected SYNC_NOT_AUTHENTICATED, got %v", err)
	}
	if !result.Skipped {
		t.Error("Expected skipped flush without session")
	}
}

// TestFlushEmpty tests flushing an empty outbox.
func TestFlushEmpty(t *testing.T) {
	q := newTestQueue(&fakeRemote{session: true}, true)

	result, err := q.Flush(context.Background(), 0)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if result.Skipped {
		t.Error("Empty flush must not report skipped")
	}
	if result.Synced != 0 || result.Failed != 0 {
		t.Errorf("Expected zero counts, got %+v", result)
	}
}

// TestFlushSuccess tests that a dispatched event becomes SYNCED.
func TestFlushSuccess(t *testing.T) {
	remote := &fakeRemote{session: true}
	q := newTestQueue(remote, true)
	q.EnqueueOrderUpsert(models.OrderRow{ID: "o1", OrderNo: "20260831-0001"})

	result, err := q.Flush(context.Background(), 0)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if result.Synced != 1 || result.Failed != 0 {
		t.Errorf("Expected 1 synced, got %+v", result)
	}
	if len(remote.upserts) != 1 || remote.upserts[0] != "orders" {
		t.Errorf("Expected one orders upsert, got %v", remote.upserts)
	}

	events, _ := q.Events()
	if events[0].Status != models.EventSynced {
		t.Errorf("Expected SYNCED, got %s", events[0].Status)
	}
	if events[0].TryCount != 1 {
		t.Errorf("Expected TryCount 1, got %d", events[0].TryCount)
	}

	// A second flush finds nothing pending and touches nothing.
	again, err := q.Flush(context.Background(), 0)
	if err != nil {
		t.Fatalf("Second flush failed: %v", err)
	}
	if again.Synced != 0 || again.Failed != 0 || again.Skipped {
		t.Errorf("Expected no-op second flush, got %+v", again)
	}
}

// TestFlushFailureStaysFailed tests that FAILED events are not retried by
// later flushes on their own.
func TestFlushFailureStaysFailed(t *testing.T) {
	remote := &fakeRemote{session: true, failErr: errors.New("remote down")}
	q := newTestQueue(remote, true)
	q.EnqueueOrderUpsert(models.OrderRow{ID: "o1", OrderNo: "20260831-0001"})

	result, err := q.Flush(context.Background(), 0)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("Expected 1 failed, got %+v", result)
	}

	events, _ := q.Events()
	if events[0].Status != models.EventFailed {
		t.Errorf("Expected FAILED, got %s", events[0].Status)
	}
	if events[0].LastError == "" {
		t.Error("Expected LastError to be recorded")
	}
	if events[0].TryCount != 1 {
		t.Errorf("Expected TryCount 1, got %d", events[0].TryCount)
	}

	remote.failErr = nil
	again, err := q.Flush(context.Background(), 0)
	if err != nil {
		t.Fatalf("Second flush failed: %v", err)
	}
	if again.Synced != 0 || again.Failed != 0 {
		t.Errorf("FAILED event must stay out of later flushes, got %+v", again)
	}
}

// TestMarkAllPendingRetry tests the manual retry path.
func TestMarkAllPendingRetry(t *testing.T) {
	remote := &fakeRemote{session: true, failErr: errors.New("remote down")}
	q := newTestQueue(remote, true)
	q.EnqueueOrderUpsert(models.OrderRow{ID: "o1", OrderNo: "20260831-0001"})

	q.Flush(context.Background(), 0)

	if err := q.MarkAllPending(); err != nil {
		t.Fatalf("MarkAllPending failed: %v", err)
	}
	events, _ := q.Events()
	if events[0].Status != models.EventPending {
		t.Errorf("Expected PENDING after reset, got %s", events[0].Status)
	}
	if events[0].LastError != "" {
		t.Error("Expected LastError cleared after reset")
	}

	remote.failErr = nil
	result, err := q.Flush(context.Background(), 0)
	if err != nil {
		t.Fatalf("Flush after reset failed: %v", err)
	}
	if result.Synced != 1 {
		t.Errorf("Expected 1 synced after retry, got %+v", result)
	}
	events, _ = q.Events()
	if events[0].TryCount != 2 {
		t.Errorf("Expected TryCount 2 after retry, got %d", events[0].TryCount)
	}
}

// TestFlushBatchLimit tests that one flush drains at most maxEvents.
func TestFlushBatchLimit(t *testing.T) {
	remote := &fakeRemote{session: true}
	q := newTestQueue(remote, true)
	for i := 0; i < 3; i++ {
		q.EnqueueOrderUpsert(models.OrderRow{ID: "o", OrderNo: "20260831-0001"})
	}

	result, err := q.Flush(context.Background(), 2)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if result.Synced != 2 {
		t.Errorf("Expected 2 synced, got %+v", result)
	}

	stats, _ := q.Stats()
	if stats.Pending != 1 || stats.Synced != 2 {
		t.Errorf("Unexpected stats after limited flush: %+v", stats)
	}
}

// TestFlushUnknownType tests that an unknown event type fails its event.
func TestFlushUnknownType(t *testing.T) {
	q := newTestQueue(&fakeRemote{session: true}, true)
	if _, err := q.Enqueue(models.EventType("BOGUS"), json.RawMessage(`{}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	result, err := q.Flush(context.Background(), 0)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("Expected 1 failed, got %+v", result)
	}

	events, _ := q.Events()
	if events[0].Status != models.EventFailed {
		t.Errorf("Expected FAILED, got %s", events[0].Status)
	}
}

// TestPurgeSynced tests that purge drops only SYNCED events.
func TestPurgeSynced(t *testing.T) {
	remote := &fakeRemote{session: true}
	q := newTestQueue(remote, true)
	q.EnqueueOrderUpsert(models.OrderRow{ID: "o1", OrderNo: "20260831-0001"})
	q.Flush(context.Background(), 0)
	q.EnqueueOrderUpsert(models.OrderRow{ID: "o2", OrderNo: "20260831-0002"})

	if err := q.PurgeSynced(); err != nil {
		t.Fatalf("PurgeSynced failed: %v", err)
	}

	events, _ := q.Events()
	if len(events) != 1 {
		t.Fatalf("Expected 1 remaining event, got %d", len(events))
	}
	if events[0].Status != models.EventPending {
		t.Errorf("Expected surviving event PENDING, got %s", events[0].Status)
	}
}
