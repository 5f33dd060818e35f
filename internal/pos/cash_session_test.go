package pos

import (
	"context"
	"testing"

	apperrors "github.com/panhaneath12/sweet-delights-pos-system/internal/errors"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/models"
)

// TestOpenSessionOffline tests local-first open with a queued mirror.
func TestOpenSessionOffline(t *testing.T) {
	env := newTestEnv(t, false)

	session, err := env.service.OpenSession(context.Background(), "11111111-1111-4111-8111-111111111111", 50, "morning shift")
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	if session.Status != models.SessionOpen {
		t.Errorf("Expected OPEN status, got %s", session.Status)
	}
	if session.OpeningAmount != 50 {
		t.Errorf("Expected opening amount 50, got %v", session.OpeningAmount)
	}

	current, err := env.ledger.CurrentSession()
	if err != nil {
		t.Fatalf("CurrentSession failed: %v", err)
	}
	if current == nil || current.ID != session.ID {
		t.Error("Expected session stored as current")
	}

	events, _ := env.queue.Events()
	if len(events) != 1 || events[0].Type != models.EventCashSessionUpsert {
		t.Errorf("Expected one CASH_SESSION_UPSERT event, got %v", events)
	}
}

// TestOpenSessionRequiresUser tests rejection of an empty user id.
func TestOpenSessionRequiresUser(t *testing.T) {
	env := newTestEnv(t, false)

	_, err := env.service.OpenSession(context.Background(), "", 50, "")
	if err == nil {
		t.Fatal("Expected error for empty user id")
	}
	if !apperrors.Is(err, apperrors.ErrInvalid) {
		t.Errorf("Expected INVALID_INPUT, got %v", err)
	}
}

// TestOpenSessionOnline tests the direct remote mirror.
func TestOpenSessionOnline(t *testing.T) {
	env := newTestEnv(t, true)

	_, err := env.service.OpenSession(context.Background(), "11111111-1111-4111-8111-111111111111", 50, "")
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}

	if len(env.remote.upserts) != 1 || env.remote.upserts[0] != "cash_sessions" {
		t.Errorf("Expected one cash_sessions upsert, got %v", env.remote.upserts)
	}
	events, _ := env.queue.Events()
	if len(events) != 0 {
		t.Errorf("Expected empty outbox, got %d events", len(events))
	}
}

// TestCloseSessionExpectedAmount tests the drawer expectation: opening
// float plus the session's cash tenders, other tenders excluded.
func TestCloseSessionExpectedAmount(t *testing.T) {
	env := newTestEnv(t, false)

	session, err := env.service.OpenSession(context.Background(), "11111111-1111-4111-8111-111111111111", 50, "")
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}

	params := cartParams() // 7 in cash
	if _, err := env.service.CompleteOrder(context.Background(), params); err != nil {
		t.Fatalf("CompleteOrder failed: %v", err)
	}
	params.Payments = []RawPayment{{Method: "CARD", Amount: amt(12)}}
	params.Subtotal, params.Total = 12, 12
	if _, err := env.service.CompleteOrder(context.Background(), params); err != nil {
		t.Fatalf("CompleteOrder failed: %v", err)
	}

	closed, err := env.service.CloseSession(context.Background(), 57, "evening count")
	if err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}

	if closed.Status != models.SessionClosed {
		t.Errorf("Expected CLOSED status, got %s", closed.Status)
	}
	if closed.ExpectedAmount == nil || *closed.ExpectedAmount != 57 {
		t.Errorf("Expected drawer expectation 57, got %v", closed.ExpectedAmount)
	}
	if closed.ClosingAmount == nil || *closed.ClosingAmount != 57 {
		t.Errorf("Expected closing amount 57, got %v", closed.ClosingAmount)
	}
	if closed.ClosedAt == nil {
		t.Error("Expected ClosedAt set")
	}
	if closed.ID != session.ID {
		t.Error("Expected the opened session to be the one closed")
	}

	current, _ := env.ledger.CurrentSession()
	if current != nil {
		t.Error("Expected current session cleared after close")
	}

	sessions, _ := env.ledger.Sessions()
	if len(sessions) != 1 || sessions[0].Status != models.SessionClosed {
		t.Error("Expected stored session updated to CLOSED")
	}
}

// TestCloseSessionNoneOpen tests closing without an open session.
func TestCloseSessionNoneOpen(t *testing.T) {
	env := newTestEnv(t, false)

	_, err := env.service.CloseSession(context.Background(), 0, "")
	if err == nil {
		t.Fatal("Expected error without open session")
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}
}

// TestCloseSessionQueuesCloseEvent tests the offline close mirror type.
func TestCloseSessionQueuesCloseEvent(t *testing.T) {
	env := newTestEnv(t, false)

	if _, err := env.service.OpenSession(context.Background(), "11111111-1111-4111-8111-111111111111", 20, ""); err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	if _, err := env.service.CloseSession(context.Background(), 20, ""); err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}

	events, _ := env.queue.Events()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Type != models.EventCashSessionUpsert {
		t.Errorf("Expected CASH_SESSION_UPSERT first, got %s", events[0].Type)
	}
	if events[1].Type != models.EventCashSessionClose {
		t.Errorf("Expected CASH_SESSION_CLOSE second, got %s", events[1].Type)
	}
}
