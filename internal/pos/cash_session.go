package pos

import (
	"context"
	"time"

	apperrors "github.com/panhaneath12/sweet-delights-pos-system/internal/errors"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/logging"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/models"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/remote"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/uuid"
)

// OpenSession opens a cash session for a user, stores it as the current
// session and mirrors it remotely, directly when online or through the
// outbox otherwise. Like order completion, the local write always happens
// first and the call never fails on remote trouble.
func (s *Service) OpenSession(ctx context.Context, userID models.UUID, openingAmount float64, note string) (models.CashSession, error) {
	if userID == "" {
		return models.CashSession{}, apperrors.New(apperrors.ErrInvalid, "user id required")
	}

	session := models.CashSession{
		ID:            models.UUID(uuid.New()),
		UserID:        userID,
		OpenedAt:      time.Now(),
		OpeningAmount: openingAmount,
		Note:          note,
		Status:        models.SessionOpen,
	}

	sessions, err := s.ledger.Sessions()
	if err != nil {
		return models.CashSession{}, err
	}
	if err := s.ledger.SetSessions(append([]models.CashSession{session}, sessions...)); err != nil {
		return models.CashSession{}, err
	}
	if err := s.ledger.SetCurrentSession(&session); err != nil {
		return models.CashSession{}, err
	}

	s.mirrorSession(ctx, session.Row(), false)

	return session, nil
}

// CloseSession closes the current cash session, computing the expected
// drawer amount from the session's cash tenders, clears the current-session
// pointer and mirrors the close remotely.
func (s *Service) CloseSession(ctx context.Context, closingAmount float64, note string) (models.CashSession, error) {
	session, err := s.ledger.CurrentSession()
	if err != nil {
		return models.CashSession{}, err
	}
	if session == nil {
		return models.CashSession{}, apperrors.New(apperrors.ErrNotFound, "no open cash session")
	}

	expected, err := s.expectedAmount(*session)
	if err != nil {
		return models.CashSession{}, err
	}

	now := time.Now()
	session.ClosedAt = &now
	session.ClosingAmount = &closingAmount
	session.ExpectedAmount = &expected
	session.Status = models.SessionClosed
	if note != "" {
		session.Note = note
	}

	sessions, err := s.ledger.Sessions()
	if err != nil {
		return models.CashSession{}, err
	}
	for i := range sessions {
		if sessions[i].ID == session.ID {
			sessions[i] = *session
			break
		}
	}
	if err := s.ledger.SetSessions(sessions); err != nil {
		return models.CashSession{}, err
	}
	if err := s.ledger.SetCurrentSession(nil); err != nil {
		return models.CashSession{}, err
	}

	s.mirrorSession(ctx, session.Row(), true)

	return *session, nil
}

// expectedAmount is the opening float plus all cash tendered against the
// session's orders.
func (s *Service) expectedAmount(session models.CashSession) (float64, error) {
	orders, err := s.ledger.Orders()
	if err != nil {
		return 0, err
	}

	total := session.OpeningAmount
	for _, o := range orders {
		if o.SessionID != session.ID {
			continue
		}
		for _, p := range o.Payments {
			if p.Method == models.PayCash {
				total += p.Amount
			}
		}
	}

	return total, nil
}

// mirrorSession pushes a session row remotely or queues it. closing picks
// the outbox event type when the direct write is unavailable.
func (s *Service) mirrorSession(ctx context.Context, row models.CashSessionRow, closing bool) {
	if s.online() {
		if err := s.remote.Upsert(ctx, remote.TableCashSessions, row, remote.ConflictID); err == nil {
			return
		} else {
			logging.Warn("direct session upsert failed, queueing", map[string]interface{}{
				"id":    row.ID,
				"error": err.Error(),
			})
		}
	}

	var err error
	if closing {
		_, err = s.queue.EnqueueCashSessionClose(row)
	} else {
		_, err = s.queue.EnqueueCashSessionUpsert(row)
	}
	if err != nil {
		logging.Error("failed to queue cash session", err, map[string]interface{}{"id": row.ID})
	}
}
