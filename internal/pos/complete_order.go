package pos

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "github.com/panhaneath12/sweet-delights-pos-system/internal/errors"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/logging"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/models"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/remote"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/uuid"
)

// RawPayment is one tender entry as it comes from the payment UI, before
// normalization. Method and Type, Amount and Value, are alternates; the
// first one present wins. The amounts are pointers so an explicit zero is
// kept apart from an absent field and never falls through to Value.
type RawPayment struct {
	ID        string   `json:"id,omitempty"`
	Method    string   `json:"method,omitempty"`
	Type      string   `json:"type,omitempty"`
	Amount    *float64 `json:"amount,omitempty"`
	Value     *float64 `json:"value,omitempty"`
	Reference string   `json:"reference,omitempty"`
}

// CompleteOrderParams is the input to CompleteOrder.
type CompleteOrderParams struct {
	Items      []models.OrderItem
	Payments   []RawPayment
	Subtotal   float64
	Discount   float64
	Tax        float64
	Total      float64
	OrderType  models.OrderType
	Note       string
	PickupTime *time.Time
}

// Result reports a completed order. Queued is true when remote durability
// was deferred to the outbox; Reason says why.
type Result struct {
	OK     bool        `json:"ok"`
	ID     models.UUID `json:"id"`
	Queued bool        `json:"queued"`
	Reason string      `json:"reason,omitempty"`
}

// CompleteOrder builds an order from the cart, persists it into the ledger
// first, then either upserts it remotely right away or queues it. Once the
// local write succeeds the call never reports failure; remote durability is
// eventual and surfaced only through the orchestrator's status.
func (s *Service) CompleteOrder(ctx context.Context, params CompleteOrderParams) (Result, error) {
	user, err := s.ledger.CurrentUser()
	if err != nil {
		return Result{}, err
	}
	if user == nil {
		return Result{}, apperrors.New(apperrors.ErrNoSession, "no logged in user")
	}

	// A missing cash session is allowed; the order records an empty
	// session reference.
	session, err := s.ledger.CurrentSession()
	if err != nil {
		return Result{}, err
	}
	var sessionID models.UUID
	if session != nil && uuid.IsValid(session.ID.String()) {
		sessionID = session.ID
	}

	id := models.UUID(uuid.New())
	order := models.Order{
		ID:         id,
		SessionID:  sessionID,
		CashierID:  user.ID,
		OrderType:  params.OrderType,
		Status:     models.OrderCompleted,
		Items:      params.Items,
		Payments:   normalizePayments(params.Payments),
		Subtotal:   params.Subtotal,
		Discount:   params.Discount,
		Tax:        params.Tax,
		Total:      params.Total,
		Note:       params.Note,
		PickupTime: params.PickupTime,
		CreatedAt:  time.Now(),
		Synced:     false,
	}

	// Allocate the order number and prepend under one lock so concurrent
	// completions on this terminal cannot collide.
	s.orderNoMu.Lock()
	orders, err := s.ledger.Orders()
	if err != nil {
		s.orderNoMu.Unlock()
		return Result{}, err
	}
	order.OrderNo = nextOrderNo(orders, order.CreatedAt)
	if err := s.ledger.SetOrders(append([]models.Order{order}, orders...)); err != nil {
		s.orderNoMu.Unlock()
		return Result{}, err
	}
	s.orderNoMu.Unlock()

	row := order.Row()

	if s.online() {
		if err := s.remote.Upsert(ctx, remote.TableOrders, row, remote.ConflictOrderNo); err == nil {
			if err := s.markSynced(id); err != nil {
				logging.Warn("order synced remotely but local flag update failed",
					map[string]interface{}{"id": id.String(), "error": err.Error()})
			}
			return Result{OK: true, ID: id, Queued: false}, nil
		} else {
			logging.Warn("direct order upsert failed, queueing", map[string]interface{}{
				"id":    id.String(),
				"error": err.Error(),
			})
			if _, qErr := s.queue.EnqueueOrderUpsert(row); qErr != nil {
				logging.Error("failed to queue order", qErr, map[string]interface{}{"id": id.String()})
			}
			return Result{OK: true, ID: id, Queued: true, Reason: err.Error()}, nil
		}
	}

	if _, err := s.queue.EnqueueOrderUpsert(row); err != nil {
		logging.Error("failed to queue order", err, map[string]interface{}{"id": id.String()})
	}
	return Result{OK: true, ID: id, Queued: true, Reason: "offline"}, nil
}

// markSynced flips the synced flag on the stored order.
func (s *Service) markSynced(id models.UUID) error {
	s.orderNoMu.Lock()
	defer s.orderNoMu.Unlock()

	orders, err := s.ledger.Orders()
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].ID == id {
			orders[i].Synced = true
			break
		}
	}
	return s.ledger.SetOrders(orders)
}

// nextOrderNo allocates a date-prefixed sequence number, e.g.
// 20260211-0001. The sequence counts today's existing local orders; it is
// terminal-local and not unique across terminals sharing a backing store.
func nextOrderNo(orders []models.Order, at time.Time) string {
	prefix := at.Format("20060102")

	count := 0
	for _, o := range orders {
		if strings.HasPrefix(o.OrderNo, prefix) {
			count++
		}
	}

	return fmt.Sprintf("%s-%04d", prefix, count+1)
}

// normalizeMethod maps loose method strings onto the known tender kinds.
// Anything QR-like becomes QR; unrecognized wallets fall back to BANK.
func normalizeMethod(m string) models.PaymentMethod {
	s := strings.ToUpper(strings.TrimSpace(m))
	switch s {
	case "CASH":
		return models.PayCash
	case "CARD":
		return models.PayCard
	case "QR":
		return models.PayQR
	case "BANK":
		return models.PayBank
	}
	if strings.Contains(s, "QR") {
		return models.PayQR
	}
	return models.PayBank
}

// normalizePayments converts raw tender entries into Payments, dropping
// entries whose amount is non-finite or non-positive.
func normalizePayments(raw []RawPayment) []models.Payment {
	payments := make([]models.Payment, 0, len(raw))
	for _, p := range raw {
		method := p.Method
		if method == "" {
			method = p.Type
		}
		var amount float64
		if p.Amount != nil {
			amount = *p.Amount
		} else if p.Value != nil {
			amount = *p.Value
		}
		if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
			continue
		}

		id := models.UUID(p.ID)
		if id == "" {
			id = models.UUID(uuid.New())
		}

		payments = append(payments, models.Payment{
			ID:        id,
			Method:    normalizeMethod(method),
			Amount:    amount,
			Reference: p.Reference,
		})
	}
	return payments
}

// MarkOrderPrinted stamps the printed timestamp locally and, when online,
// pushes the updated row. A remote failure here is not queued; the printed
// time is cosmetic and the next order sync carries it.
func (s *Service) MarkOrderPrinted(ctx context.Context, id models.UUID, printedAt time.Time) error {
	s.orderNoMu.Lock()
	orders, err := s.ledger.Orders()
	if err != nil {
		s.orderNoMu.Unlock()
		return err
	}
	var updated *models.Order
	for i := range orders {
		if orders[i].ID == id {
			orders[i].PrintedAt = &printedAt
			updated = &orders[i]
			break
		}
	}
	if updated == nil {
		s.orderNoMu.Unlock()
		return apperrors.New(apperrors.ErrNotFound, "order not found")
	}
	row := updated.Row()
	err = s.ledger.SetOrders(orders)
	s.orderNoMu.Unlock()
	if err != nil {
		return err
	}

	if s.online() {
		if err := s.remote.Upsert(ctx, remote.TableOrders, row, remote.ConflictOrderNo); err != nil {
			logging.Warn("printed-at update not pushed", map[string]interface{}{
				"id":    id.String(),
				"error": err.Error(),
			})
		}
	}

	return nil
}
