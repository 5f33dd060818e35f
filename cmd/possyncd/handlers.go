package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/panhaneath12/sweet-delights-pos-system/internal/auth"
	apperrors "github.com/panhaneath12/sweet-delights-pos-system/internal/errors"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/models"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/outbox"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/pos"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/store"
	syncpkg "github.com/panhaneath12/sweet-delights-pos-system/internal/sync"
)

// API handles the local REST surface consumed by the terminal UI.
type API struct {
	ledger  *store.Ledger
	queue   *outbox.Queue
	orch    *syncpkg.Orchestrator
	service *pos.Service
	lockout *auth.Lockout
}

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error onto a JSON error body.
func writeError(w http.ResponseWriter, status int, err error) {
	code := apperrors.ErrInternal
	if appErr, ok := err.(*apperrors.AppError); ok {
		code = appErr.Code
	}
	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
		"code":  string(code),
	})
}

// Health handles GET /api/health.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, err := a.ledger.DeviceName()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "possyncd",
		"device":  name,
	})
}

// SyncStatus handles GET /api/sync/status.
func (a *API) SyncStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, a.orch.Status())
}

// SyncRun handles POST /api/sync/run. A run already in progress makes this
// a no-op; the caller watches the status stream for the outcome.
func (a *API) SyncRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// Detach from the request context; the run outlives the response.
	go a.orch.Run(context.Background())
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "requested"})
}

// OutboxStats handles GET /api/outbox/stats.
func (a *API) OutboxStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	stats, err := a.queue.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// OutboxRetry handles POST /api/outbox/retry: resets FAILED events so the
// next flush picks them up again.
func (a *API) OutboxRetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := a.queue.MarkAllPending(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// OutboxPurge handles POST /api/outbox/purge: drops SYNCED events.
func (a *API) OutboxPurge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := a.queue.PurgeSynced(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "purged"})
}

// CompleteOrder handles POST /api/orders/complete.
func (a *API) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Items      []models.OrderItem `json:"items"`
		Payments   []pos.RawPayment   `json:"payments"`
		Subtotal   float64            `json:"subtotal"`
		Discount   float64            `json:"discount"`
		Tax        float64            `json:"tax"`
		Total      float64            `json:"total"`
		OrderType  string             `json:"orderType"`
		Note       string             `json:"note"`
		PickupTime *time.Time         `json:"pickupTime"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrInvalid, "invalid request body", err))
		return
	}

	result, err := a.service.CompleteOrder(r.Context(), pos.CompleteOrderParams{
		Items:      body.Items,
		Payments:   body.Payments,
		Subtotal:   body.Subtotal,
		Discount:   body.Discount,
		Tax:        body.Tax,
		Total:      body.Total,
		OrderType:  models.OrderType(body.OrderType),
		Note:       body.Note,
		PickupTime: body.PickupTime,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.Is(err, apperrors.ErrNoSession) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// MarkPrinted handles POST /api/orders/printed.
func (a *API) MarkPrinted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrInvalid, "invalid request body", err))
		return
	}

	if err := a.service.MarkOrderPrinted(r.Context(), models.UUID(body.ID), time.Now()); err != nil {
		status := http.StatusInternalServerError
		if apperrors.Is(err, apperrors.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "printed"})
}

// OpenSession handles POST /api/sessions/open.
func (a *API) OpenSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		UserID        string  `json:"userId"`
		OpeningAmount float64 `json:"openingAmount"`
		Note          string  `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrInvalid, "invalid request body", err))
		return
	}

	session, err := a.service.OpenSession(r.Context(), models.UUID(body.UserID), body.OpeningAmount, body.Note)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// CloseSession handles POST /api/sessions/close.
func (a *API) CloseSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		ClosingAmount float64 `json:"closingAmount"`
		Note          string  `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrInvalid, "invalid request body", err))
		return
	}

	session, err := a.service.CloseSession(r.Context(), body.ClosingAmount, body.Note)
	if err != nil {
		status := http.StatusBadRequest
		if apperrors.Is(err, apperrors.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Login handles POST /api/login: checks lockout, verifies the PIN, records
// the outcome, and sets the current user on success.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		UserID string `json:"userId"`
		Pin    string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrInvalid, "invalid request body", err))
		return
	}

	locked, err := a.lockout.IsLocked(body.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if locked {
		msg, _ := a.lockout.LockMessage(body.UserID)
		writeError(w, http.StatusTooManyRequests, apperrors.New(apperrors.ErrLockedOut, msg))
		return
	}

	users, err := a.ledger.Users()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	var user *models.User
	for i := range users {
		if users[i].ID == models.UUID(body.UserID) {
			user = &users[i]
			break
		}
	}
	if user == nil || !user.Active {
		writeError(w, http.StatusUnauthorized, apperrors.New(apperrors.ErrUserInactive, "unknown or inactive user"))
		return
	}

	ok, err := auth.VerifyPin(body.Pin, user.PinHash, user.PinSalt, user.PinIter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		if err := a.lockout.RecordFail(body.UserID); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeError(w, http.StatusUnauthorized, apperrors.New(apperrors.ErrBadPin, "incorrect PIN"))
		return
	}

	if err := a.lockout.RecordSuccess(body.UserID); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := a.ledger.SetCurrentUser(user); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":   user.ID,
		"name": user.Name,
		"role": user.Role,
	})
}
