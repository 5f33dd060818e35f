package auth

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	apperrors "github.com/panhaneath12/sweet-delights-pos-system/internal/errors"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/models"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/store"
)

// KeyPinLock is the store key holding per-user lock states.
const KeyPinLock = "pos_pin_lock_v1"

const (
	// MaxFails consecutive failures lock the user out.
	MaxFails = 5
	// LockDuration is how long a lockout lasts.
	LockDuration = 5 * time.Minute
)

// Lockout tracks consecutive PIN failures per user identifier. It lives in
// its own store key, independent of the ledger collections, so a bootstrap
// overwrite never resets it. The login flow checks IsLocked before
// verification and records the outcome after.
type Lockout struct {
	store store.Store
	now   func() time.Time
}

// NewLockout creates a Lockout over a Store.
func NewLockout(s store.Store) *Lockout {
	return &Lockout{store: s, now: time.Now}
}

// readAll loads the lock map; a missing or corrupt key reads as empty.
func (l *Lockout) readAll() (map[string]models.LockState, error) {
	data, err := l.store.ReadKey(KeyPinLock)
	if err != nil {
		return nil, err
	}
	states := make(map[string]models.LockState)
	if data == nil {
		return states, nil
	}
	if err := json.Unmarshal(data, &states); err != nil {
		return make(map[string]models.LockState), nil
	}
	return states, nil
}

// writeAll replaces the lock map.
func (l *Lockout) writeAll(states map[string]models.LockState) error {
	data, err := json.Marshal(states)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "encode lock states", err)
	}
	return l.store.WriteKey(KeyPinLock, data)
}

// Get returns the lock state for a user, zero when none is recorded.
func (l *Lockout) Get(userID string) (models.LockState, error) {
	states, err := l.readAll()
	if err != nil {
		return models.LockState{}, err
	}
	return states[userID], nil
}

// IsLocked reports whether the user is currently locked out.
func (l *Lockout) IsLocked(userID string) (bool, error) {
	state, err := l.Get(userID)
	if err != nil {
		return false, err
	}
	return state.LockedUntil != nil && l.now().Before(*state.LockedUntil), nil
}

// RecordFail counts one failed attempt. Reaching MaxFails locks the user
// for LockDuration and resets the fail count.
func (l *Lockout) RecordFail(userID string) error {
	states, err := l.readAll()
	if err != nil {
		return err
	}

	state := states[userID]
	state.Fails++

	if state.Fails >= MaxFails {
		until := l.now().Add(LockDuration)
		state.LockedUntil = &until
		state.Fails = 0
	}

	states[userID] = state
	return l.writeAll(states)
}

// RecordSuccess clears the user's failures and any lock.
func (l *Lockout) RecordSuccess(userID string) error {
	states, err := l.readAll()
	if err != nil {
		return err
	}
	states[userID] = models.LockState{}
	return l.writeAll(states)
}

// LockMessage returns a human-readable remaining-time message, empty when
// the user is not locked.
func (l *Lockout) LockMessage(userID string) (string, error) {
	state, err := l.Get(userID)
	if err != nil {
		return "", err
	}
	if state.LockedUntil == nil {
		return "", nil
	}

	remaining := state.LockedUntil.Sub(l.now())
	if remaining < 0 {
		remaining = 0
	}
	mins := int(math.Ceil(remaining.Minutes()))

	return fmt.Sprintf("Too many attempts. Try again in %d minute(s).", mins), nil
}
