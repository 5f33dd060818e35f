package models

import "time"

// LockState tracks consecutive PIN failures for one user. Fails is only
// non-zero while no lock is in effect; reaching the fail threshold resets
// Fails and sets LockedUntil.
type LockState struct {
	Fails       int        `json:"fails"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
}
