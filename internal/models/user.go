package models

import "time"

// UserRole identifies what a POS user is allowed to do.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleCashier UserRole = "CASHIER"
)

// User represents a POS operator. The PIN is never stored in plain text;
// only the derived hash, its salt and the iteration count are kept so the
// PIN can be verified offline.
type User struct {
	ID        UUID      `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Role      UserRole  `json:"role"`
	Active    bool      `json:"active"`
	PinHash   string    `json:"pinHash,omitempty"` // base64
	PinSalt   string    `json:"pinSalt,omitempty"` // base64
	PinIter   int       `json:"pinIter,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserRow is the remote table shape for pos_users.
type UserRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	PinHash   *string   `json:"pin_hash,omitempty"`
	PinSalt   *string   `json:"pin_salt,omitempty"`
	PinIter   *int      `json:"pin_iter,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the remote table for UserRow.
func (UserRow) TableName() string {
	return "pos_users"
}

// ToUser converts a remote row into the local record.
func (r UserRow) ToUser() User {
	u := User{
		ID:        UUID(r.ID),
		Name:      r.Name,
		Username:  r.Username,
		Role:      UserRole(r.Role),
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
	if r.PinHash != nil {
		u.PinHash = *r.PinHash
	}
	if r.PinSalt != nil {
		u.PinSalt = *r.PinSalt
	}
	if r.PinIter != nil {
		u.PinIter = *r.PinIter
	}
	return u
}

// Row converts the local record into the remote table shape.
func (u User) Row() UserRow {
	r := UserRow{
		ID:        string(u.ID),
		Name:      u.Name,
		Username:  u.Username,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
	if u.PinHash != "" {
		r.PinHash = &u.PinHash
	}
	if u.PinSalt != "" {
		r.PinSalt = &u.PinSalt
	}
	if u.PinIter != 0 {
		r.PinIter = &u.PinIter
	}
	return r
}
