package models

import "time"

// SessionStatus is the lifecycle state of a cash session.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"
	SessionClosed SessionStatus = "CLOSED"
)

// CashSession represents one cashier's drawer period between opening and
// closing counts.
type CashSession struct {
	ID             UUID          `json:"id"`
	UserID         UUID          `json:"userId"`
	OpenedAt       time.Time     `json:"openedAt"`
	ClosedAt       *time.Time    `json:"closedAt,omitempty"`
	OpeningAmount  float64       `json:"openingAmount"`
	ClosingAmount  *float64      `json:"closingAmount,omitempty"`
	ExpectedAmount *float64      `json:"expectedAmount,omitempty"`
	Note           string        `json:"note,omitempty"`
	Status         SessionStatus `json:"status"`
}

// CashSessionRow is the remote table shape for cash_sessions.
type CashSessionRow struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	OpenedAt       time.Time  `json:"opened_at"`
	ClosedAt       *time.Time `json:"closed_at"`
	OpeningAmount  float64    `json:"opening_amount"`
	ClosingAmount  *float64   `json:"closing_amount"`
	ExpectedAmount *float64   `json:"expected_amount"`
	Note           *string    `json:"note"`
	Status         string     `json:"status"`
}

// TableName returns the remote table for CashSessionRow.
func (CashSessionRow) TableName() string {
	return "cash_sessions"
}

// Row converts the local record into the remote table shape.
func (s CashSession) Row() CashSessionRow {
	r := CashSessionRow{
		ID:             string(s.ID),
		UserID:         string(s.UserID),
		OpenedAt:       s.OpenedAt,
		ClosedAt:       s.ClosedAt,
		OpeningAmount:  s.OpeningAmount,
		ClosingAmount:  s.ClosingAmount,
		ExpectedAmount: s.ExpectedAmount,
		Status:         string(s.Status),
	}
	if s.Note != "" {
		r.Note = &s.Note
	}
	return r
}
