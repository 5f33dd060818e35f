package models

import (
	"encoding/json"
	"time"
)

// EventType identifies the remote mutation a queued event carries.
type EventType string

const (
	EventOrderUpsert       EventType = "ORDER_UPSERT"
	EventCashSessionUpsert EventType = "CASH_SESSION_UPSERT"
	EventCashSessionClose  EventType = "CASH_SESSION_CLOSE"
)

// EventStatus is the sync state of a queued event. Status only moves
// PENDING to SYNCED, PENDING to FAILED, or FAILED back to PENDING through an
// explicit retry reset; SYNCED is terminal until purged.
type EventStatus string

const (
	EventPending EventStatus = "PENDING"
	EventSynced  EventStatus = "SYNCED"
	EventFailed  EventStatus = "FAILED"
)

// SyncEvent is one pending remote mutation in the outbox. The payload is the
// JSON encoding of the remote row shape for the event's type.
type SyncEvent struct {
	ID        UUID            `json:"id"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Status    EventStatus     `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	TryCount  int             `json:"tryCount"`
	LastError string          `json:"lastError,omitempty"`
}
