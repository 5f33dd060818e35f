// Package remote provides the remote data service client used for
// bootstrap pulls and outbox flushes.
package remote

import (
	"context"
	"encoding/json"
)

// Remote tables and their idempotent upsert conflict keys. Orders conflict
// on the human order number so a re-sent order never duplicates.
const (
	TableOrders       = "orders"
	TableCashSessions = "cash_sessions"
	TableUsers        = "pos_users"
	TableCategories   = "categories"
	TableProducts     = "products"

	ConflictOrderNo = "order_no"
	ConflictID      = "id"
)

// Client defines the remote data service contract. Upsert must be
// idempotent keyed by conflictKey.
type Client interface {
	// FetchCollection retrieves every row of a table.
	FetchCollection(ctx context.Context, table string) ([]json.RawMessage, error)

	// Upsert inserts or updates one record keyed by conflictKey.
	Upsert(ctx context.Context, table string, record interface{}, conflictKey string) error

	// Delete removes one record by id.
	Delete(ctx context.Context, table string, id string) error

	// HasSession reports whether an authenticated remote session exists.
	HasSession() bool
}
