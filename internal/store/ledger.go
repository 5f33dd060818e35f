package store

import (
	"encoding/json"

	apperrors "github.com/panhaneath12/sweet-delights-pos-system/internal/errors"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/models"
)

// Ledger keys. One key per entity collection plus the current-user and
// current-session pointers.
const (
	KeyUsers          = "pos_users"
	KeySessions       = "pos_sessions"
	KeyCategories     = "pos_categories"
	KeyProducts       = "pos_products"
	KeyOrders         = "pos_orders"
	KeyCurrentUser    = "pos_current_user"
	KeyCurrentSession = "pos_current_session"
	KeyDeviceName     = "pos_device_name"
	KeySeeded         = "pos_initialized_v1"
)

// Ledger is the cache-of-record for UI speed and offline continuity. Every
// set replaces the whole collection; the remote service stays authoritative
// when reachable. Reads of absent collections yield empty slices.
type Ledger struct {
	store Store
}

// NewLedger creates a Ledger over a Store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// getList decodes a JSON array stored under key into out.
func (l *Ledger) getList(key string, out interface{}) error {
	data, err := l.store.ReadKey(key)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "corrupt ledger collection "+key, err)
	}
	return nil
}

// setList encodes value as JSON and replaces the collection under key.
func (l *Ledger) setList(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "encode ledger collection "+key, err)
	}
	return l.store.WriteKey(key, data)
}

// Users returns all users, empty when none are stored.
func (l *Ledger) Users() ([]models.User, error) {
	var users []models.User
	if err := l.getList(KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetUsers replaces the users collection.
func (l *Ledger) SetUsers(users []models.User) error {
	return l.setList(KeyUsers, users)
}

// Categories returns all categories, empty when none are stored.
func (l *Ledger) Categories() ([]models.Category, error) {
	var categories []models.Category
	if err := l.getList(KeyCategories, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// SetCategories replaces the categories collection.
func (l *Ledger) SetCategories(categories []models.Category) error {
	return l.setList(KeyCategories, categories)
}

// Products returns all products, empty when none are stored.
func (l *Ledger) Products() ([]models.Product, error) {
	var products []models.Product
	if err := l.getList(KeyProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SetProducts replaces the products collection.
func (l *Ledger) SetProducts(products []models.Product) error {
	return l.setList(KeyProducts, products)
}

// Sessions returns all cash sessions, empty when none are stored.
func (l *Ledger) Sessions() ([]models.CashSession, error) {
	var sessions []models.CashSession
	if err := l.getList(KeySessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SetSessions replaces the cash sessions collection.
func (l *Ledger) SetSessions(sessions []models.CashSession) error {
	return l.setList(KeySessions, sessions)
}

// Orders returns all orders, newest first.
func (l *Ledger) Orders() ([]models.Order, error) {
	var orders []models.Order
	if err := l.getList(KeyOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SetOrders replaces the orders collection. Callers keep newest-first order.
func (l *Ledger) SetOrders(orders []models.Order) error {
	return l.setList(KeyOrders, orders)
}

// CurrentUser returns the active user pointer, nil when no one is signed in.
func (l *Ledger) CurrentUser() (*models.User, error) {
	data, err := l.store.ReadKey(KeyCurrentUser)
	if err != nil || data == nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "corrupt current user", err)
	}
	return &user, nil
}

// SetCurrentUser stores the active user pointer; nil clears it.
func (l *Ledger) SetCurrentUser(user *models.User) error {
	if user == nil {
		return l.store.DeleteKey(KeyCurrentUser)
	}
	data, err := json.Marshal(user)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "encode current user", err)
	}
	return l.store.WriteKey(KeyCurrentUser, data)
}

// CurrentSession returns the active cash session pointer, nil when no
// session is open.
func (l *Ledger) CurrentSession() (*models.CashSession, error) {
	data, err := l.store.ReadKey(KeyCurrentSession)
	if err != nil || data == nil {
		return nil, err
	}
	var session models.CashSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "corrupt current session", err)
	}
	return &session, nil
}

// SetCurrentSession stores the active session pointer; nil clears it.
func (l *Ledger) SetCurrentSession(session *models.CashSession) error {
	if session == nil {
		return l.store.DeleteKey(KeyCurrentSession)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "encode current session", err)
	}
	return l.store.WriteKey(KeyCurrentSession, data)
}

// DeviceName returns the terminal's display name.
func (l *Ledger) DeviceName() (string, error) {
	data, err := l.store.ReadKey(KeyDeviceName)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "POS Terminal 1", nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return "", apperrors.Wrap(apperrors.ErrDatabase, "corrupt device name", err)
	}
	return name, nil
}

// SetDeviceName stores the terminal's display name.
func (l *Ledger) SetDeviceName(name string) error {
	data, err := json.Marshal(name)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "encode device name", err)
	}
	return l.store.WriteKey(KeyDeviceName, data)
}

// Seeded reports whether first-run seeding already happened.
func (l *Ledger) Seeded() (bool, error) {
	data, err := l.store.ReadKey(KeySeeded)
	if err != nil {
		return false, err
	}
	return string(data) == "1", nil
}

// SetSeeded marks first-run seeding as done so it never reruns.
func (l *Ledger) SetSeeded() error {
	return l.store.WriteKey(KeySeeded, []byte("1"))
}
