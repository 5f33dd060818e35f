package store

import (
	"testing"
	"time"

	"github.com/panhaneath12/sweet-delights-pos-system/internal/models"
)

// TestMemoryStoreRoundTrip tests basic read/write/delete semantics.
func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	data, err := s.ReadKey("missing")
	if err != nil {
		t.Fatalf("ReadKey failed: %v", err)
	}
	if data != nil {
		t.Error("Expected nil for missing key")
	}

	if err := s.WriteKey("k", []byte("v1")); err != nil {
		t.Fatalf("WriteKey failed: %v", err)
	}
	data, _ = s.ReadKey("k")
	if string(data) != "v1" {
		t.Errorf("Expected v1, got %s", data)
	}

	if err := s.WriteKey("k", []byte("v2")); err != nil {
		t.Fatalf("WriteKey failed: %v", err)
	}
	data, _ = s.ReadKey("k")
	if string(data) != "v2" {
		t.Errorf("Expected overwrite to v2, got %s", data)
	}

	if err := s.DeleteKey("k"); err != nil {
		t.Fatalf("DeleteKey failed: %v", err)
	}
	data, _ = s.ReadKey("k")
	if data != nil {
		t.Error("Expected nil after delete")
	}
}

// TestMemoryStoreCopies tests that callers cannot mutate stored values.
func TestMemoryStoreCopies(t *testing.T) {
	s := NewMemoryStore()

	in := []byte("abc")
	s.WriteKey("k", in)
	in[0] = 'x'

	out, _ := s.ReadKey("k")
	if string(out) != "abc" {
		t.Errorf("Expected stored value isolated from caller, got %s", out)
	}

	out[0] = 'y'
	again, _ := s.ReadKey("k")
	if string(again) != "abc" {
		t.Errorf("Expected read value isolated from store, got %s", again)
	}
}

// TestSQLiteStoreRoundTrip tests the durable store against a real file.
func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	data, err := s.ReadKey("missing")
	if err != nil {
		t.Fatalf("ReadKey failed: %v", err)
	}
	if data != nil {
		t.Error("Expected nil for missing key")
	}

	if err := s.WriteKey("k", []byte("v1")); err != nil {
		t.Fatalf("WriteKey failed: %v", err)
	}
	if err := s.WriteKey("k", []byte("v2")); err != nil {
		t.Fatalf("WriteKey failed: %v", err)
	}
	data, _ = s.ReadKey("k")
	if string(data) != "v2" {
		t.Errorf("Expected v2, got %s", data)
	}

	if err := s.DeleteKey("k"); err != nil {
		t.Fatalf("DeleteKey failed: %v", err)
	}
	data, _ = s.ReadKey("k")
	if data != nil {
		t.Error("Expected nil after delete")
	}
}

// TestSQLiteStoreReopen tests persistence across open/close cycles.
func TestSQLiteStoreReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.WriteKey("k", []byte("persist")); err != nil {
		t.Fatalf("WriteKey failed: %v", err)
	}
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s.Close()

	data, _ := s.ReadKey("k")
	if string(data) != "persist" {
		t.Errorf("Expected persisted value, got %s", data)
	}
}

// TestLedgerCollections tests empty reads and whole-collection replacement.
func TestLedgerCollections(t *testing.T) {
	l := NewLedger(NewMemoryStore())

	orders, err := l.Orders()
	if err != nil {
		t.Fatalf("Orders failed: %v", err)
	}
	if len(orders) != 0 {
		t.Error("Expected empty collection")
	}

	o := models.Order{ID: "o1", OrderNo: "20260831-0001", CreatedAt: time.Now()}
	if err := l.SetOrders([]models.Order{o}); err != nil {
		t.Fatalf("SetOrders failed: %v", err)
	}
	orders, _ = l.Orders()
	if len(orders) != 1 || orders[0].OrderNo != "20260831-0001" {
		t.Errorf("Unexpected orders: %+v", orders)
	}

	if err := l.SetOrders(nil); err != nil {
		t.Fatalf("SetOrders failed: %v", err)
	}
	orders, _ = l.Orders()
	if len(orders) != 0 {
		t.Error("Expected collection replaced with empty")
	}
}

// TestLedgerCurrentUser tests the pointer key, including nil clear.
func TestLedgerCurrentUser(t *testing.T) {
	l := NewLedger(NewMemoryStore())

	user, err := l.CurrentUser()
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if user != nil {
		t.Error("Expected nil before sign-in")
	}

	u := models.User{ID: "u1", Name: "Sokha", Role: models.RoleAdmin, Active: true}
	if err := l.SetCurrentUser(&u); err != nil {
		t.Fatalf("SetCurrentUser failed: %v", err)
	}
	user, _ = l.CurrentUser()
	if user == nil || user.ID != "u1" {
		t.Errorf("Unexpected current user: %+v", user)
	}

	if err := l.SetCurrentUser(nil); err != nil {
		t.Fatalf("SetCurrentUser(nil) failed: %v", err)
	}
	user, _ = l.CurrentUser()
	if user != nil {
		t.Error("Expected nil after clear")
	}
}

// TestLedgerDeviceName tests the default name.
func TestLedgerDeviceName(t *testing.T) {
	l := NewLedger(NewMemoryStore())

	name, err := l.DeviceName()
	if err != nil {
		t.Fatalf("DeviceName failed: %v", err)
	}
	if name != "POS Terminal 1" {
		t.Errorf("Expected default name, got %q", name)
	}

	if err := l.SetDeviceName("Counter 2"); err != nil {
		t.Fatalf("SetDeviceName failed: %v", err)
	}
	name, _ = l.DeviceName()
	if name != "Counter 2" {
		t.Errorf("Expected Counter 2, got %q", name)
	}
}

// TestLedgerSeeded tests the first-run flag.
func TestLedgerSeeded(t *testing.T) {
	l := NewLedger(NewMemoryStore())

	seeded, err := l.Seeded()
	if err != nil {
		t.Fatalf("Seeded failed: %v", err)
	}
	if seeded {
		t.Error("Expected unseeded ledger")
	}

	if err := l.SetSeeded(); err != nil {
		t.Fatalf("SetSeeded failed: %v", err)
	}
	seeded, _ = l.Seeded()
	if !seeded {
		t.Error("Expected seeded flag set")
	}
}
