// Package seed provides first-run initialization: an online bootstrap when
// possible, demo data otherwise, guarded by a one-shot seeded flag.
package seed

import (
	"context"

	"github.com/panhaneath12/sweet-delights-pos-system/internal/auth"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/logging"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/models"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/remote"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/store"
	syncpkg "github.com/panhaneath12/sweet-delights-pos-system/internal/sync"
)

// Initialize populates an empty ledger. With data already present it does
// nothing. Otherwise it tries an authenticated online bootstrap and falls
// back to the built-in demo catalog, setting the seeded flag so the demo
// seeding never reruns.
func Initialize(ctx context.Context, ledger *store.Ledger, orch *syncpkg.Orchestrator, client remote.Client) error {
	has, err := hasLocalData(ledger)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	seeded, err := ledger.Seeded()
	if err != nil {
		return err
	}
	if seeded {
		return nil
	}

	if orch.Online() && client.HasSession() {
		if err := orch.Bootstrap(ctx); err == nil {
			return ledger.SetSeeded()
		} else {
			logging.Warn("online bootstrap failed, falling back to demo data",
				map[string]interface{}{"error": err.Error()})
		}
	}

	// Re-check: the bootstrap may have partially populated the ledger.
	has, err = hasLocalData(ledger)
	if err != nil {
		return err
	}
	if !has {
		if err := seedDemoData(ledger); err != nil {
			return err
		}
		logging.Info("seeded demo data")
	}

	return ledger.SetSeeded()
}

// hasLocalData reports whether all reference collections are populated.
func hasLocalData(ledger *store.Ledger) (bool, error) {
	users, err := ledger.Users()
	if err != nil {
		return false, err
	}
	categories, err := ledger.Categories()
	if err != nil {
		return false, err
	}
	products, err := ledger.Products()
	if err != nil {
		return false, err
	}
	return len(users) > 0 && len(categories) > 0 && len(products) > 0, nil
}

// seedDemoData writes the built-in users, categories and products. Demo
// PINs are hashed at seed time; nothing plain is stored.
func seedDemoData(ledger *store.Ledger) error {
	users, err := demoUsers()
	if err != nil {
		return err
	}
	if err := ledger.SetUsers(users); err != nil {
		return err
	}
	if err := ledger.SetCategories(demoCategories()); err != nil {
		return err
	}
	return ledger.SetProducts(demoProducts())
}

// demoUsers builds the demo operators. The admin PIN is 1234 and the
// cashier PIN is 5678; both exist only for first-run demos.
func demoUsers() ([]models.User, error) {
	admin, err := auth.HashPin("1234")
	if err != nil {
		return nil, err
	}
	cashier, err := auth.HashPin("5678")
	if err != nil {
		return nil, err
	}

	return []models.User{
		{
			ID:       "11111111-1111-4111-8111-111111111111",
			Name:     "Sokha Admin",
			Username: "admin",
			Role:     models.RoleAdmin,
			Active:   true,
			PinHash:  admin.Hash,
			PinSalt:  admin.Salt,
			PinIter:  admin.Iterations,
		},
		{
			ID:       "22222222-2222-4222-8222-222222222222",
			Name:     "Dara Cashier",
			Username: "cashier",
			Role:     models.RoleCashier,
			Active:   true,
			PinHash:  cashier.Hash,
			PinSalt:  cashier.Salt,
			PinIter:  cashier.Iterations,
		},
	}, nil
}

func demoCategories() []models.Category {
	return []models.Category{
		{ID: "a1111111-1111-4111-8111-111111111111", Name: "Cakes", SortOrder: 1, Active: true},
		{ID: "a2222222-2222-4222-8222-222222222222", Name: "Pastries", SortOrder: 2, Active: true},
		{ID: "a3333333-3333-4333-8333-333333333333", Name: "Drinks", SortOrder: 3, Active: true},
	}
}

func demoProducts() []models.Product {
	return []models.Product{
		{
			ID:         "b1111111-1111-4111-8111-111111111111",
			Name:       "Chocolate Cake Slice",
			BasePrice:  3.50,
			CategoryID: "a1111111-1111-4111-8111-111111111111",
			Active:     true,
		},
		{
			ID:         "b2222222-2222-4222-8222-222222222222",
			Name:       "Butter Croissant",
			BasePrice:  2.00,
			CategoryID: "a2222222-2222-4222-8222-222222222222",
			Active:     true,
		},
		{
			ID:         "b3333333-3333-4333-8333-333333333333",
			Name:       "Iced Latte",
			BasePrice:  2.75,
			CategoryID: "a3333333-3333-4333-8333-333333333333",
			Active:     true,
			Variants: []models.ProductVariant{
				{
					ID:         "b3333333-3333-4333-8333-333333333333_var_0",
					ProductID:  "b3333333-3333-4333-8333-333333333333",
					Name:       "Large",
					Type:       models.VariantSize,
					ExtraPrice: 0.50,
					Active:     true,
				},
			},
		},
	}
}
