package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	apperrors "github.com/panhaneath12/sweet-delights-pos-system/internal/errors"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/logging"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/models"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/remote"
)

// Bootstrap pulls the authoritative reference collections wholesale and
// overwrites the corresponding ledger collections. A locally edited record
// loses to this overwrite; the remote service is the source of truth for
// users, categories and products.
func (o *Orchestrator) Bootstrap(ctx context.Context) error {
	if !o.remote.HasSession() {
		return apperrors.New(apperrors.ErrSyncNotAuthenticated,
			"not authenticated, login first to bootstrap")
	}

	users, err := fetchRows[models.UserRow](ctx, o.remote, remote.TableUsers)
	if err != nil {
		return fmt.Errorf("bootstrap users: %w", err)
	}
	localUsers := make([]models.User, 0, len(users))
	for _, row := range users {
		localUsers = append(localUsers, row.ToUser())
	}
	sort.SliceStable(localUsers, func(i, j int) bool {
		return localUsers[i].CreatedAt.Before(localUsers[j].CreatedAt)
	})
	if err := o.ledger.SetUsers(localUsers); err != nil {
		return err
	}

	categories, err := fetchRows[models.CategoryRow](ctx, o.remote, remote.TableCategories)
	if err != nil {
		return fmt.Errorf("bootstrap categories: %w", err)
	}
	localCategories := make([]models.Category, 0, len(categories))
	for _, row := range categories {
		localCategories = append(localCategories, row.ToCategory())
	}
	sort.SliceStable(localCategories, func(i, j int) bool {
		return localCategories[i].SortOrder < localCategories[j].SortOrder
	})
	if err := o.ledger.SetCategories(localCategories); err != nil {
		return err
	}

	products, err := fetchRows[models.ProductRow](ctx, o.remote, remote.TableProducts)
	if err != nil {
		return fmt.Errorf("bootstrap products: %w", err)
	}
	localProducts := make([]models.Product, 0, len(products))
	for _, row := range products {
		localProducts = append(localProducts, row.ToProduct())
	}
	if err := o.ledger.SetProducts(localProducts); err != nil {
		return err
	}

	logging.Info("bootstrap complete", map[string]interface{}{
		"users":      len(localUsers),
		"categories": len(localCategories),
		"products":   len(localProducts),
	})

	return nil
}

// fetchRows pulls a whole table and decodes each row into T.
func fetchRows[T any](ctx context.Context, client remote.Client, table string) ([]T, error) {
	raw, err := client.FetchCollection(ctx, table)
	if err != nil {
		return nil, err
	}

	rows := make([]T, 0, len(raw))
	for _, r := range raw {
		var row T
		if err := json.Unmarshal(r, &row); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", table, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}
