package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category groups products for display ordering.
type Category struct {
	ID        UUID      `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// VariantType identifies the kind of product option.
type VariantType string

const (
	VariantSize    VariantType = "SIZE"
	VariantFlavor  VariantType = "FLAVOR"
	VariantTopping VariantType = "TOPPING"
)

// ProductVariant is a selectable option that adjusts a product's price.
type ProductVariant struct {
	ID         UUID        `json:"id"`
	ProductID  UUID        `json:"productId,omitempty"`
	Name       string      `json:"name"`
	Type       VariantType `json:"type"`
	ExtraPrice float64     `json:"extraPrice"`
	Active     bool        `json:"active"`
}

// Product is a sellable item.
type Product struct {
	ID         UUID             `json:"id"`
	Name       string           `json:"name"`
	BasePrice  float64          `json:"basePrice"`
	CategoryID UUID             `json:"categoryId"`
	Image      string           `json:"image,omitempty"`
	Active     bool             `json:"active"`
	Variants   []ProductVariant `json:"variants,omitempty"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// CategoryRow is the remote table shape for categories.
type CategoryRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the remote table for CategoryRow.
func (CategoryRow) TableName() string {
	return "categories"
}

// ToCategory converts a remote row into the local record.
func (r CategoryRow) ToCategory() Category {
	return Category{
		ID:        UUID(r.ID),
		Name:      r.Name,
		SortOrder: r.SortOrder,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
}

// ProductRow is the remote table shape for products. Variants arrive either
// as a JSON array or as a JSON-encoded string depending on the column type,
// so the raw value is kept until normalization.
type ProductRow struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	BasePrice  float64         `json:"base_price"`
	CategoryID string          `json:"category_id"`
	Image      string          `json:"image,omitempty"`
	Active     bool            `json:"active"`
	Variants   json.RawMessage `json:"variants,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName returns the remote table for ProductRow.
func (ProductRow) TableName() string {
	return "products"
}

// variantRow tolerates the loose field names seen in remote variant data.
type variantRow struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Type        string  `json:"type"`
	VariantType string  `json:"variant_type"`
	ExtraPrice  float64 `json:"extraPrice"`
	ExtraPriceS float64 `json:"extra_price"`
	Active      *bool   `json:"active"`
}

// ToProduct converts a remote row into the local record, normalizing the
// variants column which may be an array, a JSON-encoded string, or absent.
func (r ProductRow) ToProduct() Product {
	return Product{
		ID:         UUID(r.ID),
		Name:       r.Name,
		BasePrice:  r.BasePrice,
		CategoryID: UUID(r.CategoryID),
		Image:      r.Image,
		Active:     r.Active,
		Variants:   normalizeVariants(r.ID, r.Variants),
		UpdatedAt:  r.UpdatedAt,
	}
}

// normalizeVariants decodes the raw variants value. Malformed data yields an
// empty slice rather than an error; a missing variant type defaults to SIZE.
func normalizeVariants(productID string, raw json.RawMessage) []ProductVariant {
	if len(raw) == 0 {
		return nil
	}

	data := []byte(raw)

	// Some backends store the array as a JSON string column.
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		data = []byte(asString)
	}

	var rows []variantRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil
	}

	variants := make([]ProductVariant, 0, len(rows))
	for idx, v := range rows {
		pv := ProductVariant{
			ID:         UUID(v.ID),
			ProductID:  UUID(productID),
			Name:       v.Name,
			Type:       VariantType(v.Type),
			ExtraPrice: v.ExtraPrice,
			Active:     true,
		}
		if pv.ID == "" {
			pv.ID = UUID(fmt.Sprintf("%s_var_%d", productID, idx))
		}
		if pv.Name == "" {
			if v.Label != "" {
				pv.Name = v.Label
			} else {
				pv.Name = "Option"
			}
		}
		if pv.Type == "" {
			if v.VariantType != "" {
				pv.Type = VariantType(v.VariantType)
			} else {
				pv.Type = VariantSize
			}
		}
		if pv.ExtraPrice == 0 && v.ExtraPriceS != 0 {
			pv.ExtraPrice = v.ExtraPriceS
		}
		if v.Active != nil {
			pv.Active = *v.Active
		}
		variants = append(variants, pv)
	}

	return variants
}
