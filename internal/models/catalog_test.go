package models

import (
	"encoding/json"
	"testing"
)

// TestNormalizeVariantsArray tests decoding a plain JSON array.
func TestNormalizeVariantsArray(t *testing.T) {
	raw := json.RawMessage(`[{"id":"v1","name":"Large","type":"SIZE","extraPrice":0.5}]`)

	got := normalizeVariants("p1", raw)
	if len(got) != 1 {
		t.Fatalf("Expected 1 variant, got %d", len(got))
	}
	v := got[0]
	if v.ID != "v1" || v.Name != "Large" || v.Type != VariantSize || v.ExtraPrice != 0.5 {
		t.Errorf("Unexpected variant: %+v", v)
	}
	if v.ProductID != "p1" {
		t.Errorf("Expected product id p1, got %s", v.ProductID)
	}
	if !v.Active {
		t.Error("Expected variant active by default")
	}
}

// TestNormalizeVariantsStringColumn tests the JSON-encoded string shape
// some backends store.
func TestNormalizeVariantsStringColumn(t *testing.T) {
	raw := json.RawMessage(`"[{\"name\":\"Chocolate\",\"variant_type\":\"FLAVOR\",\"extra_price\":0.25}]"`)

	got := normalizeVariants("p1", raw)
	if len(got) != 1 {
		t.Fatalf("Expected 1 variant, got %d", len(got))
	}
	v := got[0]
	if v.Type != VariantFlavor {
		t.Errorf("Expected FLAVOR from variant_type, got %s", v.Type)
	}
	if v.ExtraPrice != 0.25 {
		t.Errorf("Expected extra_price fallback 0.25, got %v", v.ExtraPrice)
	}
}

// TestNormalizeVariantsDefaults tests synthesized ids, the label fallback
// and the default type.
func TestNormalizeVariantsDefaults(t *testing.T) {
	raw := json.RawMessage(`[{"label":"Small"},{}]`)

	got := normalizeVariants("p1", raw)
	if len(got) != 2 {
		t.Fatalf("Expected 2 variants, got %d", len(got))
	}

	if got[0].ID != "p1_var_0" || got[1].ID != "p1_var_1" {
		t.Errorf("Expected synthesized ids, got %s and %s", got[0].ID, got[1].ID)
	}
	if got[0].Name != "Small" {
		t.Errorf("Expected label fallback, got %q", got[0].Name)
	}
	if got[1].Name != "Option" {
		t.Errorf("Expected Option placeholder, got %q", got[1].Name)
	}
	if got[0].Type != VariantSize || got[1].Type != VariantSize {
		t.Error("Expected SIZE default type")
	}
}

// TestNormalizeVariantsMalformed tests tolerance of garbage values.
func TestNormalizeVariantsMalformed(t *testing.T) {
	if got := normalizeVariants("p1", nil); got != nil {
		t.Errorf("Expected nil for empty value, got %v", got)
	}
	if got := normalizeVariants("p1", json.RawMessage(`{"not":"an array"}`)); got != nil {
		t.Errorf("Expected nil for non-array value, got %v", got)
	}
	if got := normalizeVariants("p1", json.RawMessage(`"not json at all"`)); got != nil {
		t.Errorf("Expected nil for garbage string, got %v", got)
	}
}

// TestNormalizeVariantsInactive tests the explicit active flag.
func TestNormalizeVariantsInactive(t *testing.T) {
	raw := json.RawMessage(`[{"name":"Retired","active":false}]`)

	got := normalizeVariants("p1", raw)
	if len(got) != 1 {
		t.Fatalf("Expected 1 variant, got %d", len(got))
	}
	if got[0].Active {
		t.Error("Expected explicit active:false respected")
	}
}

// TestProductRowToProduct tests the remote-to-local conversion.
func TestProductRowToProduct(t *testing.T) {
	row := ProductRow{
		ID:         "p1",
		Name:       "Latte",
		BasePrice:  2.5,
		CategoryID: "c1",
		Active:     true,
		Variants:   json.RawMessage(`[{"id":"v1","name":"Iced"}]`),
	}

	p := row.ToProduct()
	if p.ID != "p1" || p.Name != "Latte" || p.BasePrice != 2.5 || p.CategoryID != "c1" {
		t.Errorf("Unexpected product: %+v", p)
	}
	if len(p.Variants) != 1 || p.Variants[0].ID != "v1" {
		t.Errorf("Unexpected variants: %+v", p.Variants)
	}
}
