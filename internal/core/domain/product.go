package domain

import (
	"strings"
	"time"
)

// CategoryKind is the closed classification of a product category.
// Legacy records carry free-form category strings; wholesale items are
// recognized by the "gros" marker anywhere in the string, which catches
// spellings like "Gros" and "En Gros".
type CategoryKind int

const (
	CategoryStandard CategoryKind = iota
	CategoryBulk
)

const bulkCategoryMarker = "gros"

// CategoryKindOf maps a raw category string onto the closed kind.
func CategoryKindOf(category string) CategoryKind {
	if strings.Contains(strings.ToLower(category), bulkCategoryMarker) {
		return CategoryBulk
	}
	return CategoryStandard
}

// Variant is a concrete purchasable size/color combination of a product.
// Stock is the available quantity at the last catalog read.
type Variant struct {
	ID    string `json:"id"`
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int    `json:"stock"`
	SKU   string `json:"sku,omitempty"`
}

// Product is catalog data, read-only to the cart engine.
// Price is an integer amount in CFA francs; there is no fractional unit.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	Images      []string  `json:"images"`
	Variants    []Variant `json:"variants"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p Product) CategoryKind() CategoryKind {
	return CategoryKindOf(p.Category)
}

func (p Product) IsBulk() bool {
	return p.CategoryKind() == CategoryBulk
}

// MainImage returns the first image reference, or "" when there is none.
func (p Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// FindVariant looks up the variant matching the (size, color) pair.
// The pair is unique within a product.
func (p Product) FindVariant(size, color string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Size == size && v.Color == color {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantByID looks up a variant by its identity.
func (p Product) VariantByID(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// AvailableSizes returns the distinct sizes that have stock, in variant order.
func (p Product) AvailableSizes() []string {
	return distinctInStock(p.Variants, func(v Variant) string { return v.Size })
}

// AvailableColors returns the distinct colors that have stock, in variant order.
func (p Product) AvailableColors() []string {
	return distinctInStock(p.Variants, func(v Variant) string { return v.Color })
}

func distinctInStock(variants []Variant, attr func(Variant) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range variants {
		if v.Stock <= 0 {
			continue
		}
		a := attr(v)
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}
