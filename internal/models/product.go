package models

import "time"

// ProductKind discriminates the two catalog product shapes.
type ProductKind string

const (
	KindSimple   ProductKind = "simple"
	KindVariable ProductKind = "variable"
)

// StockStatus enumerates backend stock states.
type StockStatus string

const (
	StockInStock     StockStatus = "IN_STOCK"
	StockOutOfStock  StockStatus = "OUT_OF_STOCK"
	StockOnBackorder StockStatus = "ON_BACKORDER"
)

// Available reports whether the status counts as purchasable.
// Backordered stock is still sellable.
func (s StockStatus) Available() bool {
	return s == StockInStock || s == StockOnBackorder
}

// Attribute is a declared product attribute with its ordered option list,
// e.g. "color" -> ["black", "red"].
type Attribute struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Variation is a purchasable combination under a variable product.
// It is owned exclusively by its parent and carries its own stock state.
type Variation struct {
	ID            string            `db:"id" json:"id"`
	ProductID     string            `db:"product_id" json:"-"`
	Name          string            `db:"name" json:"name"`
	StockStatus   StockStatus       `db:"stock_status" json:"stockStatus"`
	StockQuantity *int              `db:"stock_quantity" json:"stockQuantity,omitempty"`
	Attributes    map[string]string `db:"-" json:"attributes"`
}

// Available reports whether this variation can be sold.
func (v *Variation) Available() bool {
	return v.StockStatus.Available()
}

// Product represents a catalog product. The Kind field discriminates the
// union: a simple product carries its own StockStatus/StockQuantity and an
// empty Variations slice; a variable product carries Variations and no
// authoritative stock status of its own. Consumers must switch on Kind.
type Product struct {
	ID            string      `db:"id" json:"id"`
	Slug          string      `db:"slug" json:"slug"`
	Name          string      `db:"name" json:"name"`
	Kind          ProductKind `db:"kind" json:"kind"`
	Price         string      `db:"price" json:"price,omitempty"`
	OnSale        bool        `db:"on_sale" json:"onSale"`
	AverageRating float64     `db:"average_rating" json:"averageRating"`
	Image         string      `db:"image" json:"image,omitempty"`
	Categories    []Category  `db:"-" json:"categories,omitempty"`
	Attributes    []Attribute `db:"-" json:"attributes,omitempty"`

	// Simple products only.
	StockStatus   StockStatus `db:"stock_status" json:"stockStatus,omitempty"`
	StockQuantity *int        `db:"stock_quantity" json:"stockQuantity,omitempty"`

	// Variable products only.
	Variations []Variation `db:"-" json:"variations,omitempty"`

	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// Purchasable reports whether the product should be shown at all.
// A simple product is purchasable by its own status. A variable product is
// purchasable when at least one variation is available, falling back to its
// own declared status when it has no variations.
func (p *Product) Purchasable() bool {
	switch p.Kind {
	case KindVariable:
		if len(p.Variations) == 0 {
			return p.StockStatus.Available()
		}
		for i := range p.Variations {
			if p.Variations[i].Available() {
				return true
			}
		}
		return false
	default:
		return p.StockStatus.Available()
	}
}

// AvailableVariations returns the in-stock subset of a variable product's
// variations. Filter predicates evaluate against this subset only.
func (p *Product) AvailableVariations() []Variation {
	out := make([]Variation, 0, len(p.Variations))
	for _, v := range p.Variations {
		if v.Available() {
			out = append(out, v)
		}
	}
	return out
}
