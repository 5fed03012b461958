package models

import "github.com/shopspring/decimal"

// CartItem is one line of a session cart. At most one item may exist per
// (ProductID, VariationName) pair; adding the same pair again increments
// Quantity instead of creating a second line.
type CartItem struct {
	ProductID     string          `json:"productId"`
	VariationID   string          `json:"variationId,omitempty"`
	Name          string          `json:"name"`
	VariationName string          `json:"variationName,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"qty"`
	Image         string          `json:"image,omitempty"`
}

// LineTotal returns Price * Quantity.
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotal sums the line totals of all items.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].LineTotal())
	}
	return total
}
