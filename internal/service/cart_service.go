package service

import (
	"context"
	"strings"

	"github.com/veldshoe/storefront_api/internal/models"
	"github.com/veldshoe/storefront_api/internal/utils"
)

// CartRepository is the persistence port for session carts. The Redis
// implementation lives in internal/cache.
type CartRepository interface {
	Load(ctx context.Context, sessionID string) ([]models.CartItem, error)
	Save(ctx context.Context, sessionID string, items []models.CartItem) error
	Clear(ctx context.Context, sessionID string) error
}

// CartService owns cart mutations. Every change is written through to the
// repository before returning.
type CartService struct {
	repo CartRepository
}

// NewCartService constructs a CartService.
func NewCartService(repo CartRepository) *CartService {
	return &CartService{repo: repo}
}

// Get returns the current cart for a session.
func (s *CartService) Get(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	return s.repo.Load(ctx, sessionID)
}

// Add puts an item into the cart. At most one line may exist per
// (product id, variation qualifier) pair: adding an existing pair
// increments its quantity by the added amount instead of creating a
// second line.
func (s *CartService) Add(ctx context.Context, sessionID string, item models.CartItem) ([]models.CartItem, error) {
	if item.Quantity < 1 {
		return nil, utils.ErrInvalidQuantity
	}

	items, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range items {
		if sameLine(&items[i], &item) {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}

	if err := s.repo.Save(ctx, sessionID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetQuantity updates a line's quantity. Zero removes the line; negative
// quantities are rejected.
func (s *CartService) SetQuantity(ctx context.Context, sessionID, productID, variationName string, qty int) ([]models.CartItem, error) {
	if qty < 0 {
		return nil, utils.ErrInvalidQuantity
	}
	if qty == 0 {
		return s.Remove(ctx, sessionID, productID, variationName)
	}

	items, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == productID && strings.EqualFold(items[i].VariationName, variationName) {
			items[i].Quantity = qty
			found = true
			break
		}
	}
	if !found {
		return nil, utils.ErrItemNotFound
	}

	if err := s.repo.Save(ctx, sessionID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Remove deletes a line from the cart.
func (s *CartService) Remove(ctx context.Context, sessionID, productID, variationName string) ([]models.CartItem, error) {
	items, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	out := items[:0]
	found := false
	for _, it := range items {
		if it.ProductID == productID && strings.EqualFold(it.VariationName, variationName) {
			found = true
			continue
		}
		out = append(out, it)
	}
	if !found {
		return nil, utils.ErrItemNotFound
	}

	if err := s.repo.Save(ctx, sessionID, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.repo.Clear(ctx, sessionID)
}

// sameLine reports whether two items occupy the same cart line: identical
// product id and variation qualifier (case-insensitive).
func sameLine(a, b *models.CartItem) bool {
	return a.ProductID == b.ProductID && strings.EqualFold(a.VariationName, b.VariationName)
}
