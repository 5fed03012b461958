package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/veldshoe/storefront_api/internal/models"
	"github.com/veldshoe/storefront_api/internal/utils"
)

// memCartRepo is an in-memory CartRepository for tests.
type memCartRepo struct {
	carts map[string][]models.CartItem
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[string][]models.CartItem)}
}

func (r *memCartRepo) Load(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	return append([]models.CartItem(nil), r.carts[sessionID]...), nil
}

func (r *memCartRepo) Save(ctx context.Context, sessionID string, items []models.CartItem) error {
	r.carts[sessionID] = append([]models.CartItem(nil), items...)
	return nil
}

func (r *memCartRepo) Clear(ctx context.Context, sessionID string) error {
	delete(r.carts, sessionID)
	return nil
}

func cartItem(productID, variationName string, qty int) models.CartItem {
	return models.CartItem{
		ProductID:     productID,
		VariationName: variationName,
		Name:          "Trail Runner",
		Price:         decimal.RequireFromString("449.50"),
		Quantity:      qty,
	}
}

func TestCartAddMergesSameLine(t *testing.T) {
	svc := NewCartService(newMemCartRepo())
	ctx := context.Background()

	if _, err := svc.Add(ctx, "s1", cartItem("42", "Black / 8", 1)); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	items, err := svc.Add(ctx, "s1", cartItem("42", "black / 8", 2))
	if err != nil {
		t.Fatalf("second Add failed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("lines = %d, want 1 (same product and variation merge)", len(items))
	}
	if items[0].Quantity != 3 {
		t.Errorf("merged quantity = %d, want 3", items[0].Quantity)
	}
}

func TestCartAddKeepsDistinctVariations(t *testing.T) {
	svc := NewCartService(newMemCartRepo())
	ctx := context.Background()

	if _, err := svc.Add(ctx, "s1", cartItem("42", "Black / 8", 1)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	items, err := svc.Add(ctx, "s1", cartItem("42", "Black / 9", 1))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("lines = %d, want 2 (different variation is a separate line)", len(items))
	}
}

func TestCartAddRejectsBadQuantity(t *testing.T) {
	svc := NewCartService(newMemCartRepo())
	if _, err := svc.Add(context.Background(), "s1", cartItem("42", "", 0)); !errors.Is(err, utils.ErrInvalidQuantity) {
		t.Errorf("err = %v, want ErrInvalidQuantity", err)
	}
}

func TestCartSetQuantity(t *testing.T) {
	svc := NewCartService(newMemCartRepo())
	ctx := context.Background()

	if _, err := svc.Add(ctx, "s1", cartItem("42", "Black / 8", 1)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	items, err := svc.SetQuantity(ctx, "s1", "42", "Black / 8", 5)
	if err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	if items[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", items[0].Quantity)
	}

	if _, err := svc.SetQuantity(ctx, "s1", "42", "Black / 8", -1); !errors.Is(err, utils.ErrInvalidQuantity) {
		t.Errorf("negative quantity err = %v, want ErrInvalidQuantity", err)
	}
	if _, err := svc.SetQuantity(ctx, "s1", "99", "", 2); !errors.Is(err, utils.ErrItemNotFound) {
		t.Errorf("missing line err = %v, want ErrItemNotFound", err)
	}

	// Zero removes the line.
	items, err = svc.SetQuantity(ctx, "s1", "42", "Black / 8", 0)
	if err != nil {
		t.Fatalf("SetQuantity(0) failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("lines after zero quantity = %d, want 0", len(items))
	}
}

func TestCartRemove(t *testing.T) {
	svc := NewCartService(newMemCartRepo())
	ctx := context.Background()

	if _, err := svc.Add(ctx, "s1", cartItem("42", "Black / 8", 1)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := svc.Add(ctx, "s1", cartItem("43", "", 1)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	items, err := svc.Remove(ctx, "s1", "42", "Black / 8")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != "43" {
		t.Errorf("remaining lines = %+v, want only product 43", items)
	}

	if _, err := svc.Remove(ctx, "s1", "42", "Black / 8"); !errors.Is(err, utils.ErrItemNotFound) {
		t.Errorf("removing absent line err = %v, want ErrItemNotFound", err)
	}
}

func TestCartTotal(t *testing.T) {
	items := []models.CartItem{
		cartItem("42", "Black / 8", 2), // 899.00
		cartItem("43", "", 1),          // 449.50
	}
	if got := models.CartTotal(items); !got.Equal(decimal.RequireFromString("1348.50")) {
		t.Errorf("CartTotal = %s, want 1348.50", got.String())
	}
}
