package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veldshoe/storefront_api/internal/models"
)

// cartTTL keeps an untouched cart for 30 days, matching the session token
// lifetime.
const cartTTL = 30 * 24 * time.Hour

// CartStore persists carts in Redis: one key per session holding the
// JSON-serialized item array, rewritten on every mutation.
type CartStore struct {
	redis *RedisClient
}

// NewCartStore creates a new CartStore.
func NewCartStore(redis *RedisClient) *CartStore {
	return &CartStore{redis: redis}
}

func (s *CartStore) key(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// Load returns the cart items for a session. A missing key is an empty
// cart, not an error.
func (s *CartStore) Load(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	raw, err := s.redis.Get(ctx, s.key(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.CartItem{}, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return items, nil
}

// Save writes the full cart for a session, refreshing the TTL.
func (s *CartStore) Save(ctx context.Context, sessionID string, items []models.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(sessionID), string(raw), cartTTL); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Clear removes the cart key for a session.
func (s *CartStore) Clear(ctx context.Context, sessionID string) error {
	return s.redis.Delete(ctx, s.key(sessionID))
}
