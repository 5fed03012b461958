package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/veldshoe/storefront_api/internal/repository"
	"github.com/veldshoe/storefront_api/internal/utils"
	"github.com/veldshoe/storefront_api/pkg/commerce"
)

// Webhook topics delivered by the commerce backend.
const (
	TopicProductCreated = "product.created"
	TopicProductUpdated = "product.updated"
	TopicProductDeleted = "product.deleted"
)

// SyncService mirrors commerce-backend products into the local store. A
// periodic full sweep reconciles everything; webhook events apply single
// upserts/deletes between sweeps.
type SyncService struct {
	fetcher CatalogFetcher
	repo    *repository.MirrorRepository
}

// NewSyncService constructs a SyncService.
func NewSyncService(fetcher CatalogFetcher, repo *repository.MirrorRepository) *SyncService {
	return &SyncService{fetcher: fetcher, repo: repo}
}

// SyncCatalog pages through the full catalog at the backend's maximum page
// size, upserts every product, and prunes mirrored rows absent upstream.
func (s *SyncService) SyncCatalog(ctx context.Context) error {
	var (
		cursor string
		seen   []string
		pages  int
	)

	for {
		page, err := s.fetcher.GetProducts(ctx, commerce.ProductsQuery{
			First:      initialPageSize,
			After:      cursor,
			OrderField: commerce.OrderFieldDate,
			Order:      commerce.SortDesc,
		})
		if err != nil {
			return fmt.Errorf("catalog page fetch failed: %w", err)
		}
		pages++

		for _, p := range mapProducts(page.Nodes) {
			if err := s.repo.UpsertProduct(ctx, &p); err != nil {
				log.Error().Err(err).Str("product", p.ID).Msg("failed to upsert mirrored product")
				continue
			}
			seen = append(seen, p.ID)
		}

		if !page.PageInfo.HasNextPage {
			break
		}
		cursor = page.PageInfo.EndCursor
	}

	pruned, err := s.repo.Prune(ctx, seen)
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}
	log.Info().Int("pages", pages).Int("products", len(seen)).Int64("pruned", pruned).Msg("catalog mirror sweep completed")
	return nil
}

// deletePayload is the body of a product.deleted event.
type deletePayload struct {
	ID string `json:"id"`
}

// ProcessWebhook applies a single verified webhook event to the mirror.
// Created and updated events carry the product node; deleted events carry
// only the identifier.
func (s *SyncService) ProcessWebhook(ctx context.Context, topic string, payload []byte) error {
	switch topic {
	case TopicProductCreated, TopicProductUpdated:
		var node commerce.ProductNode
		if err := json.Unmarshal(payload, &node); err != nil {
			return fmt.Errorf("%w: invalid product payload", utils.ErrValidation)
		}
		p := mapProduct(node)
		if p.ID == "" {
			return fmt.Errorf("%w: product payload missing id", utils.ErrValidation)
		}
		if err := s.repo.UpsertProduct(ctx, &p); err != nil {
			return err
		}
		log.Info().Str("topic", topic).Str("product", p.ID).Msg("mirrored webhook upsert")
		return nil

	case TopicProductDeleted:
		var del deletePayload
		if err := json.Unmarshal(payload, &del); err != nil || del.ID == "" {
			return fmt.Errorf("%w: invalid delete payload", utils.ErrValidation)
		}
		if err := s.repo.DeleteProduct(ctx, del.ID); err != nil {
			return err
		}
		log.Info().Str("product", del.ID).Msg("mirrored webhook delete")
		return nil

	default:
		return fmt.Errorf("%w: %s", utils.ErrUnknownTopic, topic)
	}
}
