package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veldshoe/storefront_api/internal/service"
)

// SyncWorker periodically mirrors the commerce catalog into the local store.
type SyncWorker struct {
	syncService *service.SyncService
	interval    time.Duration
}

// NewSyncWorker constructs a SyncWorker.
func NewSyncWorker(syncService *service.SyncService, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		syncService: syncService,
		interval:    interval,
	}
}

// Start begins the periodic sync loop and listens for context cancellation.
func (w *SyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting catalog sync worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Catalog sync worker stopped")
			return
		}
	}
}

func (w *SyncWorker) run(ctx context.Context) {
	log.Info().Msg("Mirroring catalog from commerce backend...")

	start := time.Now()
	if err := w.syncService.SyncCatalog(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to mirror catalog")
		return
	}

	log.Info().Dur("duration", time.Since(start)).Msg("Catalog mirror completed")
}
