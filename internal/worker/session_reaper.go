package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veldshoe/storefront_api/internal/service"
)

// SessionReaper evicts catalog sessions that have been idle longer than the
// configured TTL. Carts are unaffected; they expire via their own Redis TTL.
type SessionReaper struct {
	catalogService *service.CatalogService
	interval       time.Duration
	maxIdle        time.Duration
}

// NewSessionReaper constructs a SessionReaper.
func NewSessionReaper(catalogService *service.CatalogService, interval, maxIdle time.Duration) *SessionReaper {
	return &SessionReaper{
		catalogService: catalogService,
		interval:       interval,
		maxIdle:        maxIdle,
	}
}

// Start begins the reap loop and listens for context cancellation.
func (w *SessionReaper) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Dur("max_idle", w.maxIdle).Msg("Starting session reaper")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := w.catalogService.ReapIdle(w.maxIdle)
			if removed > 0 {
				log.Debug().Int("removed", removed).Int("live", w.catalogService.SessionCount()).Msg("Reaped idle catalog sessions")
			}
		case <-ctx.Done():
			log.Info().Msg("Session reaper stopped")
			return
		}
	}
}
