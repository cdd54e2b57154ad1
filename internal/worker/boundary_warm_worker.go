package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sigapbencana/rambu_api/internal/service"
)

// BoundaryWarmWorker periodically reloads province boundaries into the
// geocoder so edits to the boundary table are picked up without a restart.
type BoundaryWarmWorker struct {
	geocode  *service.GeocodeService
	interval time.Duration
}

// NewBoundaryWarmWorker constructs a BoundaryWarmWorker.
func NewBoundaryWarmWorker(geocode *service.GeocodeService, interval time.Duration) *BoundaryWarmWorker {
	return &BoundaryWarmWorker{
		geocode:  geocode,
		interval: interval,
	}
}

// Start begins the periodic refresh loop and listens for context cancellation.
func (w *BoundaryWarmWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting boundary warm worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Boundary warm worker stopped")
			return
		}
	}
}

func (w *BoundaryWarmWorker) run(ctx context.Context) {
	start := time.Now()
	if err := w.geocode.RefreshBoundaries(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to refresh province boundaries")
		return
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Int("provinces", w.geocode.BoundaryCount()).
		Msg("Province boundary refresh completed")
}
