package enrichment

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/models"
)

// ItemSource lists items that still lack coordinates or weather, least
// recently attempted first.
type ItemSource interface {
	ListNeedingEnrichment(ctx context.Context, now time.Time, horizon time.Duration, limit int) ([]models.TripItem, error)
	MarkEnrichmentAttempted(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Worker periodically enriches upcoming items.
type Worker struct {
	items       ItemSource
	enricher    *Enricher
	interval    time.Duration
	horizon     time.Duration
	batch       int
	concurrency int
	now         func() time.Time
}

func NewWorker(items ItemSource, enricher *Enricher, interval, horizon time.Duration, batch int) *Worker {
	if batch <= 0 {
		batch = 20
	}
	return &Worker{
		items:       items,
		enricher:    enricher,
		interval:    interval,
		horizon:     horizon,
		batch:       batch,
		concurrency: 4,
		now:         time.Now,
	}
}

// Run blocks until ctx is done. A non-positive interval disables the loop.
func (w *Worker) Run(ctx context.Context) error {
	if w.interval <= 0 {
		logger.L().Info("enrichment worker disabled")
		return nil
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.L().Infof("enrichment worker started (interval %s, horizon %s)", w.interval, w.horizon)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				logger.L().Errorf("enrichment batch failed: %v", err)
			}
		}
	}
}

// RunOnce processes one batch and returns the number of items changed.
// Every listed item is marked attempted, so items that cannot be completed
// move behind the rest of the horizon.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	now := w.now()
	items, err := w.items.ListNeedingEnrichment(ctx, now, w.horizon, w.batch)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	var changed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i := range items {
		it := &items[i]
		g.Go(func() error {
			if w.enricher.EnrichItem(gctx, it).Changed() {
				changed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	if err := w.items.MarkEnrichmentAttempted(ctx, ids, now); err != nil {
		return int(changed.Load()), err
	}

	logger.L().Infof("enrichment batch: %d items, %d changed", len(items), changed.Load())
	return int(changed.Load()), nil
}
