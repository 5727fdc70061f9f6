package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/plumehq/plume-backend/internal/rollups"
	"github.com/plumehq/plume-backend/pkg/config"
	"github.com/plumehq/plume-backend/pkg/logger"
	"github.com/plumehq/plume-backend/pkg/metrics"
)

type batchRecomputer interface {
	RecomputeBatch(ctx context.Context, limit, offset int) (*rollups.BatchResult, error)
}

// FullRecomputeJob walks the whole active catalog page by page and rebuilds
// every product rollup. The inter-page delay keeps the database load flat
// while the job runs.
type FullRecomputeJob struct {
	service   batchRecomputer
	logg      *logger.Logger
	metrics   *metrics.RollupMetrics
	batchSize int
	pageDelay time.Duration
}

// NewFullRecomputeJob constructs the catalog-wide recompute job.
func NewFullRecomputeJob(
	service batchRecomputer,
	cfg config.RollupConfig,
	m *metrics.RollupMetrics,
	logg *logger.Logger,
) (*FullRecomputeJob, error) {
	if service == nil {
		return nil, fmt.Errorf("rollup service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	return &FullRecomputeJob{
		service:   service,
		logg:      logg,
		metrics:   m,
		batchSize: batchSize,
		pageDelay: cfg.InterPageDelay,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *FullRecomputeJob) Name() string { return "rollup_full_recompute" }

// Run pages through the catalog until the batch protocol reports done.
func (j *FullRecomputeJob) Run(ctx context.Context) error {
	offset := 0
	processed, errored := 0, 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		start := time.Now()
		page, err := j.service.RecomputeBatch(ctx, j.batchSize, offset)
		if err != nil {
			return fmt.Errorf("recompute page (offset=%d): %w", offset, err)
		}
		j.metrics.ObservePage(time.Since(start), page.Processed, page.Errors)

		processed += page.Processed
		errored += page.Errors
		offset = page.NextOffset

		if page.Done {
			break
		}
		if j.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(j.pageDelay):
			}
		}
	}

	doneCtx := j.logg.WithFields(ctx, map[string]any{
		"processed": processed,
		"errored":   errored,
	})
	j.logg.Info(doneCtx, "full rollup recompute finished")
	if errored > 0 {
		return fmt.Errorf("%d products failed to recompute", errored)
	}
	return nil
}
