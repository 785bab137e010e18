package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/aptper/internal/snapshot"
	"github.com/wonny/aptper/internal/updater"
	"github.com/wonny/aptper/pkg/config"
	"github.com/wonny/aptper/pkg/logger"
)

// SeriesRefreshJob rebuilds the stale tail of every tracked series nightly
// ⭐ SSOT: 시세 갱신 스케줄은 이 Job에서만
type SeriesRefreshJob struct {
	updater *updater.Updater
	config  *config.Config
	logger  *logger.Logger
}

// NewSeriesRefreshJob creates a new series refresh job
func NewSeriesRefreshJob(upd *updater.Updater, cfg *config.Config, log *logger.Logger) *SeriesRefreshJob {
	return &SeriesRefreshJob{
		updater: upd,
		config:  cfg,
		logger:  log,
	}
}

// Name returns the job name
func (j *SeriesRefreshJob) Name() string {
	return "series_refresh"
}

// Schedule returns the cron schedule (every day at 2 AM KST)
func (j *SeriesRefreshJob) Schedule() string {
	return "0 0 2 * * *" // with seconds
}

// Run executes the series refresh
func (j *SeriesRefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled series refresh")

	results, err := j.updater.RefreshAll(ctx, updater.Config{
		Workers:    j.config.Batch.Workers,
		WindowDays: j.config.Batch.RefreshWindowDays,
	})
	if err != nil {
		return fmt.Errorf("refresh series: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	if failed == len(results) && len(results) > 0 {
		return fmt.Errorf("refresh series: all %d units failed", failed)
	}

	j.logger.Info("Scheduled series refresh completed successfully")
	return nil
}

// SnapshotPublishJob republishes every valuation snapshot after the nightly
// refresh
type SnapshotPublishJob struct {
	publisher *snapshot.Publisher
	logger    *logger.Logger
}

// NewSnapshotPublishJob creates a new snapshot publish job
func NewSnapshotPublishJob(pub *snapshot.Publisher, log *logger.Logger) *SnapshotPublishJob {
	return &SnapshotPublishJob{
		publisher: pub,
		logger:    log,
	}
}

// Name returns the job name
func (j *SnapshotPublishJob) Name() string {
	return "snapshot_publish"
}

// Schedule returns the cron schedule (every day at 3 AM KST, 갱신 후)
func (j *SnapshotPublishJob) Schedule() string {
	return "0 0 3 * * *"
}

// Run executes the snapshot publish
func (j *SnapshotPublishJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled snapshot publish")

	stats, err := j.publisher.PublishAll(ctx)
	if err != nil {
		return fmt.Errorf("publish snapshots: %w", err)
	}
	if stats.Published == 0 && stats.Failed > 0 {
		return fmt.Errorf("publish snapshots: all %d units failed", stats.Failed)
	}

	j.logger.Info("Scheduled snapshot publish completed successfully")
	return nil
}

// MetaBackfillJob refreshes derived address/built metadata weekly
type MetaBackfillJob struct {
	updater *updater.Updater
	logger  *logger.Logger
}

// NewMetaBackfillJob creates a new meta backfill job
func NewMetaBackfillJob(upd *updater.Updater, log *logger.Logger) *MetaBackfillJob {
	return &MetaBackfillJob{
		updater: upd,
		logger:  log,
	}
}

// Name returns the job name
func (j *MetaBackfillJob) Name() string {
	return "meta_backfill"
}

// Schedule returns the cron schedule (every Sunday at 4 AM KST)
func (j *MetaBackfillJob) Schedule() string {
	return "0 0 4 * * SUN"
}

// Run executes the meta backfill
func (j *MetaBackfillJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled meta backfill")

	if _, err := j.updater.BackfillMeta(ctx); err != nil {
		return fmt.Errorf("backfill meta: %w", err)
	}

	j.logger.Info("Scheduled meta backfill completed successfully")
	return nil
}
