package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/interviewhub/gateway/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogRefresh rebuilds the cached permission catalog after an
	// administrative mutation or on schedule.
	TaskCatalogRefresh = "catalog:refresh"
)

// CatalogRefresher rebuilds the permission catalog cache from the upstream
// backend.
type CatalogRefresher interface {
	RefreshCatalog(ctx context.Context, token string) error
}

// NewCatalogRefreshTask constructs the catalog refresh task. The task
// carries no payload; the worker authenticates with its own service token.
func NewCatalogRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskCatalogRefresh, nil)
}

// NewCatalogRefreshHandler returns the asynq handler for TaskCatalogRefresh.
func NewCatalogRefreshHandler(refresher CatalogRefresher, serviceToken string, logger *slog.Logger) asynq.HandlerFunc {
	metrics := jobmetrics.NewMetrics(nil)
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("catalog_refresh")
		if err := tracker.End(refresher.RefreshCatalog(ctx, serviceToken)); err != nil {
			logger.Error("catalog refresh", slog.Any("error", err))
			return err
		}
		logger.Info("catalog refreshed")
		return nil
	}
}
