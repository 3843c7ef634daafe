package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/stockdesk/internal/jobs"
	"github.com/odyssey-erp/stockdesk/internal/lookups"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Lookups is the part of the lookup service the jobs drive.
type Lookups interface {
	Dashboard(ctx context.Context) (lookups.Dashboard, error)
	Invalidate(ctx context.Context)
}

// WarmupJob pre-populates the dashboard lookup cache so the first page view
// after a deploy or a mutation does not wait on the backend.
type WarmupJob struct {
	Lookups Lookups
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewWarmupJob wires dependencies for the warmup handler.
func NewWarmupJob(svc Lookups, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmupJob {
	return &WarmupJob{Lookups: svc, Logger: logger, Metrics: metrics, Timeout: 30 * time.Second}
}

// Handle processes TaskLookupsWarmup tasks.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Lookups == nil {
		return errors.New("lookups warmup: handler not configured")
	}
	var payload WarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(TaskLookupsWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := time.Now()
	if payload.Invalidate {
		j.Lookups.Invalidate(ctx)
	}
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	dashboard, err := j.Lookups.Dashboard(ctx)
	warmed := countWarmed(dashboard)
	j.metrics().AddWarmed(warmed)
	if err != nil {
		logger.Error("warm lookups", slog.Int("warmed", warmed), slog.Any("error", err))
		return err
	}
	logger.Info("completed lookups warmup", slog.Int("warmed", warmed), slog.Duration("duration", time.Since(start)))
	return nil
}

// HandleInvalidate processes TaskLookupsInvalidate tasks.
func (j *WarmupJob) HandleInvalidate(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Lookups == nil {
		return errors.New("lookups invalidate: handler not configured")
	}
	tracker := j.metrics().Track(TaskLookupsInvalidate)
	j.Lookups.Invalidate(ctx)
	return tracker.End(nil)
}

func countWarmed(d lookups.Dashboard) int {
	n := 0
	if len(d.Stock.Parts) > 0 {
		n++
	}
	if d.RecentPurchases != nil {
		n++
	}
	if d.RecentSales != nil {
		n++
	}
	if d.CategoryCounts != nil {
		n++
	}
	return n
}

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLookupsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskLookupsWarmup))
}

func (j *WarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
