package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/inventorypro/inventorypro/internal/jobs"
	"github.com/inventorypro/inventorypro/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeLowStockAlert dispatches a composed low-stock alert.
	TaskTypeLowStockAlert = "alerts:lowstock"
	// TaskTypeIdempotencyCleanup prunes expired idempotency keys.
	TaskTypeIdempotencyCleanup = "ledger:idempotency_cleanup"
)

// LowStockAlertPayload carries a composed alert to the dispatcher.
type LowStockAlertPayload struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// NewLowStockAlertTask constructs an Asynq task.
func NewLowStockAlertTask(payload LowStockAlertPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLowStockAlert, data), nil
}

// Dispatcher delivers a queued alert to its recipient. The default
// implementation only logs; a mail or chat integration can replace it
// without touching the queue plumbing.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload LowStockAlertPayload) error
}

// LogDispatcher writes alerts to the structured log instead of delivering
// them anywhere.
type LogDispatcher struct {
	Logger *slog.Logger
}

// Dispatch implements Dispatcher.
func (d LogDispatcher) Dispatch(_ context.Context, payload LowStockAlertPayload) error {
	d.Logger.Info("low stock alert",
		"recipient", payload.Recipient,
		"subject", payload.Subject,
		"body", payload.Body)
	return nil
}

// NewLowStockAlertHandler processes TaskTypeLowStockAlert tasks through the
// given dispatcher.
func NewLowStockAlertHandler(dispatcher Dispatcher, logger *slog.Logger) asynq.HandlerFunc {
	metrics := jobmetrics.NewMetrics(nil)
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskTypeLowStockAlert)
		var payload LowStockAlertPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Warn("malformed low stock payload", "error", err)
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
		return tracker.End(dispatcher.Dispatch(ctx, payload))
	}
}

// NewIdempotencyCleanupTask constructs the cron task. It carries no payload.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeIdempotencyCleanup, nil)
}

// NewIdempotencyCleanupHandler prunes idempotency keys older than retention.
func NewIdempotencyCleanupHandler(store *shared.IdempotencyStore, retention time.Duration, logger *slog.Logger) asynq.HandlerFunc {
	metrics := jobmetrics.NewMetrics(nil)
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track(TaskTypeIdempotencyCleanup)
		if err := store.Cleanup(ctx, retention); err != nil {
			logger.Error("idempotency cleanup", "error", err)
			return tracker.End(err)
		}
		logger.Info("idempotency cleanup done", "retention", retention.String())
		return tracker.End(nil)
	}
}
