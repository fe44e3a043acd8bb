package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
)

type captureDispatcher struct {
	last  LowStockAlertPayload
	calls int
	err   error
}

func (d *captureDispatcher) Dispatch(_ context.Context, payload LowStockAlertPayload) error {
	d.calls++
	d.last = payload
	return d.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLowStockAlertHandlerDispatchesPayload(t *testing.T) {
	dispatcher := &captureDispatcher{}
	handler := NewLowStockAlertHandler(dispatcher, discardLogger())

	task, err := NewLowStockAlertTask(LowStockAlertPayload{
		Recipient: "ops@example.com",
		Subject:   "Low stock alert",
		Body:      "- Widget: 2 remaining (threshold 5)",
	})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	if err := handler(context.Background(), task); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if dispatcher.calls != 1 {
		t.Fatalf("expected 1 dispatch, got %d", dispatcher.calls)
	}
	if dispatcher.last.Recipient != "ops@example.com" {
		t.Fatalf("unexpected recipient %q", dispatcher.last.Recipient)
	}
}

func TestLowStockAlertHandlerSkipsMalformedPayload(t *testing.T) {
	dispatcher := &captureDispatcher{}
	handler := NewLowStockAlertHandler(dispatcher, discardLogger())

	err := handler(context.Background(), asynq.NewTask(TaskTypeLowStockAlert, []byte("{not json")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	if dispatcher.calls != 0 {
		t.Fatalf("dispatcher should not run on malformed payload")
	}
}
