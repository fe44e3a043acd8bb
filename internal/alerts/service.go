package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NoLowStockMessage is returned when nothing qualifies for an alert.
const NoLowStockMessage = "No low-stock items found"

// ErrNoRecipient signals that neither the request nor the configuration
// named someone to notify.
var ErrNoRecipient = errors.New("no alert recipient configured")

// Source lists the products that qualify for an alert.
type Source interface {
	LowStock(ctx context.Context) ([]LowStockProduct, error)
}

// Enqueuer hands a composed alert to the background queue. Delivery happens
// out of band; triggering only guarantees the task was accepted.
type Enqueuer interface {
	EnqueueLowStockAlert(ctx context.Context, recipient, subject, body string) error
}

// Config carries the alert defaults.
type Config struct {
	DefaultRecipient string
	Subject          string
}

// TriggerResult reports what a trigger request did.
type TriggerResult struct {
	Queued  bool   `json:"queued"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// Service composes and queues low-stock alerts.
type Service struct {
	source  Source
	queue   Enqueuer
	cfg     Config
	printer *message.Printer
}

func NewService(source Source, queue Enqueuer, cfg Config) *Service {
	if cfg.Subject == "" {
		cfg.Subject = "Low stock alert"
	}
	return &Service{
		source:  source,
		queue:   queue,
		cfg:     cfg,
		printer: message.NewPrinter(language.English),
	}
}

// Trigger re-reads the product state and, when anything is at or below its
// threshold, queues one alert for the recipient. An empty recipient falls
// back to the configured default.
func (s *Service) Trigger(ctx context.Context, recipient string) (TriggerResult, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		recipient = s.cfg.DefaultRecipient
	}
	if recipient == "" {
		return TriggerResult{}, ErrNoRecipient
	}

	items, err := s.source.LowStock(ctx)
	if err != nil {
		return TriggerResult{}, err
	}
	if len(items) == 0 {
		return TriggerResult{Message: NoLowStockMessage}, nil
	}

	body := s.compose(items)
	if err := s.queue.EnqueueLowStockAlert(ctx, recipient, s.cfg.Subject, body); err != nil {
		return TriggerResult{}, fmt.Errorf("queue alert: %w", err)
	}
	return TriggerResult{
		Queued:  true,
		Count:   len(items),
		Message: s.printer.Sprintf("Alert queued for %d product(s)", len(items)),
	}, nil
}

func (s *Service) compose(items []LowStockProduct) string {
	var b strings.Builder
	s.printer.Fprintf(&b, "The following %d product(s) need restocking:\n\n", len(items))
	for _, it := range items {
		label := it.Name
		if it.SKU != "" {
			label = fmt.Sprintf("%s (%s)", it.Name, it.SKU)
		}
		if it.OutOfStock() {
			s.printer.Fprintf(&b, "- %s: OUT OF STOCK (threshold %d)\n", label, it.LowStockThreshold)
			continue
		}
		s.printer.Fprintf(&b, "- %s: %d remaining (threshold %d)\n", label, it.StockQuantity, it.LowStockThreshold)
	}
	return b.String()
}
