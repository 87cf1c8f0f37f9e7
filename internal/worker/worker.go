package worker

import (
	"context"
	"fmt"

	"github.com/adityatechndevoops/OliveStore/internal/broker"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer is the message source a worker drains.
type Consumer interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// ProcessedEvents records which event IDs were already handled.
type ProcessedEvents interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// StatsInvalidator drops cached dashboard stats.
type StatsInvalidator interface {
	InvalidateDashboardStats(ctx context.Context) error
}

// EventWorker consumes order and store events. Every new event invalidates
// the dashboard cache; redelivered events are skipped.
type EventWorker struct {
	consumers    []Consumer
	processed    ProcessedEvents
	cache        StatsInvalidator
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewEventWorker creates a worker reading from every given consumer
func NewEventWorker(processed ProcessedEvents, cache StatsInvalidator, consumers ...Consumer) *EventWorker {
	w := &EventWorker{
		consumers:    consumers,
		processed:    processed,
		cache:        cache,
		eventHandler: broker.NewEventHandler(),
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnOrderStatusChanged(w.logStatusChange)
	w.eventHandler.OnStoreDocumentUploaded(w.logDocumentUpload)

	return w
}

// Start runs one consume loop per consumer and blocks until all stop.
func (w *EventWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting event worker", zap.Int("consumers", len(w.consumers)))

	errs := make(chan error, len(w.consumers))
	for _, c := range w.consumers {
		go func(c Consumer) {
			errs <- c.StartConsuming(ctx, w.HandleMessage)
		}(c)
	}

	var first error
	for range w.consumers {
		if err := <-errs; err != nil && err != context.Canceled && first == nil {
			first = err
		}
	}
	return first
}

// Stop closes every consumer
func (w *EventWorker) Stop() error {
	w.logger.Info("Stopping event worker")
	var first error
	for _, c := range w.consumers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// HandleMessage processes a single message. An error leaves the message
// uncommitted so it is fetched again.
func (w *EventWorker) HandleMessage(ctx context.Context, msg kafka.Message) error {
	base, err := broker.DecodeBase(msg)
	if err != nil {
		// Malformed payloads can never succeed; drop them.
		w.logger.Warn("Skipping undecodable event", zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil
	}
	if base.EventID == "" {
		w.logger.Warn("Skipping event without id", zap.String("type", base.EventType))
		return nil
	}

	done, err := w.processed.IsEventProcessed(ctx, base.EventID)
	if err != nil {
		return fmt.Errorf("check processed event: %w", err)
	}
	if done {
		w.logger.Debug("Event already processed", zap.String("id", base.EventID))
		return nil
	}

	if err := w.eventHandler.HandleMessage(ctx, msg); err != nil {
		return err
	}

	if err := w.cache.InvalidateDashboardStats(ctx); err != nil {
		w.logger.Warn("Failed to invalidate dashboard cache", zap.Error(err))
	}

	if err := w.processed.MarkEventProcessed(ctx, base.EventID, base.EventType); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}

	util.EventsConsumedTotal.WithLabelValues(base.EventType).Inc()
	return nil
}

func (w *EventWorker) logStatusChange(_ context.Context, event *models.OrderStatusChangedEvent) error {
	w.logger.Info("Order status changed",
		zap.String("order_id", event.OrderID.String()),
		zap.String("status", event.Status),
		zap.String("lifecycle", string(event.Lifecycle)))
	return nil
}

func (w *EventWorker) logDocumentUpload(_ context.Context, event *models.StoreDocumentUploadedEvent) error {
	w.logger.Info("Store document uploaded",
		zap.String("store_id", event.StoreID.String()),
		zap.String("doc_type", event.DocType))
	return nil
}
