package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher is the producer side EventPublisher writes to.
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher handles publishing domain events. Order events go to the
// order topic keyed by order ID, store events to the store topic keyed by
// store ID.
type EventPublisher struct {
	orders Publisher
	stores Publisher
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(orders, stores Publisher) *EventPublisher {
	return &EventPublisher{orders: orders, stores: stores}
}

func (ep *EventPublisher) publish(ctx context.Context, p Publisher, key, eventType string, event interface{}) error {
	err := p.PublishEvent(ctx, key, event)
	result := "ok"
	if err != nil {
		result = "error"
	}
	util.EventsPublishedTotal.WithLabelValues(eventType, result).Inc()
	return err
}

// PublishOrderCreated publishes OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.publish(ctx, ep.orders, event.OrderID.String(), event.EventType, event)
}

// PublishOrderStatusChanged publishes OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return ep.publish(ctx, ep.orders, event.OrderID.String(), event.EventType, event)
}

// PublishOrderCommented publishes OrderCommented event
func (ep *EventPublisher) PublishOrderCommented(ctx context.Context, event *models.OrderCommentedEvent) error {
	return ep.publish(ctx, ep.orders, event.OrderID.String(), event.EventType, event)
}

// PublishOrderRefundUpdated publishes OrderRefundUpdated event
func (ep *EventPublisher) PublishOrderRefundUpdated(ctx context.Context, event *models.OrderRefundUpdatedEvent) error {
	return ep.publish(ctx, ep.orders, event.OrderID.String(), event.EventType, event)
}

// PublishOrderIssuesUpdated publishes OrderIssuesUpdated event
func (ep *EventPublisher) PublishOrderIssuesUpdated(ctx context.Context, event *models.OrderIssuesUpdatedEvent) error {
	return ep.publish(ctx, ep.orders, event.OrderID.String(), event.EventType, event)
}

// PublishStoreEvent publishes a store created/updated/deleted event
func (ep *EventPublisher) PublishStoreEvent(ctx context.Context, event *models.StoreEvent) error {
	return ep.publish(ctx, ep.stores, event.StoreID.String(), event.EventType, event)
}

// PublishStoreDocumentUploaded publishes StoreDocumentUploaded event
func (ep *EventPublisher) PublishStoreDocumentUploaded(ctx context.Context, event *models.StoreDocumentUploadedEvent) error {
	return ep.publish(ctx, ep.stores, event.StoreID.String(), event.EventType, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onOrderStatusChanged    func(context.Context, *models.OrderStatusChangedEvent) error
	onStoreDocumentUploaded func(context.Context, *models.StoreDocumentUploadedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderStatusChanged registers a handler for OrderStatusChanged events
func (eh *EventHandler) OnOrderStatusChanged(handler func(context.Context, *models.OrderStatusChangedEvent) error) {
	eh.onOrderStatusChanged = handler
}

// OnStoreDocumentUploaded registers a handler for StoreDocumentUploaded events
func (eh *EventHandler) OnStoreDocumentUploaded(handler func(context.Context, *models.StoreDocumentUploadedEvent) error) {
	eh.onStoreDocumentUploaded = handler
}

// DecodeBase reads the common envelope of a message.
func DecodeBase(msg kafka.Message) (*models.BaseEvent, error) {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal base event: %w", err)
	}
	return &baseEvent, nil
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	baseEvent, err := DecodeBase(msg)
	if err != nil {
		return err
	}

	util.GetLogger().Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeOrderStatusChanged:
		if eh.onOrderStatusChanged != nil {
			var event models.OrderStatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderStatusChanged event: %w", err)
			}
			return eh.onOrderStatusChanged(ctx, &event)
		}

	case models.EventTypeStoreDocumentUploaded:
		if eh.onStoreDocumentUploaded != nil {
			var event models.StoreDocumentUploadedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal StoreDocumentUploaded event: %w", err)
			}
			return eh.onStoreDocumentUploaded(ctx, &event)
		}
	}

	return nil
}
