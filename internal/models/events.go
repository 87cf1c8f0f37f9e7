package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated          = "ORDER_CREATED"
	EventTypeOrderStatusChanged    = "ORDER_STATUS_CHANGED"
	EventTypeOrderCommented        = "ORDER_COMMENTED"
	EventTypeOrderRefundUpdated    = "ORDER_REFUND_UPDATED"
	EventTypeOrderIssuesUpdated    = "ORDER_ISSUES_UPDATED"
	EventTypeStoreCreated          = "STORE_CREATED"
	EventTypeStoreUpdated          = "STORE_UPDATED"
	EventTypeStoreDeleted          = "STORE_DELETED"
	EventTypeStoreDocumentUploaded = "STORE_DOCUMENT_UPLOADED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   uuid.UUID `json:"actor_id"`
}

// NewBaseEvent stamps a fresh event ID and time.
func NewBaseEvent(eventType string, actorID uuid.UUID) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		ActorID:   actorID,
	}
}

// OrderCreatedEvent published when an order is created
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	StoreID     uuid.UUID       `json:"store_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// OrderStatusChangedEvent published on every status update
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID     uuid.UUID      `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	StoreID     uuid.UUID      `json:"store_id"`
	Status      string         `json:"status"`
	Remark      string         `json:"remark,omitempty"`
	Lifecycle   LifecycleEvent `json:"lifecycle,omitempty"`
}

// OrderCommentedEvent published when a comment is appended
type OrderCommentedEvent struct {
	BaseEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	StoreID     uuid.UUID `json:"store_id"`
}

// OrderRefundUpdatedEvent published after a refund summary merge
type OrderRefundUpdatedEvent struct {
	BaseEvent
	OrderID       uuid.UUID     `json:"order_id"`
	OrderNumber   string        `json:"order_number"`
	StoreID       uuid.UUID     `json:"store_id"`
	RefundSummary RefundSummary `json:"refund_summary"`
}

// OrderIssuesUpdatedEvent published when issue tags change
type OrderIssuesUpdatedEvent struct {
	BaseEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	StoreID     uuid.UUID `json:"store_id"`
	Issues      []string  `json:"issues"`
}

// StoreEvent published on store create/update/delete
type StoreEvent struct {
	BaseEvent
	StoreID          uuid.UUID        `json:"store_id"`
	OwnerID          uuid.UUID        `json:"owner_id"`
	OnboardingStatus OnboardingStatus `json:"onboarding_status,omitempty"`
}

// StoreDocumentUploadedEvent published after a verification document upload
type StoreDocumentUploadedEvent struct {
	BaseEvent
	StoreID uuid.UUID `json:"store_id"`
	DocType string    `json:"doc_type"`
	URL     string    `json:"url"`
}
