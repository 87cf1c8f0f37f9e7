package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// OrderStatus is the display status of an order. The constants form the
// documented lifecycle; updates may carry free-text values outside it.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "Created"
	OrderStatusApproved  OrderStatus = "Approved"
	OrderStatusBilled    OrderStatus = "Billed"
	OrderStatusEnroute   OrderStatus = "Enroute"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
	OrderStatusReturned  OrderStatus = "Returned"
)

// IsKnown reports whether s is one of the lifecycle constants.
func (s OrderStatus) IsKnown() bool {
	switch s {
	case OrderStatusCreated, OrderStatusApproved, OrderStatusBilled, OrderStatusEnroute,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

// LiveOrderStatuses are the statuses of orders still in flight.
var LiveOrderStatuses = []OrderStatus{
	OrderStatusCreated, OrderStatusApproved, OrderStatusBilled, OrderStatusEnroute,
}

// LifecycleEvent is a status change that stamps an order timestamp.
type LifecycleEvent string

const (
	EventNone      LifecycleEvent = ""
	EventAccepted  LifecycleEvent = "accepted"
	EventPrepared  LifecycleEvent = "prepared"
	EventPickedUp  LifecycleEvent = "picked_up"
	EventDelivered LifecycleEvent = "delivered"
)

var lifecycleEvents = map[string]LifecycleEvent{
	"Accepted":         EventAccepted,
	"Preparing":        EventPrepared,
	"Out for Delivery": EventPickedUp,
	"Delivered":        EventDelivered,
}

// ClassifyStatus maps a status string to the lifecycle event it triggers.
// Unlisted statuses are passthrough and return EventNone.
func ClassifyStatus(status string) LifecycleEvent {
	return lifecycleEvents[status]
}

// OrderTimestamps records when lifecycle events happened.
type OrderTimestamps struct {
	AcceptedAt  null.Time `db:"accepted_at" json:"acceptedAt"`
	PreparedAt  null.Time `db:"prepared_at" json:"preparedAt"`
	PickedUpAt  null.Time `db:"picked_up_at" json:"pickedUpAt"`
	DeliveredAt null.Time `db:"delivered_at" json:"deliveredAt"`
}

// Stamp sets the field belonging to ev. EventNone is a no-op.
func (t *OrderTimestamps) Stamp(ev LifecycleEvent, at time.Time) {
	switch ev {
	case EventAccepted:
		t.AcceptedAt = null.TimeFrom(at)
	case EventPrepared:
		t.PreparedAt = null.TimeFrom(at)
	case EventPickedUp:
		t.PickedUpAt = null.TimeFrom(at)
	case EventDelivered:
		t.DeliveredAt = null.TimeFrom(at)
	}
}

type CustomerAddress struct {
	Street      string    `json:"street,omitempty"`
	City        string    `json:"city,omitempty"`
	Pincode     string    `json:"pincode,omitempty"`
	Coordinates []float64 `json:"coordinates,omitempty"`
}

type Customer struct {
	Name        string          `json:"name"`
	PhoneNumber string          `json:"phoneNumber"`
	Address     CustomerAddress `json:"address"`
}

func (c Customer) Value() (driver.Value, error) { return jsonValue(c) }
func (c *Customer) Scan(src interface{}) error  { return jsonScan(src, c) }

// ItemStatus is the per-item fulfilment status.
type ItemStatus string

const (
	ItemAccepted ItemStatus = "Accepted"
	ItemRejected ItemStatus = "Rejected"
	ItemRefunded ItemStatus = "Refunded"
	ItemDamaged  ItemStatus = "Damaged"
	ItemMissing  ItemStatus = "Missing"
)

func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemAccepted, ItemRejected, ItemRefunded, ItemDamaged, ItemMissing:
		return true
	}
	return false
}

type OrderItem struct {
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	Status    ItemStatus      `json:"status"`
}

type OrderItems []OrderItem

func (i OrderItems) Value() (driver.Value, error) {
	if i == nil {
		i = OrderItems{}
	}
	return jsonValue(i)
}
func (i *OrderItems) Scan(src interface{}) error { return jsonScan(src, i) }

// Payment methods and statuses
const (
	PaymentMethodCOD    = "COD"
	PaymentMethodOnline = "Online"

	PaymentStatusPending = "Pending"
	PaymentStatusSuccess = "Success"
	PaymentStatusFailed  = "Failed"
)

type PaymentStatus struct {
	Method        string `json:"method"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId,omitempty"`
}

func (p PaymentStatus) Value() (driver.Value, error) { return jsonValue(p) }
func (p *PaymentStatus) Scan(src interface{}) error  { return jsonScan(src, p) }

// ProgressEntry is one line of the order timeline.
type ProgressEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Remark    string    `json:"remark,omitempty"`
}

// ProgressLog is append-only.
type ProgressLog []ProgressEntry

func (p ProgressLog) Value() (driver.Value, error) {
	if p == nil {
		p = ProgressLog{}
	}
	return jsonValue(p)
}
func (p *ProgressLog) Scan(src interface{}) error { return jsonScan(src, p) }

type Comment struct {
	User      uuid.UUID `json:"user"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// CommentLog is append-only.
type CommentLog []Comment

func (c CommentLog) Value() (driver.Value, error) {
	if c == nil {
		c = CommentLog{}
	}
	return jsonValue(c)
}
func (c *CommentLog) Scan(src interface{}) error { return jsonScan(src, c) }

// Issue tags
const (
	IssueQuality             = "Quality Issue"
	IssueMissingItem         = "Missing Item"
	IssueExpiredItem         = "Expired Item"
	IssueWrongItem           = "Wrong Item"
	IssueExpectationMismatch = "Expectation Mismatch"
	IssueDamagedItem         = "Damaged Item"
	IssueHandlingCharge      = "Handling Charge"
	IssuePriceMismatch       = "Price Mismatch"
	IssuePackaging           = "Packaging Issue"
	IssueOrderedByMistake    = "Ordered By Mistake"
	IssueDelightResolution   = "Delight Resolution"
	IssuePOP                 = "POP Issue"
	IssueOther               = "Other"
)

var issueTags = map[string]struct{}{
	IssueQuality: {}, IssueMissingItem: {}, IssueExpiredItem: {}, IssueWrongItem: {},
	IssueExpectationMismatch: {}, IssueDamagedItem: {}, IssueHandlingCharge: {},
	IssuePriceMismatch: {}, IssuePackaging: {}, IssueOrderedByMistake: {},
	IssueDelightResolution: {}, IssuePOP: {}, IssueOther: {},
}

// IsIssueTag reports whether tag is a predefined issue category.
func IsIssueTag(tag string) bool {
	_, ok := issueTags[tag]
	return ok
}

type IssueList []string

func (l IssueList) Value() (driver.Value, error) {
	if l == nil {
		l = IssueList{}
	}
	return jsonValue(l)
}
func (l *IssueList) Scan(src interface{}) error { return jsonScan(src, l) }

// RefundSummary aggregates post-delivery adjustments.
type RefundSummary struct {
	PostDeliveryRefunds decimal.Decimal `json:"postDeliveryRefunds"`
	TotalRefund         decimal.Decimal `json:"totalRefund"`
	ResolvedIssues      int             `json:"resolvedIssues"`
	RottenItemCount     int             `json:"rottenItemCount"`
	DamagedItemCount    int             `json:"damagedItemCount"`
}

func (r RefundSummary) Value() (driver.Value, error) { return jsonValue(r) }
func (r *RefundSummary) Scan(src interface{}) error  { return jsonScan(src, r) }

// RefundSummaryPatch holds the fields of a partial refund update; nil means
// "leave unchanged".
type RefundSummaryPatch struct {
	PostDeliveryRefunds *decimal.Decimal `json:"postDeliveryRefunds,omitempty"`
	TotalRefund         *decimal.Decimal `json:"totalRefund,omitempty"`
	ResolvedIssues      *int             `json:"resolvedIssues,omitempty"`
	RottenItemCount     *int             `json:"rottenItemCount,omitempty"`
	DamagedItemCount    *int             `json:"damagedItemCount,omitempty"`
}

// IsEmpty reports whether no field is set.
func (p RefundSummaryPatch) IsEmpty() bool {
	return p.PostDeliveryRefunds == nil && p.TotalRefund == nil && p.ResolvedIssues == nil &&
		p.RottenItemCount == nil && p.DamagedItemCount == nil
}

// Validate rejects negative amounts and counts.
func (p RefundSummaryPatch) Validate() error {
	for name, d := range map[string]*decimal.Decimal{
		"postDeliveryRefunds": p.PostDeliveryRefunds,
		"totalRefund":         p.TotalRefund,
	} {
		if d != nil && d.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	for name, n := range map[string]*int{
		"resolvedIssues":   p.ResolvedIssues,
		"rottenItemCount":  p.RottenItemCount,
		"damagedItemCount": p.DamagedItemCount,
	} {
		if n != nil && *n < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

// Apply returns s with every set field of p overwritten.
func (p RefundSummaryPatch) Apply(s RefundSummary) RefundSummary {
	if p.PostDeliveryRefunds != nil {
		s.PostDeliveryRefunds = *p.PostDeliveryRefunds
	}
	if p.TotalRefund != nil {
		s.TotalRefund = *p.TotalRefund
	}
	if p.ResolvedIssues != nil {
		s.ResolvedIssues = *p.ResolvedIssues
	}
	if p.RottenItemCount != nil {
		s.RottenItemCount = *p.RottenItemCount
	}
	if p.DamagedItemCount != nil {
		s.DamagedItemCount = *p.DamagedItemCount
	}
	return s
}

// Order represents a customer order placed with a store
type Order struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	OrderID         string          `db:"order_id" json:"orderId"`
	StoreID         uuid.UUID       `db:"store_id" json:"store"`
	Customer        Customer        `db:"customer" json:"customer"`
	Items           OrderItems      `db:"items" json:"items"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"totalAmount"`
	PaymentStatus   PaymentStatus   `db:"payment_status" json:"paymentStatus"`
	OrderStatus     OrderStatus     `db:"order_status" json:"orderStatus"`
	OrderProgress   ProgressLog     `db:"order_progress" json:"orderProgress"`
	Comments        CommentLog      `db:"comments" json:"comments"`
	Issues          IssueList       `db:"issues" json:"issues"`
	RefundSummary   RefundSummary   `db:"refund_summary" json:"refundSummary"`
	ComplaintID     null.String     `db:"complaint_id" json:"complaintId"`
	OrderTimestamps `json:"timestamps"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// StatusChange is one applied status update: the new status, its progress
// entry and the lifecycle event it triggered.
type StatusChange struct {
	Status OrderStatus
	Entry  ProgressEntry
	Event  LifecycleEvent
}

// NewStatusChange classifies status and builds the progress entry for it.
func NewStatusChange(status, remark string, at time.Time) StatusChange {
	return StatusChange{
		Status: OrderStatus(status),
		Entry:  ProgressEntry{Status: status, Timestamp: at, Remark: remark},
		Event:  ClassifyStatus(status),
	}
}

// ApplyTo mutates o in memory the way persistence applies the change.
func (c StatusChange) ApplyTo(o *Order) {
	o.OrderStatus = c.Status
	o.OrderProgress = append(o.OrderProgress, c.Entry)
	o.OrderTimestamps.Stamp(c.Event, c.Entry.Timestamp)
	o.UpdatedAt = c.Entry.Timestamp
}

// OrderFilter narrows order listings. A non-nil StoreIDs restricts the
// result to those stores, an empty slice matches nothing.
type OrderFilter struct {
	Status   string
	StoreID  *uuid.UUID
	StoreIDs []uuid.UUID
	Pagination
}
