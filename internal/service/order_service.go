package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/policy"
	"github.com/adityatechndevoops/OliveStore/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
)

// OrderOptions tunes OrderService.
type OrderOptions struct {
	MaxIDAttempts  int
	IdempotencyTTL time.Duration
}

// OrderService handles order business logic
type OrderService struct {
	orders      OrderRepository
	stores      StoreRepository
	events      EventPublisher
	idempotency IdempotencyStore
	opts        OrderOptions
	newOrderID  func() (string, error)
	now         func() time.Time
	logger      *zap.Logger
}

// NewOrderService creates a new order service. idempotency may be nil.
func NewOrderService(
	orders OrderRepository,
	stores StoreRepository,
	events EventPublisher,
	idempotency IdempotencyStore,
	opts OrderOptions,
) *OrderService {
	if opts.MaxIDAttempts < 1 {
		opts.MaxIDAttempts = 20
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}
	return &OrderService{
		orders:      orders,
		stores:      stores,
		events:      events,
		idempotency: idempotency,
		opts:        opts,
		newOrderID:  GenerateOrderID,
		now:         time.Now,
		logger:      util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	StoreID        uuid.UUID          `json:"storeId"`
	Customer       models.Customer    `json:"customer"`
	Items          []OrderItemRequest `json:"items"`
	TotalAmount    decimal.Decimal    `json:"totalAmount"`
	PaymentDetails PaymentRequest     `json:"paymentDetails"`
	IdempotencyKey string             `json:"idempotencyKey,omitempty"`
}

// OrderItemRequest represents an item in an order
type OrderItemRequest struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageURL  string          `json:"imageUrl"`
	Status    string          `json:"status"`
}

type PaymentRequest struct {
	Method        string `json:"method"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}

func (r *CreateOrderRequest) validate() error {
	if r.StoreID == uuid.Nil {
		return apperror.Validation("storeId is required")
	}
	r.Customer.Name = strings.TrimSpace(r.Customer.Name)
	r.Customer.PhoneNumber = strings.TrimSpace(r.Customer.PhoneNumber)
	if r.Customer.Name == "" || r.Customer.PhoneNumber == "" {
		return apperror.Validation("customer name and phoneNumber are required")
	}
	if len(r.Items) == 0 {
		return apperror.Validation("at least one item is required")
	}
	for i := range r.Items {
		item := &r.Items[i]
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return apperror.Validation(fmt.Sprintf("items[%d].name is required", i))
		}
		if item.Quantity < 1 {
			return apperror.Validation(fmt.Sprintf("items[%d].quantity must be at least 1", i))
		}
		if item.UnitPrice.IsNegative() {
			return apperror.Validation(fmt.Sprintf("items[%d].unitPrice must not be negative", i))
		}
		if item.Status != "" && !models.ItemStatus(item.Status).IsValid() {
			return apperror.Validation(fmt.Sprintf("items[%d].status %q is not valid", i, item.Status))
		}
	}
	if !r.TotalAmount.IsPositive() {
		return apperror.Validation("totalAmount must be greater than 0")
	}
	switch r.PaymentDetails.Method {
	case models.PaymentMethodCOD, models.PaymentMethodOnline:
	default:
		return apperror.Validation("paymentDetails.method must be COD or Online")
	}
	switch r.PaymentDetails.Status {
	case "", models.PaymentStatusPending, models.PaymentStatusSuccess, models.PaymentStatusFailed:
	default:
		return apperror.Validation("paymentDetails.status must be Pending, Success or Failed")
	}
	return nil
}

func (r *CreateOrderRequest) toOrder(now time.Time) *models.Order {
	items := make(models.OrderItems, len(r.Items))
	for i, it := range r.Items {
		status := models.ItemStatus(it.Status)
		if status == "" {
			status = models.ItemAccepted
		}
		items[i] = models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			ImageURL:  it.ImageURL,
			Status:    status,
		}
	}

	payment := models.PaymentStatus{
		Method:        r.PaymentDetails.Method,
		Status:        r.PaymentDetails.Status,
		TransactionID: r.PaymentDetails.TransactionID,
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}

	return &models.Order{
		StoreID:       r.StoreID,
		Customer:      r.Customer,
		Items:         items,
		TotalAmount:   r.TotalAmount,
		PaymentStatus: payment,
		OrderStatus:   models.OrderStatusCreated,
		OrderProgress: models.ProgressLog{{
			Status:    string(models.OrderStatusCreated),
			Timestamp: now,
			Remark:    "Order initiated",
		}},
		Comments: models.CommentLog{},
		Issues:   models.IssueList{},
	}
}

// CreateOrder validates the request, checks the caller owns the store and
// inserts the order under a freshly generated order ID.
func (s *OrderService) CreateOrder(ctx context.Context, p policy.Principal, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := req.validate(); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_request").Inc()
		return nil, err
	}

	store, err := s.stores.GetStoreByID(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.OrderCreate, store.OwnerID); err != nil {
		return nil, err
	}

	idemKey := ""
	if req.IdempotencyKey != "" && s.idempotency != nil {
		key := fmt.Sprintf("order:%s:%s", p.UserID, req.IdempotencyKey)
		existing, started, err := s.idempotency.BeginIdempotent(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("Idempotency check failed, continuing without it",
				zap.String("idempotency_key", req.IdempotencyKey), zap.Error(err))
		case !started && existing == "":
			return nil, apperror.Conflict("a request with this idempotency key is in progress")
		case !started:
			s.logger.Info("Duplicate order request detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("order_id", existing))
			id, err := uuid.Parse(existing)
			if err != nil {
				return nil, apperror.Internal(fmt.Errorf("corrupt idempotency record %q: %w", existing, err))
			}
			return s.orders.GetOrderByID(ctx, id)
		default:
			idemKey = key
		}
	}

	order := req.toOrder(s.now().UTC())
	if err := s.insertWithUniqueID(ctx, order); err != nil {
		if idemKey != "" {
			if abortErr := s.idempotency.AbortIdempotent(ctx, idemKey); abortErr != nil {
				s.logger.Warn("Failed to release idempotency key", zap.Error(abortErr))
			}
		}
		return nil, err
	}

	if idemKey != "" {
		if err := s.idempotency.CompleteIdempotent(ctx, idemKey, order.ID.String(), s.opts.IdempotencyTTL); err != nil {
			s.logger.Warn("Failed to store idempotency result", zap.Error(err))
		}
	}

	util.OrdersCreatedTotal.Inc()
	util.LoggerFromContext(ctx).Info("Order created",
		zap.String("order_id", order.OrderID),
		zap.String("store_id", order.StoreID.String()))

	event := &models.OrderCreatedEvent{
		BaseEvent:   models.NewBaseEvent(models.EventTypeOrderCreated, p.UserID),
		OrderID:     order.ID,
		OrderNumber: order.OrderID,
		StoreID:     order.StoreID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
	}
	if err := s.events.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order, nil
}

// insertWithUniqueID retries on order ID collisions, bounded by MaxIDAttempts.
func (s *OrderService) insertWithUniqueID(ctx context.Context, order *models.Order) error {
	for attempt := 1; attempt <= s.opts.MaxIDAttempts; attempt++ {
		id, err := s.newOrderID()
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("id_generation").Inc()
			return apperror.Internal(err)
		}
		order.OrderID = id

		err = s.orders.CreateOrder(ctx, order)
		if errors.Is(err, apperror.ErrDuplicateOrderID) {
			util.OrderIDCollisionsTotal.Inc()
			s.logger.Debug("Order ID collision, regenerating",
				zap.String("order_id", id), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
			return err
		}
		return nil
	}

	util.OrdersFailedTotal.WithLabelValues("id_exhausted").Inc()
	return apperror.Internal(fmt.Errorf("no unique order id after %d attempts", s.opts.MaxIDAttempts))
}

// storeOwner reads the owner of storeID from persistence.
func (s *OrderService) storeOwner(ctx context.Context, storeID uuid.UUID) (uuid.UUID, error) {
	store, err := s.stores.GetStoreByID(ctx, storeID)
	if err != nil {
		return uuid.Nil, err
	}
	return store.OwnerID, nil
}

// loadAuthorized fetches an order and authorizes perm against its store owner.
func (s *OrderService) loadAuthorized(ctx context.Context, p policy.Principal, perm policy.Permission, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.storeOwner(ctx, order.StoreID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, perm, owner); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, p policy.Principal, id uuid.UUID) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	return s.loadAuthorized(ctx, p, policy.OrderRead, id)
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Remark string `json:"remark"`
}

// UpdateStatus sets a new status, appends it to the progress log and stamps
// the lifecycle timestamp the status maps to, if any.
func (s *OrderService) UpdateStatus(ctx context.Context, p policy.Principal, id uuid.UUID, req *UpdateStatusRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	status := strings.TrimSpace(req.Status)
	if status == "" {
		return nil, apperror.Validation("status is required")
	}

	if _, err := s.loadAuthorized(ctx, p, policy.OrderUpdateStatus, id); err != nil {
		return nil, err
	}

	change := models.NewStatusChange(status, strings.TrimSpace(req.Remark), s.now().UTC())
	order, err := s.orders.ApplyStatusChange(ctx, id, change)
	if err != nil {
		return nil, err
	}

	label := string(change.Event)
	if change.Event == models.EventNone {
		label = "none"
	}
	util.OrderStatusChangesTotal.WithLabelValues(label).Inc()

	event := &models.OrderStatusChangedEvent{
		BaseEvent:   models.NewBaseEvent(models.EventTypeOrderStatusChanged, p.UserID),
		OrderID:     order.ID,
		OrderNumber: order.OrderID,
		StoreID:     order.StoreID,
		Status:      status,
		Remark:      change.Entry.Remark,
		Lifecycle:   change.Event,
	}
	if err := s.events.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return order, nil
}

type ListOrdersQuery struct {
	Status  string
	StoreID *uuid.UUID
	ListQuery
}

// ListOrders lists orders visible to the caller. Merchants only see orders of
// stores they own.
func (s *OrderService) ListOrders(ctx context.Context, p policy.Principal, q ListOrdersQuery) (*models.Page[models.Order], error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	filter := models.OrderFilter{
		Status:     strings.TrimSpace(q.Status),
		StoreID:    q.StoreID,
		Pagination: q.recentOrDefault(),
	}

	switch policy.ScopeOf(p, policy.OrderList) {
	case policy.ScopeAll:
	case policy.ScopeOwn:
		owned, err := s.ownedStores(ctx, p, q.StoreID)
		if err != nil {
			return nil, err
		}
		filter.StoreIDs = owned
	default:
		return nil, policy.Require(p, policy.OrderList)
	}

	return s.list(ctx, filter)
}

// ListMyStoreOrders lists orders of the caller's own stores. A merchant
// without stores gets an empty page.
func (s *OrderService) ListMyStoreOrders(ctx context.Context, p policy.Principal, q ListOrdersQuery) (*models.Page[models.Order], error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListMyStoreOrders")
	defer span.End()

	if err := policy.Require(p, policy.OrderListMine); err != nil {
		return nil, err
	}

	owned, err := s.ownedStores(ctx, p, q.StoreID)
	if err != nil {
		return nil, err
	}

	return s.list(ctx, models.OrderFilter{
		Status:     strings.TrimSpace(q.Status),
		StoreID:    q.StoreID,
		StoreIDs:   owned,
		Pagination: q.recentOrDefault(),
	})
}

// ownedStores returns the caller's store IDs, rejecting a storeID filter that
// points outside them.
func (s *OrderService) ownedStores(ctx context.Context, p policy.Principal, storeID *uuid.UUID) ([]uuid.UUID, error) {
	owned, err := s.stores.StoreIDsByOwner(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if storeID != nil && !containsID(owned, *storeID) {
		return nil, apperror.Forbidden("you do not own this store")
	}
	return owned, nil
}

func (s *OrderService) list(ctx context.Context, filter models.OrderFilter) (*models.Page[models.Order], error) {
	orders, total, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newPage(orders, filter.Pagination, total), nil
}

type CommentRequest struct {
	Comment string `json:"comment"`
}

// AddComment appends a comment by the caller.
func (s *OrderService) AddComment(ctx context.Context, p policy.Principal, id uuid.UUID, req *CommentRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.AddComment")
	defer span.End()

	if err := policy.Authorize(p, policy.OrderComment, uuid.Nil); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Comment)
	if text == "" {
		return nil, apperror.Validation("comment is required")
	}

	order, err := s.orders.AppendComment(ctx, id, models.Comment{
		User:      p.UserID,
		Comment:   text,
		Timestamp: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	util.OrderCommentsTotal.Inc()

	event := &models.OrderCommentedEvent{
		BaseEvent:   models.NewBaseEvent(models.EventTypeOrderCommented, p.UserID),
		OrderID:     order.ID,
		OrderNumber: order.OrderID,
		StoreID:     order.StoreID,
	}
	if err := s.events.PublishOrderCommented(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCommented event", zap.Error(err))
	}

	return order, nil
}

// UpdateRefundSummary merges the provided refund fields into the order.
func (s *OrderService) UpdateRefundSummary(ctx context.Context, p policy.Principal, id uuid.UUID, patch models.RefundSummaryPatch) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateRefundSummary")
	defer span.End()

	if err := policy.Authorize(p, policy.OrderUpdateRefund, uuid.Nil); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, apperror.Validation("at least one refund field is required")
	}
	if err := patch.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	order, err := s.orders.MergeRefundSummary(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	util.RefundUpdatesTotal.Inc()

	event := &models.OrderRefundUpdatedEvent{
		BaseEvent:     models.NewBaseEvent(models.EventTypeOrderRefundUpdated, p.UserID),
		OrderID:       order.ID,
		OrderNumber:   order.OrderID,
		StoreID:       order.StoreID,
		RefundSummary: order.RefundSummary,
	}
	if err := s.events.PublishOrderRefundUpdated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderRefundUpdated event", zap.Error(err))
	}

	return order, nil
}

type UpdateIssuesRequest struct {
	Issues      []string `json:"issues"`
	ComplaintID *string  `json:"complaintId"`
}

// UpdateIssues replaces the order's issue tags.
func (s *OrderService) UpdateIssues(ctx context.Context, p policy.Principal, id uuid.UUID, req *UpdateIssuesRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateIssues")
	defer span.End()

	if err := policy.Authorize(p, policy.OrderUpdateIssues, uuid.Nil); err != nil {
		return nil, err
	}

	issues := models.IssueList{}
	seen := make(map[string]struct{}, len(req.Issues))
	for _, tag := range req.Issues {
		tag = strings.TrimSpace(tag)
		if !models.IsIssueTag(tag) {
			return nil, apperror.Validation(fmt.Sprintf("unknown issue %q", tag))
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		issues = append(issues, tag)
	}

	complaintID := null.StringFromPtr(trimmed(req.ComplaintID))

	order, err := s.orders.SetIssues(ctx, id, issues, complaintID)
	if err != nil {
		return nil, err
	}

	event := &models.OrderIssuesUpdatedEvent{
		BaseEvent:   models.NewBaseEvent(models.EventTypeOrderIssuesUpdated, p.UserID),
		OrderID:     order.ID,
		OrderNumber: order.OrderID,
		StoreID:     order.StoreID,
		Issues:      order.Issues,
	}
	if err := s.events.PublishOrderIssuesUpdated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderIssuesUpdated event", zap.Error(err))
	}

	return order, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
