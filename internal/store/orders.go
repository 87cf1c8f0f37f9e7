package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adityatechndevoops/OliveStore/internal/models"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// CreateOrder inserts a new order. A taken order_id surfaces as
// apperror.ErrDuplicateOrderID so the caller can pick another one.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	query := `
		INSERT INTO orders (
			id, order_id, store_id, customer, items, total_amount, payment_status,
			order_status, order_progress, comments, issues, refund_summary, complaint_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		order.ID, order.OrderID, order.StoreID, order.Customer, order.Items, order.TotalAmount,
		order.PaymentStatus, order.OrderStatus, order.OrderProgress, order.Comments, order.Issues,
		order.RefundSummary, order.ComplaintID,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	return translate("create order", err)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id); err != nil {
		return nil, notFound("order", "get order", err)
	}
	return &order, nil
}

// ListOrders retrieves a page of orders, newest first
func (s *Store) ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, int, error) {
	orders := []models.Order{}
	if f.StoreIDs != nil && len(f.StoreIDs) == 0 {
		return orders, 0, nil
	}

	var c conditions
	if f.Status != "" {
		c.add("order_status = $%d", f.Status)
	}
	if f.StoreID != nil {
		c.add("store_id = $%d", *f.StoreID)
	}
	if f.StoreIDs != nil {
		c.add("store_id = ANY($%d::uuid[])", uuidArray(f.StoreIDs))
	}

	total, err := s.list(ctx, &orders, "orders", &c, "created_at DESC", f.Limit, f.Offset())
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ApplyStatusChange sets the status, appends the progress entry and stamps
// the lifecycle column in one statement. Earlier progress entries are never
// rewritten, and concurrent updates cannot drop each other's entries.
func (s *Store) ApplyStatusChange(ctx context.Context, id uuid.UUID, change models.StatusChange) (*models.Order, error) {
	entry, err := json.Marshal(models.ProgressLog{change.Entry})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress entry: %w", err)
	}

	query := `
		UPDATE orders SET
			order_status   = $2,
			order_progress = order_progress || $3::jsonb,
			accepted_at    = CASE WHEN $4 = 'accepted'  THEN $5 ELSE accepted_at END,
			prepared_at    = CASE WHEN $4 = 'prepared'  THEN $5 ELSE prepared_at END,
			picked_up_at   = CASE WHEN $4 = 'picked_up' THEN $5 ELSE picked_up_at END,
			delivered_at   = CASE WHEN $4 = 'delivered' THEN $5 ELSE delivered_at END,
			updated_at     = $5
		WHERE id = $1
		RETURNING *`

	var order models.Order
	err = s.db.GetContext(ctx, &order, query,
		id, change.Status, string(entry), string(change.Event), change.Entry.Timestamp)
	if err != nil {
		return nil, notFound("order", "update order status", err)
	}
	return &order, nil
}

// AppendComment atomically appends a comment to the order
func (s *Store) AppendComment(ctx context.Context, id uuid.UUID, comment models.Comment) (*models.Order, error) {
	entry, err := json.Marshal(models.CommentLog{comment})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal comment: %w", err)
	}

	var order models.Order
	err = s.db.GetContext(ctx, &order, `
		UPDATE orders SET comments = comments || $2::jsonb, updated_at = NOW()
		WHERE id = $1
		RETURNING *`,
		id, string(entry))
	if err != nil {
		return nil, notFound("order", "append comment", err)
	}
	return &order, nil
}

// MergeRefundSummary overwrites only the fields set in patch.
func (s *Store) MergeRefundSummary(ctx context.Context, id uuid.UUID, patch models.RefundSummaryPatch) (*models.Order, error) {
	b, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refund patch: %w", err)
	}

	var order models.Order
	err = s.db.GetContext(ctx, &order, `
		UPDATE orders SET refund_summary = refund_summary || $2::jsonb, updated_at = NOW()
		WHERE id = $1
		RETURNING *`,
		id, string(b))
	if err != nil {
		return nil, notFound("order", "merge refund summary", err)
	}
	return &order, nil
}

// SetIssues replaces the issue tags and, when valid, the complaint ID.
func (s *Store) SetIssues(ctx context.Context, id uuid.UUID, issues models.IssueList, complaintID null.String) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, `
		UPDATE orders SET
			issues = $2,
			complaint_id = CASE WHEN $3::text IS NULL THEN complaint_id ELSE $3 END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING *`,
		id, issues, complaintID)
	if err != nil {
		return nil, notFound("order", "set order issues", err)
	}
	return &order, nil
}
