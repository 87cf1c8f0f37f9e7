package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/service/servicetest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderIDPattern = regexp.MustCompile(`^KRN-[A-Z0-9]{4}$`)

func TestGenerateOrderIDFormat(t *testing.T) {
	for i := 0; i < 200; i++ {
		id, err := GenerateOrderID()
		require.NoError(t, err)
		assert.Regexp(t, orderIDPattern, id)
	}
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)

	order := f.createOrder(t)

	assert.Regexp(t, orderIDPattern, order.OrderID)
	assert.Equal(t, models.OrderStatusCreated, order.OrderStatus)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(100)))
	require.Len(t, order.OrderProgress, 1)
	assert.Equal(t, "Created", order.OrderProgress[0].Status)
	assert.Equal(t, "Order initiated", order.OrderProgress[0].Remark)
	require.Len(t, order.Items, 1)
	assert.Equal(t, models.ItemAccepted, order.Items[0].Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus.Status)
	assert.Equal(t, 1, f.events.Count(models.EventTypeOrderCreated))
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]func(r *CreateOrderRequest){
		"missing store":     func(r *CreateOrderRequest) { r.StoreID = uuid.Nil },
		"missing customer":  func(r *CreateOrderRequest) { r.Customer.Name = "  " },
		"no items":          func(r *CreateOrderRequest) { r.Items = nil },
		"zero quantity":     func(r *CreateOrderRequest) { r.Items[0].Quantity = 0 },
		"negative price":    func(r *CreateOrderRequest) { r.Items[0].UnitPrice = decimal.NewFromInt(-1) },
		"zero total":        func(r *CreateOrderRequest) { r.TotalAmount = decimal.Zero },
		"bad method":        func(r *CreateOrderRequest) { r.PaymentDetails.Method = "Cheque" },
		"bad item status":   func(r *CreateOrderRequest) { r.Items[0].Status = "Lost" },
		"bad payment state": func(r *CreateOrderRequest) { r.PaymentDetails.Status = "Maybe" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := riceOrder(f.store.ID)
			mutate(req)
			_, err := f.orders.CreateOrder(context.Background(), f.merchant, req)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
	assert.Equal(t, 0, f.repo.OrderInserts)
}

func TestCreateOrderRequiresOwningMerchant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orders.CreateOrder(ctx, f.other, riceOrder(f.store.ID))
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.orders.CreateOrder(ctx, f.admin, riceOrder(f.store.ID))
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.orders.CreateOrder(ctx, f.merchant, riceOrder(uuid.New()))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateOrderRetriesOnDuplicateID(t *testing.T) {
	f := newFixture(t)
	f.repo.TakenOrderIDs["KRN-AAAA"] = true
	f.repo.TakenOrderIDs["KRN-BBBB"] = true

	ids := []string{"KRN-AAAA", "KRN-BBBB", "KRN-CCCC"}
	f.orders.newOrderID = func() (string, error) {
		id := ids[0]
		ids = ids[1:]
		return id, nil
	}

	order := f.createOrder(t)
	assert.Equal(t, "KRN-CCCC", order.OrderID)
	assert.Equal(t, 3, f.repo.OrderInserts)
}

func TestCreateOrderGivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	f.repo.TakenOrderIDs["KRN-AAAA"] = true
	f.orders.newOrderID = func() (string, error) { return "KRN-AAAA", nil }

	_, err := f.orders.CreateOrder(context.Background(), f.merchant, riceOrder(f.store.ID))
	require.Error(t, err)
	assert.Equal(t, 500, apperror.From(err).Status)
	assert.Equal(t, 5, f.repo.OrderInserts)
	assert.Equal(t, 0, f.events.Count(models.EventTypeOrderCreated))
}

func TestOrderIDsUniqueAcrossOrders(t *testing.T) {
	f := newFixture(t)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		order := f.createOrder(t)
		assert.False(t, seen[order.OrderID], "duplicate %s", order.OrderID)
		seen[order.OrderID] = true
	}
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := riceOrder(f.store.ID)
	req.IdempotencyKey = "checkout-1"
	first, err := f.orders.CreateOrder(ctx, f.merchant, req)
	require.NoError(t, err)

	again := riceOrder(f.store.ID)
	again.IdempotencyKey = "checkout-1"
	second, err := f.orders.CreateOrder(ctx, f.merchant, again)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.repo.OrderInserts)
	assert.Equal(t, 1, f.events.Count(models.EventTypeOrderCreated))
}

func TestCreateOrderIdempotencyInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, started, err := f.idem.BeginIdempotent(ctx, fmt.Sprintf("order:%s:%s", f.merchant.UserID, "k"))
	require.NoError(t, err)
	require.True(t, started)

	req := riceOrder(f.store.ID)
	req.IdempotencyKey = "k"
	_, err = f.orders.CreateOrder(ctx, f.merchant, req)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCreateOrderIdempotencyReleasedOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.repo.TakenOrderIDs["KRN-AAAA"] = true
	f.orders.newOrderID = func() (string, error) { return "KRN-AAAA", nil }

	req := riceOrder(f.store.ID)
	req.IdempotencyKey = "retry-me"
	_, err := f.orders.CreateOrder(ctx, f.merchant, req)
	require.Error(t, err)

	f.orders.newOrderID = GenerateOrderID
	req = riceOrder(f.store.ID)
	req.IdempotencyKey = "retry-me"
	_, err = f.orders.CreateOrder(ctx, f.merchant, req)
	assert.NoError(t, err)
}

func TestCreateOrderIdempotencyStoreDown(t *testing.T) {
	f := newFixture(t)
	f.idem.Err = servicetest.ErrUnavailable

	req := riceOrder(f.store.ID)
	req.IdempotencyKey = "k"
	_, err := f.orders.CreateOrder(context.Background(), f.merchant, req)
	assert.NoError(t, err)
}

func TestCreateOrderSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.events.Err = errors.New("broker down")

	order := f.createOrder(t)
	assert.NotEqual(t, uuid.Nil, order.ID)
}

func TestUpdateStatusDelivered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	updated, err := f.orders.UpdateStatus(ctx, f.admin, order.ID, &UpdateStatusRequest{
		Status: "Delivered",
		Remark: "handed to customer",
	})
	require.NoError(t, err)

	require.Len(t, updated.OrderProgress, 2)
	assert.Equal(t, order.OrderProgress[0], updated.OrderProgress[0])
	assert.Equal(t, "Delivered", updated.OrderProgress[1].Status)
	assert.Equal(t, "handed to customer", updated.OrderProgress[1].Remark)
	assert.True(t, updated.DeliveredAt.Valid)
	assert.False(t, updated.AcceptedAt.Valid)
	assert.Equal(t, models.OrderStatusDelivered, updated.OrderStatus)
	assert.Equal(t, 1, f.events.Count(models.EventTypeOrderStatusChanged))
}

func TestUpdateStatusLifecycleTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	steps := []string{"Accepted", "Preparing", "Out for Delivery", "Delivered"}
	for _, status := range steps {
		_, err := f.orders.UpdateStatus(ctx, f.merchant, order.ID, &UpdateStatusRequest{Status: status})
		require.NoError(t, err)
	}

	got, err := f.orders.GetOrder(ctx, f.admin, order.ID)
	require.NoError(t, err)
	assert.True(t, got.AcceptedAt.Valid)
	assert.True(t, got.PreparedAt.Valid)
	assert.True(t, got.PickedUpAt.Valid)
	assert.True(t, got.DeliveredAt.Valid)
	assert.Len(t, got.OrderProgress, 1+len(steps))
}

func TestUpdateStatusPassthrough(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)

	updated, err := f.orders.UpdateStatus(context.Background(), f.staff, order.ID, &UpdateStatusRequest{Status: " Waiting on rider "})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatus("Waiting on rider"), updated.OrderStatus)
	assert.Equal(t, models.OrderTimestamps{}, updated.OrderTimestamps)
	assert.Len(t, updated.OrderProgress, 2)
}

func TestUpdateStatusValidationAndAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	_, err := f.orders.UpdateStatus(ctx, f.admin, order.ID, &UpdateStatusRequest{Status: "   "})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.orders.UpdateStatus(ctx, f.other, order.ID, &UpdateStatusRequest{Status: "Billed"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.orders.UpdateStatus(ctx, f.viewer, order.ID, &UpdateStatusRequest{Status: "Billed"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.orders.UpdateStatus(ctx, f.admin, uuid.New(), &UpdateStatusRequest{Status: "Billed"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	got, err := f.orders.GetOrder(ctx, f.admin, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.OrderProgress, 1)
}

func TestConcurrentStatusUpdatesKeepEveryEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.orders.UpdateStatus(ctx, f.staff, order.ID, &UpdateStatusRequest{Status: fmt.Sprintf("step-%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := f.orders.GetOrder(ctx, f.staff, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.OrderProgress, 21)
}

func TestGetOrderAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	_, err := f.orders.GetOrder(ctx, f.merchant, order.ID)
	assert.NoError(t, err)
	_, err = f.orders.GetOrder(ctx, f.staff, order.ID)
	assert.NoError(t, err)
	_, err = f.orders.GetOrder(ctx, f.other, order.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = f.orders.GetOrder(ctx, f.viewer, order.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestListOrdersScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	otherStore := f.addStore(t, f.other.UserID, "9000000002")

	f.createOrder(t)
	f.createOrder(t)
	_, err := f.orders.CreateOrder(ctx, f.other, riceOrder(otherStore.ID))
	require.NoError(t, err)

	all, err := f.orders.ListOrders(ctx, f.admin, ListOrdersQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, 50, all.Limit)

	mine, err := f.orders.ListOrders(ctx, f.merchant, ListOrdersQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, mine.Total)
	for _, o := range mine.Items {
		assert.Equal(t, f.store.ID, o.StoreID)
	}

	_, err = f.orders.ListOrders(ctx, f.merchant, ListOrdersQuery{StoreID: &otherStore.ID})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.orders.ListOrders(ctx, f.viewer, ListOrdersQuery{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	byStore, err := f.orders.ListOrders(ctx, f.staff, ListOrdersQuery{StoreID: &otherStore.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, byStore.Total)
}

func TestListOrdersPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var last *models.Order
	for i := 0; i < 12; i++ {
		last = f.createOrder(t)
	}

	page, err := f.orders.ListOrders(ctx, f.admin, ListOrdersQuery{ListQuery: ListQuery{Page: 1}})
	require.NoError(t, err)
	assert.Equal(t, 10, page.Limit)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, last.ID, page.Items[0].ID)

	second, err := f.orders.ListOrders(ctx, f.admin, ListOrdersQuery{ListQuery: ListQuery{Page: 2}})
	require.NoError(t, err)
	assert.Len(t, second.Items, 2)

	capped, err := f.orders.ListOrders(ctx, f.admin, ListOrdersQuery{ListQuery: ListQuery{Limit: 1000}})
	require.NoError(t, err)
	assert.Equal(t, models.MaxLimit, capped.Limit)
}

func TestListMyStoreOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createOrder(t)

	mine, err := f.orders.ListMyStoreOrders(ctx, f.merchant, ListOrdersQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, mine.Total)

	storeless := f.addUser(t, "storeless", models.RoleMerchant)
	empty, err := f.orders.ListMyStoreOrders(ctx, storeless, ListOrdersQuery{})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 0, empty.Total)

	_, err = f.orders.ListMyStoreOrders(ctx, f.admin, ListOrdersQuery{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.orders.ListMyStoreOrders(ctx, f.other, ListOrdersQuery{StoreID: &f.store.ID})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	_, err := f.orders.AddComment(ctx, f.viewer, order.ID, &CommentRequest{Comment: "  "})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	updated, err := f.orders.AddComment(ctx, f.viewer, order.ID, &CommentRequest{Comment: " called the customer "})
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "called the customer", updated.Comments[0].Comment)
	assert.Equal(t, f.viewer.UserID, updated.Comments[0].User)

	updated, err = f.orders.AddComment(ctx, f.admin, order.ID, &CommentRequest{Comment: "refund approved"})
	require.NoError(t, err)
	assert.Len(t, updated.Comments, 2)

	_, err = f.orders.AddComment(ctx, f.admin, uuid.New(), &CommentRequest{Comment: "x"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, 2, f.events.Count(models.EventTypeOrderCommented))
}

func TestRefundSummaryMergesPartialUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	_, err := f.orders.UpdateRefundSummary(ctx, f.admin, order.ID, models.RefundSummaryPatch{TotalRefund: decPtr(500)})
	require.NoError(t, err)
	updated, err := f.orders.UpdateRefundSummary(ctx, f.admin, order.ID, models.RefundSummaryPatch{RottenItemCount: intPtr(3)})
	require.NoError(t, err)

	assert.True(t, updated.RefundSummary.TotalRefund.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 3, updated.RefundSummary.RottenItemCount)
	assert.True(t, updated.RefundSummary.PostDeliveryRefunds.IsZero())
	assert.Equal(t, 0, updated.RefundSummary.DamagedItemCount)
}

func TestRefundSummaryRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	_, err := f.orders.UpdateRefundSummary(ctx, f.staff, order.ID, models.RefundSummaryPatch{TotalRefund: decPtr(1)})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.orders.UpdateRefundSummary(ctx, f.admin, order.ID, models.RefundSummaryPatch{})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.orders.UpdateRefundSummary(ctx, f.admin, order.ID, models.RefundSummaryPatch{DamagedItemCount: intPtr(-1)})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.orders.UpdateRefundSummary(ctx, f.admin, uuid.New(), models.RefundSummaryPatch{TotalRefund: decPtr(1)})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateIssues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t)

	updated, err := f.orders.UpdateIssues(ctx, f.staff, order.ID, &UpdateIssuesRequest{
		Issues:      []string{models.IssueMissingItem, models.IssueMissingItem, models.IssueDamagedItem},
		ComplaintID: strPtr("CMP-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.IssueList{models.IssueMissingItem, models.IssueDamagedItem}, updated.Issues)
	assert.Equal(t, "CMP-1", updated.ComplaintID.String)

	updated, err = f.orders.UpdateIssues(ctx, f.admin, order.ID, &UpdateIssuesRequest{Issues: []string{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Issues)
	assert.Equal(t, "CMP-1", updated.ComplaintID.String)

	_, err = f.orders.UpdateIssues(ctx, f.admin, order.ID, &UpdateIssuesRequest{Issues: []string{"Cold Food"}})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.orders.UpdateIssues(ctx, f.merchant, order.ID, &UpdateIssuesRequest{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
