package store

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore connects to TEST_DATABASE_URL and skips the test when unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Integration test - requires database")
	}

	store, err := NewStore(url)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func seedStore(t *testing.T, s *Store) (*models.User, *models.Store) {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	owner := &models.User{
		Name:         "Merchant " + suffix,
		Email:        suffix + "@example.com",
		PhoneNumber:  "9" + suffix,
		PasswordHash: "x",
		Role:         models.RoleMerchant,
	}
	require.NoError(t, s.CreateUser(ctx, owner))

	st := &models.Store{
		StoreName:        "Olive " + suffix,
		OwnerID:          owner.ID,
		ContactNumber:    "8" + suffix,
		Address:          models.StoreAddress{Street: "1 Main", City: "Pune", State: "MH", Pincode: "411001"},
		Geolocation:      models.NewGeoPoint(73.85, 18.52),
		OnboardingStatus: models.OnboardingPending,
		OnboardedBy:      owner.ID,
	}
	require.NoError(t, s.CreateStore(ctx, st))
	return owner, st
}

func newTestOrder(storeID uuid.UUID) *models.Order {
	now := time.Now().UTC()
	return &models.Order{
		OrderID:     "KRN-" + uuid.NewString()[:4],
		StoreID:     storeID,
		Customer:    models.Customer{Name: "Asha", PhoneNumber: "9000000000"},
		Items:       models.OrderItems{{Name: "Olive oil", Quantity: 1, UnitPrice: decimal.NewFromInt(500), Status: models.ItemAccepted}},
		TotalAmount: decimal.NewFromInt(500),
		PaymentStatus: models.PaymentStatus{
			Method: models.PaymentMethodCOD,
			Status: models.PaymentStatusPending,
		},
		OrderStatus:   models.OrderStatusCreated,
		OrderProgress: models.ProgressLog{{Status: "Created", Timestamp: now, Remark: "Order initiated"}},
	}
}

func TestCreateOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	_, st := seedStore(t, store)

	order := newTestOrder(st.ID)
	require.NoError(t, store.CreateOrder(ctx, order))
	assert.NotEqual(t, uuid.Nil, order.ID)

	retrieved, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, retrieved.OrderID)
	assert.True(t, order.TotalAmount.Equal(retrieved.TotalAmount))
	assert.Len(t, retrieved.OrderProgress, 1)
}

func TestDuplicateOrderID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	_, st := seedStore(t, store)

	first := newTestOrder(st.ID)
	require.NoError(t, store.CreateOrder(ctx, first))

	second := newTestOrder(st.ID)
	second.OrderID = first.OrderID
	err := store.CreateOrder(ctx, second)
	assert.True(t, errors.Is(err, apperror.ErrDuplicateOrderID))
}

func TestConcurrentStatusChangesKeepEveryEntry(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	_, st := seedStore(t, store)

	order := newTestOrder(st.ID)
	require.NoError(t, store.CreateOrder(ctx, order))

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ApplyStatusChange(ctx, order.ID, models.NewStatusChange("Billed", "", time.Now().UTC()))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	updated, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, updated.OrderProgress, writers+1)
	assert.Equal(t, "Created", updated.OrderProgress[0].Status)
}

func TestApplyStatusChangeStampsLifecycleColumn(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	_, st := seedStore(t, store)

	order := newTestOrder(st.ID)
	require.NoError(t, store.CreateOrder(ctx, order))

	updated, err := store.ApplyStatusChange(ctx, order.ID, models.NewStatusChange("Delivered", "", time.Now().UTC()))
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.OrderStatus)
	assert.True(t, updated.DeliveredAt.Valid)
	assert.False(t, updated.AcceptedAt.Valid)
}

func TestMergeRefundSummary(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	_, st := seedStore(t, store)

	order := newTestOrder(st.ID)
	require.NoError(t, store.CreateOrder(ctx, order))

	total := decimal.NewFromInt(500)
	_, err := store.MergeRefundSummary(ctx, order.ID, models.RefundSummaryPatch{TotalRefund: &total})
	require.NoError(t, err)

	rotten := 3
	updated, err := store.MergeRefundSummary(ctx, order.ID, models.RefundSummaryPatch{RottenItemCount: &rotten})
	require.NoError(t, err)
	assert.True(t, updated.RefundSummary.TotalRefund.Equal(total))
	assert.Equal(t, 3, updated.RefundSummary.RottenItemCount)
}

func TestDeleteStoreWithOrdersConflicts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	_, st := seedStore(t, store)

	require.NoError(t, store.CreateOrder(ctx, newTestOrder(st.ID)))

	err := store.DeleteStore(ctx, st.ID)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestUserStoresDerivedFromOwnership(t *testing.T) {
	store := openTestStore(t)
	owner, st := seedStore(t, store)

	user, err := store.GetUserByID(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{st.ID}, user.Stores)
}

func TestAppendStoreDocument(t *testing.T) {
	store := openTestStore(t)
	_, st := seedStore(t, store)

	updated, err := store.AppendStoreDocument(context.Background(), st.ID,
		models.DocumentUpload{DocType: "gst", URL: "https://bucket/stores/x/gst.pdf"})
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingSubmitted, updated.OnboardingStatus)
	assert.False(t, updated.IsAcceptingOrders)
	require.Len(t, updated.DocumentUploads, 1)
	assert.Equal(t, "gst", updated.DocumentUploads[0].DocType)
}
