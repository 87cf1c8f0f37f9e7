package service

import (
	"context"
	"testing"
	"time"

	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/policy"
	"github.com/adityatechndevoops/OliveStore/internal/service/servicetest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo     *servicetest.Memory
	events   *servicetest.Events
	storage  *servicetest.Storage
	idem     *servicetest.Idempotency
	orders   *OrderService
	stores   *StoreService
	products *ProductService

	admin    policy.Principal
	staff    policy.Principal
	merchant policy.Principal
	other    policy.Principal
	viewer   policy.Principal

	store *models.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:    servicetest.NewMemory(),
		events:  &servicetest.Events{},
		storage: &servicetest.Storage{},
		idem:    servicetest.NewIdempotency(),
	}
	f.orders = NewOrderService(f.repo, f.repo, f.events, f.idem, OrderOptions{MaxIDAttempts: 5, IdempotencyTTL: time.Hour})
	f.stores = NewStoreService(f.repo, f.repo, f.storage, f.events)
	f.products = NewProductService(f.repo, f.repo, f.storage)

	f.admin = f.addUser(t, "admin", models.RoleAdmin)
	f.staff = f.addUser(t, "staff", models.RoleStaff)
	f.merchant = f.addUser(t, "merchant", models.RoleMerchant)
	f.other = f.addUser(t, "other", models.RoleMerchant)
	f.viewer = f.addUser(t, "viewer", models.RoleViewer)
	f.store = f.addStore(t, f.merchant.UserID, "9000000001")

	return f
}

func (f *fixture) addUser(t *testing.T, name string, role models.Role) policy.Principal {
	t.Helper()
	u := &models.User{
		Name:        name,
		Email:       name + "@olive.test",
		PhoneNumber: "98" + uuid.NewString()[:8],
		Role:        role,
	}
	require.NoError(t, f.repo.CreateUser(context.Background(), u))
	return policy.NewPrincipal(u)
}

func (f *fixture) addStore(t *testing.T, owner uuid.UUID, contact string) *models.Store {
	t.Helper()
	st := &models.Store{
		StoreName:     "Olive Mart",
		OwnerID:       owner,
		ContactNumber: contact,
		Address:       models.StoreAddress{Street: "1 Main St", City: "Pune", State: "MH", Pincode: "411001"},
		Geolocation:   models.NewGeoPoint(73.85, 18.52),
		OnboardedBy:   owner,
	}
	st.SetOnboardingStatus(models.OnboardingPending)
	require.NoError(t, f.repo.CreateStore(context.Background(), st))
	return st
}

func riceOrder(storeID uuid.UUID) *CreateOrderRequest {
	return &CreateOrderRequest{
		StoreID:  storeID,
		Customer: models.Customer{Name: "Asha", PhoneNumber: "9876543210"},
		Items: []OrderItemRequest{
			{Name: "Rice", Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
		},
		TotalAmount:    decimal.NewFromInt(100),
		PaymentDetails: PaymentRequest{Method: models.PaymentMethodCOD},
	}
}

func (f *fixture) createOrder(t *testing.T) *models.Order {
	t.Helper()
	order, err := f.orders.CreateOrder(context.Background(), f.merchant, riceOrder(f.store.ID))
	require.NoError(t, err)
	return order
}

func intPtr(n int) *int { return &n }

func decPtr(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

func strPtr(s string) *string { return &s }
