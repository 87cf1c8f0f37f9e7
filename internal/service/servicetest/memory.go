// Package servicetest provides in-memory collaborators for service tests.
// Memory mirrors the constraints the PostgreSQL schema enforces: unique
// keys, the orders → stores foreign key and atomic log appends.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Memory implements every repository interface of the service package.
type Memory struct {
	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	stores   map[uuid.UUID]models.Store
	products map[uuid.UUID]models.Product
	orders   map[uuid.UUID]models.Order
	clock    time.Time

	// TakenOrderIDs are rejected as duplicates on insert.
	TakenOrderIDs map[string]bool
	// OrderInserts counts CreateOrder calls, including rejected ones.
	OrderInserts int
}

func NewMemory() *Memory {
	return &Memory{
		users:         make(map[uuid.UUID]models.User),
		stores:        make(map[uuid.UUID]models.Store),
		products:      make(map[uuid.UUID]models.Product),
		orders:        make(map[uuid.UUID]models.Order),
		clock:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TakenOrderIDs: make(map[string]bool),
	}
}

// tick returns a strictly increasing timestamp so newest-first ordering is
// deterministic.
func (m *Memory) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func paginate[T any](items []T, p models.Pagination) []T {
	start := p.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := len(items)
	if p.Limit > 0 && start+p.Limit < end {
		end = start + p.Limit
	}
	return items[start:end]
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Users

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.Conflict("email already exists")
		}
		if u.PhoneNumber == user.PhoneNumber {
			return apperror.Conflict("phoneNumber already exists")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := m.tick()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	stored.Stores = nil
	m.users[user.ID] = stored
	return nil
}

// withStores must be called with mu held.
func (m *Memory) withStores(u models.User) *models.User {
	u.Stores = m.ownedLocked(u.ID)
	return &u
}

func (m *Memory) ownedLocked(owner uuid.UUID) []uuid.UUID {
	var owned []models.Store
	for _, st := range m.stores {
		if st.OwnerID == owner {
			owned = append(owned, st)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.Before(owned[j].CreatedAt) })
	ids := []uuid.UUID{}
	for _, st := range owned {
		ids = append(ids, st.ID)
	}
	return ids
}

func (m *Memory) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user not found")
	}
	return m.withStores(u), nil
}

func (m *Memory) findUser(match func(models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if match(u) {
			return m.withStores(u), nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.Email == email })
}

func (m *Memory) GetUserByPhone(_ context.Context, phone string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.PhoneNumber == phone })
}

func (m *Memory) ListUsers(_ context.Context, f models.UserFilter) ([]models.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := strings.ToLower(f.Query)
	var all []models.User
	for _, u := range m.users {
		if q != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email+" "+u.PhoneNumber), q) {
			continue
		}
		all = append(all, *m.withStores(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, f.Pagination), len(all), nil
}

func (m *Memory) UpdateUserRole(_ context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user not found")
	}
	u.Role = role
	u.UpdatedAt = m.tick()
	m.users[id] = u
	return m.withStores(u), nil
}

func (m *Memory) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user not found")
	}
	if len(m.ownedLocked(id)) > 0 {
		return apperror.Conflict("record is referenced by other records")
	}
	delete(m.users, id)
	return nil
}

// Stores

func (m *Memory) checkStoreUnique(st *models.Store) error {
	for _, other := range m.stores {
		if other.ID == st.ID {
			continue
		}
		switch {
		case other.ContactNumber == st.ContactNumber:
			return apperror.Conflict("contactNumber already exists")
		case st.Email.Valid && other.Email == st.Email:
			return apperror.Conflict("email already exists")
		case st.GSTIN.Valid && other.GSTIN == st.GSTIN:
			return apperror.Conflict("gstin already exists")
		case st.FSSAILicense.Valid && other.FSSAILicense == st.FSSAILicense:
			return apperror.Conflict("fssaiLicense already exists")
		}
	}
	return nil
}

func (m *Memory) CreateStore(_ context.Context, st *models.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[st.OwnerID]; !ok {
		return apperror.Conflict("record is referenced by other records")
	}
	if err := m.checkStoreUnique(st); err != nil {
		return err
	}
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	now := m.tick()
	st.CreatedAt, st.UpdatedAt = now, now
	stored := *st
	stored.DocumentUploads = append(models.DocumentUploads{}, st.DocumentUploads...)
	m.stores[st.ID] = stored
	return nil
}

func (m *Memory) GetStoreByID(_ context.Context, id uuid.UUID) (*models.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stores[id]
	if !ok {
		return nil, apperror.NotFound("store not found")
	}
	return &st, nil
}

func (m *Memory) ListStores(_ context.Context, f models.StoreFilter) ([]models.Store, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []models.Store
	for _, st := range m.stores {
		if f.OwnerID != nil && st.OwnerID != *f.OwnerID {
			continue
		}
		if f.Status != "" && st.OnboardingStatus != f.Status {
			continue
		}
		all = append(all, st)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, f.Pagination), len(all), nil
}

func (m *Memory) StoreIDsByOwner(_ context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ownedLocked(ownerID), nil
}

func (m *Memory) UpdateStore(_ context.Context, st *models.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.stores[st.ID]
	if !ok {
		return apperror.NotFound("store not found")
	}
	if err := m.checkStoreUnique(st); err != nil {
		return err
	}
	next := *st
	next.OwnerID = cur.OwnerID
	next.OnboardedBy = cur.OnboardedBy
	next.DocumentUploads = cur.DocumentUploads
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = m.tick()
	st.UpdatedAt = next.UpdatedAt
	m.stores[st.ID] = next
	return nil
}

func (m *Memory) AppendStoreDocument(_ context.Context, id uuid.UUID, doc models.DocumentUpload) (*models.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stores[id]
	if !ok {
		return nil, apperror.NotFound("store not found")
	}
	st.DocumentUploads = append(append(models.DocumentUploads{}, st.DocumentUploads...), doc)
	st.SetOnboardingStatus(models.OnboardingSubmitted)
	st.UpdatedAt = m.tick()
	m.stores[id] = st
	return &st, nil
}

func (m *Memory) DeleteStore(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stores[id]; !ok {
		return apperror.NotFound("store not found")
	}
	for _, o := range m.orders {
		if o.StoreID == id {
			return apperror.Conflict("record is referenced by other records")
		}
	}
	for pid, p := range m.products {
		if p.StoreID == id {
			delete(m.products, pid)
		}
	}
	delete(m.stores, id)
	return nil
}

// Products

func (m *Memory) CreateProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stores[p.StoreID]; !ok {
		return apperror.Conflict("record is referenced by other records")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := m.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) GetProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, apperror.NotFound("product not found")
	}
	return &p, nil
}

func (m *Memory) ListProducts(_ context.Context, f models.ProductFilter) ([]models.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := strings.ToLower(f.Query)
	all := []models.Product{}
	for _, p := range m.products {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if f.StoreID != nil && p.StoreID != *f.StoreID {
			continue
		}
		if f.StoreIDs != nil && !containsID(f.StoreIDs, p.StoreID) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, f.Pagination), len(all), nil
}

func (m *Memory) UpdateProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.products[p.ID]
	if !ok {
		return apperror.NotFound("product not found")
	}
	next := *p
	next.StoreID = cur.StoreID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = m.tick()
	p.UpdatedAt = next.UpdatedAt
	m.products[p.ID] = next
	return nil
}

func (m *Memory) DeleteProduct(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return apperror.NotFound("product not found")
	}
	delete(m.products, id)
	return nil
}

// Orders

func (m *Memory) CreateOrder(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.OrderInserts++
	if m.TakenOrderIDs[order.OrderID] {
		return apperror.ErrDuplicateOrderID
	}
	for _, o := range m.orders {
		if o.OrderID == order.OrderID {
			return apperror.ErrDuplicateOrderID
		}
	}
	if _, ok := m.stores[order.StoreID]; !ok {
		return apperror.Conflict("record is referenced by other records")
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	now := m.tick()
	order.CreatedAt, order.UpdatedAt = now, now
	m.orders[order.ID] = cloneOrder(*order)
	return nil
}

// cloneOrder copies the slices so callers never share backing arrays with
// the stored record.
func cloneOrder(o models.Order) models.Order {
	o.Items = append(models.OrderItems{}, o.Items...)
	o.OrderProgress = append(models.ProgressLog{}, o.OrderProgress...)
	o.Comments = append(models.CommentLog{}, o.Comments...)
	o.Issues = append(models.IssueList{}, o.Issues...)
	return o
}

func (m *Memory) GetOrderByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, apperror.NotFound("order not found")
	}
	o = cloneOrder(o)
	return &o, nil
}

func (m *Memory) ListOrders(_ context.Context, f models.OrderFilter) ([]models.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := []models.Order{}
	for _, o := range m.orders {
		if f.Status != "" && string(o.OrderStatus) != f.Status {
			continue
		}
		if f.StoreID != nil && o.StoreID != *f.StoreID {
			continue
		}
		if f.StoreIDs != nil && !containsID(f.StoreIDs, o.StoreID) {
			continue
		}
		all = append(all, cloneOrder(o))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, f.Pagination), len(all), nil
}

// mutateOrder applies fn to the stored order under the lock, the in-memory
// counterpart of a single UPDATE ... RETURNING statement.
func (m *Memory) mutateOrder(id uuid.UUID, fn func(o *models.Order)) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, apperror.NotFound("order not found")
	}
	o = cloneOrder(o)
	fn(&o)
	m.orders[id] = o
	out := cloneOrder(o)
	return &out, nil
}

func (m *Memory) ApplyStatusChange(_ context.Context, id uuid.UUID, change models.StatusChange) (*models.Order, error) {
	return m.mutateOrder(id, change.ApplyTo)
}

func (m *Memory) AppendComment(_ context.Context, id uuid.UUID, comment models.Comment) (*models.Order, error) {
	return m.mutateOrder(id, func(o *models.Order) {
		o.Comments = append(o.Comments, comment)
		o.UpdatedAt = comment.Timestamp
	})
}

func (m *Memory) MergeRefundSummary(_ context.Context, id uuid.UUID, patch models.RefundSummaryPatch) (*models.Order, error) {
	return m.mutateOrder(id, func(o *models.Order) {
		o.RefundSummary = patch.Apply(o.RefundSummary)
	})
}

func (m *Memory) SetIssues(_ context.Context, id uuid.UUID, issues models.IssueList, complaintID null.String) (*models.Order, error) {
	return m.mutateOrder(id, func(o *models.Order) {
		o.Issues = issues
		if complaintID.Valid {
			o.ComplaintID = complaintID
		}
	})
}

// Dashboard

func (m *Memory) DashboardStats(_ context.Context) (*models.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &models.DashboardStats{
		TotalStores:   len(m.stores),
		TotalProducts: len(m.products),
		TotalUsers:    len(m.users),
		TotalOrders:   len(m.orders),
	}
	for _, st := range m.stores {
		switch st.OnboardingStatus {
		case models.OnboardingApproved:
			stats.ApprovedStores++
		case models.OnboardingPending, models.OnboardingSubmitted, models.OnboardingVerified:
			stats.PendingStores++
		}
	}
	for _, u := range m.users {
		switch u.Role {
		case models.RoleStaff, models.RoleManager, models.RoleAgent:
			stats.StaffUsers++
		}
	}
	for _, o := range m.orders {
		for _, live := range models.LiveOrderStatuses {
			if o.OrderStatus == live {
				stats.LiveOrders++
				break
			}
		}
	}
	return stats, nil
}
