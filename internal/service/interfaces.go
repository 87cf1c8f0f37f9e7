package service

import (
	"context"
	"time"

	"github.com/adityatechndevoops/OliveStore/internal/auth"
	"github.com/adityatechndevoops/OliveStore/internal/models"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// The repository interfaces are satisfied by *store.Store.

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type StoreRepository interface {
	CreateStore(ctx context.Context, st *models.Store) error
	GetStoreByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	ListStores(ctx context.Context, f models.StoreFilter) ([]models.Store, int, error)
	StoreIDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
	UpdateStore(ctx context.Context, st *models.Store) error
	AppendStoreDocument(ctx context.Context, id uuid.UUID, doc models.DocumentUpload) (*models.Store, error)
	DeleteStore(ctx context.Context, id uuid.UUID) error
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, int, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, int, error)
	ApplyStatusChange(ctx context.Context, id uuid.UUID, change models.StatusChange) (*models.Order, error)
	AppendComment(ctx context.Context, id uuid.UUID, comment models.Comment) (*models.Order, error)
	MergeRefundSummary(ctx context.Context, id uuid.UUID, patch models.RefundSummaryPatch) (*models.Order, error)
	SetIssues(ctx context.Context, id uuid.UUID, issues models.IssueList, complaintID null.String) (*models.Order, error)
}

type StatsRepository interface {
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// EventPublisher is satisfied by *broker.EventPublisher.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderCommented(ctx context.Context, event *models.OrderCommentedEvent) error
	PublishOrderRefundUpdated(ctx context.Context, event *models.OrderRefundUpdatedEvent) error
	PublishOrderIssuesUpdated(ctx context.Context, event *models.OrderIssuesUpdatedEvent) error
	PublishStoreEvent(ctx context.Context, event *models.StoreEvent) error
	PublishStoreDocumentUploaded(ctx context.Context, event *models.StoreDocumentUploadedEvent) error
}

// ObjectStorage is satisfied by *objectstore.S3Storage.
type ObjectStorage interface {
	Upload(ctx context.Context, data []byte, folder, filename, contentType string) (string, error)
}

// The remaining interfaces are satisfied by *redisclient.Client.

type IdempotencyStore interface {
	BeginIdempotent(ctx context.Context, key string) (result string, started bool, err error)
	CompleteIdempotent(ctx context.Context, key, result string, ttl time.Duration) error
	AbortIdempotent(ctx context.Context, key string) error
}

type LoginLimiter interface {
	AllowLogin(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error)
}

type StatsCache interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, bool, error)
	SetDashboardStats(ctx context.Context, stats *models.DashboardStats, ttl time.Duration) error
	InvalidateDashboardStats(ctx context.Context) error
}

// TokenService is satisfied by *auth.TokenService.
type TokenService interface {
	Issue(user *models.User) (string, error)
	Validate(token string) (*auth.Claims, error)
}
