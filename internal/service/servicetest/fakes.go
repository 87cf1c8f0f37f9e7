package servicetest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adityatechndevoops/OliveStore/internal/auth"
	"github.com/adityatechndevoops/OliveStore/internal/models"

	"github.com/google/uuid"
)

// Events records published domain events by type. Err, when set, is
// returned from every publish.
type Events struct {
	mu     sync.Mutex
	Types  []string
	Events []interface{}
	Err    error
}

func (e *Events) record(eventType string, event interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Types = append(e.Types, eventType)
	e.Events = append(e.Events, event)
	return e.Err
}

// Count returns how many events of eventType were published.
func (e *Events) Count(eventType string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, t := range e.Types {
		if t == eventType {
			n++
		}
	}
	return n
}

func (e *Events) PublishOrderCreated(_ context.Context, ev *models.OrderCreatedEvent) error {
	return e.record(ev.EventType, ev)
}

func (e *Events) PublishOrderStatusChanged(_ context.Context, ev *models.OrderStatusChangedEvent) error {
	return e.record(ev.EventType, ev)
}

func (e *Events) PublishOrderCommented(_ context.Context, ev *models.OrderCommentedEvent) error {
	return e.record(ev.EventType, ev)
}

func (e *Events) PublishOrderRefundUpdated(_ context.Context, ev *models.OrderRefundUpdatedEvent) error {
	return e.record(ev.EventType, ev)
}

func (e *Events) PublishOrderIssuesUpdated(_ context.Context, ev *models.OrderIssuesUpdatedEvent) error {
	return e.record(ev.EventType, ev)
}

func (e *Events) PublishStoreEvent(_ context.Context, ev *models.StoreEvent) error {
	return e.record(ev.EventType, ev)
}

func (e *Events) PublishStoreDocumentUploaded(_ context.Context, ev *models.StoreDocumentUploadedEvent) error {
	return e.record(ev.EventType, ev)
}

// Upload is one call made to Storage.
type Upload struct {
	Folder      string
	Filename    string
	ContentType string
	Size        int
}

// Storage is a fake object store returning deterministic URLs.
type Storage struct {
	mu      sync.Mutex
	Uploads []Upload
	Err     error
}

func (s *Storage) Upload(_ context.Context, data []byte, folder, filename, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Uploads = append(s.Uploads, Upload{Folder: folder, Filename: filename, ContentType: contentType, Size: len(data)})
	if s.Err != nil {
		return "", s.Err
	}
	return fmt.Sprintf("https://bucket.test/%s/%s", folder, filename), nil
}

const processing = "processing"

// Idempotency mimics the Redis claim/complete protocol.
type Idempotency struct {
	mu   sync.Mutex
	keys map[string]string
	Err  error
}

func NewIdempotency() *Idempotency {
	return &Idempotency{keys: make(map[string]string)}
}

func (i *Idempotency) BeginIdempotent(_ context.Context, key string) (string, bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Err != nil {
		return "", false, i.Err
	}
	v, ok := i.keys[key]
	if !ok {
		i.keys[key] = processing
		return "", true, nil
	}
	if v == processing {
		return "", false, nil
	}
	return v, false, nil
}

func (i *Idempotency) CompleteIdempotent(_ context.Context, key, result string, _ time.Duration) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.keys[key] = result
	return nil
}

func (i *Idempotency) AbortIdempotent(_ context.Context, key string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.keys, key)
	return nil
}

// Limiter counts attempts per identifier without expiry.
type Limiter struct {
	mu       sync.Mutex
	attempts map[string]int
	Err      error
}

func NewLimiter() *Limiter {
	return &Limiter{attempts: make(map[string]int)}
}

func (l *Limiter) AllowLogin(_ context.Context, identifier string, limit int, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return false, l.Err
	}
	key := strings.ToLower(strings.TrimSpace(identifier))
	l.attempts[key]++
	return l.attempts[key] <= limit, nil
}

// StatsCache holds at most one cached value.
type StatsCache struct {
	mu    sync.Mutex
	stats *models.DashboardStats
	Sets  int
}

func (c *StatsCache) GetDashboardStats(_ context.Context) (*models.DashboardStats, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats == nil {
		return nil, false, nil
	}
	cp := *c.stats
	return &cp, true, nil
}

func (c *StatsCache) SetDashboardStats(_ context.Context, stats *models.DashboardStats, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *stats
	c.stats = &cp
	c.Sets++
	return nil
}

func (c *StatsCache) InvalidateDashboardStats(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = nil
	return nil
}

// Tokens issues opaque "token-<userID>" strings.
type Tokens struct{}

func (Tokens) Issue(user *models.User) (string, error) {
	return "token-" + user.ID.String(), nil
}

func (Tokens) Validate(token string) (*auth.Claims, error) {
	if token == "expired" {
		return nil, auth.ErrExpiredToken
	}
	id, err := uuid.Parse(strings.TrimPrefix(token, "token-"))
	if err != nil || !strings.HasPrefix(token, "token-") {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: id}, nil
}

// ErrUnavailable is a stand-in infrastructure failure.
var ErrUnavailable = errors.New("unavailable")
