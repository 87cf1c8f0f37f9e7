package store

import (
	"context"
	"fmt"

	"github.com/adityatechndevoops/OliveStore/internal/models"

	"github.com/lib/pq"
)

// DashboardStats computes the platform counters in one round trip.
func (s *Store) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM stores) AS total_stores,
			(SELECT COUNT(*) FROM stores WHERE onboarding_status = $1) AS approved_stores,
			(SELECT COUNT(*) FROM stores WHERE onboarding_status = ANY($2::text[])) AS pending_stores,
			(SELECT COUNT(*) FROM products) AS total_products,
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM users WHERE role = ANY($3::text[])) AS staff_users,
			(SELECT COUNT(*) FROM orders) AS total_orders,
			(SELECT COUNT(*) FROM orders WHERE order_status = ANY($4::text[])) AS live_orders`

	pending := pq.StringArray{
		string(models.OnboardingPending), string(models.OnboardingSubmitted), string(models.OnboardingVerified),
	}
	staff := pq.StringArray{string(models.RoleStaff), string(models.RoleManager), string(models.RoleAgent)}
	live := make(pq.StringArray, len(models.LiveOrderStatuses))
	for i, st := range models.LiveOrderStatuses {
		live[i] = string(st)
	}

	var stats models.DashboardStats
	if err := s.db.GetContext(ctx, &stats, query, models.OnboardingApproved, pending, staff, live); err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}
	return &stats, nil
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
