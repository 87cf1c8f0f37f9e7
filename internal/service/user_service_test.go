package service

import (
	"context"
	"testing"
	"time"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/service/servicetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAdministration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := NewUserService(f.repo)

	page, err := users.ListUsers(ctx, f.admin, ListUsersQuery{})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)

	search, err := users.ListUsers(ctx, f.admin, ListUsersQuery{Query: "VIEW"})
	require.NoError(t, err)
	require.Equal(t, 1, search.Total)
	assert.Equal(t, f.viewer.UserID, search.Items[0].ID)

	_, err = users.ListUsers(ctx, f.staff, ListUsersQuery{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = users.UpdateUserRole(ctx, f.admin, f.viewer.UserID, &UpdateRoleRequest{Role: "overlord"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	promoted, err := users.UpdateUserRole(ctx, f.admin, f.viewer.UserID, &UpdateRoleRequest{Role: "staff"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, promoted.Role)

	_, err = users.UpdateUserRole(ctx, f.merchant, f.merchant.UserID, &UpdateRoleRequest{Role: "admin"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	assert.ErrorIs(t, users.DeleteUser(ctx, f.admin, f.merchant.UserID), apperror.ErrConflict)
	assert.NoError(t, users.DeleteUser(ctx, f.admin, f.viewer.UserID))
	assert.ErrorIs(t, users.DeleteUser(ctx, f.admin, f.viewer.UserID), apperror.ErrNotFound)
}

func TestPromoteToAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := NewUserService(f.repo)

	user, err := users.PromoteToAdmin(ctx, "VIEWER@olive.test", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = users.PromoteToAdmin(ctx, "", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = users.PromoteToAdmin(ctx, "", "0000")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDashboardStatsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := &servicetest.StatsCache{}
	dash := NewDashboardService(f.repo, cache, time.Minute)
	f.createOrder(t)

	stats, err := dash.Stats(ctx, f.staff)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalStores)
	assert.Equal(t, 1, stats.PendingStores)
	assert.Equal(t, 1, stats.StaffUsers)
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, 1, stats.LiveOrders)
	assert.Equal(t, 1, cache.Sets)

	f.createOrder(t)
	cached, err := dash.Stats(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.TotalOrders)
	assert.Equal(t, 1, cache.Sets)

	require.NoError(t, dash.Invalidate(ctx))
	fresh, err := dash.Stats(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.TotalOrders)

	_, err = dash.Stats(ctx, f.merchant)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
