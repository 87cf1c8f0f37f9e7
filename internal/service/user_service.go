package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/policy"
	"github.com/adityatechndevoops/OliveStore/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService is the admin view over accounts
type UserService struct {
	users  UserRepository
	logger *zap.Logger
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users, logger: util.GetLogger()}
}

type ListUsersQuery struct {
	Query string
	ListQuery
}

func (s *UserService) ListUsers(ctx context.Context, p policy.Principal, q ListUsersQuery) (*models.Page[models.User], error) {
	ctx, span := util.StartSpan(ctx, "UserService.ListUsers")
	defer span.End()

	if err := policy.Require(p, policy.UserList); err != nil {
		return nil, err
	}

	filter := models.UserFilter{Query: strings.TrimSpace(q.Query), Pagination: q.pagination()}
	users, total, err := s.users.ListUsers(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newPage(users, filter.Pagination, total), nil
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (s *UserService) UpdateUserRole(ctx context.Context, p policy.Principal, id uuid.UUID, req *UpdateRoleRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.UpdateUserRole")
	defer span.End()

	if err := policy.Require(p, policy.UserUpdateRole); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(strings.TrimSpace(req.Role))
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	user, err := s.users.UpdateUserRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	util.LoggerFromContext(ctx).Info("User role updated",
		zap.String("user_id", id.String()),
		zap.String("role", string(role)),
		zap.String("by", p.UserID.String()))
	return user, nil
}

// DeleteUser removes an account that owns no stores.
func (s *UserService) DeleteUser(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	ctx, span := util.StartSpan(ctx, "UserService.DeleteUser")
	defer span.End()

	if err := policy.Require(p, policy.UserDelete); err != nil {
		return err
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if len(user.Stores) > 0 {
		return apperror.Conflict(fmt.Sprintf("user owns %d store(s)", len(user.Stores)))
	}
	return s.users.DeleteUser(ctx, id)
}

// PromoteToAdmin grants the admin role to the user with the given email or
// phone number. It bypasses the policy and is meant for operator tooling.
func (s *UserService) PromoteToAdmin(ctx context.Context, email, phone string) (*models.User, error) {
	email = normalizeEmail(email)
	phone = strings.TrimSpace(phone)

	var (
		user *models.User
		err  error
	)
	switch {
	case email != "":
		user, err = s.users.GetUserByEmail(ctx, email)
	case phone != "":
		user, err = s.users.GetUserByPhone(ctx, phone)
	default:
		return nil, apperror.Validation("email or phone is required")
	}
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleAdmin {
		return user, nil
	}
	return s.users.UpdateUserRole(ctx, user.ID, models.RoleAdmin)
}
