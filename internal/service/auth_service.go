package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/auth"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const invalidCredentials = "invalid credentials"

// LoginLimit is the per-identifier login budget.
type LoginLimit struct {
	Attempts int
	Window   time.Duration
}

// AuthService registers users and exchanges credentials for tokens
type AuthService struct {
	users   UserRepository
	tokens  TokenService
	limiter LoginLimiter
	limit   LoginLimit
	logger  *zap.Logger

	checkPassword func(password, hash string) bool
}

// NewAuthService creates an auth service. limiter may be nil.
func NewAuthService(users UserRepository, tokens TokenService, limiter LoginLimiter, limit LoginLimit) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		limiter: limiter,
		limit:   limit,
		logger:  util.GetLogger(),

		checkPassword: auth.CheckPassword,
	}
}

type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// AuthResponse is returned on register and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with role new. The caller cannot pick a role.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Register")
	defer span.End()

	user := &models.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       normalizeEmail(req.Email),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Role:        models.RoleNew,
		Stores:      []uuid.UUID{},
	}
	if user.Name == "" || user.Email == "" || user.PhoneNumber == "" {
		return nil, apperror.Validation("name, email and phoneNumber are required")
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return nil, apperror.Validation("email is not valid")
	}
	if len(req.Password) < auth.MinPasswordLength {
		return nil, apperror.Validation(fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	user.PasswordHash = hash

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	util.LoggerFromContext(ctx).Info("User registered", zap.String("user_id", user.ID.String()))
	return s.respond(user)
}

// Login authenticates by email or phone number. Unknown users and wrong
// passwords get the same error.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	email := normalizeEmail(req.Email)
	phone := strings.TrimSpace(req.PhoneNumber)
	identifier := email
	if identifier == "" {
		identifier = phone
	}
	if identifier == "" || req.Password == "" {
		return nil, apperror.Validation("email or phoneNumber and password are required")
	}

	if s.limiter != nil && s.limit.Attempts > 0 {
		allowed, err := s.limiter.AllowLogin(ctx, identifier, s.limit.Attempts, s.limit.Window)
		if err != nil {
			s.logger.Warn("Login rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			util.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
			return nil, apperror.TooManyRequests("too many login attempts, try again later")
		}
	}

	var (
		user *models.User
		err  error
	)
	if email != "" {
		user, err = s.users.GetUserByEmail(ctx, email)
	} else {
		user, err = s.users.GetUserByPhone(ctx, phone)
	}
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.checkPassword(req.Password, auth.DummyHash())
			util.LoginAttemptsTotal.WithLabelValues("failed").Inc()
			return nil, apperror.Unauthorized(invalidCredentials)
		}
		return nil, err
	}
	if !s.checkPassword(req.Password, user.PasswordHash) {
		util.LoginAttemptsTotal.WithLabelValues("failed").Inc()
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	util.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return s.respond(user)
}

func (s *AuthService) respond(user *models.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &AuthResponse{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to the current user record. The role
// comes from the database, not from the token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperror.Unauthorized("token expired")
		}
		return nil, apperror.Unauthorized("invalid token")
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("user no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// Me returns the caller's profile with owned store IDs.
func (s *AuthService) Me(ctx context.Context, user *models.User) (*models.User, error) {
	return s.users.GetUserByID(ctx, user.ID)
}
