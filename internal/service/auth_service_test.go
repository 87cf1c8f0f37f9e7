package service

import (
	"context"
	"testing"
	"time"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/auth"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/policy"
	"github.com/adityatechndevoops/OliveStore/internal/service/servicetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) (*AuthService, *servicetest.Memory, *servicetest.Limiter) {
	t.Helper()
	repo := servicetest.NewMemory()
	limiter := servicetest.NewLimiter()
	svc := NewAuthService(repo, servicetest.Tokens{}, limiter, LoginLimit{Attempts: 3, Window: time.Minute})
	return svc, repo, limiter
}

func registerAsha(t *testing.T, svc *AuthService) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Name:        "Asha",
		Email:       " Asha@Olive.test ",
		PhoneNumber: "9876543210",
		Password:    "secret1",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	svc, _, _ := newAuth(t)

	resp := registerAsha(t, svc)
	assert.Equal(t, models.RoleNew, resp.User.Role)
	assert.Equal(t, "asha@olive.test", resp.User.Email)
	assert.NotEqual(t, "secret1", resp.User.PasswordHash)
	assert.NotEmpty(t, resp.Token)
	assert.NotNil(t, resp.User.Stores)
}

func TestRegisterRejects(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()
	registerAsha(t, svc)

	cases := map[string]RegisterRequest{
		"missing name":    {Email: "b@olive.test", PhoneNumber: "1", Password: "secret1"},
		"bad email":       {Name: "B", Email: "not-an-email", PhoneNumber: "1", Password: "secret1"},
		"short password":  {Name: "B", Email: "b@olive.test", PhoneNumber: "1", Password: "12345"},
		"duplicate email": {Name: "B", Email: "asha@olive.test", PhoneNumber: "2", Password: "secret1"},
		"duplicate phone": {Name: "B", Email: "b@olive.test", PhoneNumber: "9876543210", Password: "secret1"},
	}
	for name, req := range cases {
		req := req
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, &req)
			assert.Error(t, err)
			status := apperror.From(err).Status
			assert.Contains(t, []int{400, 409}, status)
		})
	}

	_, err := svc.Register(ctx, &RegisterRequest{Name: "B", Email: "asha@olive.test", PhoneNumber: "3", Password: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()
	registered := registerAsha(t, svc)

	byEmail, err := svc.Login(ctx, &LoginRequest{Email: "ASHA@olive.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, byEmail.User.ID)

	byPhone, err := svc.Login(ctx, &LoginRequest{PhoneNumber: "9876543210", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, byPhone.User.ID)
}

func TestLoginFailuresShareMessage(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()
	registerAsha(t, svc)

	_, err := svc.Login(ctx, &LoginRequest{Email: "asha@olive.test"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, wrongPassword := svc.Login(ctx, &LoginRequest{Email: "asha@olive.test", Password: "nope"})
	_, unknownUser := svc.Login(ctx, &LoginRequest{Email: "ghost@olive.test", Password: "nope"})

	assert.ErrorIs(t, wrongPassword, apperror.ErrUnauthorized)
	assert.ErrorIs(t, unknownUser, apperror.ErrUnauthorized)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestLoginRateLimited(t *testing.T) {
	svc, _, limiter := newAuth(t)
	ctx := context.Background()
	registerAsha(t, svc)

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, &LoginRequest{Email: "asha@olive.test", Password: "bad"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	}
	_, err := svc.Login(ctx, &LoginRequest{Email: "asha@olive.test", Password: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrTooManyRequests)

	limiter.Err = servicetest.ErrUnavailable
	_, err = svc.Login(ctx, &LoginRequest{Email: "asha@olive.test", Password: "secret1"})
	assert.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	svc, repo, _ := newAuth(t)
	ctx := context.Background()
	resp := registerAsha(t, svc)

	_, err := repo.UpdateUserRole(ctx, resp.User.ID, models.RoleMerchant)
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMerchant, user.Role)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "expired")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	require.NoError(t, repo.DeleteUser(ctx, resp.User.ID))
	_, err = svc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestMeIncludesOwnedStores(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.repo, servicetest.Tokens{}, nil, LoginLimit{})

	me, err := svc.Me(context.Background(), &models.User{ID: f.merchant.UserID})
	require.NoError(t, err)
	assert.Equal(t, policy.NewPrincipal(me), f.merchant)
	assert.True(t, me.OwnsStore(f.store.ID))
}

func TestLoginUnknownUserStillComparesPassword(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()
	registerAsha(t, svc)

	var hashes []string
	svc.checkPassword = func(password, hash string) bool {
		hashes = append(hashes, hash)
		return false
	}

	_, err := svc.Login(ctx, &LoginRequest{Email: "ghost@olive.test", Password: "nope"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = svc.Login(ctx, &LoginRequest{PhoneNumber: "9000000999", Password: "nope"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = svc.Login(ctx, &LoginRequest{Email: "asha@olive.test", Password: "nope"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	require.Len(t, hashes, 3)
	assert.Equal(t, auth.DummyHash(), hashes[0])
	assert.Equal(t, auth.DummyHash(), hashes[1])
	assert.NotEqual(t, auth.DummyHash(), hashes[2])
}
