package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/service"
	"github.com/adityatechndevoops/OliveStore/internal/service/servicetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPromotesByEmail(t *testing.T) {
	repo := servicetest.NewMemory()
	u := &models.User{Name: "Meera", Email: "meera@olive.test", PhoneNumber: "9333333333", Role: models.RoleNew}
	require.NoError(t, repo.CreateUser(context.Background(), u))

	var out bytes.Buffer
	err := run(context.Background(), []string{"--email", "Meera@Olive.test"}, service.NewUserService(repo), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "is now admin")

	got, err := repo.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestRunRequiresIdentifier(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), nil, service.NewUserService(servicetest.NewMemory()), &out)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "-email")
}

func TestRunUnknownUser(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"--phone", "9000000000"}, service.NewUserService(servicetest.NewMemory()), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
