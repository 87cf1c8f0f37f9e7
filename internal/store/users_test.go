package store

import (
	"context"
	"testing"

	"github.com/adityatechndevoops/OliveStore/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupStoresFillsEveryUser(t *testing.T) {
	owner, storeless := uuid.New(), uuid.New()
	s1, s2 := uuid.New(), uuid.New()
	users := []models.User{{ID: owner}, {ID: storeless}}

	groupStores(users, []ownedStore{{OwnerID: owner, ID: s1}, {OwnerID: owner, ID: s2}})

	assert.Equal(t, []uuid.UUID{s1, s2}, users[0].Stores)
	assert.NotNil(t, users[1].Stores)
	assert.Empty(t, users[1].Stores)
}

func TestListUsersIncludesOwnedStores(t *testing.T) {
	s := openTestStore(t)
	owner, st := seedStore(t, s)

	users, _, err := s.ListUsers(context.Background(), models.UserFilter{
		Query:      owner.Email,
		Pagination: models.NewPagination(1, 10),
	})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []uuid.UUID{st.ID}, users[0].Stores)
}
