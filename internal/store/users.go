package store

import (
	"context"
	"fmt"

	"github.com/adityatechndevoops/OliveStore/internal/models"

	"github.com/google/uuid"
)

// CreateUser inserts a user; ID is generated when unset.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	query := `
		INSERT INTO users (id, name, email, phone_number, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		user.ID, user.Name, user.Email, user.PhoneNumber, user.PasswordHash, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	return translate("create user", err)
}

// GetUserByID retrieves a user with the IDs of the stores they own
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUser(ctx, "SELECT * FROM users WHERE id = $1", id)
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "SELECT * FROM users WHERE email = $1", email)
}

// GetUserByPhone retrieves a user by phone number
func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.getUser(ctx, "SELECT * FROM users WHERE phone_number = $1", phone)
}

func (s *Store) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := s.db.GetContext(ctx, &user, query, arg); err != nil {
		return nil, notFound("user", "get user", err)
	}

	stores, err := s.StoreIDsByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Stores = stores
	return &user, nil
}

// ListUsers retrieves a page of users, newest first
func (s *Store) ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int, error) {
	var c conditions
	if f.Query != "" {
		c.add(`(name ILIKE $%d OR email ILIKE $%d OR phone_number ILIKE $%d)`, likePattern(f.Query))
	}

	users := []models.User{}
	total, err := s.list(ctx, &users, "users", &c, "created_at DESC", f.Limit, f.Offset())
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachStores(ctx, users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

type ownedStore struct {
	OwnerID uuid.UUID `db:"owner_id"`
	ID      uuid.UUID `db:"id"`
}

// attachStores fills Stores for a page of users with one query.
func (s *Store) attachStores(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	var rows []ownedStore
	err := s.db.SelectContext(ctx, &rows,
		"SELECT owner_id, id FROM stores WHERE owner_id = ANY($1::uuid[]) ORDER BY created_at",
		uuidArray(ids))
	if err != nil {
		return fmt.Errorf("failed to list owned stores: %w", err)
	}
	groupStores(users, rows)
	return nil
}

// groupStores assigns each row to its owner; users without stores get an
// empty list.
func groupStores(users []models.User, rows []ownedStore) {
	byOwner := make(map[uuid.UUID][]uuid.UUID, len(users))
	for _, r := range rows {
		byOwner[r.OwnerID] = append(byOwner[r.OwnerID], r.ID)
	}
	for i := range users {
		owned := byOwner[users[i].ID]
		if owned == nil {
			owned = []uuid.UUID{}
		}
		users[i].Stores = owned
	}
}

// UpdateUserRole sets a user's role
func (s *Store) UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2 RETURNING *",
		role, id)
	if err != nil {
		return nil, notFound("user", "update user role", err)
	}

	stores, err := s.StoreIDsByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Stores = stores
	return &user, nil
}

// DeleteUser removes a user. Users that still own stores are rejected by the
// foreign key.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return translate("delete user", err)
	}
	return requireAffected(res, "user")
}
