package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is a user's access role.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleAgent    Role = "agent"
	RoleMerchant Role = "merchant"
	RoleStaff    Role = "staff"
	RoleViewer   Role = "viewer"
	RoleNew      Role = "new"
)

var roles = map[Role]struct{}{
	RoleAdmin:    {},
	RoleManager:  {},
	RoleAgent:    {},
	RoleMerchant: {},
	RoleStaff:    {},
	RoleViewer:   {},
	RoleNew:      {},
}

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roles[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User represents a platform account
type User struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	Name         string      `db:"name" json:"name"`
	Email        string      `db:"email" json:"email"`
	PhoneNumber  string      `db:"phone_number" json:"phoneNumber"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Role         Role        `db:"role" json:"role"`
	Stores       []uuid.UUID `db:"-" json:"stores"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// OwnsStore reports whether storeID is in the user's owned store set.
func (u *User) OwnsStore(storeID uuid.UUID) bool {
	for _, id := range u.Stores {
		if id == storeID {
			return true
		}
	}
	return false
}

// UserFilter narrows user listings.
type UserFilter struct {
	Query string
	Pagination
}
