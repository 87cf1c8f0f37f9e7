package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var hashCost = bcrypt.DefaultCost

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword compares a password with a hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyOnce sync.Once
	dummy     string
)

// DummyHash returns a fixed hash at the configured cost, compared against
// when the account does not exist.
func DummyHash() string {
	dummyOnce.Do(func() {
		b, err := bcrypt.GenerateFromPassword([]byte("olivestore-no-such-user"), hashCost)
		if err == nil {
			dummy = string(b)
		}
	})
	return dummy
}
