package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	orderIDPrefix   = "KRN-"
	orderIDLength   = 4
	orderIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateOrderID returns a candidate human-readable order ID such as
// KRN-7QX2. Uniqueness is enforced by the database, not here.
func GenerateOrderID() (string, error) {
	b := make([]byte, orderIDLength)
	max := big.NewInt(int64(len(orderIDAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate order id: %w", err)
		}
		b[i] = orderIDAlphabet[n.Int64()]
	}
	return orderIDPrefix + string(b), nil
}
