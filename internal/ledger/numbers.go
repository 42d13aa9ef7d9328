package ledger

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Account numbers are opaque 10-digit numeric strings with a non-zero leading
// digit. Generation is random; uniqueness is enforced by the store and the
// engine retries on collision.
const (
	accountNumberMin  = 1_000_000_000
	accountNumberSpan = 9_000_000_000
)

func newAccountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(accountNumberSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate account number: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+accountNumberMin), nil
}
