// Package referral generates the short invite codes assigned to accounts
// at creation time.
package referral

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// CodeLength is the length of a generated referral code.
const CodeLength = 8

// Generate produces an 8-character uppercase hexadecimal code from 4 bytes
// of a cryptographically strong random source. Uniqueness is enforced by the
// store; callers retry on collision.
func Generate() (string, error) {
	buf := make([]byte, CodeLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
