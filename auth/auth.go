package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrBadNickname = errors.New("nickname must start with @ and contain no spaces")
	ErrBadPIN      = errors.New("password must be exactly 4 digits")
)

const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateToken creates a random base-36 token of the given length.
// Comment, reply and media ids use these: globally unique enough that
// duplicate-delivery detection by id is reliable.
func GenerateToken(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(base36Chars)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}
		b[i] = base36Chars[n.Int64()]
	}
	return string(b), nil
}

// MustToken is GenerateToken for callers that cannot fail; crypto/rand
// exhaustion is not a recoverable condition here.
func MustToken(length int) string {
	tok, err := GenerateToken(length)
	if err != nil {
		panic(err)
	}
	return tok
}

// NewPeerID returns a unique peer identity for one session in a room.
func NewPeerID() string {
	return uuid.NewString()
}

// NormalizeNickname trims whitespace and guarantees the "@" prefix.
// Display casing is preserved; comparisons go through SameNickname.
func NormalizeNickname(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if !strings.HasPrefix(s, "@") {
		s = "@" + s
	}
	return s
}

// CanonicalNickname is the case-folded form used as a storage key.
func CanonicalNickname(s string) string {
	return strings.ToLower(NormalizeNickname(s))
}

// SameNickname compares two nicknames case-insensitively, ignoring the
// optional "@" prefix.
func SameNickname(a, b string) bool {
	return CanonicalNickname(a) == CanonicalNickname(b)
}

// ValidateNickname checks the shape of a nickname after normalization.
func ValidateNickname(s string) error {
	s = NormalizeNickname(s)
	if len(s) < 2 || strings.ContainsAny(s, " \t\n") {
		return ErrBadNickname
	}
	return nil
}

// ValidatePIN checks the 4-digit password. Hashing is an explicit
// non-goal: the PIN is a social courtesy lock, not a security boundary.
func ValidatePIN(s string) error {
	if len(s) != 4 {
		return ErrBadPIN
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ErrBadPIN
		}
	}
	return nil
}
