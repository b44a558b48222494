// Package password wraps bcrypt with the cost this service standardizes on.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is pinned rather than bcrypt.DefaultCost so a library upgrade
// cannot silently change hashing behavior.
const hashCost = 12

var errEmptyPassword = errors.New("password cannot be empty")

// Hash returns the bcrypt hash of the plaintext.
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errEmptyPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches the stored hash.
func Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
