package auth

import (
	"crypto/rand"
	"encoding/hex"
)

const resetTokenBytes = 32

// NewResetToken returns a cryptographically random token for password
// reset links. 32 bytes of entropy, hex encoded.
func NewResetToken() string {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}
