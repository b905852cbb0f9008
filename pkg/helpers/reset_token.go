package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewResetToken generates a password-reset secret and the digest that gets
// persisted in its place. The secret (20 random bytes, hex encoded) is only
// ever delivered to the user; storage sees the sha256 digest. The digest is
// deliberately unsalted so a later lookup by HashResetToken can find it.
func NewResetToken() (secret string, digest string, err error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	secret = hex.EncodeToString(b)
	return secret, HashResetToken(secret), nil
}

// HashResetToken returns the hex sha256 digest of a reset secret.
func HashResetToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
