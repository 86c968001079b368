package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// HashKey returns a SHA-256 hash of the key.
func HashKey(key string) string {
	key = strings.TrimSpace(key)

	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// Matches reports whether the presented key hashes to storedHash. The
// comparison is constant time.
func Matches(presented, storedHash string) bool {
	h := HashKey(presented)
	return subtle.ConstantTimeCompare([]byte(h), []byte(storedHash)) == 1
}
