package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// SumSHA256 returns the SHA-256 checksum of the provided data.
func SumSHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// Fingerprint returns the hex SHA-256 of s. Used to key caches by secrets
// (bearer tokens) without keeping the secret itself in memory.
func Fingerprint(s string) string {
	sum := SumSHA256([]byte(s))
	return hex.EncodeToString(sum[:])
}
