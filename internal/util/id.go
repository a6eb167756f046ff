package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random identifier like "doc_3f9a..." for the given entity
// prefix, or bare hex when the prefix is empty.
func NewID(prefix string) string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}
