// Package cache stores raw SPARQL responses in memory and on disk.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// keyPrefix versions the key scheme; bump it when the stored format changes
const keyPrefix = "ontolens:v1:"

// CacheKey derives the key of a query against an endpoint. Whitespace
// differences in the query text do not produce distinct keys.
func CacheKey(endpoint, query string) string {
	h := sha256.New()
	h.Write([]byte(strings.TrimRight(endpoint, "/")))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(strings.Fields(query), " ")))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// fileName maps a key onto a safe file name
func fileName(key string) string {
	return strings.ReplaceAll(key, ":", "_")
}
