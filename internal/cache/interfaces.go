// Package cache provides the in-process response cache and the HTTP
// middleware that fronts upstream API handlers with it.
package cache

import (
	"errors"
	"time"
)

var (
	// ErrInvalidTTL is returned when an entry is written with a non-positive TTL
	ErrInvalidTTL = errors.New("cache: ttl must be positive")
	// ErrInvalidKey is returned when an entry is written with an empty key
	ErrInvalidKey = errors.New("cache: key must not be empty")
)

// Reader defines the interface for reading cache entries
type Reader interface {
	// Get returns the stored value and true if the key is present and not expired
	Get(key string) ([]byte, bool)
}

// Writer defines the interface for writing cache entries
type Writer interface {
	// Set stores value under key for ttl, replacing any previous entry
	Set(key string, value []byte, ttl time.Duration) error
}

// Invalidator removes entries by key substring
type Invalidator interface {
	// DeleteMatching removes every key containing pattern and returns the count.
	// An empty pattern removes everything.
	DeleteMatching(pattern string) int
}

// Cache is the interface the middleware needs from a store
type Cache interface {
	Reader
	Writer
	Invalidator
}
