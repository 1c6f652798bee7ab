package common

import "time"

// CacheInterface defines the contract for cache implementations
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(key string, value interface{}, duration time.Duration)

	// Get retrieves a value from cache by key
	// Returns the value and true if found, nil and false otherwise.
	// Values that went through Redis come back JSON-decoded, so callers
	// that need a concrete type should store strings.
	Get(key string) (interface{}, bool)

	// Delete removes a value from cache by key
	Delete(key string)

	// GetOrSet retrieves a value from cache, or loads it using the loader function if not found
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}

// GetString reads a string value from any cache implementation
func GetString(c CacheInterface, key string) (string, bool) {
	val, found := c.Get(key)
	if !found {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}
