package repository

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrNotFound = errors.New("cache entry not found")
	ErrLocked   = errors.New("cache is in use by another process")
)
