// Package repository stores raw remote responses so repeated runs do not
// download the same data again.
package repository

import (
	"context"
	"time"
)

// Entry is a cached response body.
type Entry struct {
	Key       string
	Body      []byte
	FetchedAt time.Time
}

// Age returns how old the entry is at now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// Store provides read/write access to cached responses.
type Store interface {
	// Get returns the entry for key.
	// Returns ErrNotFound if nothing is cached under key.
	Get(ctx context.Context, key string) (Entry, error)

	// Put stores body under key, replacing any previous entry.
	Put(ctx context.Context, key string, body []byte) error

	Close() error
}

// NopStore caches nothing. It is used when caching is disabled.
type NopStore struct{}

func (NopStore) Get(context.Context, string) (Entry, error) { return Entry{}, ErrNotFound }
func (NopStore) Put(context.Context, string, []byte) error  { return nil }
func (NopStore) Close() error                                { return nil }
