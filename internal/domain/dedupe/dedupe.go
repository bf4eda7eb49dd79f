// Package dedupe drops repeated pitch rows from merged fetch results.
package dedupe

import "github.com/okian/pitchpredict/internal/domain/model"

// Deduper records seen keys so each pitch is kept once.
type Deduper interface {
	// SeenAndRecord checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(key string) bool

	Size() int
}

// inMemoryDeduper implements Deduper with a plain set. Fetching is sequential
// so no locking is needed.
type inMemoryDeduper struct {
	seen     map[string]struct{}
	capacity int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{}, d.capacity)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(key string) bool {
	if _, exists := d.seen[key]; exists {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Size() int {
	return len(d.seen)
}

// Pitches returns c without repeated pitches, keeping first occurrences in
// order, and the number of rows dropped.
func Pitches(c model.Collection) (model.Collection, int) {
	d := NewInMemoryDeduper(WithCapacity(len(c)))
	out := make(model.Collection, 0, len(c))
	dropped := 0
	for _, p := range c {
		if p == nil {
			continue
		}
		if d.SeenAndRecord(p.Key()) {
			dropped++
			continue
		}
		out = append(out, p)
	}
	return out, dropped
}
