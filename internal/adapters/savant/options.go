package savant

import (
	"time"

	"github.com/okian/pitchpredict/pkg/logger"
	"github.com/okian/pitchpredict/pkg/metrics"
)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL sets the Statcast search CSV endpoint.
func WithBaseURL(u string) Option {
	return func(f *Fetcher) {
		if u != "" {
			f.baseURL = u
		}
	}
}

// WithSeasons sets the first and last season fetched. A zero end means the
// current year.
func WithSeasons(start, end int) Option {
	return func(f *Fetcher) {
		if start > 0 {
			f.startYear = start
		}
		if end >= 0 {
			f.endYear = end
		}
	}
}

// WithTTL sets how long a season's cached response stays fresh. A response
// fetched after its season ended never expires.
func WithTTL(d time.Duration) Option {
	return func(f *Fetcher) { f.ttl = d }
}

// WithClock sets the time source that decides the current season.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(f *Fetcher) {
		if m != nil {
			f.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}
