package register

import (
	"time"

	"github.com/okian/pitchpredict/pkg/logger"
)

// Option configures a Lookup.
type Option func(*Lookup)

// WithBaseURL sets the directory URL holding the people-*.csv files.
func WithBaseURL(u string) Option {
	return func(l *Lookup) {
		if u != "" {
			l.baseURL = u
		}
	}
}

// WithFuzzy enables approximate matching when no exact match exists.
func WithFuzzy(enabled bool) Option {
	return func(l *Lookup) { l.fuzzy = enabled }
}

// WithMaxAge sets how long a cached register file stays fresh.
func WithMaxAge(d time.Duration) Option {
	return func(l *Lookup) { l.maxAge = d }
}

// WithMinSimilarity sets the fuzzy acceptance threshold.
func WithMinSimilarity(v float64) Option {
	return func(l *Lookup) {
		if v > 0 && v <= 1 {
			l.minSimilarity = v
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Lookup) {
		if lg != nil {
			l.log = lg
		}
	}
}
