// Package savant retrieves pitch-level history from the Baseball Savant
// Statcast search endpoint.
package savant

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/okian/pitchpredict/internal/domain/dedupe"
	"github.com/okian/pitchpredict/internal/domain/model"
	"github.com/okian/pitchpredict/pkg/logger"
	"github.com/okian/pitchpredict/pkg/metrics"
)

const (
	defaultBaseURL   = "https://baseballsavant.mlb.com/statcast_search/csv"
	defaultStartYear = 2008
	defaultTTL       = 24 * time.Hour
)

// Getter returns the body at a URL, possibly from a cache. A cached copy
// fetched at or after settled is always usable; an earlier one only while it
// is no older than maxAge.
type Getter interface {
	GetSettled(ctx context.Context, url string, settled time.Time, maxAge time.Duration) ([]byte, error)
}

// Fetcher downloads a pitcher's history one season at a time.
type Fetcher struct {
	client    Getter
	baseURL   string
	startYear int
	endYear   int
	ttl       time.Duration
	now       func() time.Time
	metrics   *metrics.Manager
	log       logger.Logger
}

// New creates a Fetcher that downloads through client.
func New(client Getter, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    client,
		baseURL:   defaultBaseURL,
		startYear: defaultStartYear,
		ttl:       defaultTTL,
		now:       time.Now,
		metrics:   metrics.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logger.Named("savant")
	}
	return f
}

// PitchesByPitcher returns every pitch thrown by pitcherID across the
// configured seasons, oldest first.
// Returns model.ErrNoData when no season has any rows.
func (f *Fetcher) PitchesByPitcher(ctx context.Context, pitcherID int) (model.Collection, error) {
	current := f.now().Year()
	last := f.endYear
	if last == 0 || last > current {
		last = current
	}

	var all model.Collection
	for season := f.startYear; season <= last; season++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := f.client.GetSettled(ctx, seasonURL(f.baseURL, pitcherID, season), seasonEnd(season), f.ttl)
		if err != nil {
			return nil, fmt.Errorf("fetch season %d: %w", season, err)
		}
		rows, err := Parse(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse season %d: %w", season, err)
		}

		kept := 0
		for _, p := range rows {
			if p.Pitcher != pitcherID {
				continue
			}
			all = append(all, p)
			kept++
		}
		f.log.Debug(ctx, "season fetched",
			logger.Int("pitcher", pitcherID),
			logger.Int("season", season),
			logger.Int("rows", kept))
	}

	all, dropped := dedupe.Pitches(all)
	if dropped > 0 {
		f.metrics.RecordDuplicatePitches(dropped)
		f.log.Warn(ctx, "duplicate pitches dropped", logger.Int("count", dropped))
	}

	slices.SortStableFunc(all, func(a, b *model.Pitch) int {
		switch {
		case b.After(a):
			return -1
		case a.After(b):
			return 1
		}
		return 0
	})

	f.metrics.UpdatePitchesFetched(len(all))
	f.log.Info(ctx, "pitch history fetched",
		logger.Int("pitcher", pitcherID),
		logger.Int("seasons", max(0, last-f.startYear+1)),
		logger.Int("pitches", len(all)))

	if len(all) == 0 {
		return model.Collection{}, fmt.Errorf("%w: pitcher %d", model.ErrNoData, pitcherID)
	}
	return all, nil
}

// seasonEnd is the instant after which a season's data no longer changes.
func seasonEnd(season int) time.Time {
	return time.Date(season+1, time.January, 1, 0, 0, 0, 0, time.UTC)
}
