// Package register resolves player names to MLBAM identifiers using the
// Chadwick Bureau person register.
package register

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pitchpredict/pkg/logger"
)

const (
	defaultBaseURL       = "https://raw.githubusercontent.com/chadwickbureau/register/master/data"
	defaultMinSimilarity = 0.5
	defaultMaxAge        = 24 * time.Hour
	shards               = "0123456789abcdef"
)

// Fetcher returns the body at a URL, possibly from a cache no older than maxAge.
type Fetcher interface {
	Get(ctx context.Context, url string, maxAge time.Duration) ([]byte, error)
}

// Person is one register row with an MLBAM id.
type Person struct {
	MLBAM      int
	First      string
	Last       string
	PlayedLast int

	// key is the folded full name with spaces removed.
	key   string
	print *fingerprint
}

// FullName returns "First Last".
func (p Person) FullName() string { return p.First + " " + p.Last }

// Lookup resolves names against the register. The register is downloaded on
// first use and kept for the life of the Lookup.
type Lookup struct {
	fetcher       Fetcher
	baseURL       string
	fuzzy         bool
	maxAge        time.Duration
	minSimilarity float64
	log           logger.Logger

	people []Person
}

// New creates a Lookup that downloads register files through f.
func New(f Fetcher, opts ...Option) *Lookup {
	l := &Lookup{
		fetcher:       f,
		baseURL:       defaultBaseURL,
		maxAge:        defaultMaxAge,
		minSimilarity: defaultMinSimilarity,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logger.Named("register")
	}
	return l
}

// LookupID returns the MLBAM id for a full name.
// Returns ErrInvalidName when the name has fewer than two words and
// ErrPlayerNotFound when nothing matches.
func (l *Lookup) LookupID(ctx context.Context, name string) (int, error) {
	p, err := l.Find(ctx, name)
	if err != nil {
		return 0, err
	}
	return p.MLBAM, nil
}

// Find returns the register entry matching a full name.
func (l *Lookup) Find(ctx context.Context, name string) (Person, error) {
	first, last, err := splitName(name)
	if err != nil {
		return Person{}, fmt.Errorf("%w: %q", err, name)
	}
	if err := l.load(ctx); err != nil {
		return Person{}, err
	}

	if p, ok := l.exact(compact(first + last)); ok {
		l.log.Debug(ctx, "exact match",
			logger.String("name", name), logger.Int("mlbam", p.MLBAM))
		return p, nil
	}

	if l.fuzzy {
		if p, score, ok := l.closest(first + " " + last); ok {
			l.log.Info(ctx, "fuzzy match",
				logger.String("name", name),
				logger.String("matched", p.FullName()),
				logger.Float64("score", score),
				logger.Int("mlbam", p.MLBAM))
			return p, nil
		}
	}
	return Person{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, DisplayName(name))
}

func (l *Lookup) exact(key string) (Person, bool) {
	var (
		best  Person
		found bool
	)
	for _, p := range l.people {
		if p.key != key {
			continue
		}
		if !found || p.PlayedLast > best.PlayedLast {
			best, found = p, true
		}
	}
	return best, found
}

func (l *Lookup) closest(full string) (Person, float64, bool) {
	target := newFingerprint(full)
	var (
		best      Person
		bestScore float64
		found     bool
	)
	for _, p := range l.people {
		score := cosine(target, p.print)
		if score < l.minSimilarity {
			continue
		}
		if !found || score > bestScore || (score == bestScore && p.PlayedLast > best.PlayedLast) {
			best, bestScore, found = p, score, true
		}
	}
	return best, bestScore, found
}

func (l *Lookup) load(ctx context.Context) error {
	if l.people != nil {
		return nil
	}
	start := time.Now()
	people := make([]Person, 0, 1<<15)
	for _, shard := range shards {
		url := fmt.Sprintf("%s/people-%c.csv", strings.TrimRight(l.baseURL, "/"), shard)
		body, err := l.fetcher.Get(ctx, url, l.maxAge)
		if err != nil {
			return fmt.Errorf("download register shard %c: %w", shard, err)
		}
		rows, err := parsePeople(bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("shard %c: %w", shard, err)
		}
		people = append(people, rows...)
	}
	l.people = people
	l.log.Info(ctx, "register loaded",
		logger.Int("people", len(people)),
		logger.Duration("took", time.Since(start)))
	return nil
}

// parsePeople reads a register CSV, keeping rows that carry an MLBAM id.
func parsePeople(r io.Reader) ([]Person, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, name := range []string{"key_mlbam", "name_first", "name_last"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrMalformedFile, name)
		}
	}
	playedCol, hasPlayed := cols["mlb_played_last"]

	var people []Person
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
		}
		id, ok := intField(rec, cols["key_mlbam"])
		if !ok || id <= 0 {
			continue
		}
		p := Person{
			MLBAM: id,
			First: field(rec, cols["name_first"]),
			Last:  field(rec, cols["name_last"]),
		}
		if hasPlayed {
			p.PlayedLast, _ = intField(rec, playedCol)
		}
		first, last := fold(p.First), fold(p.Last)
		p.key = compact(first + last)
		p.print = newFingerprint(first + " " + last)
		people = append(people, p)
	}
	return people, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func intField(rec []string, i int) (int, bool) {
	s := field(rec, i)
	if s == "" {
		return 0, false
	}
	// Some exports write ids as floats ("605400.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}
