// Package similarity narrows a pitcher's history to the pitches thrown in
// situations most like a given context.
package similarity

import (
	"math"
	"slices"

	"github.com/okian/pitchpredict/internal/domain/model"
)

// Default selection configuration constants.
const (
	defaultBatterWeight  = 4.0
	defaultCountWeight   = 2.0
	defaultScoreWeight   = 1.0
	defaultYearWeight    = 1.0
	defaultMinSimilarity = 0.5
	defaultSampleSize    = 1000

	maxBallsDelta   = 3.0
	maxStrikesDelta = 2.0
)

// Weights sets how much each situational component contributes to a score.
type Weights struct {
	Batter float64 // same batter faced
	Count  float64 // balls and strikes
	Score  float64 // score differential
	Year   float64 // season closeness
}

// Total returns the maximum attainable raw score.
func (w Weights) Total() float64 {
	return w.Batter + w.Count + w.Score + w.Year
}

// DefaultWeights returns the weights used when none are configured.
func DefaultWeights() Weights {
	return Weights{
		Batter: defaultBatterWeight,
		Count:  defaultCountWeight,
		Score:  defaultScoreWeight,
		Year:   defaultYearWeight,
	}
}

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithWeights sets the component weights. Negative weights are ignored and
// an all-zero set keeps the defaults.
func WithWeights(w Weights) Option {
	return func(s *Selector) {
		clean := Weights{
			Batter: math.Max(0, w.Batter),
			Count:  math.Max(0, w.Count),
			Score:  math.Max(0, w.Score),
			Year:   math.Max(0, w.Year),
		}
		if clean.Total() > 0 {
			s.weights = clean
		}
	}
}

// WithMinSimilarity sets the normalized score a pitch needs to be selected.
func WithMinSimilarity(threshold float64) Option {
	return func(s *Selector) {
		if threshold >= 0 && threshold <= 1 {
			s.minSimilarity = threshold
		}
	}
}

// WithSampleSize caps how many pitches are returned. Zero means no cap.
func WithSampleSize(n int) Option {
	return func(s *Selector) {
		if n >= 0 {
			s.sampleSize = n
		}
	}
}

// Selector scores pitch history against a context and keeps the closest rows.
// It holds no state between calls.
type Selector struct {
	weights       Weights
	minSimilarity float64
	sampleSize    int
}

// NewSelector creates a selector with configuration options.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		weights:       DefaultWeights(),
		minSimilarity: defaultMinSimilarity,
		sampleSize:    defaultSampleSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Weights returns the configured weights.
func (s *Selector) Weights() Weights { return s.weights }

// Score returns the similarity of p to c in [0,1].
func (s *Selector) Score(p *model.Pitch, c model.PlayerContext) float64 {
	total := s.weights.Total()
	if total == 0 {
		return 0
	}

	var batter float64
	if p.Batter == c.BatterID {
		batter = 1
	}

	ballsDelta := math.Min(math.Abs(float64(p.Balls-c.Balls)), maxBallsDelta) / maxBallsDelta
	strikesDelta := math.Min(math.Abs(float64(p.Strikes-c.Strikes)), maxStrikesDelta) / maxStrikesDelta
	count := 1 - (ballsDelta+strikesDelta)/2

	score := 1 / (1 + math.Abs(float64(p.ScoreDiff()-c.ScoreDiff())))
	year := 1 / (1 + math.Abs(float64(p.GameYear-c.GameYear)))

	raw := s.weights.Batter*batter +
		s.weights.Count*count +
		s.weights.Score*score +
		s.weights.Year*year

	return raw / total
}

type scored struct {
	pitch *model.Pitch
	score float64
}

// Select returns the pitches most similar to c, best first.
//
// Pitches at or above the similarity threshold are kept; when none qualify the
// best-scoring pitches are returned instead so a non-empty history never
// produces an empty selection. Equal scores prefer the more recent pitch.
// The result shares its elements with history.
func (s *Selector) Select(history model.Collection, c model.PlayerContext) model.Collection {
	if len(history) == 0 {
		return model.Collection{}
	}

	ranked := make([]scored, 0, len(history))
	for _, p := range history {
		if p == nil {
			continue
		}
		ranked = append(ranked, scored{pitch: p, score: s.Score(p, c)})
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		case a.pitch.After(b.pitch):
			return -1
		case b.pitch.After(a.pitch):
			return 1
		}
		return 0
	})

	cut := len(ranked)
	for i, r := range ranked {
		if r.score < s.minSimilarity {
			cut = i
			break
		}
	}
	if cut == 0 {
		cut = len(ranked)
	}
	if s.sampleSize > 0 && cut > s.sampleSize {
		cut = s.sampleSize
	}

	out := make(model.Collection, cut)
	for i := range out {
		out[i] = ranked[i].pitch
	}
	return out
}
