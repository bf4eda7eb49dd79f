// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Bounds for a valid situational context.
const (
	MaxBalls   = 3
	MaxStrikes = 2
	MinYear    = 1900
)

// Sentinel error kinds for the domain.
var (
	// ErrNoData signals that a pitcher has no recorded pitches upstream.
	ErrNoData = errors.New("no pitch data available")
	// ErrInvalidContext signals a situational context outside baseball's rules.
	ErrInvalidContext = errors.New("invalid player context")
)

// PlayerContext is the situational query the selector compares history against.
// It is built once per run from user input and never changed afterwards.
type PlayerContext struct {
	PitcherID int
	BatterID  int
	Balls     int
	Strikes   int
	ScoreBat  int // batting team runs
	ScoreFld  int // fielding (pitching) team runs
	GameYear  int
}

// ScoreDiff returns the batting team's lead (negative when trailing).
func (c PlayerContext) ScoreDiff() int {
	return c.ScoreBat - c.ScoreFld
}

// Validate checks the context against the bounds of a real game situation.
func (c PlayerContext) Validate() error {
	switch {
	case c.PitcherID <= 0:
		return fmt.Errorf("%w: pitcher id %d", ErrInvalidContext, c.PitcherID)
	case c.BatterID <= 0:
		return fmt.Errorf("%w: batter id %d", ErrInvalidContext, c.BatterID)
	case c.Balls < 0 || c.Balls > MaxBalls:
		return fmt.Errorf("%w: balls must be 0-%d, got %d", ErrInvalidContext, MaxBalls, c.Balls)
	case c.Strikes < 0 || c.Strikes > MaxStrikes:
		return fmt.Errorf("%w: strikes must be 0-%d, got %d", ErrInvalidContext, MaxStrikes, c.Strikes)
	case c.ScoreBat < 0 || c.ScoreFld < 0:
		return fmt.Errorf("%w: scores must not be negative", ErrInvalidContext)
	case c.GameYear < MinYear:
		return fmt.Errorf("%w: game year %d", ErrInvalidContext, c.GameYear)
	}
	return nil
}

// Pitch is one row of pitch-tracking history.
// Batted-ball fields are nil unless the pitch was put in play.
type Pitch struct {
	PitchType    string // e.g. "FF", "SL"
	PitchName    string // e.g. "4-Seam Fastball"
	ReleaseSpeed *float64
	SpinRate     *float64
	PlateX       *float64
	PlateZ       *float64
	Zone         *int

	Balls    int
	Strikes  int
	BatScore int
	FldScore int

	GameDate    time.Time
	GameYear    int
	GamePK      int
	AtBatNumber int
	PitchNumber int

	Pitcher int
	Batter  int
	Stand   string
	PThrows string

	Description string // pitch outcome, e.g. "called_strike"
	Events      string // plate appearance result, set on the final pitch
	Type        string // B, S or X

	BBType        string // ground_ball, line_drive, fly_ball, popup
	LaunchSpeed   *float64
	LaunchAngle   *float64
	EstimatedWOBA *float64
}

// ScoreDiff returns the batting team's lead at the time of the pitch.
func (p *Pitch) ScoreDiff() int {
	return p.BatScore - p.FldScore
}

// InPlay reports whether the pitch resulted in a ball in play.
func (p *Pitch) InPlay() bool {
	if p.Type == "X" {
		return true
	}
	return strings.HasPrefix(p.Description, inPlayPrefix)
}

// After reports whether p happened later than other.
func (p *Pitch) After(other *Pitch) bool {
	if !p.GameDate.Equal(other.GameDate) {
		return p.GameDate.After(other.GameDate)
	}
	if p.GamePK != other.GamePK {
		return p.GamePK > other.GamePK
	}
	if p.AtBatNumber != other.AtBatNumber {
		return p.AtBatNumber > other.AtBatNumber
	}
	return p.PitchNumber > other.PitchNumber
}

// Key identifies a pitch uniquely within the tracking source.
func (p *Pitch) Key() string {
	return fmt.Sprintf("%d-%d-%d", p.GamePK, p.AtBatNumber, p.PitchNumber)
}

const inPlayPrefix = "hit_into_play"

// Collection is an ordered pitch history. Rows are shared read-only.
type Collection []*Pitch
