// Package digest turns a selected pitch subset into descriptive summary tables.
//
// Every digester is independent, reads its input without modifying it, and
// returns an empty table (columns set, no rows) for an empty subset.
package digest

import (
	"math"
	"slices"
	"strings"

	"github.com/okian/pitchpredict/internal/domain/model"
	"github.com/okian/pitchpredict/internal/domain/types"
)

// Table titles as shown on the console.
const (
	TitlePitchData       = "Basic Pitch Data"
	TitlePitchEventData  = "Pitch Event Data"
	TitleBattedBallAgg   = "Batted Ball Event Data (Aggregated)"
	TitleBattedBallSplit = "Batted Ball Event Data (Split)"
)

// Column names.
const (
	ColCount         = "count"
	ColPercent       = "percent"
	ColRate          = "rate"
	ColShare         = "share"
	ColReleaseSpeed  = "release_speed"
	ColSpinRate      = "spin_rate"
	ColPlateX        = "plate_x"
	ColPlateZ        = "plate_z"
	ColLaunchSpeed   = "launch_speed"
	ColLaunchAngle   = "launch_angle"
	ColHardHitRate   = "hard_hit_rate"
	ColXWOBA         = "xwoba"
	ColGroundBallPct = "ground_ball_rate"
	ColLineDrivePct  = "line_drive_rate"
	ColFlyBallPct    = "fly_ball_rate"
	ColPopupPct      = "popup_rate"
)

// Batted-ball types reported by the tracking source.
const (
	GroundBall = "ground_ball"
	LineDrive  = "line_drive"
	FlyBall    = "fly_ball"
	Popup      = "popup"
	Unknown    = "unknown"
)

// hardHitSpeed is the exit velocity (mph) at which contact counts as hard hit.
const hardHitSpeed = 95.0

const unknownPitchType = "UN"

// BattedBallResult pairs a batted-ball table with the number of balls in play
// it was computed from.
type BattedBallResult struct {
	Table           types.Table
	QualifyingCount int
}

// mean accumulates an average over nullable values.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil || math.IsNaN(*v) {
		return
	}
	m.sum += *v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.n)
}

// contact accumulates batted-ball quality for a group of balls in play.
type contact struct {
	count    int
	speed    mean
	angle    mean
	xwoba    mean
	measured int
	hard     int
}

func (c *contact) add(p *model.Pitch) {
	c.count++
	c.speed.add(p.LaunchSpeed)
	c.angle.add(p.LaunchAngle)
	c.xwoba.add(p.EstimatedWOBA)
	if p.LaunchSpeed != nil && !math.IsNaN(*p.LaunchSpeed) {
		c.measured++
		if *p.LaunchSpeed >= hardHitSpeed {
			c.hard++
		}
	}
}

func (c *contact) hardHitRate() float64 {
	if c.measured == 0 {
		return math.NaN()
	}
	return float64(c.hard) / float64(c.measured)
}

// sortByCount orders rows by the count column descending, key ascending.
func sortByCount(rows []types.Row, countIdx int) {
	slices.SortStableFunc(rows, func(a, b types.Row) int {
		if a.Values[countIdx] != b.Values[countIdx] {
			if a.Values[countIdx] > b.Values[countIdx] {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Key, b.Key)
	})
}

// PitchData groups pitches by type and reports usage, velocity, spin and location.
func PitchData(pitches model.Collection) types.Table {
	table := types.NewTable(TitlePitchData, "pitch_type",
		ColCount, ColPercent, ColReleaseSpeed, ColSpinRate, ColPlateX, ColPlateZ)

	type group struct {
		count               int
		speed, spin, px, pz mean
	}
	groups := make(map[string]*group)
	total := 0
	for _, p := range pitches {
		if p == nil {
			continue
		}
		key := strings.TrimSpace(p.PitchType)
		if key == "" {
			key = unknownPitchType
		}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		g.count++
		g.speed.add(p.ReleaseSpeed)
		g.spin.add(p.SpinRate)
		g.px.add(p.PlateX)
		g.pz.add(p.PlateZ)
		total++
	}
	if total == 0 {
		return table
	}

	for key, g := range groups {
		table.Rows = append(table.Rows, types.Row{
			Key: key,
			Values: []float64{
				float64(g.count),
				100 * float64(g.count) / float64(total),
				g.speed.value(),
				g.spin.value(),
				g.px.value(),
				g.pz.value(),
			},
		})
	}
	sortByCount(table.Rows, 0)
	return table
}

// eventCategories folds tracking-source pitch descriptions into outcome categories.
var eventCategories = map[string]string{
	"ball":                    "ball",
	"blocked_ball":            "ball",
	"intent_ball":             "ball",
	"pitchout":                "ball",
	"called_strike":           "called_strike",
	"swinging_strike":         "swinging_strike",
	"swinging_strike_blocked": "swinging_strike",
	"missed_bunt":             "swinging_strike",
	"foul":                    "foul",
	"foul_bunt":               "foul",
	"foul_pitchout":           "foul",
	"bunt_foul_tip":           "foul_tip",
	"foul_tip":                "foul_tip",
	"hit_by_pitch":            "hit_by_pitch",
}

// EventCategory returns the outcome category for a pitch.
func EventCategory(p *model.Pitch) string {
	if p.InPlay() {
		return "in_play"
	}
	desc := strings.TrimSpace(p.Description)
	if cat, ok := eventCategories[desc]; ok {
		return cat
	}
	if desc == "" {
		return Unknown
	}
	return desc
}

// PitchEventData reports how often each outcome category occurred.
// Categories are mutually exclusive so rates sum to 1 for a non-empty subset.
func PitchEventData(pitches model.Collection) types.Table {
	table := types.NewTable(TitlePitchEventData, "event", ColCount, ColRate)

	counts := make(map[string]int)
	total := 0
	for _, p := range pitches {
		if p == nil {
			continue
		}
		counts[EventCategory(p)]++
		total++
	}
	if total == 0 {
		return table
	}

	for key, n := range counts {
		table.Rows = append(table.Rows, types.Row{
			Key:    key,
			Values: []float64{float64(n), float64(n) / float64(total)},
		})
	}
	sortByCount(table.Rows, 0)
	return table
}

func inPlay(pitches model.Collection) model.Collection {
	out := make(model.Collection, 0, len(pitches))
	for _, p := range pitches {
		if p != nil && p.InPlay() {
			out = append(out, p)
		}
	}
	return out
}

func battedBallType(p *model.Pitch) string {
	t := strings.TrimSpace(p.BBType)
	if t == "" {
		return Unknown
	}
	return t
}

// BattedBallData summarizes contact quality over all balls in play as one row.
func BattedBallData(pitches model.Collection) BattedBallResult {
	table := types.NewTable(TitleBattedBallAgg, "batted_balls",
		ColLaunchSpeed, ColLaunchAngle, ColHardHitRate, ColXWOBA,
		ColGroundBallPct, ColLineDrivePct, ColFlyBallPct, ColPopupPct)

	bip := inPlay(pitches)
	if len(bip) == 0 {
		return BattedBallResult{Table: table}
	}

	var all contact
	kinds := make(map[string]int)
	for _, p := range bip {
		all.add(p)
		kinds[battedBallType(p)]++
	}
	n := float64(len(bip))

	table.Rows = append(table.Rows, types.Row{
		Key: "all",
		Values: []float64{
			all.speed.value(),
			all.angle.value(),
			all.hardHitRate(),
			all.xwoba.value(),
			float64(kinds[GroundBall]) / n,
			float64(kinds[LineDrive]) / n,
			float64(kinds[FlyBall]) / n,
			float64(kinds[Popup]) / n,
		},
	})
	return BattedBallResult{Table: table, QualifyingCount: len(bip)}
}

// BattedBallDataSplit reports contact quality per batted-ball type.
// Only types that occurred get a row.
func BattedBallDataSplit(pitches model.Collection) BattedBallResult {
	table := types.NewTable(TitleBattedBallSplit, "bb_type",
		ColCount, ColShare, ColLaunchSpeed, ColLaunchAngle, ColHardHitRate, ColXWOBA)

	bip := inPlay(pitches)
	if len(bip) == 0 {
		return BattedBallResult{Table: table}
	}

	groups := make(map[string]*contact)
	for _, p := range bip {
		key := battedBallType(p)
		g, ok := groups[key]
		if !ok {
			g = &contact{}
			groups[key] = g
		}
		g.add(p)
	}

	n := float64(len(bip))
	for key, g := range groups {
		table.Rows = append(table.Rows, types.Row{
			Key: key,
			Values: []float64{
				float64(g.count),
				float64(g.count) / n,
				g.speed.value(),
				g.angle.value(),
				g.hardHitRate(),
				g.xwoba.value(),
			},
		})
	}
	sortByCount(table.Rows, 0)
	return BattedBallResult{Table: table, QualifyingCount: len(bip)}
}
