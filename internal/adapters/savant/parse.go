package savant

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pitchpredict/internal/domain/model"
)

const dateLayout = "2006-01-02"

var requiredColumns = []string{
	"pitch_type", "game_date", "game_pk", "at_bat_number", "pitch_number",
	"pitcher", "batter", "balls", "strikes",
}

// columns maps header names to record positions.
type columns map[string]int

func (c columns) str(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	v := strings.TrimSpace(rec[i])
	if v == "null" || v == "NA" {
		return ""
	}
	return v
}

func (c columns) integer(rec []string, name string) (int, error) {
	s := c.str(rec, name)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformedResponse, name, s)
	}
	return int(f), nil
}

func (c columns) optFloat(rec []string, name string) *float64 {
	s := c.str(rec, name)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func (c columns) optInt(rec []string, name string) *int {
	f := c.optFloat(rec, name)
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

// Parse reads a Statcast search CSV. Columns are located by header name so
// upstream column order changes are tolerated. An empty body yields no rows.
func Parse(r io.Reader) (model.Collection, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return model.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedResponse, err)
	}

	cols := make(columns, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.Trim(strings.TrimSpace(h), `"`)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrMalformedResponse, name)
		}
	}

	out := model.Collection{}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedResponse, line, err)
		}
		p, err := parseRow(cols, rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func parseRow(cols columns, rec []string) (*model.Pitch, error) {
	p := &model.Pitch{
		PitchType:     cols.str(rec, "pitch_type"),
		PitchName:     cols.str(rec, "pitch_name"),
		ReleaseSpeed:  cols.optFloat(rec, "release_speed"),
		SpinRate:      cols.optFloat(rec, "release_spin_rate"),
		PlateX:        cols.optFloat(rec, "plate_x"),
		PlateZ:        cols.optFloat(rec, "plate_z"),
		Zone:          cols.optInt(rec, "zone"),
		Stand:         cols.str(rec, "stand"),
		PThrows:       cols.str(rec, "p_throws"),
		Description:   cols.str(rec, "description"),
		Events:        cols.str(rec, "events"),
		Type:          cols.str(rec, "type"),
		BBType:        cols.str(rec, "bb_type"),
		LaunchSpeed:   cols.optFloat(rec, "launch_speed"),
		LaunchAngle:   cols.optFloat(rec, "launch_angle"),
		EstimatedWOBA: cols.optFloat(rec, "estimated_woba_using_speedangle"),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"balls", &p.Balls},
		{"strikes", &p.Strikes},
		{"bat_score", &p.BatScore},
		{"fld_score", &p.FldScore},
		{"game_year", &p.GameYear},
		{"game_pk", &p.GamePK},
		{"at_bat_number", &p.AtBatNumber},
		{"pitch_number", &p.PitchNumber},
		{"pitcher", &p.Pitcher},
		{"batter", &p.Batter},
	}
	for _, f := range ints {
		v, err := cols.integer(rec, f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	if d := cols.str(rec, "game_date"); d != "" {
		ts, err := time.Parse(dateLayout, d)
		if err != nil {
			return nil, fmt.Errorf("%w: game_date=%q", ErrMalformedResponse, d)
		}
		p.GameDate = ts
		if p.GameYear == 0 {
			p.GameYear = ts.Year()
		}
	}
	return p, nil
}
