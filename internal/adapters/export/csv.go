// Package export writes summary tables to CSV files and reads them back.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/okian/pitchpredict/internal/domain/types"
)

const (
	// TimestampLayout names the files of one run.
	TimestampLayout = "20060102_150405"
	dirPermission   = 0o755
)

// Tables is the set of summary tables produced by one run.
type Tables struct {
	Pitch           types.Table
	Event           types.Table
	BattedBallAgg   types.Table
	BattedBallSplit types.Table
}

// WriteAll writes the four tables into dir, creating it if needed, and
// returns the written paths in a fixed order.
func WriteAll(dir string, ts time.Time, t Tables) ([]string, error) {
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	stamp := ts.Format(TimestampLayout)
	files := []struct {
		prefix string
		table  types.Table
	}{
		{"data_pitch", t.Pitch},
		{"data_event", t.Event},
		{"data_bbe_agg", t.BattedBallAgg},
		{"data_bbe_split", t.BattedBallSplit},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", f.prefix, stamp))
		if err := WriteFile(path, f.table); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteFile writes t to path, replacing any existing file.
func WriteFile(path string, t types.Table) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteCSV(file, t)
}

// WriteCSV writes t with the index column first. Missing values are empty
// cells; floats use the shortest representation that round-trips.
func WriteCSV(w io.Writer, t types.Table) error {
	cw := csv.NewWriter(w)
	header := append([]string{t.Index}, t.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		rec := make([]string, 0, len(row.Values)+1)
		rec = append(rec, row.Key)
		for _, v := range row.Values {
			rec = append(rec, formatFloat(v))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %s: %w", row.Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFile reads a table written by WriteFile.
func ReadFile(path string) (types.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return types.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV reads a table written by WriteCSV. The title is not stored in the
// file and is left empty.
func ReadCSV(r io.Reader) (types.Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return types.Table{}, fmt.Errorf("%w: empty file", ErrMalformedFile)
	}
	if err != nil {
		return types.Table{}, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}

	t := types.NewTable("", header[0], header[1:]...)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return types.Table{}, fmt.Errorf("%w: %w", ErrMalformedFile, err)
		}
		values := make([]float64, len(rec)-1)
		for i, s := range rec[1:] {
			v, err := parseFloat(s)
			if err != nil {
				return types.Table{}, fmt.Errorf("%w: row %s column %s: %w", ErrMalformedFile, rec[0], header[i+1], err)
			}
			values[i] = v
		}
		t.Rows = append(t.Rows, types.Row{Key: rec[0], Values: values})
	}
	return t, nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
