package console

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/okian/pitchpredict/internal/domain/types"
)

const (
	ruleWidth   = 80
	missing     = "-"
	floatDigits = 3
)

// RenderOption configures a Renderer.
type RenderOption func(*Renderer)

// WithVersion sets the version shown in the preamble.
func WithVersion(v string) RenderOption {
	return func(r *Renderer) {
		if v != "" {
			r.version = v
		}
	}
}

// WithIntegerColumns names columns printed without decimals.
func WithIntegerColumns(cols ...string) RenderOption {
	return func(r *Renderer) {
		for _, c := range cols {
			r.integer[c] = struct{}{}
		}
	}
}

// Renderer prints the run report as text.
type Renderer struct {
	out     io.Writer
	version string
	style   table.Style
	integer map[string]struct{}
}

// NewRenderer creates a Renderer writing to out. Tables use rounded borders
// on a terminal and plain ASCII otherwise.
func NewRenderer(out io.Writer, opts ...RenderOption) *Renderer {
	r := &Renderer{
		out:     out,
		version: "dev",
		style:   table.StyleDefault,
		integer: map[string]struct{}{},
	}
	if IsTerminal(out) {
		r.style = table.StyleRounded
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Preamble prints the banner.
func (r *Renderer) Preamble() {
	r.rule("=")
	r.printf("PitchPredict v%s\n", r.version)
	r.printf("Pitch selection by game situation\n")
	r.rule("=")
}

// Section prints a table under a "Title (n = N)" header.
func (r *Renderer) Section(t types.Table, n int) {
	r.rule("-")
	r.printf("%s (n = %d)\n", t.Title, n)
	r.rule("-")
	r.printf("%s\n", r.Table(t))
}

// Table renders t without a header block.
func (r *Renderer) Table(t types.Table) string {
	style := r.style
	style.Format.Header = text.FormatDefault
	tw := table.NewWriter()
	tw.SetStyle(style)

	header := make(table.Row, 0, len(t.Columns)+1)
	header = append(header, t.Index)
	for _, c := range t.Columns {
		header = append(header, c)
	}
	tw.AppendHeader(header)

	configs := make([]table.ColumnConfig, 0, len(t.Columns)+1)
	configs = append(configs, table.ColumnConfig{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft})
	for i := range t.Columns {
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)

	if t.Empty() {
		empty := make(table.Row, len(header))
		empty[0] = "(no data)"
		for i := 1; i < len(empty); i++ {
			empty[i] = missing
		}
		tw.AppendRow(empty)
		return tw.Render()
	}

	for _, row := range t.Rows {
		out := make(table.Row, 0, len(header))
		out = append(out, row.Key)
		for i, v := range row.Values {
			col := ""
			if i < len(t.Columns) {
				col = t.Columns[i]
			}
			out = append(out, r.format(col, v))
		}
		tw.AppendRow(out)
	}
	return tw.Render()
}

// Message prints a line between rules.
func (r *Renderer) Message(format string, args ...any) {
	r.rule("-")
	r.printf(format+"\n", args...)
	r.rule("-")
}

// Warn prints a warning line.
func (r *Renderer) Warn(format string, args ...any) {
	r.printf("WARNING: "+format+"\n", args...)
}

// Close prints the closing rule.
func (r *Renderer) Close() {
	r.rule("=")
}

func (r *Renderer) format(col string, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missing
	}
	if _, ok := r.integer[col]; ok {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', floatDigits, 64)
}

func (r *Renderer) rule(ch string) {
	r.printf("%s\n", strings.Repeat(ch, ruleWidth))
}

func (r *Renderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}
