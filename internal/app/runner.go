package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/pitchpredict/internal/adapters/console"
	"github.com/okian/pitchpredict/internal/adapters/export"
	"github.com/okian/pitchpredict/internal/adapters/register"
	"github.com/okian/pitchpredict/internal/domain/model"
)

// Prompt texts, asked in this order.
const (
	PromptPitcher  = "Please enter the pitcher's full name (first and last): "
	PromptBatter   = "Please enter the batter's full name (first and last): "
	PromptBalls    = "Please enter the number of balls in the count: "
	PromptStrikes  = "Please enter the number of strikes in the count: "
	PromptScoreBat = "Please enter the batting team's current score, in runs: "
	PromptScoreFld = "Please enter the pitching team's current score, in runs: "
	PromptYear     = "Please enter the game year: "
)

// Runner drives one interactive session on the console.
type Runner struct {
	svc      *Service
	prompter *console.Prompter
	renderer *console.Renderer
}

// NewRunner creates a Runner.
func NewRunner(svc *Service, p *console.Prompter, r *console.Renderer) *Runner {
	return &Runner{svc: svc, prompter: p, renderer: r}
}

// Run asks for the players and game situation, prints the four summary
// tables and exports them when enabled.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	r.renderer.Preamble()

	c, err := r.askContext(ctx)
	if err != nil {
		return nil, err
	}

	report, err := r.svc.Analyze(ctx, c)
	if err != nil {
		return nil, err
	}
	if report.NoData {
		r.renderer.Warn("no recorded pitches for pitcher %d; tables are empty", c.PitcherID)
	}

	r.renderer.Section(report.PitchData, report.Selected)
	r.renderer.Section(report.EventData, report.Selected)
	r.renderer.Section(report.BattedBallAgg.Table, report.BattedBallAgg.QualifyingCount)
	r.renderer.Section(report.BattedBallSplit.Table, report.BattedBallSplit.QualifyingCount)

	if r.svc.ExportEnabled() {
		if _, err := r.svc.Export(ctx, report); err != nil {
			return report, err
		}
		r.renderer.Message("Generated output files with timestamp = %s", report.CreatedAt.Format(export.TimestampLayout))
	}
	r.renderer.Close()
	return report, nil
}

func (r *Runner) askContext(ctx context.Context) (model.PlayerContext, error) {
	var (
		c   model.PlayerContext
		err error
	)
	if c.PitcherID, err = r.askPlayer(ctx, PromptPitcher); err != nil {
		return c, err
	}
	if c.BatterID, err = r.askPlayer(ctx, PromptBatter); err != nil {
		return c, err
	}

	ints := []struct {
		prompt string
		check  func(int) error
		dst    *int
	}{
		{PromptBalls, console.Range(0, model.MaxBalls), &c.Balls},
		{PromptStrikes, console.Range(0, model.MaxStrikes), &c.Strikes},
		{PromptScoreBat, console.AtLeast(0), &c.ScoreBat},
		{PromptScoreFld, console.AtLeast(0), &c.ScoreFld},
		{PromptYear, console.AtLeast(model.MinYear), &c.GameYear},
	}
	for _, q := range ints {
		if *q.dst, err = r.prompter.AskInt(q.prompt, q.check); err != nil {
			return c, err
		}
	}
	return c, nil
}

// askPlayer re-asks on a malformed name when interactive. An unknown player
// ends the run.
func (r *Runner) askPlayer(ctx context.Context, prompt string) (int, error) {
	for {
		name, err := r.prompter.AskString(prompt)
		if err != nil {
			return 0, err
		}
		id, err := r.svc.ResolvePlayer(ctx, name)
		if err == nil {
			return id, nil
		}
		if errors.Is(err, register.ErrInvalidName) {
			if r.prompter.Interactive() {
				r.prompter.Reject(err)
				continue
			}
			return 0, fmt.Errorf("%w: %w", console.ErrMalformedInput, err)
		}
		return 0, err
	}
}
