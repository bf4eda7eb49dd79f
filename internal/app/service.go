// Package service runs a PitchPredict analysis: it resolves players, pulls
// the pitcher's history, narrows it to the most similar situations and
// digests the result into summary tables.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pitchpredict/internal/adapters/export"
	"github.com/okian/pitchpredict/internal/domain/digest"
	"github.com/okian/pitchpredict/internal/domain/model"
	"github.com/okian/pitchpredict/internal/domain/similarity"
	"github.com/okian/pitchpredict/internal/domain/types"
	"github.com/okian/pitchpredict/pkg/logger"
	"github.com/okian/pitchpredict/pkg/metrics"
)

// PlayerResolver maps a full player name to its MLBAM identifier.
type PlayerResolver interface {
	LookupID(ctx context.Context, name string) (int, error)
}

// PitchSource returns every recorded pitch thrown by a pitcher.
type PitchSource interface {
	PitchesByPitcher(ctx context.Context, pitcherID int) (model.Collection, error)
}

// ErrNotConfigured is returned when a required collaborator is missing.
var ErrNotConfigured = errors.New("service not configured")

// Report is the outcome of one analysis.
type Report struct {
	RunID     string
	CreatedAt time.Time
	Context   model.PlayerContext

	// History is the size of the pitcher's full history, Selected the size
	// of the similar subset all four tables are built from.
	History  int
	Selected int
	// NoData is set when the pitcher has no recorded pitches.
	NoData bool

	PitchData       types.Table
	EventData       types.Table
	BattedBallAgg   digest.BattedBallResult
	BattedBallSplit digest.BattedBallResult
}

// Tables returns the four summary tables for export.
func (r *Report) Tables() export.Tables {
	return export.Tables{
		Pitch:           r.PitchData,
		Event:           r.EventData,
		BattedBallAgg:   r.BattedBallAgg.Table,
		BattedBallSplit: r.BattedBallSplit.Table,
	}
}

// Service coordinates one analysis run.
type Service struct {
	resolver PlayerResolver
	source   PitchSource
	selector *similarity.Selector
	metrics  *metrics.Manager
	logger   logger.Logger
	now      func() time.Time
	runID    string

	outputDir string
	export    bool
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithResolver sets the player name resolver.
func WithResolver(r PlayerResolver) Option {
	return func(s *Service) { s.resolver = r }
}

// WithSource sets the pitch history source.
func WithSource(src PitchSource) Option {
	return func(s *Service) { s.source = src }
}

// WithSelector sets the similarity selector.
func WithSelector(sel *similarity.Selector) Option {
	return func(s *Service) {
		if sel != nil {
			s.selector = sel
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithExport enables CSV export into dir.
func WithExport(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.outputDir = dir
			s.export = true
		}
	}
}

// WithClock sets the time source for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}

// New constructs a Service. A resolver and a source must be supplied.
func New(opts ...Option) *Service {
	s := &Service{
		selector: similarity.NewSelector(),
		metrics:  metrics.Default(),
		now:      time.Now,
		runID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	s.logger = s.logger.With(logger.String("run_id", s.runID))
	return s
}

// RunID identifies this run in logs and reports.
func (s *Service) RunID() string { return s.runID }

// ExportEnabled reports whether Export writes files.
func (s *Service) ExportEnabled() bool { return s.export }

// ResolvePlayer returns the identifier for a full player name.
func (s *Service) ResolvePlayer(ctx context.Context, name string) (int, error) {
	if s.resolver == nil {
		return 0, fmt.Errorf("%w: no player resolver", ErrNotConfigured)
	}
	start := time.Now()
	id, err := s.resolver.LookupID(ctx, name)
	s.metrics.ObserveStage("resolve", time.Since(start))
	if err != nil {
		s.logger.Warn(ctx, "player lookup failed", logger.String("name", name), logger.Error(err))
		return 0, err
	}
	s.logger.Info(ctx, "player resolved", logger.String("name", name), logger.Int("id", id))
	return id, nil
}

// Analyze fetches the pitcher's history, selects the pitches most similar
// to c and digests them. A pitcher without history yields a report with
// empty tables and NoData set.
func (s *Service) Analyze(ctx context.Context, c model.PlayerContext) (*Report, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: no pitch source", ErrNotConfigured)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "context created",
		logger.Int("pitcher_id", c.PitcherID),
		logger.Int("batter_id", c.BatterID),
		logger.Int("balls", c.Balls),
		logger.Int("strikes", c.Strikes),
		logger.Int("score_bat", c.ScoreBat),
		logger.Int("score_fld", c.ScoreFld),
		logger.Int("game_year", c.GameYear))

	report := &Report{RunID: s.runID, CreatedAt: s.now(), Context: c}

	start := time.Now()
	history, err := s.source.PitchesByPitcher(ctx, c.PitcherID)
	s.metrics.ObserveStage("fetch", time.Since(start))
	switch {
	case errors.Is(err, model.ErrNoData):
		report.NoData = true
		history = model.Collection{}
		s.logger.Warn(ctx, "pitcher has no recorded pitches", logger.Int("pitcher_id", c.PitcherID))
	case err != nil:
		return nil, fmt.Errorf("fetch pitches for %d: %w", c.PitcherID, err)
	}
	report.History = len(history)

	start = time.Now()
	selected := s.selector.Select(history, c)
	s.metrics.ObserveStage("select", time.Since(start))
	report.Selected = len(selected)
	s.metrics.UpdatePitchesSelected(len(selected))

	start = time.Now()
	report.PitchData = digest.PitchData(selected)
	report.EventData = digest.PitchEventData(selected)
	report.BattedBallAgg = digest.BattedBallData(selected)
	report.BattedBallSplit = digest.BattedBallDataSplit(selected)
	s.metrics.ObserveStage("digest", time.Since(start))
	s.metrics.UpdateBattedBallsInPlay(report.BattedBallAgg.QualifyingCount)

	s.logger.Info(ctx, "pitch data digested",
		logger.Int("history", report.History),
		logger.Int("selected", report.Selected),
		logger.Int("batted_balls", report.BattedBallAgg.QualifyingCount))
	return report, nil
}

// Export writes the report's tables as CSV files and returns their paths.
// It does nothing unless export was enabled.
func (s *Service) Export(ctx context.Context, r *Report) ([]string, error) {
	if !s.export || r == nil {
		return nil, nil
	}
	start := time.Now()
	paths, err := export.WriteAll(s.outputDir, r.CreatedAt, r.Tables())
	s.metrics.ObserveStage("export", time.Since(start))
	s.metrics.RecordFilesExported(len(paths))
	if err != nil {
		return paths, fmt.Errorf("export tables: %w", err)
	}
	s.logger.Info(ctx, "output files generated",
		logger.String("dir", s.outputDir),
		logger.String("timestamp", r.CreatedAt.Format(export.TimestampLayout)),
		logger.Int("files", len(paths)))
	return paths, nil
}
