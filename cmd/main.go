package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/pitchpredict/internal/adapters/console"
	"github.com/okian/pitchpredict/internal/adapters/register"
	"github.com/okian/pitchpredict/internal/adapters/repository"
	"github.com/okian/pitchpredict/internal/adapters/savant"
	"github.com/okian/pitchpredict/internal/adapters/transport"
	app "github.com/okian/pitchpredict/internal/app"
	"github.com/okian/pitchpredict/internal/config"
	"github.com/okian/pitchpredict/internal/domain/digest"
	"github.com/okian/pitchpredict/internal/domain/similarity"
	"github.com/okian/pitchpredict/pkg/logger"
	"github.com/okian/pitchpredict/pkg/metrics"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const logPrefix = "pitchpredict"

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one interactive session and returns the process exit code.
func run(ctx context.Context, in io.Reader, out, errOut io.Writer) int {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(errOut, "failed to load config: "+err.Error())
		return 1
	}

	logPath, err := logger.InitFile(cfg.LogDir, logPrefix)
	if err != nil {
		fmt.Fprintln(errOut, "failed to initialize logging: "+err.Error())
		return 1
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	log.Info(ctx, "PitchPredict started", logger.String("version", version), logger.String("log_file", logPath))

	m := metrics.Default()
	store := openCache(ctx, cfg, log)
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn(ctx, "closing cache failed", logger.Error(err))
		}
	}()

	svc := newService(cfg, store, m, log)
	runner := app.NewRunner(svc,
		console.NewPrompter(in, out),
		console.NewRenderer(out, console.WithVersion(version), console.WithIntegerColumns(digest.ColCount)),
	)

	_, runErr := runner.Run(ctx)
	if runErr != nil {
		m.RecordRun("failure")
	} else {
		m.RecordRun("success")
	}

	if cfg.MetricsTextfile != "" {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.Warn(ctx, "writing metrics textfile failed", logger.String("path", cfg.MetricsTextfile), logger.Error(err))
		}
	}

	if runErr != nil {
		log.Error(ctx, "PitchPredict failed", logger.Error(runErr))
		fmt.Fprintln(errOut, userMessage(runErr))
		return 1
	}
	log.Info(ctx, "PitchPredict finished executing successfully")
	return 0
}

// openCache opens the response cache, degrading to no caching when it is
// disabled, locked by another process or unusable.
func openCache(ctx context.Context, cfg *config.Config, log logger.Logger) repository.Store {
	if cfg.Cache.Path == "" {
		return repository.NopStore{}
	}
	store, err := repository.OpenSQLite(ctx, cfg.Cache.Path)
	if err != nil {
		if errors.Is(err, repository.ErrLocked) {
			log.Warn(ctx, "cache in use by another run; continuing without it", logger.String("path", cfg.Cache.Path))
		} else {
			log.Warn(ctx, "cache unavailable; continuing without it", logger.String("path", cfg.Cache.Path), logger.Error(err))
		}
		return repository.NopStore{}
	}
	return store
}

func newService(cfg *config.Config, store repository.Store, m *metrics.Manager, log logger.Logger) *app.Service {
	client := transport.New(
		transport.WithStore(store),
		transport.WithMetrics(m),
		transport.WithTimeout(cfg.HTTPTimeout()),
		transport.WithUserAgent(logPrefix+"/"+version),
		transport.WithLogger(log.Named("transport")),
	)

	s := cfg.Similarity
	selector := similarity.NewSelector(
		similarity.WithWeights(similarity.Weights{
			Batter: s.BatterWeight,
			Count:  s.CountWeight,
			Score:  s.ScoreWeight,
			Year:   s.YearWeight,
		}),
		similarity.WithMinSimilarity(s.MinSimilarity),
		similarity.WithSampleSize(s.SampleSize),
	)

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithMetrics(m),
		app.WithSelector(selector),
		app.WithResolver(register.New(client,
			register.WithBaseURL(cfg.Data.RegisterURL),
			register.WithFuzzy(cfg.FuzzyPlayerLookup),
			register.WithMaxAge(cfg.CacheTTL()),
			register.WithLogger(log.Named("register")),
		)),
		app.WithSource(savant.New(client,
			savant.WithBaseURL(cfg.Data.SavantURL),
			savant.WithSeasons(cfg.Data.StartYear, cfg.LastSeason(time.Now())),
			savant.WithTTL(cfg.CacheTTL()),
			savant.WithMetrics(m),
			savant.WithLogger(log.Named("savant")),
		)),
	}
	if cfg.GenerateOutputFiles {
		opts = append(opts, app.WithExport(cfg.OutputDir))
	}
	return app.New(opts...)
}

// userMessage turns a run failure into a line for the console.
func userMessage(err error) string {
	switch {
	case errors.Is(err, register.ErrPlayerNotFound):
		return "Error: " + err.Error() + ". Check the spelling or enable fuzzy_player_lookup."
	case errors.Is(err, console.ErrMalformedInput):
		return "Error: " + err.Error()
	case errors.Is(err, console.ErrInputClosed):
		return "Error: input ended before all questions were answered"
	case errors.Is(err, context.Canceled):
		return "Interrupted"
	}
	return "Error: " + err.Error()
}
