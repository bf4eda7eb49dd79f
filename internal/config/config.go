// Package config defines PitchPredict configuration and its loading.
//
// Conventions:
//   - Config is built once at startup and passed explicitly to components.
//   - New returns defaults; Load layers the JSON file and environment on top.
//   - Load failures wrap ErrLoadConfig, validation failures ErrInvalidConfig.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// FuzzyPlayerLookup enables approximate name matching.
	FuzzyPlayerLookup bool `koanf:"fuzzy_player_lookup"`

	// GenerateOutputFiles enables CSV export of the summary tables.
	GenerateOutputFiles bool `koanf:"generate_output_files"`

	// OutputDir receives exported CSV files.
	OutputDir string `koanf:"output_dir"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogDir receives per-run log files.
	LogDir string `koanf:"log_dir"`

	// MetricsTextfile, when set, receives a Prometheus text dump of the run.
	MetricsTextfile string `koanf:"metrics_textfile"`

	Similarity Similarity `koanf:"similarity"`
	Data       Data       `koanf:"data"`
	Cache      Cache      `koanf:"cache"`
}

// Similarity configures the pitch selector.
type Similarity struct {
	BatterWeight  float64 `koanf:"batter_weight"`
	CountWeight   float64 `koanf:"count_weight"`
	ScoreWeight   float64 `koanf:"score_weight"`
	YearWeight    float64 `koanf:"year_weight"`
	MinSimilarity float64 `koanf:"min_similarity"`
	// SampleSize caps the selection; 0 disables the cap.
	SampleSize int `koanf:"sample_size"`
}

// Data configures the remote data sources.
type Data struct {
	StartYear int `koanf:"start_year"`
	// EndYear is the last season fetched; 0 means the current year.
	EndYear            int    `koanf:"end_year"`
	SavantURL          string `koanf:"savant_url"`
	RegisterURL        string `koanf:"register_url"`
	HTTPTimeoutSeconds int    `koanf:"http_timeout_seconds"`
}

// Cache configures the on-disk response cache.
type Cache struct {
	// Path of the SQLite cache; empty disables caching.
	Path     string `koanf:"path"`
	TTLHours int    `koanf:"ttl_hours"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		FuzzyPlayerLookup:   false,
		GenerateOutputFiles: false,
		OutputDir:           "outputs",
		LogLevel:            "info",
		LogDir:              "logs",
		Similarity: Similarity{
			BatterWeight:  4,
			CountWeight:   2,
			ScoreWeight:   1,
			YearWeight:    1,
			MinSimilarity: 0.5,
			SampleSize:    1000,
		},
		Data: Data{
			StartYear:          2008,
			EndYear:            0,
			SavantURL:          "https://baseballsavant.mlb.com/statcast_search/csv",
			RegisterURL:        "https://raw.githubusercontent.com/chadwickbureau/register/master/data",
			HTTPTimeoutSeconds: 120,
		},
		Cache: Cache{
			Path:     ".cache/pitchpredict.db",
			TTLHours: 24,
		},
	}
}

// LastSeason returns the final season to fetch relative to now.
func (c *Config) LastSeason(now time.Time) int {
	if c.Data.EndYear > 0 {
		return c.Data.EndYear
	}
	return now.Year()
}

// HTTPTimeout returns the timeout for a single remote request.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Data.HTTPTimeoutSeconds) * time.Second
}

// CacheTTL returns how long volatile cache entries stay fresh.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}
