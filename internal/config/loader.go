package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment and file locations.
const (
	EnvPrefix         = "PITCHPREDICT_"
	EnvConfigPath     = EnvPrefix + "CONFIG"
	DefaultConfigPath = "config.json"
)

// Load builds a Config by layering defaults, the JSON file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. JSON file at PITCHPREDICT_CONFIG, or config.json when present
//  3. env (prefix PITCHPREDICT_, "__" separates nested keys)
//
// A .env file in the working directory is read first if it exists.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load() // a missing .env is fine

	base := New()
	k := koanf.New(".")

	path, explicit := os.LookupEnv(EnvConfigPath)
	if !explicit || path == "" {
		path = DefaultConfigPath
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		// JSON is a subset of YAML, so the yaml parser reads config.json as is.
		if err := k.Load(jsonFile(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// PITCHPREDICT_FUZZY_PLAYER_LOOKUP -> fuzzy_player_lookup,
	// PITCHPREDICT_CACHE__PATH -> cache.path
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option ranges.
func (c *Config) Validate() error {
	s := c.Similarity
	switch {
	case c.GenerateOutputFiles && strings.TrimSpace(c.OutputDir) == "":
		return fmt.Errorf("%w: output_dir must not be empty when generate_output_files is set", ErrInvalidConfig)
	case s.BatterWeight < 0 || s.CountWeight < 0 || s.ScoreWeight < 0 || s.YearWeight < 0:
		return fmt.Errorf("%w: similarity weights must not be negative", ErrInvalidConfig)
	case s.BatterWeight+s.CountWeight+s.ScoreWeight+s.YearWeight == 0:
		return fmt.Errorf("%w: at least one similarity weight must be positive", ErrInvalidConfig)
	case s.MinSimilarity < 0 || s.MinSimilarity > 1:
		return fmt.Errorf("%w: similarity.min_similarity must be within [0,1]", ErrInvalidConfig)
	case s.SampleSize < 0:
		return fmt.Errorf("%w: similarity.sample_size must not be negative", ErrInvalidConfig)
	case c.Data.EndYear != 0 && c.Data.EndYear < c.Data.StartYear:
		return fmt.Errorf("%w: data.end_year before data.start_year", ErrInvalidConfig)
	case c.Data.HTTPTimeoutSeconds <= 0:
		return fmt.Errorf("%w: data.http_timeout_seconds must be positive", ErrInvalidConfig)
	case c.Data.SavantURL == "" || c.Data.RegisterURL == "":
		return fmt.Errorf("%w: data source urls must not be empty", ErrInvalidConfig)
	case c.Cache.TTLHours < 0:
		return fmt.Errorf("%w: cache.ttl_hours must not be negative", ErrInvalidConfig)
	}
	return nil
}

// jsonProvider reads a JSON config file. A top-level array is accepted and
// its first element used, which is how older config.json files are written.
type jsonProvider struct {
	file *file.File
}

func jsonFile(path string) *jsonProvider {
	return &jsonProvider{file: file.Provider(path)}
}

func (p *jsonProvider) ReadBytes() ([]byte, error) {
	b, err := p.file.ReadBytes()
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return b, nil
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []byte("{}"), nil
	}
	return rows[0], nil
}

func (p *jsonProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("json provider does not support this method")
}
