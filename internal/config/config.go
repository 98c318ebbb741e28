// Package config loads firepath command settings.
//
// Priority is environment > file > defaults. Files may be YAML or JSON.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FIREPATH_"

// Config is the top-level command configuration.
type Config struct {
	Grid   GridConfig   `json:"grid" yaml:"grid"`
	Search SearchConfig `json:"search" yaml:"search"`
	Fire   FireConfig   `json:"fire" yaml:"fire"`
	Stats  StatsConfig  `json:"stats" yaml:"stats"`
	Serve  ServeConfig  `json:"serve" yaml:"serve"`
	Log    LogConfig    `json:"log" yaml:"log"`
}

// GridConfig controls random grid generation.
type GridConfig struct {
	Dim     int     `json:"dim" yaml:"dim" validate:"gte=1,lte=4096"`
	Density float64 `json:"density" yaml:"density" validate:"gte=0,lte=1"`
	// Seed 0 means time-based.
	Seed int64 `json:"seed" yaml:"seed"`
}

// SearchConfig selects the algorithm and A* policy.
type SearchConfig struct {
	Algorithm   string `json:"algorithm" yaml:"algorithm" validate:"oneof=dfs bfs bdbfs astar all"`
	Heuristic   string `json:"heuristic" yaml:"heuristic" validate:"oneof=zero euclidean manhattan"`
	TieBreaking bool   `json:"tie_breaking" yaml:"tie_breaking"`
}

// FireConfig holds spread and risk parameters.
type FireConfig struct {
	Spread      float64 `json:"spread" yaml:"spread" validate:"gte=0,lte=1"`
	Limit       float64 `json:"limit" yaml:"limit" validate:"gte=0,lte=1"`
	ReplanLimit float64 `json:"replan_limit" yaml:"replan_limit" validate:"gte=0,lte=1"`
	// MaxReplans 0 means N*N.
	MaxReplans int `json:"max_replans" yaml:"max_replans" validate:"gte=0"`
}

// StatsConfig drives the solvability sweep.
type StatsConfig struct {
	Trials      int     `json:"trials" yaml:"trials" validate:"gte=1"`
	Workers     int     `json:"workers" yaml:"workers" validate:"gte=1,lte=256"`
	MinDim      int     `json:"min_dim" yaml:"min_dim" validate:"gte=1"`
	MaxDim      int     `json:"max_dim" yaml:"max_dim" validate:"gtefield=MinDim"`
	DensityStep float64 `json:"density_step" yaml:"density_step" validate:"gt=0,lte=1"`
	MaxDensity  float64 `json:"max_density" yaml:"max_density" validate:"gte=0,lte=1"`
}

// ServeConfig configures the HTTP step viewer.
type ServeConfig struct {
	Addr string `json:"addr" yaml:"addr" validate:"required"`
	// SessionTTL bounds how long a step session is kept; 0 keeps sessions
	// until they are deleted.
	SessionTTL time.Duration `json:"session_ttl" yaml:"session_ttl"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Grid: GridConfig{
			Dim:     20,
			Density: 0.3,
		},
		Search: SearchConfig{
			Algorithm: "astar",
			Heuristic: "manhattan",
		},
		Fire: FireConfig{
			Spread:      0.3,
			Limit:       0.2,
			ReplanLimit: 0.2,
		},
		Stats: StatsConfig{
			Trials:      1000,
			Workers:     4,
			MinDim:      2,
			MaxDim:      50,
			DensityStep: 0.05,
			MaxDensity:  0.45,
		},
		Serve: ServeConfig{Addr: ":8080", SessionTTL: 30 * time.Minute},
		Log:   LogConfig{Level: "info"},
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// SlogLevel maps Log.Level to a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load merges defaults, the optional file at path and FIREPATH_* variables,
// then validates the result. A path that does not exist is ignored.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := loadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("load config env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	// JSON documents are valid YAML, so one decoder covers both formats.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) error {
	ints := map[string]*int{
		"DIM":         &cfg.Grid.Dim,
		"MAX_REPLANS": &cfg.Fire.MaxReplans,
		"TRIALS":      &cfg.Stats.Trials,
		"WORKERS":     &cfg.Stats.Workers,
		"MIN_DIM":     &cfg.Stats.MinDim,
		"MAX_DIM":     &cfg.Stats.MaxDim,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			i, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = i
		}
	}

	floats := map[string]*float64{
		"DENSITY":      &cfg.Grid.Density,
		"SPREAD":       &cfg.Fire.Spread,
		"FIRE_LIMIT":   &cfg.Fire.Limit,
		"REPLAN_LIMIT": &cfg.Fire.ReplanLimit,
		"DENSITY_STEP": &cfg.Stats.DensityStep,
		"MAX_DENSITY":  &cfg.Stats.MaxDensity,
	}
	for key, dst := range floats {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = f
		}
	}

	if v, ok := lookup("SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", EnvPrefix, err)
		}
		cfg.Grid.Seed = seed
	}
	if v, ok := lookup("TIE_BREAKING"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sTIE_BREAKING: %w", EnvPrefix, err)
		}
		cfg.Search.TieBreaking = b
	}
	if v, ok := lookup("ALGORITHM"); ok {
		cfg.Search.Algorithm = strings.ToLower(v)
	}
	if v, ok := lookup("HEURISTIC"); ok {
		cfg.Search.Heuristic = strings.ToLower(v)
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup("ADDR"); ok {
		cfg.Serve.Addr = v
	}
	if v, ok := lookup("SESSION_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSESSION_TTL: %w", EnvPrefix, err)
		}
		cfg.Serve.SessionTTL = ttl
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}
