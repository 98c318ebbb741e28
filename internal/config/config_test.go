package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20, cfg.Grid.Dim)
	assert.Equal(t, "astar", cfg.Search.Algorithm)
	assert.Equal(t, 0.2, cfg.Fire.ReplanLimit)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, 30*time.Minute, cfg.Serve.SessionTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "firepath.yaml", `
grid:
  dim: 35
  density: 0.25
  seed: 7
search:
  algorithm: bdbfs
  tie_breaking: true
fire:
  spread: 0.6
serve:
  session_ttl: 90s
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 35, cfg.Grid.Dim)
	assert.Equal(t, 0.25, cfg.Grid.Density)
	assert.Equal(t, int64(7), cfg.Grid.Seed)
	assert.Equal(t, "bdbfs", cfg.Search.Algorithm)
	assert.True(t, cfg.Search.TieBreaking)
	assert.Equal(t, 0.6, cfg.Fire.Spread)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 90*time.Second, cfg.Serve.SessionTTL)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
	// Untouched sections keep their defaults.
	assert.Equal(t, "manhattan", cfg.Search.Heuristic)
	assert.Equal(t, Default().Stats, cfg.Stats)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "firepath.json", `{"stats": {"trials": 50, "workers": 2}, "serve": {"addr": "127.0.0.1:9000"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Stats.Trials)
	assert.Equal(t, 2, cfg.Stats.Workers)
	assert.Equal(t, "127.0.0.1:9000", cfg.Serve.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "firepath.yaml", "grid:\n  dim: 12\nfire:\n  spread: 0.1\n")
	t.Setenv("FIREPATH_DIM", "40")
	t.Setenv("FIREPATH_SPREAD", " 0.45 ")
	t.Setenv("FIREPATH_ALGORITHM", "BFS")
	t.Setenv("FIREPATH_TIE_BREAKING", "true")
	t.Setenv("FIREPATH_SEED", "123")
	t.Setenv("FIREPATH_HEURISTIC", "")
	t.Setenv("FIREPATH_SESSION_TTL", "0s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Grid.Dim)
	assert.Equal(t, 0.45, cfg.Fire.Spread)
	assert.Equal(t, "bfs", cfg.Search.Algorithm)
	assert.True(t, cfg.Search.TieBreaking)
	assert.Equal(t, int64(123), cfg.Grid.Seed)
	assert.Equal(t, "manhattan", cfg.Search.Heuristic, "blank variables are ignored")
	assert.Zero(t, cfg.Serve.SessionTTL)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad env number", func(t *testing.T) {
		t.Setenv("FIREPATH_TRIALS", "many")
		_, err := Load("")
		assert.ErrorContains(t, err, "FIREPATH_TRIALS")
	})
	t.Run("out of range", func(t *testing.T) {
		t.Setenv("FIREPATH_SPREAD", "1.5")
		_, err := Load("")
		assert.ErrorContains(t, err, "invalid config")
	})
	t.Run("unknown algorithm", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "search:\n  algorithm: dijkstra\n")
		_, err := Load(path)
		assert.ErrorContains(t, err, "Algorithm")
	})
	t.Run("dimension bounds", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "stats:\n  min_dim: 10\n  max_dim: 5\n")
		_, err := Load(path)
		assert.Error(t, err)
	})
	t.Run("bad session ttl", func(t *testing.T) {
		t.Setenv("FIREPATH_SESSION_TTL", "soon")
		_, err := Load("")
		assert.ErrorContains(t, err, "FIREPATH_SESSION_TTL")
	})
	t.Run("unparseable file", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "grid: [unterminated\n")
		_, err := Load(path)
		assert.ErrorContains(t, err, "load config file")
	})
}
