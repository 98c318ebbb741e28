package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/firepath"
	"github.com/pdrpinto/firepath/internal/config"
)

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string
	telemetry  bool

	cfg config.Config

	shutdownTelemetry = func(context.Context) error { return nil }

	rootCmd = &cobra.Command{
		Use:   "firepath",
		Short: "Grid pathfinding under static obstacles and spreading fire",
		Long: `firepath runs DFS, BFS, bidirectional BFS and A* over square occupancy
grids, plans around a fire probability field and replays plans against a
sampled fire to see whether the agent gets through.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return shutdownTelemetry(cmd.Context())
		},
	}

	searchCmd = &cobra.Command{
		Use:   "search",
		Short: "Generate a grid and run one or all search algorithms on it",
		RunE:  runSearch, // Defined in cmd_search.go
	}

	evaluateCmd = &cobra.Command{
		Use:   "evaluate",
		Short: "Plan with fire-gated A* and walk the plan through a sampled fire",
		RunE:  runEvaluate, // Defined in cmd_evaluate.go
	}

	stepCmd = &cobra.Command{
		Use:   "step",
		Short: "Print A* one expansion at a time",
		RunE:  runStep, // Defined in cmd_step.go
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Sweep grid size and density and report the solvable fraction",
		RunE:  runStats, // Defined in cmd_stats.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve A* snapshots and path evaluations over HTTP",
		RunE:  runServe, // Defined in cmd_serve.go
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to a YAML or JSON config file")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVar(&telemetry, "telemetry", false, "print OpenTelemetry spans and metrics to stderr")
	pf.Int("dim", 0, "grid dimension N")
	pf.Float64("density", 0, "probability that a cell is blocked")
	pf.Int64("seed", 0, "random seed (0 = time based)")

	searchCmd.Flags().String("algo", "", "dfs, bfs, bdbfs, astar or all")
	for _, cmd := range []*cobra.Command{searchCmd, evaluateCmd, stepCmd, serveCmd} {
		cmd.Flags().String("heuristic", "", "zero, euclidean or manhattan")
		cmd.Flags().Bool("tie-break", false, "prefer larger g among equal f")
	}
	for _, cmd := range []*cobra.Command{searchCmd, evaluateCmd, stepCmd} {
		cmd.Flags().Float64("spread", 0, "fire spread rate q")
	}
	for _, cmd := range []*cobra.Command{searchCmd, stepCmd} {
		cmd.Flags().Float64("fire-limit", -1, "fire-risk threshold for the A* gate (negative disables the gate)")
	}
	evaluateCmd.Flags().Float64("fire-limit", -1, "fire-risk threshold for the initial plan, in [0, 1] (default from config)")
	evaluateCmd.Flags().Float64("replan-limit", 0, "fire-risk threshold used when replanning")
	evaluateCmd.Flags().Int("max-replans", 0, "replanning cap (0 = N*N)")
	evaluateCmd.Flags().Int("runs", 1, "number of sampled fires to walk")
	stepCmd.Flags().Int("max-steps", 0, "stop after this many expansions (0 = until done)")
	statsCmd.Flags().Int("trials", 0, "trials per (dim, density)")
	statsCmd.Flags().Int("workers", 0, "concurrent trials")
	statsCmd.Flags().Int("min-dim", 0, "smallest dimension")
	statsCmd.Flags().Int("max-dim", 0, "largest dimension")
	serveCmd.Flags().String("addr", "", "listen address")

	rootCmd.AddCommand(searchCmd, evaluateCmd, stepCmd, statsCmd, serveCmd)
}

// setup loads configuration, applies flag overrides and installs logging and
// telemetry for the invoked command.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	applyFlagOverrides(cmd, &cfg)
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if telemetry {
		shutdown, err := setupStdoutTelemetry(cmd.Context())
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		shutdownTelemetry = shutdown
	}
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dim") {
		c.Grid.Dim, _ = flags.GetInt("dim")
	}
	if flags.Changed("density") {
		c.Grid.Density, _ = flags.GetFloat64("density")
	}
	if flags.Changed("seed") {
		c.Grid.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("algo") {
		c.Search.Algorithm, _ = flags.GetString("algo")
	}
	if flags.Changed("heuristic") {
		c.Search.Heuristic, _ = flags.GetString("heuristic")
	}
	if flags.Changed("tie-break") {
		c.Search.TieBreaking, _ = flags.GetBool("tie-break")
	}
	if flags.Changed("spread") {
		c.Fire.Spread, _ = flags.GetFloat64("spread")
	}
	if flags.Changed("fire-limit") {
		if limit, _ := flags.GetFloat64("fire-limit"); limit >= 0 {
			c.Fire.Limit = limit
		}
	}
	if flags.Changed("replan-limit") {
		c.Fire.ReplanLimit, _ = flags.GetFloat64("replan-limit")
	}
	if flags.Changed("max-replans") {
		c.Fire.MaxReplans, _ = flags.GetInt("max-replans")
	}
	if flags.Changed("trials") {
		c.Stats.Trials, _ = flags.GetInt("trials")
	}
	if flags.Changed("workers") {
		c.Stats.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("min-dim") {
		c.Stats.MinDim, _ = flags.GetInt("min-dim")
	}
	if flags.Changed("max-dim") {
		c.Stats.MaxDim, _ = flags.GetInt("max-dim")
	}
	if flags.Changed("addr") {
		c.Serve.Addr, _ = flags.GetString("addr")
	}
}

// fireGateEnabled reports whether the command asked for a fire-gated A*.
func fireGateEnabled(cmd *cobra.Command) bool {
	if cmd.Flags().Lookup("fire-limit") == nil || !cmd.Flags().Changed("fire-limit") {
		return false
	}
	limit, _ := cmd.Flags().GetFloat64("fire-limit")
	return limit >= 0
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// searchOptions builds A* options from the loaded configuration.
func searchOptions(field *firepath.FireField) []firepath.Option {
	options := []firepath.Option{
		firepath.WithTieBreaking(cfg.Search.TieBreaking),
		firepath.WithLogger(slog.Default()),
	}
	if field != nil {
		options = append(options, firepath.WithFireGate(field, cfg.Fire.Limit))
	}
	return options
}
