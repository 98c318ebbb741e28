package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/firepath"
)

var algorithmOrder = []string{"dfs", "bfs", "bdbfs", "astar"}

// runAlgorithm dispatches one named algorithm over g from start to goal.
func runAlgorithm(ctx context.Context, name string, g firepath.Grid, field *firepath.FireField) (firepath.Result, error) {
	start, goal := g.Start(), g.Goal()
	logOption := firepath.WithLogger(slog.Default())
	switch name {
	case "dfs":
		return firepath.DFS(ctx, g, start, goal, logOption)
	case "bfs":
		return firepath.BFS(ctx, g, start, goal, logOption)
	case "bdbfs":
		return firepath.BidirectionalBFS(ctx, g, start, goal, logOption)
	case "astar":
		heuristic, err := firepath.HeuristicByName(cfg.Search.Heuristic)
		if err != nil {
			return firepath.Result{}, err
		}
		return firepath.Search(ctx, g, start, goal, heuristic, searchOptions(field)...)
	default:
		return firepath.Result{}, fmt.Errorf("unknown algorithm %q", name)
	}
}

// generateForSearch draws the grid for search and step. With the fire gate
// enabled the grid carries a fire seed and a field over it; either way the
// same seed consumes the same random draws.
func generateForSearch(cmd *cobra.Command, rng *rand.Rand) (firepath.Grid, *firepath.FireField, error) {
	if !fireGateEnabled(cmd) {
		return firepath.Generate(cfg.Grid.Dim, cfg.Grid.Density, rng), nil, nil
	}
	grid := firepath.GenerateFire(cfg.Grid.Dim, cfg.Grid.Density, rng)
	field, err := firepath.NewFireField(grid, cfg.Fire.Spread)
	if err != nil {
		return firepath.Grid{}, nil, err
	}
	return grid, field, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	grid, field, err := generateForSearch(cmd, newRand(cfg.Grid.Seed))
	if err != nil {
		return err
	}

	names := []string{cfg.Search.Algorithm}
	if cfg.Search.Algorithm == "all" {
		names = algorithmOrder
	}

	out := cmd.OutOrStdout()
	panels := make([]string, 0, len(names))
	for _, name := range names {
		result, err := runAlgorithm(ctx, name, grid, field)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		title := fmt.Sprintf("%s: unsolvable", name)
		if result.Found {
			title = fmt.Sprintf("%s: %d cells", name, len(result.Path))
		}
		panels = append(panels, renderGrid(title, grid, result.Path))
		fmt.Fprintf(out, "%-6s found=%-5t length=%-4d expanded=%-5d max_fringe=%d\n",
			name, result.Found, len(result.Path), result.ExpandedNodes, result.MaxFringe)
	}
	fmt.Fprintln(out, renderPanels(panels...))
	return nil
}
