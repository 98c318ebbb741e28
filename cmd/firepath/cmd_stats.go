package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pdrpinto/firepath"
)

// sweepCell is one (dimension, density) point of the solvability sweep.
type sweepCell struct {
	Dim     int
	Density float64
	Solved  int
	Trials  int
}

func (c sweepCell) Rate() float64 {
	if c.Trials == 0 {
		return 0
	}
	return float64(c.Solved) / float64(c.Trials)
}

func sweepDensities(step, maxDensity float64) []float64 {
	var out []float64
	for i := 0; ; i++ {
		p := float64(i) * step
		if p > maxDensity+1e-9 {
			break
		}
		out = append(out, p)
	}
	return out
}

// runSweep measures how often DFS finds a path on random grids. Each cell runs
// its trials sequentially on its own random source; cells run concurrently.
func runSweep(ctx context.Context, seed int64, dims []int, densities []float64, trials, workers int) ([]sweepCell, error) {
	cells := make([]sweepCell, 0, len(dims)*len(densities))
	for _, dim := range dims {
		for _, p := range densities {
			cells = append(cells, sweepCell{Dim: dim, Density: p, Trials: trials})
		}
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i := range cells {
		cell := &cells[i]
		rng := rand.New(rand.NewSource(seed + int64(i)*7919))
		group.Go(func() error {
			for t := 0; t < cell.Trials; t++ {
				grid := firepath.Generate(cell.Dim, cell.Density, rng)
				result, err := firepath.DFS(ctx, grid, grid.Start(), grid.Goal())
				if err != nil {
					return fmt.Errorf("dim %d density %.2f trial %d: %w", cell.Dim, cell.Density, t, err)
				}
				if result.Found {
					cell.Solved++
				}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return cells, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	runID := uuid.New()
	seed := cfg.Grid.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	dims := make([]int, 0, cfg.Stats.MaxDim-cfg.Stats.MinDim+1)
	for d := cfg.Stats.MinDim; d <= cfg.Stats.MaxDim; d++ {
		dims = append(dims, d)
	}
	densities := sweepDensities(cfg.Stats.DensityStep, cfg.Stats.MaxDensity)

	slog.Info("starting solvability sweep",
		slog.String("run_id", runID.String()),
		slog.Int64("seed", seed),
		slog.Int("dims", len(dims)),
		slog.Int("densities", len(densities)),
		slog.Int("trials", cfg.Stats.Trials),
	)
	began := time.Now()
	cells, err := runSweep(cmd.Context(), seed, dims, densities, cfg.Stats.Trials, cfg.Stats.Workers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var header strings.Builder
	header.WriteString("dim")
	for _, p := range densities {
		fmt.Fprintf(&header, "\tp=%.2f", p)
	}
	fmt.Fprintln(out, header.String())
	for i, dim := range dims {
		var row strings.Builder
		fmt.Fprintf(&row, "%d", dim)
		for j := range densities {
			fmt.Fprintf(&row, "\t%.4f", cells[i*len(densities)+j].Rate())
		}
		fmt.Fprintln(out, row.String())
	}

	slog.Info("finished solvability sweep",
		slog.String("run_id", runID.String()),
		slog.Duration("elapsed", time.Since(began)),
	)
	return nil
}
