package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/firepath"
)

func runEvaluate(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("fire-limit") {
		if limit, _ := cmd.Flags().GetFloat64("fire-limit"); limit < 0 {
			return fmt.Errorf("--fire-limit %v: evaluate always plans under the fire gate: %w", limit, firepath.ErrInvalidLimit)
		}
	}
	ctx := cmd.Context()
	rng := newRand(cfg.Grid.Seed)
	runs, _ := cmd.Flags().GetInt("runs")
	if runs < 1 {
		runs = 1
	}
	out := cmd.OutOrStdout()

	survived := 0
	for run := 0; run < runs; run++ {
		grid := firepath.GenerateFire(cfg.Grid.Dim, cfg.Grid.Density, rng)
		field, err := firepath.NewFireField(grid, cfg.Fire.Spread)
		if err != nil {
			return err
		}
		heuristic, err := firepath.HeuristicByName(cfg.Search.Heuristic)
		if err != nil {
			return err
		}
		plan, err := firepath.Search(ctx, grid, grid.Start(), grid.Goal(), heuristic, searchOptions(field)...)
		if err != nil {
			return fmt.Errorf("plan: %w", err)
		}
		if !plan.Found {
			fmt.Fprintf(out, "run %d: no initial plan under fire limit %.2f\n", run, cfg.Fire.Limit)
			continue
		}

		options := []firepath.EvaluateOption{
			firepath.WithRand(rng),
			firepath.WithReplanLimit(cfg.Fire.ReplanLimit),
			firepath.WithEvalLogger(slog.Default()),
		}
		if cfg.Fire.MaxReplans > 0 {
			options = append(options, firepath.WithMaxReplans(cfg.Fire.MaxReplans))
		}
		eval, err := firepath.EvaluatePath(ctx, grid, plan.Path, cfg.Fire.Spread, options...)
		if err != nil {
			return fmt.Errorf("evaluate: %w", err)
		}
		if eval.Survived {
			survived++
		}
		fmt.Fprintf(out, "run %d: survived=%t replans=%d steps=%d field_layers=%d\n",
			run, eval.Survived, eval.Replans, eval.Steps, field.Len())
		if runs == 1 {
			fmt.Fprintln(out, renderPanels(
				renderGrid("plan", grid, plan.Path),
				renderGrid("walked", eval.Grid, eval.Walked),
			))
		}
	}
	if runs > 1 {
		fmt.Fprintf(out, "survived %d/%d (%.3f)\n", survived, runs, float64(survived)/float64(runs))
	}
	return nil
}
