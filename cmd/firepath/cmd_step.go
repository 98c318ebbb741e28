package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/firepath"
)

func runStep(cmd *cobra.Command, args []string) error {
	rng := newRand(cfg.Grid.Seed)
	grid, field, err := generateForSearch(cmd, rng)
	if err != nil {
		return err
	}
	heuristic, err := firepath.HeuristicByName(cfg.Search.Heuristic)
	if err != nil {
		return err
	}
	stepper, err := firepath.NewStepper(cmd.Context(), grid, grid.Start(), grid.Goal(), heuristic, searchOptions(field)...)
	if err != nil {
		return err
	}

	maxSteps, _ := cmd.Flags().GetInt("max-steps")
	out := cmd.OutOrStdout()
	for !stepper.Done() {
		snap, err := stepper.Step()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "step %4d current=%s open=%d closed=%d\n",
			snap.StepIndex, snap.Current, len(snap.Open), len(snap.Closed))
		if maxSteps > 0 && snap.StepIndex >= maxSteps {
			break
		}
	}
	result := stepper.Result()
	fmt.Fprintln(out, renderGrid(fmt.Sprintf("found=%t", result.Found), grid, result.Path))
	return nil
}
