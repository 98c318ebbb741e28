// Command firepath runs the grid search-and-hazard engine from the terminal.
//
// Usage:
//
//	firepath search --algo all --dim 20 --density 0.3 --seed 7
//	firepath evaluate --dim 30 --spread 0.3 --fire-limit 0.2
//	firepath step --dim 10 --seed 3
//	firepath stats --trials 500 --max-dim 30
//	firepath serve --addr :8080
//
// Settings are read from --config (YAML or JSON), then FIREPATH_* variables,
// then flags.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
