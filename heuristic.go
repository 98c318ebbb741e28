package firepath

import (
	"fmt"
	"math"
	"strings"
)

// Heuristic estimates the remaining cost from one cell to another. It must be
// non-negative; A* optimality additionally needs it to be admissible.
type Heuristic func(from, to Coord) float64

// Zero is h(x) = 0. A* with Zero expands in the same order as BFS.
func Zero(_, _ Coord) float64 { return 0 }

// Euclidean is the straight-line distance.
func Euclidean(from, to Coord) float64 {
	dr := float64(from.Row - to.Row)
	dc := float64(from.Col - to.Col)
	return math.Sqrt(dr*dr + dc*dc)
}

// Manhattan is the 4-connected grid distance.
func Manhattan(from, to Coord) float64 {
	return float64(absInt(from.Row-to.Row) + absInt(from.Col-to.Col))
}

// HeuristicByName resolves "zero", "euclidean" or "manhattan" (case-insensitive).
func HeuristicByName(name string) (Heuristic, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "zero", "none":
		return Zero, nil
	case "euclidean", "euc":
		return Euclidean, nil
	case "manhattan":
		return Manhattan, nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownHeuristic)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
