package firepath

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultReplanLimit is the fire-risk threshold used when EvaluatePath replans.
const DefaultReplanLimit = 0.2

// AdvanceFire draws one Monte Carlo step of fire spread and returns the new
// grid; g is not modified. A free cell with k burning neighbors ignites with
// probability 1-(1-q)^k. Blocked and burning cells are unchanged.
func AdvanceFire(g Grid, q float64, rng *rand.Rand) Grid {
	next := g.Clone()
	n := g.Size()
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if g.cells[r*n+c] != Free {
				continue
			}
			k := 0
			for _, nb := range Neighbors(Coord{Row: r, Col: c}) {
				if g.At(nb) == Fire {
					k++
				}
			}
			if k == 0 {
				continue
			}
			if rng.Float64() < 1-math.Pow(1-q, float64(k)) {
				next.cells[r*n+c] = Fire
			}
		}
	}
	return next
}

// Evaluation is the outcome of walking a path through spreading fire.
type Evaluation struct {
	Survived bool
	// Grid is the fire realization when the walk ended.
	Grid Grid
	// Replans counts fire-gated A* invocations.
	Replans int
	// Walked lists the cells the agent occupied, in order.
	Walked []Coord
	// Steps counts fire advances.
	Steps int
}

type evaluateOptions struct {
	replanLimit float64
	maxReplans  int
	rng         *rand.Rand
	logger      *slog.Logger
}

// EvaluateOption is a function that modifies path evaluation.
type EvaluateOption func(*evaluateOptions)

// WithReplanLimit sets the fire-risk threshold for replanning.
func WithReplanLimit(limit float64) EvaluateOption {
	return func(options *evaluateOptions) { options.replanLimit = limit }
}

// WithMaxReplans caps replanning; the walk fails once the cap is hit.
// Defaults to N*N.
func WithMaxReplans(n int) EvaluateOption {
	return func(options *evaluateOptions) { options.maxReplans = n }
}

// WithRand sets the random source for fire advances.
func WithRand(rng *rand.Rand) EvaluateOption {
	return func(options *evaluateOptions) { options.rng = rng }
}

// WithEvalLogger sets the logger for replanning events.
func WithEvalLogger(logger *slog.Logger) EvaluateOption {
	return func(options *evaluateOptions) { options.logger = logger }
}

// walkable reports whether every cell of path is passable and each step moves
// to a 4-neighbor or stays put. It returns the first offending cell.
func walkable(g Grid, path []Coord) (Coord, bool) {
	for i, c := range path {
		if !Passable(g, c) {
			return c, false
		}
		if i > 0 {
			prev := path[i-1]
			if absInt(prev.Row-c.Row)+absInt(prev.Col-c.Col) > 1 {
				return c, false
			}
		}
	}
	return Coord{}, true
}

// EvaluatePath walks path over a copy of g, advancing the fire one step after
// every safe cell. When the next cell is burning, it replans with fire-gated
// Manhattan A* from the previous cell to the original goal over the current
// realization and continues along the new path. Running out of routes, or a
// path that leaves the grid, crosses a blocked cell or skips a cell, is
// reported as Survived=false, not as an error.
func EvaluatePath(ctx context.Context, g Grid, path []Coord, q float64, options ...EvaluateOption) (eval Evaluation, err error) {
	if q < 0 || q > 1 {
		return Evaluation{}, fmt.Errorf("evaluate path: q=%v: %w", q, ErrInvalidSpread)
	}
	opts := evaluateOptions{
		replanLimit: DefaultReplanLimit,
		maxReplans:  g.Size() * g.Size(),
	}
	for _, option := range options {
		option(&opts)
	}
	if opts.replanLimit < 0 || opts.replanLimit > 1 {
		return Evaluation{}, fmt.Errorf("evaluate path: replan limit %v: %w", opts.replanLimit, ErrInvalidLimit)
	}
	if opts.rng == nil {
		opts.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.logger == nil {
		opts.logger = slog.Default()
	}

	ctx, span := tracer.Start(ctx, "firepath.evaluate")
	defer func() {
		span.SetAttributes(
			attribute.Bool("survived", eval.Survived),
			attribute.Int("replans", eval.Replans),
			attribute.Int("steps", eval.Steps),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			recordEvaluation(ctx, eval.Survived, eval.Replans)
		}
		span.End()
	}()

	eval.Grid = g.Clone()
	if len(path) == 0 {
		return eval, nil
	}
	if bad, ok := walkable(g, path); !ok {
		opts.logger.Debug("path is not walkable", slog.String("cell", bad.String()))
		return eval, nil
	}
	goal := path[len(path)-1]

	for i := 0; i < len(path); {
		if err := ctx.Err(); err != nil {
			return Evaluation{}, err
		}
		cell := path[i]

		if eval.Grid.At(cell) == Fire {
			if i == 0 || eval.Replans >= opts.maxReplans {
				opts.logger.Debug("fire reached agent",
					slog.String("cell", cell.String()),
					slog.Int("replans", eval.Replans),
				)
				return eval, nil
			}
			from := path[i-1]
			field, err := NewFireField(eval.Grid, q)
			if err != nil {
				return Evaluation{}, err
			}
			replanned, err := Search(ctx, eval.Grid, from, goal, Manhattan,
				WithFireGate(field, opts.replanLimit),
				WithLogger(opts.logger),
			)
			if err != nil {
				return Evaluation{}, fmt.Errorf("replan from %s: %w", from, err)
			}
			eval.Replans++
			recordReplan(ctx, replanned.Found)
			opts.logger.Debug("replanned around fire",
				slog.String("session", field.ID.String()),
				slog.String("from", from.String()),
				slog.String("blocked_at", cell.String()),
				slog.Bool("found", replanned.Found),
				slog.Int("path_length", len(replanned.Path)),
			)
			if !replanned.Found {
				return eval, nil
			}
			path = replanned.Path
			i = 0
			continue
		}

		if n := len(eval.Walked); n == 0 || eval.Walked[n-1] != cell {
			eval.Walked = append(eval.Walked, cell)
		}
		eval.Grid = AdvanceFire(eval.Grid, q, opts.rng)
		eval.Steps++
		i++
	}

	eval.Survived = true
	return eval, nil
}
