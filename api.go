package firepath

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Result contains the outcome of a search together with the diagnostics
// consumed by visualization and statistics tools.
type Result struct {
	Found bool
	// Path runs from start to goal inclusive; nil when Found is false.
	Path      []Coord
	TotalCost float64
	// ExpandedNodes equals len(Expanded).
	ExpandedNodes int
	// Closed is the size of the closed list when the search stopped.
	Closed int
	// Expanded lists nodes in the order they were expanded.
	Expanded []Coord
	// Frontier lists the nodes still waiting, in pop order.
	Frontier []Coord
	// MaxFringe is the largest frontier size observed.
	MaxFringe int
	// Reopened counts closed nodes moved back to the frontier by A*.
	Reopened int
	// Fire is the probability field used by a fire-gated A* run, returned so
	// later calls in the same session can reuse it.
	Fire *FireField
}

// Options defines parameters for a search.
type Options struct {
	// TieBreaking makes A* prefer, among entries sharing the minimal f, the one
	// with the largest g.
	TieBreaking bool
	// FireField and FireLimit enable the A* fire gate when FireField is non-nil.
	FireField *FireField
	FireLimit float64
	Logger    *slog.Logger
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithTieBreaking toggles largest-g tie-breaking among equal-f entries.
func WithTieBreaking(enabled bool) Option {
	return func(options *Options) { options.TieBreaking = enabled }
}

// WithFireGate rejects moves into cells whose ignition probability at the
// arrival step exceeds limit. The field is extended in place.
func WithFireGate(field *FireField, limit float64) Option {
	return func(options *Options) {
		options.FireField = field
		options.FireLimit = limit
	}
}

// WithLogger sets the logger used for debug events. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

func applyOptions(options []Option) Options {
	searchOptions := Options{}
	for _, option := range options {
		option(&searchOptions)
	}
	if searchOptions.Logger == nil {
		searchOptions.Logger = slog.Default()
	}
	return searchOptions
}

func (options Options) validate(g Grid) error {
	if options.FireField == nil {
		return nil
	}
	if options.FireField.Size() != g.Size() {
		return fmt.Errorf("field size %d, grid size %d: %w", options.FireField.Size(), g.Size(), ErrFieldMismatch)
	}
	if options.FireLimit < 0 || options.FireLimit > 1 {
		return fmt.Errorf("fire limit %v: %w", options.FireLimit, ErrInvalidLimit)
	}
	return nil
}

// Search runs A* from start to goal over g.
//
// The frontier is ordered by f = g + h with insertion order breaking exact
// ties. A node already expanded is reopened when a strictly cheaper route to
// it appears, which keeps the result optimal for admissible heuristics that
// are not consistent. Failure to reach the goal is reported with Found=false;
// the returned error is non-nil only for invalid options or a cancelled ctx.
func Search(
	ctx context.Context,
	g Grid,
	start Coord,
	goal Coord,
	heuristic Heuristic,
	options ...Option,
) (result Result, err error) {
	const algorithm = "astar"
	ctx, span := startSearchSpan(ctx, algorithm, g, start, goal)
	began := time.Now()
	defer func() { finishSearch(ctx, span, algorithm, began, result, err) }()

	stepper, err := NewStepper(ctx, g, start, goal, heuristic, options...)
	if err != nil {
		return Result{}, err
	}
	for !stepper.Done() {
		if err := stepper.advance(); err != nil {
			return Result{}, err
		}
	}
	return stepper.Result(), nil
}
