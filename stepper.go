package firepath

import (
	"context"
	"fmt"

	"github.com/pdrpinto/firepath/internal"
)

// StepSnapshot exposes the per-iteration state of an A* search.
type StepSnapshot struct {
	Current   Coord
	Open      map[Coord]bool
	Closed    map[Coord]bool
	CameFrom  map[Coord]Coord
	Done      bool
	Found     bool
	Path      []Coord
	StepIndex int
}

// Stepper drives A* one node expansion at a time. Search runs the same
// stepper to completion.
type Stepper struct {
	ctx       context.Context
	grid      Grid
	start     Coord
	goal      Coord
	heuristic Heuristic
	options   Options
	gate      *fireGate

	open   *openSet
	closed map[Coord]Coord
	// parents keeps the last expansion-time parent of every node, including
	// nodes reopened since, so reconstruction never hits a gap.
	parents  map[Coord]Coord
	gScore   map[Coord]float64
	expanded []Coord

	current   Coord
	stepCount int
	reopened  int
	maxFringe int
	done      bool
	found     bool
	path      []Coord
	cost      float64
}

// NewStepper validates the options and seeds the frontier with start. A
// blocked or out-of-range start or goal yields a stepper that is already done.
func NewStepper(
	ctx context.Context,
	g Grid,
	start Coord,
	goal Coord,
	heuristic Heuristic,
	options ...Option,
) (*Stepper, error) {
	if heuristic == nil {
		return nil, ErrNilHeuristic
	}
	opts := applyOptions(options)
	if err := opts.validate(g); err != nil {
		return nil, fmt.Errorf("new stepper: %w", err)
	}

	s := &Stepper{
		ctx:       ctx,
		grid:      g,
		start:     start,
		goal:      goal,
		heuristic: heuristic,
		options:   opts,
		open:      newOpenSet(),
		closed:    make(map[Coord]Coord),
		parents:   make(map[Coord]Coord),
		gScore:    map[Coord]float64{start: 0},
	}
	if opts.FireField != nil {
		s.gate = &fireGate{field: opts.FireField, limit: opts.FireLimit}
	}
	if !Passable(g, start) || !Passable(g, goal) {
		s.done = true
		return s, nil
	}
	s.open.push(start, start, 0, heuristic(start, goal))
	s.maxFringe = 1
	return s, nil
}

// Done reports whether the search has finished.
func (s *Stepper) Done() bool { return s.done }

// Step advances the search by one node expansion and returns a snapshot.
// Once done, further calls return the final snapshot.
func (s *Stepper) Step() (StepSnapshot, error) {
	if !s.done {
		if err := s.advance(); err != nil {
			s.done = true
			return StepSnapshot{Done: true, StepIndex: s.stepCount}, err
		}
	}
	return StepSnapshot{
		Current:   s.current,
		Open:      s.openSetToBoolMap(),
		Closed:    s.closedToBoolMap(),
		CameFrom:  copyCameFrom(s.parents),
		Done:      s.done,
		Found:     s.found,
		Path:      append([]Coord(nil), s.path...),
		StepIndex: s.stepCount,
	}, nil
}

// advance performs one expansion without building a snapshot.
func (s *Stepper) advance() error {
	if s.done {
		return nil
	}
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if s.open.Len() == 0 {
		s.done = true
		s.options.Logger.Debug("search exhausted frontier",
			"algorithm", "astar",
			"closed", len(s.closed),
			"reopened", s.reopened,
		)
		return nil
	}

	s.stepCount++
	item := s.selectNext()
	s.current = item.Node
	s.closed[item.Node] = item.Parent
	s.parents[item.Node] = item.Parent
	s.expanded = append(s.expanded, item.Node)

	if item.Node == s.goal {
		s.done = true
		s.found = true
		s.cost = item.GScore
		s.path = internal.ReconstructPath(s.parents, item.Node, s.start)
		return nil
	}

	arrival := int(item.GScore) + 1
	for _, next := range Neighbors(item.Node) {
		if !s.gate.allows(s.grid, next, arrival) {
			continue
		}
		s.relax(propose(item.Node, item.GScore, next, s.goal, s.heuristic))
	}
	if n := s.open.Len(); n > s.maxFringe {
		s.maxFringe = n
	}
	return nil
}

// selectNext pops the minimum-f entry. With tie-breaking it also pops up to
// goal.Row further entries of the same f, keeps the one with the largest g
// (earliest popped on equal g) and requeues the rest untouched.
func (s *Stepper) selectNext() *PriorityQueueItem {
	best := s.open.pop()
	if !s.options.TieBreaking {
		return best
	}
	var ties []*PriorityQueueItem
	for len(ties) < s.goal.Row && s.open.Len() > 0 && s.open.peek().FCost == best.FCost {
		ties = append(ties, s.open.pop())
	}
	chosen := best
	for _, candidate := range ties {
		if candidate.GScore > chosen.GScore {
			chosen = candidate
		}
	}
	if chosen != best {
		s.open.requeue(best)
	}
	for _, candidate := range ties {
		if candidate != chosen {
			s.open.requeue(candidate)
		}
	}
	return chosen
}

// Result returns the outcome so far. It is final once Done reports true.
func (s *Stepper) Result() Result {
	result := Result{
		Found:         s.found,
		ExpandedNodes: len(s.expanded),
		Closed:        len(s.closed),
		Expanded:      s.expanded,
		Frontier:      s.open.snapshot(),
		MaxFringe:     s.maxFringe,
		Reopened:      s.reopened,
		Fire:          s.options.FireField,
	}
	if s.found {
		result.Path = s.path
		result.TotalCost = s.cost
	}
	return result
}

func (s *Stepper) openSetToBoolMap() map[Coord]bool {
	m := make(map[Coord]bool, len(s.open.items))
	for k := range s.open.items {
		m[k] = true
	}
	return m
}

func (s *Stepper) closedToBoolMap() map[Coord]bool {
	m := make(map[Coord]bool, len(s.closed))
	for k := range s.closed {
		m[k] = true
	}
	return m
}

func copyCameFrom[T comparable](m map[T]T) map[T]T {
	if m == nil {
		return nil
	}
	c := make(map[T]T, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
