package firepath

import (
	"context"
	"time"

	"github.com/pdrpinto/firepath/internal"
)

// DFS searches with a stack frontier. Neighbors are pushed in W, N, E, S order
// when they are passable, not yet expanded and not already waiting in the
// frontier. Result.MaxFringe reports the largest stack size seen, the
// difficulty score used by maze hardening.
func DFS(ctx context.Context, g Grid, start, goal Coord, options ...Option) (Result, error) {
	return runListSearch(ctx, "dfs", g, start, goal, newStackFrontier(), options)
}

// BFS is DFS with a FIFO frontier and returns a shortest path in edges.
func BFS(ctx context.Context, g Grid, start, goal Coord, options ...Option) (Result, error) {
	return runListSearch(ctx, "bfs", g, start, goal, newQueueFrontier(), options)
}

func runListSearch(
	ctx context.Context,
	algorithm string,
	g Grid,
	start, goal Coord,
	frontier *listFrontier,
	options []Option,
) (result Result, err error) {
	searchOptions := applyOptions(options)
	ctx, span := startSearchSpan(ctx, algorithm, g, start, goal)
	began := time.Now()
	defer func() { finishSearch(ctx, span, algorithm, began, result, err) }()

	if !Passable(g, start) || !Passable(g, goal) {
		return Result{}, nil
	}

	closed := make(map[Coord]Coord)
	expanded := make([]Coord, 0, 16)
	frontier.push(start, start)

	for frontier.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		entry := frontier.pop()
		current := entry.Node
		closed[current] = entry.Parent
		expanded = append(expanded, current)

		if current == goal {
			path := internal.ReconstructPath(closed, goal, start)
			return Result{
				Found:         true,
				Path:          path,
				TotalCost:     float64(len(path) - 1),
				ExpandedNodes: len(expanded),
				Closed:        len(closed),
				Expanded:      expanded,
				Frontier:      frontier.snapshot(),
				MaxFringe:     frontier.MaxLen(),
			}, nil
		}

		for _, next := range Neighbors(current) {
			if _, seen := closed[next]; seen {
				continue
			}
			if frontier.contains(next) || !Passable(g, next) {
				continue
			}
			frontier.push(next, current)
		}
	}

	searchOptions.Logger.Debug("search exhausted frontier",
		"algorithm", algorithm,
		"closed", len(closed),
	)
	return Result{
		ExpandedNodes: len(expanded),
		Closed:        len(closed),
		Expanded:      expanded,
		MaxFringe:     frontier.MaxLen(),
	}, nil
}

// BidirectionalBFS runs one BFS from start and one from goal, alternating a
// single expansion on each side per round. The search meets when a node just
// expanded on one side is already in the other side's closed list. It stops
// as soon as either frontier is empty, even if the other still has work.
func BidirectionalBFS(ctx context.Context, g Grid, start, goal Coord, options ...Option) (result Result, err error) {
	const algorithm = "bdbfs"
	searchOptions := applyOptions(options)
	ctx, span := startSearchSpan(ctx, algorithm, g, start, goal)
	began := time.Now()
	defer func() { finishSearch(ctx, span, algorithm, began, result, err) }()

	if !Passable(g, start) || !Passable(g, goal) {
		return Result{}, nil
	}

	forward := newBFSSide(start)
	backward := newBFSSide(goal)
	expanded := make([]Coord, 0, 16)

	finish := func(meet Coord) Result {
		head := internal.ReconstructPath(forward.closed, meet, start)
		tail := internal.ReconstructPath(backward.closed, meet, goal)
		internal.Reverse(tail)
		path := append(head, tail[1:]...)
		return Result{
			Found:         true,
			Path:          path,
			TotalCost:     float64(len(path) - 1),
			ExpandedNodes: len(expanded),
			Closed:        len(forward.closed) + len(backward.closed),
			Expanded:      expanded,
			Frontier:      append(forward.frontier.snapshot(), backward.frontier.snapshot()...),
			MaxFringe:     max(forward.frontier.MaxLen(), backward.frontier.MaxLen()),
		}
	}

	for forward.frontier.Len() > 0 && backward.frontier.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		current := forward.expand(g)
		expanded = append(expanded, current)
		if _, met := backward.closed[current]; met {
			return finish(current), nil
		}

		current = backward.expand(g)
		expanded = append(expanded, current)
		if _, met := forward.closed[current]; met {
			return finish(current), nil
		}
	}

	searchOptions.Logger.Debug("search exhausted frontier",
		"algorithm", algorithm,
		"forward_closed", len(forward.closed),
		"backward_closed", len(backward.closed),
	)
	return Result{
		ExpandedNodes: len(expanded),
		Closed:        len(forward.closed) + len(backward.closed),
		Expanded:      expanded,
		MaxFringe:     max(forward.frontier.MaxLen(), backward.frontier.MaxLen()),
	}, nil
}

// bfsSide is one half of a bidirectional search.
type bfsSide struct {
	frontier *listFrontier
	closed   map[Coord]Coord
}

func newBFSSide(root Coord) *bfsSide {
	side := &bfsSide{frontier: newQueueFrontier(), closed: make(map[Coord]Coord)}
	side.frontier.push(root, root)
	return side
}

// expand pops one node, closes it and queues its unseen neighbors.
func (side *bfsSide) expand(g Grid) Coord {
	entry := side.frontier.pop()
	current := entry.Node
	side.closed[current] = entry.Parent
	for _, next := range Neighbors(current) {
		if _, seen := side.closed[next]; seen {
			continue
		}
		if side.frontier.contains(next) || !Passable(g, next) {
			continue
		}
		side.frontier.push(next, current)
	}
	return current
}
