// Package firepath provides grid pathfinding under static and spreading hazards.
//
// It exposes three groups of entry points:
//
//   - DFS, BFS, BidirectionalBFS: uninformed search over a 4-connected Grid.
//   - Search and Stepper: A* with a pluggable heuristic, optional tie-breaking and an
//     optional fire gate backed by a caller-owned FireField.
//   - AdvanceFire and EvaluatePath: Monte Carlo fire spread and a path walker that
//     replans with fire-gated A* when fire reaches the path.
//
// Every search runs on the calling goroutine. No path, a blocked endpoint or a
// degenerate grid are reported through Result.Found, never through an error.
package firepath
