package firepath

import "errors"

// Sentinel errors. A missing path is never one of these; it is reported
// through Result.Found or Evaluation.Survived.
var (
	// ErrInvalidSpread is returned when a spread rate lies outside [0, 1].
	ErrInvalidSpread = errors.New("spread rate must be within [0, 1]")

	// ErrInvalidLimit is returned when a fire-risk threshold lies outside [0, 1].
	ErrInvalidLimit = errors.New("fire limit must be within [0, 1]")

	// ErrNilHeuristic is returned when Search is called without a heuristic.
	ErrNilHeuristic = errors.New("heuristic is nil")

	// ErrFieldMismatch is returned when a fire field was built for a grid of
	// a different size than the one being searched.
	ErrFieldMismatch = errors.New("fire field does not match grid size")

	// ErrMalformedGrid is returned by ParseGrid for ragged rows or unknown cells.
	ErrMalformedGrid = errors.New("malformed grid")

	// ErrUnknownHeuristic is returned by HeuristicByName.
	ErrUnknownHeuristic = errors.New("unknown heuristic")
)
