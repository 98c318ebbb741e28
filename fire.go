package firepath

import (
	"fmt"

	"github.com/google/uuid"
)

// FireField is a memoized, time-indexed ignition probability field.
//
// Layer 0 is the base grid's fire indicator. Layer t is derived from layer
// t-1 only, so layers are filled bottom-up and kept: the field grows on demand
// and never shrinks. A FireField is bound to one base grid and one spread rate
// and is owned by the caller for one planning session. It is not safe for
// concurrent use.
type FireField struct {
	// ID identifies the planning session in logs and traces.
	ID uuid.UUID

	n       int
	q       float64
	blocked []bool
	layers  [][]float64
}

// NewFireField creates a field over base with spread rate q.
func NewFireField(base Grid, q float64) (*FireField, error) {
	if q < 0 || q > 1 {
		return nil, fmt.Errorf("new fire field: q=%v: %w", q, ErrInvalidSpread)
	}
	n := base.Size()
	layer := make([]float64, n*n)
	blocked := make([]bool, n*n)
	for i, cell := range base.cells {
		switch cell {
		case Fire:
			layer[i] = 1
		case Blocked:
			blocked[i] = true
		}
	}
	return &FireField{
		ID:      uuid.New(),
		n:       n,
		q:       q,
		blocked: blocked,
		layers:  [][]float64{layer},
	}, nil
}

// Size returns the N of the grid the field was built for.
func (f *FireField) Size() int { return f.n }

// Spread returns q.
func (f *FireField) Spread() float64 { return f.q }

// Len returns the number of layers computed so far.
func (f *FireField) Len() int { return len(f.layers) }

// At returns layer t (row-major, N×N), computing any missing layers up to t.
// Negative t reads layer 0. The returned slice is shared and must not be modified.
func (f *FireField) At(t int) []float64 {
	if t < 0 {
		t = 0
	}
	for len(f.layers) <= t {
		f.layers = append(f.layers, f.next(f.layers[len(f.layers)-1]))
	}
	return f.layers[t]
}

// next derives one layer from the previous one. Each burnable neighbor adds
// its share to the union: p += (1-p) * q * pNeighbor.
func (f *FireField) next(prev []float64) []float64 {
	n := f.n
	out := make([]float64, len(prev))
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			i := r*n + c
			p := prev[i]
			if f.blocked[i] || p >= 1 {
				out[i] = p
				continue
			}
			for _, nb := range Neighbors(Coord{Row: r, Col: c}) {
				if nb.Row < 0 || nb.Col < 0 || nb.Row >= n || nb.Col >= n {
					continue
				}
				j := nb.Row*n + nb.Col
				if f.blocked[j] {
					continue
				}
				p += (1 - p) * f.q * prev[j]
			}
			if p > 1 {
				p = 1
			}
			out[i] = p
		}
	}
	return out
}

// Probability returns the chance that c is burning at step t. Cells outside
// the grid read as 0.
func (f *FireField) Probability(c Coord, t int) float64 {
	if c.Row < 0 || c.Col < 0 || c.Row >= f.n || c.Col >= f.n {
		return 0
	}
	return f.At(t)[c.Row*f.n+c.Col]
}

// Allows reports whether c is inside the grid and its ignition probability at
// step t does not exceed limit.
func (f *FireField) Allows(c Coord, t int, limit float64) bool {
	if c.Row < 0 || c.Col < 0 || c.Row >= f.n || c.Col >= f.n {
		return false
	}
	return f.At(t)[c.Row*f.n+c.Col] <= limit
}

// FireProbability returns layer t of field, extending the cache as needed.
func FireProbability(field *FireField, t int) []float64 {
	return field.At(t)
}

// fireGate composes Passable with a FireField threshold.
type fireGate struct {
	field *FireField
	limit float64
}

func (gate *fireGate) allows(g Grid, c Coord, t int) bool {
	if !Passable(g, c) {
		return false
	}
	if gate == nil || gate.field == nil {
		return true
	}
	return gate.field.Allows(c, t, gate.limit)
}
