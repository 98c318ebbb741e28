package firepath

import (
	"fmt"
	"strings"
)

// Coord is a (row, col) grid position.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// Cell is the occupancy state of a grid cell.
type Cell int8

// Cell values keep the numeric encoding of the generator output.
const (
	Blocked Cell = -1
	Free    Cell = 0
	Fire    Cell = 1
)

func (c Cell) String() string {
	switch c {
	case Blocked:
		return "blocked"
	case Free:
		return "free"
	case Fire:
		return "fire"
	default:
		return fmt.Sprintf("cell(%d)", int8(c))
	}
}

// Rune returns the fixture character for the cell.
func (c Cell) Rune() rune {
	switch c {
	case Blocked:
		return '#'
	case Fire:
		return 'F'
	default:
		return '.'
	}
}

// directions is the fixed expansion order W, N, E, S shared by every algorithm.
var directions = [4]Coord{
	{Row: 0, Col: -1},
	{Row: -1, Col: 0},
	{Row: 0, Col: 1},
	{Row: 1, Col: 0},
}

// Neighbors returns the four axis-aligned neighbors of c in W, N, E, S order.
// Out-of-range coordinates are included; callers filter with Passable.
func Neighbors(c Coord) [4]Coord {
	var out [4]Coord
	for i, d := range directions {
		out[i] = Coord{Row: c.Row + d.Row, Col: c.Col + d.Col}
	}
	return out
}

// Grid is a square N×N occupancy matrix stored row-major.
type Grid struct {
	n     int
	cells []Cell
}

// NewGrid returns an all-free n×n grid. Negative sizes are treated as 0.
func NewGrid(n int) Grid {
	if n < 0 {
		n = 0
	}
	return Grid{n: n, cells: make([]Cell, n*n)}
}

// ParseGrid builds a grid from equal-length rows using '.' for free,
// '#' for blocked and 'F' for fire.
func ParseGrid(rows []string) (Grid, error) {
	g := NewGrid(len(rows))
	for r, row := range rows {
		runes := []rune(row)
		if len(runes) != len(rows) {
			return Grid{}, fmt.Errorf("row %d has %d cells, want %d: %w", r, len(runes), len(rows), ErrMalformedGrid)
		}
		for c, ch := range runes {
			switch ch {
			case '.':
				g.cells[r*g.n+c] = Free
			case '#':
				g.cells[r*g.n+c] = Blocked
			case 'F':
				g.cells[r*g.n+c] = Fire
			default:
				return Grid{}, fmt.Errorf("row %d col %d: unknown cell %q: %w", r, c, ch, ErrMalformedGrid)
			}
		}
	}
	return g, nil
}

// MustParseGrid is ParseGrid for fixtures known to be valid.
func MustParseGrid(rows ...string) Grid {
	g, err := ParseGrid(rows)
	if err != nil {
		panic(err)
	}
	return g
}

// Size returns N.
func (g Grid) Size() int { return g.n }

// InBounds reports whether c lies inside [0, N-1]².
func (g Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < g.n && c.Col < g.n
}

func (g Grid) index(c Coord) int { return c.Row*g.n + c.Col }

// At returns the state of c; out-of-range cells read as Blocked.
func (g Grid) At(c Coord) Cell {
	if !g.InBounds(c) {
		return Blocked
	}
	return g.cells[g.index(c)]
}

// Set changes the state of c. Out-of-range writes are ignored.
func (g Grid) Set(c Coord, cell Cell) {
	if g.InBounds(c) {
		g.cells[g.index(c)] = cell
	}
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return Grid{n: g.n, cells: cells}
}

// Start returns (0,0).
func (g Grid) Start() Coord { return Coord{} }

// Goal returns (N-1, N-1).
func (g Grid) Goal() Coord { return Coord{Row: g.n - 1, Col: g.n - 1} }

// Count returns how many cells are in the given state.
func (g Grid) Count(cell Cell) int {
	total := 0
	for _, c := range g.cells {
		if c == cell {
			total++
		}
	}
	return total
}

// Equal reports whether both grids have the same size and cells.
func (g Grid) Equal(other Grid) bool {
	if g.n != other.n {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Rows renders the grid in ParseGrid notation.
func (g Grid) Rows() []string {
	rows := make([]string, g.n)
	var b strings.Builder
	for r := 0; r < g.n; r++ {
		b.Reset()
		for c := 0; c < g.n; c++ {
			b.WriteRune(g.cells[r*g.n+c].Rune())
		}
		rows[r] = b.String()
	}
	return rows
}

func (g Grid) String() string { return strings.Join(g.Rows(), "\n") }

// Passable reports whether c is inside the grid and not blocked. Burning
// cells pass; fire is judged by the fire gate and the path evaluator.
func Passable(g Grid, c Coord) bool {
	return g.InBounds(c) && g.cells[g.index(c)] != Blocked
}
