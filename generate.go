package firepath

import "math/rand"

// Generate returns an n×n grid where each cell is blocked with probability p.
// Start and goal are always left free. Solvability is not guaranteed.
func Generate(n int, p float64, rng *rand.Rand) Grid {
	g := NewGrid(n)
	if n == 0 {
		return g
	}
	for i := range g.cells {
		if rng.Float64() < p {
			g.cells[i] = Blocked
		}
	}
	g.Set(g.Start(), Free)
	g.Set(g.Goal(), Free)
	return g
}

// GenerateFire is Generate with a fire seeded in the top-right corner (0, n-1).
func GenerateFire(n int, p float64, rng *rand.Rand) Grid {
	g := Generate(n, p, rng)
	if n > 0 {
		g.Set(Coord{Row: 0, Col: n - 1}, Fire)
	}
	return g
}
