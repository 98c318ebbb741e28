package firepath

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// requireValidPath checks endpoints, adjacency and passability of path.
func requireValidPath(t *testing.T, g Grid, path []Coord, start, goal Coord) {
	t.Helper()
	require.NotEmpty(t, path)
	require.Equal(t, start, path[0], "path must begin at start")
	require.Equal(t, goal, path[len(path)-1], "path must end at goal")
	seen := make(map[Coord]bool, len(path))
	for i, c := range path {
		require.True(t, Passable(g, c), "cell %s on path is not passable", c)
		require.False(t, seen[c], "cell %s visited twice", c)
		seen[c] = true
		if i > 0 {
			prev := path[i-1]
			require.Equal(t, 1, absInt(prev.Row-c.Row)+absInt(prev.Col-c.Col),
				"%s and %s are not adjacent", prev, c)
		}
	}
}

func randomGrids(n, count int, density float64, seed int64) []Grid {
	rng := rand.New(rand.NewSource(seed))
	grids := make([]Grid, count)
	for i := range grids {
		grids[i] = Generate(n, density, rng)
	}
	return grids
}
