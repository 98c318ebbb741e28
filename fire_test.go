package firepath

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFireField_InvalidSpread(t *testing.T) {
	for _, q := range []float64{-0.01, 1.01} {
		_, err := NewFireField(NewGrid(3), q)
		assert.ErrorIs(t, err, ErrInvalidSpread, "q=%v", q)
	}
	field, err := NewFireField(NewGrid(3), 0)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, field.ID)
	assert.Equal(t, 3, field.Size())
	assert.Equal(t, 0.0, field.Spread())
}

func TestFireField_Layers(t *testing.T) {
	g := MustParseGrid(
		"..F",
		"...",
		"...",
	)
	field, err := NewFireField(g, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, field.Len())

	assert.Equal(t, 1.0, field.Probability(Coord{0, 2}, 0))
	assert.Zero(t, field.Probability(Coord{0, 1}, 0))

	assert.InDelta(t, 0.5, field.Probability(Coord{0, 1}, 1), 1e-12)
	assert.InDelta(t, 0.5, field.Probability(Coord{1, 2}, 1), 1e-12)
	assert.Zero(t, field.Probability(Coord{1, 1}, 1))

	assert.InDelta(t, 0.75, field.Probability(Coord{0, 1}, 2), 1e-12)
	assert.InDelta(t, 0.4375, field.Probability(Coord{1, 1}, 2), 1e-12)
	assert.InDelta(t, 0.25, field.Probability(Coord{0, 0}, 2), 1e-12)
	assert.Equal(t, 3, field.Len())

	layer := FireProbability(field, 3)
	assert.Len(t, layer, 9)
	assert.InDelta(t, 0.53125, layer[0], 1e-12)
	assert.Equal(t, 4, field.Len())
}

func TestFireField_Memoized(t *testing.T) {
	field, err := NewFireField(MustParseGrid("F..", "...", "..."), 0.4)
	require.NoError(t, err)

	deep := field.At(6)
	assert.Equal(t, 7, field.Len())
	shallow := field.At(2)
	assert.Equal(t, 7, field.Len(), "reading an existing layer must not grow the field")
	assert.Same(t, &deep[0], &field.At(6)[0])
	assert.Same(t, &shallow[0], &field.At(2)[0])
	assert.Equal(t, field.At(0), field.At(-3))
}

func TestFireField_Monotone(t *testing.T) {
	g := MustParseGrid(
		"....F",
		".##..",
		".....",
		"F#...",
		".....",
	)
	field, err := NewFireField(g, 0.35)
	require.NoError(t, err)
	for step := 1; step < 12; step++ {
		prev, cur := field.At(step-1), field.At(step)
		for i := range cur {
			assert.GreaterOrEqual(t, cur[i], prev[i], "cell %d step %d", i, step)
			assert.LessOrEqual(t, cur[i], 1.0)
			assert.GreaterOrEqual(t, cur[i], 0.0)
		}
	}
}

func TestFireField_BlockedCellsStayCold(t *testing.T) {
	g := MustParseGrid(
		"F#.",
		"##.",
		"...",
	)
	field, err := NewFireField(g, 1)
	require.NoError(t, err)
	for step := 0; step < 6; step++ {
		assert.Zero(t, field.Probability(Coord{0, 1}, step))
		assert.Zero(t, field.Probability(Coord{1, 0}, step))
		// Walls isolate the fire.
		assert.Zero(t, field.Probability(Coord{2, 2}, step))
	}
	assert.Equal(t, 1.0, field.Probability(Coord{0, 0}, 5))
}

func TestFireField_ZeroSpread(t *testing.T) {
	field, err := NewFireField(MustParseGrid("F..", "...", "..."), 0)
	require.NoError(t, err)
	layer := field.At(5)
	assert.Equal(t, 1.0, layer[0])
	for _, p := range layer[1:] {
		assert.Zero(t, p)
	}
}

func TestFireField_Allows(t *testing.T) {
	field, err := NewFireField(MustParseGrid("..F", "...", "..."), 0.5)
	require.NoError(t, err)

	assert.True(t, field.Allows(Coord{0, 1}, 1, 0.5))
	assert.False(t, field.Allows(Coord{0, 1}, 1, 0.49))
	assert.False(t, field.Allows(Coord{0, 2}, 0, 0.99))
	assert.False(t, field.Allows(Coord{-1, 0}, 0, 1))
	assert.False(t, field.Allows(Coord{0, 3}, 0, 1))
	assert.Zero(t, field.Probability(Coord{3, 3}, 2))
}

func TestFireGate_NilIsPassable(t *testing.T) {
	g := MustParseGrid("F#", "..")
	var gate *fireGate
	assert.True(t, gate.allows(g, Coord{0, 0}, 0))
	assert.False(t, gate.allows(g, Coord{0, 1}, 0))
	assert.False(t, gate.allows(g, Coord{2, 0}, 0))
}
