package maze

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Valid maze", func(t *testing.T) {
		cells := openGrid(5, 7)
		cells[4][6].Value = 9
		m, err := Load(5, 7, Position{0, 0}, Position{4, 6}, "Dark", cells)
		require.NoError(t, err)

		assert.Equal(t, 5, m.Rows())
		assert.Equal(t, 7, m.Cols())
		assert.Equal(t, "Dark", m.Theme())
		assert.Equal(t, Cell{Row: 0, Col: 0}, m.Start())
		assert.Equal(t, 9, m.End().Value)
	})

	t.Run("Grid is copied", func(t *testing.T) {
		cells := openGrid(2, 2)
		m, err := Load(2, 2, Position{0, 0}, Position{1, 1}, "", cells)
		require.NoError(t, err)

		cells[0][0].Walls[Top] = true
		c, err := m.CellAt(0, 0)
		require.NoError(t, err)
		assert.False(t, c.Walls.Has(Top))

		copied := m.Cells()
		copied[1][1].Value = 42
		c, err = m.CellAt(1, 1)
		require.NoError(t, err)
		assert.Zero(t, c.Value)
	})

	t.Run("Invalid dimensions", func(t *testing.T) {
		_, err := Load(0, 3, Position{0, 0}, Position{0, 0}, "", nil)
		assert.ErrorIs(t, err, ErrInvalidDimension)
	})

	t.Run("Grid shape mismatch", func(t *testing.T) {
		_, err := Load(3, 3, Position{0, 0}, Position{1, 1}, "", openGrid(2, 3))
		assert.ErrorIs(t, err, ErrMalformedGrid)

		_, err = Load(2, 3, Position{0, 0}, Position{1, 1}, "", openGrid(2, 2))
		assert.ErrorIs(t, err, ErrMalformedGrid)
	})

	t.Run("Cell position mismatch", func(t *testing.T) {
		cells := openGrid(2, 2)
		cells[1][0].Col = 1
		_, err := Load(2, 2, Position{0, 0}, Position{1, 1}, "", cells)
		assert.ErrorIs(t, err, ErrMalformedGrid)
	})

	t.Run("Start or end outside grid", func(t *testing.T) {
		_, err := Load(2, 2, Position{2, 0}, Position{1, 1}, "", openGrid(2, 2))
		assert.ErrorIs(t, err, ErrOutOfBounds)

		_, err = Load(2, 2, Position{0, 0}, Position{1, -1}, "", openGrid(2, 2))
		assert.ErrorIs(t, err, ErrOutOfBounds)
	})
}

func TestCellAt(t *testing.T) {
	m, err := Load(5, 7, Position{0, 0}, Position{4, 6}, "", openGrid(5, 7))
	require.NoError(t, err)

	c, err := m.CellAt(4, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Row)
	assert.Equal(t, 6, c.Col)

	for _, pos := range []Position{{-1, 0}, {0, -1}, {5, 0}, {0, 7}} {
		_, err := m.CellAt(pos.Row, pos.Col)
		assert.ErrorIs(t, err, ErrOutOfBounds, "position %v", pos)
	}
}

func TestWallsMask(t *testing.T) {
	for mask := uint32(0); mask < 16; mask++ {
		assert.Equal(t, mask, WallsFromMask(mask).Mask())
	}
	assert.Equal(t, Walls{true, false, false, true}, WallsFromMask(0b1001))
	assert.Equal(t, Walls{}, WallsFromMask(0b110000))
}

func TestString(t *testing.T) {
	cells := openGrid(1, 2)
	cells[0][0].Walls = Walls{true, true, true, true}
	cells[0][1].Walls = Walls{true, true, true, true}
	m, err := Load(1, 2, Position{0, 0}, Position{0, 1}, "", cells)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(m.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "+---+---+", lines[0])
	assert.Equal(t, "| S | E |", lines[1])
	assert.Equal(t, "+---+---+", lines[2])
}
