/*
Package maze holds the client's read-only view of the game maze.

A Maze is built once from the handshake data and never mutated afterwards. Player
positions are not part of it. IsLegalMove decides whether a single step between two
cells is possible given the walls of both cells.
*/
package maze

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrOutOfBounds      = errors.New("cell position out of bounds")
	ErrInvalidDimension = errors.New("invalid maze dimensions")
	ErrMalformedGrid    = errors.New("grid does not match maze dimensions")
)

// Position is a (row, column) pair on the grid.
type Position struct {
	Row int
	Col int
}

// Maze is an immutable rectangular grid of cells with a start and an end cell.
type Maze struct {
	rows  int
	cols  int
	grid  [][]Cell
	start Position
	end   Position
	theme string
}

// Load builds a Maze. The grid is copied, every cell must sit at the position it
// claims, and start and end must be inside the grid.
func Load(rows, cols int, start, end Position, theme string, cells [][]Cell) (*Maze, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimension, "%dx%d", rows, cols)
	}
	if len(cells) != rows {
		return nil, errors.Wrapf(ErrMalformedGrid, "got %d rows, want %d", len(cells), rows)
	}

	grid := make([][]Cell, rows)
	for r := range cells {
		if len(cells[r]) != cols {
			return nil, errors.Wrapf(ErrMalformedGrid, "row %d has %d cells, want %d", r, len(cells[r]), cols)
		}
		grid[r] = make([]Cell, cols)
		for c, cell := range cells[r] {
			if cell.Row != r || cell.Col != c {
				return nil, errors.Wrapf(ErrMalformedGrid, "cell (%d,%d) stored at (%d,%d)", cell.Row, cell.Col, r, c)
			}
			grid[r][c] = cell
		}
	}

	m := &Maze{rows: rows, cols: cols, grid: grid, start: start, end: end, theme: theme}
	if !m.InBound(start.Row, start.Col) {
		return nil, errors.Wrapf(ErrOutOfBounds, "start (%d,%d)", start.Row, start.Col)
	}
	if !m.InBound(end.Row, end.Col) {
		return nil, errors.Wrapf(ErrOutOfBounds, "end (%d,%d)", end.Row, end.Col)
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *Maze) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Maze) Cols() int { return m.cols }

// Theme returns the cosmetic theme label.
func (m *Maze) Theme() string { return m.theme }

// Start returns the start cell.
func (m *Maze) Start() Cell { return m.grid[m.start.Row][m.start.Col] }

// End returns the end cell.
func (m *Maze) End() Cell { return m.grid[m.end.Row][m.end.Col] }

// InBound reports whether (row, col) lies inside the grid.
func (m *Maze) InBound(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.cols
}

// CellAt returns a copy of the cell at (row, col).
func (m *Maze) CellAt(row, col int) (Cell, error) {
	if !m.InBound(row, col) {
		return Cell{}, errors.Wrapf(ErrOutOfBounds, "(%d,%d) outside %dx%d", row, col, m.rows, m.cols)
	}
	return m.grid[row][col], nil
}

// Cells returns a copy of the grid in row-major order.
func (m *Maze) Cells() [][]Cell {
	out := make([][]Cell, m.rows)
	for r := range m.grid {
		out[r] = append([]Cell(nil), m.grid[r]...)
	}
	return out
}

// String provides a textual representation of the maze.
func (m *Maze) String() string {
	var b strings.Builder

	// Top boundary, honoring the top walls of the first row.
	b.WriteString("+")
	for c := 0; c < m.cols; c++ {
		if m.grid[0][c].Walls.Has(Top) {
			b.WriteString("---+")
		} else {
			b.WriteString("   +")
		}
	}
	b.WriteString("\n")

	for r := 0; r < m.rows; r++ {
		if m.grid[r][0].Walls.Has(Left) {
			b.WriteString("|")
		} else {
			b.WriteString(" ")
		}
		for c := 0; c < m.cols; c++ {
			switch {
			case r == m.start.Row && c == m.start.Col:
				b.WriteString(" S ")
			case r == m.end.Row && c == m.end.Col:
				b.WriteString(" E ")
			default:
				b.WriteString("   ")
			}
			if m.grid[r][c].Walls.Has(Right) {
				b.WriteString("|")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n+")
		for c := 0; c < m.cols; c++ {
			if m.grid[r][c].Walls.Has(Bottom) {
				b.WriteString("---+")
			} else {
				b.WriteString("   +")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
