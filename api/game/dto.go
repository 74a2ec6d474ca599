// Package gameapi exposes the local game session over HTTP.
package gameapi

import (
	dmn "github.com/beka-birhanu/vinom-client/domain"
	"github.com/beka-birhanu/vinom-client/maze"
)

// MoveRequest asks for a single step of the local player.
type MoveRequest struct {
	FromRow *int `json:"from_row" binding:"required"`
	FromCol *int `json:"from_col" binding:"required"`
	ToRow   *int `json:"to_row" binding:"required"`
	ToCol   *int `json:"to_col" binding:"required"`
}

// WallsResponse reports which sides of a cell are walled.
type WallsResponse struct {
	Top    bool `json:"top"`
	Right  bool `json:"right"`
	Bottom bool `json:"bottom"`
	Left   bool `json:"left"`
}

// CellResponse is one maze cell.
type CellResponse struct {
	Row   int           `json:"row"`
	Col   int           `json:"col"`
	Value int           `json:"value"`
	Walls WallsResponse `json:"walls"`
}

// MazeResponse is the maze loaded by the latest handshake.
type MazeResponse struct {
	Rows  int              `json:"rows"`
	Cols  int              `json:"cols"`
	Theme string           `json:"theme"`
	Start dmn.Position     `json:"start"`
	End   dmn.Position     `json:"end"`
	Cells [][]CellResponse `json:"cells"`
}

func newMazeResponse(m *maze.Maze) *MazeResponse {
	cells := m.Cells()
	resp := &MazeResponse{
		Rows:  m.Rows(),
		Cols:  m.Cols(),
		Theme: m.Theme(),
		Start: dmn.Position{Row: m.Start().Row, Col: m.Start().Col},
		End:   dmn.Position{Row: m.End().Row, Col: m.End().Col},
		Cells: make([][]CellResponse, len(cells)),
	}
	for r, row := range cells {
		resp.Cells[r] = make([]CellResponse, len(row))
		for c, cell := range row {
			resp.Cells[r][c] = CellResponse{
				Row:   cell.Row,
				Col:   cell.Col,
				Value: cell.Value,
				Walls: WallsResponse{
					Top:    cell.Walls.Has(maze.Top),
					Right:  cell.Walls.Has(maze.Right),
					Bottom: cell.Walls.Has(maze.Bottom),
					Left:   cell.Walls.Has(maze.Left),
				},
			}
		}
	}
	return resp
}
