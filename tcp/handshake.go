package tcp

import (
	"github.com/beka-birhanu/vinom-client/maze"
	"github.com/beka-birhanu/vinom-client/protocol"
	"github.com/pkg/errors"
)

// handshake runs the fixed request/response exchange that loads the maze:
// row, column, start, end, theme and maze, in that order.
func handshake(l *link) (*maze.Maze, error) {
	rowLine, err := handshakeStep(l, protocol.KeywordRow)
	if err != nil {
		return nil, err
	}
	rows, err := protocol.DecodeInt(rowLine)
	if err != nil {
		return nil, errors.WithMessage(err, "row count")
	}

	colLine, err := handshakeStep(l, protocol.KeywordColumn)
	if err != nil {
		return nil, err
	}
	cols, err := protocol.DecodeInt(colLine)
	if err != nil {
		return nil, errors.WithMessage(err, "column count")
	}

	startLine, err := handshakeStep(l, protocol.KeywordStart)
	if err != nil {
		return nil, err
	}
	start, err := protocol.DecodeMove(startLine)
	if err != nil {
		return nil, errors.WithMessage(err, "start cell")
	}

	endLine, err := handshakeStep(l, protocol.KeywordEnd)
	if err != nil {
		return nil, err
	}
	end, err := protocol.DecodeMove(endLine)
	if err != nil {
		return nil, errors.WithMessage(err, "end cell")
	}

	themeLine, err := handshakeStep(l, protocol.KeywordTheme)
	if err != nil {
		return nil, err
	}
	theme := protocol.DecodeTheme(themeLine)

	gridLine, err := handshakeStep(l, protocol.KeywordMaze)
	if err != nil {
		return nil, err
	}
	grid, err := protocol.DecodeGrid(gridLine)
	if err != nil {
		return nil, errors.WithMessage(err, "maze grid")
	}
	if grid.Rows != rows || grid.Cols != cols {
		return nil, errors.Wrapf(protocol.ErrProtocolViolation, "grid is %dx%d, announced %dx%d", grid.Rows, grid.Cols, rows, cols)
	}

	m, err := maze.Load(rows, cols,
		maze.Position{Row: start.Row, Col: start.Col},
		maze.Position{Row: end.Row, Col: end.Col},
		theme, grid.Cells)
	if err != nil {
		return nil, errors.Wrap(protocol.ErrProtocolViolation, err.Error())
	}
	return m, nil
}

// handshakeStep sends one keyword and reads its answer. A stream that ends before
// the answer arrives is a protocol violation.
func handshakeStep(l *link, keyword string) (string, error) {
	line, err := l.request(keyword)
	if errors.Is(err, ErrPeerClosed) {
		return "", errors.Wrapf(protocol.ErrProtocolViolation, "stream ended waiting for %q", keyword)
	}
	return line, err
}
