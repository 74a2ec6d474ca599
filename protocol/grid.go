package protocol

import (
	"encoding/base64"
	"strings"

	"github.com/beka-birhanu/vinom-client/maze"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Grid payload schema, protobuf wire format:
//
//	Grid { 1: uint32 rows; 2: uint32 cols; 3: repeated bytes cell (row-major) }
//	Cell { 1: sint64 value; 2: uint32 walls (bit0 top, bit1 right, bit2 bottom, bit3 left) }
const (
	gridRowsField protowire.Number = 1
	gridColsField protowire.Number = 2
	gridCellField protowire.Number = 3

	cellValueField protowire.Number = 1
	cellWallsField protowire.Number = 2

	maxGridCells = 1 << 20
)

// Grid is a decoded maze grid.
type Grid struct {
	Rows  int
	Cols  int
	Cells [][]maze.Cell
}

// EncodeGrid encodes cells as a base64 grid line.
func EncodeGrid(cells [][]maze.Cell) string {
	var b []byte
	rows := len(cells)
	cols := 0
	if rows > 0 {
		cols = len(cells[0])
	}

	b = protowire.AppendTag(b, gridRowsField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(rows))
	b = protowire.AppendTag(b, gridColsField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(cols))

	for _, row := range cells {
		for _, c := range row {
			var cb []byte
			cb = protowire.AppendTag(cb, cellValueField, protowire.VarintType)
			cb = protowire.AppendVarint(cb, protowire.EncodeZigZag(int64(c.Value)))
			cb = protowire.AppendTag(cb, cellWallsField, protowire.VarintType)
			cb = protowire.AppendVarint(cb, uint64(c.Walls.Mask()))

			b = protowire.AppendTag(b, gridCellField, protowire.BytesType)
			b = protowire.AppendBytes(b, cb)
		}
	}

	return base64.StdEncoding.EncodeToString(b)
}

// DecodeGrid decodes a base64 grid line. Every failure wraps ErrProtocolViolation.
func DecodeGrid(line string) (*Grid, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(line))
	if err != nil {
		return nil, errors.Wrapf(ErrProtocolViolation, "grid base64: %v", err)
	}

	var rows, cols uint64
	var rawCells [][]byte
	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return nil, errors.Wrapf(ErrProtocolViolation, "grid tag: %v", protowire.ParseError(n))
		}
		raw = raw[n:]

		switch {
		case num == gridRowsField && typ == protowire.VarintType:
			rows, n = protowire.ConsumeVarint(raw)
		case num == gridColsField && typ == protowire.VarintType:
			cols, n = protowire.ConsumeVarint(raw)
		case num == gridCellField && typ == protowire.BytesType:
			var cb []byte
			cb, n = protowire.ConsumeBytes(raw)
			if n >= 0 {
				rawCells = append(rawCells, cb)
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, raw)
		}
		if n < 0 {
			return nil, errors.Wrapf(ErrProtocolViolation, "grid field %d: %v", num, protowire.ParseError(n))
		}
		raw = raw[n:]
	}

	if rows == 0 || cols == 0 || rows > maxGridCells || cols > maxGridCells || rows*cols > maxGridCells {
		return nil, errors.Wrapf(ErrProtocolViolation, "grid dimensions %dx%d", rows, cols)
	}
	if uint64(len(rawCells)) != rows*cols {
		return nil, errors.Wrapf(ErrProtocolViolation, "grid has %d cells, want %d", len(rawCells), rows*cols)
	}

	g := &Grid{Rows: int(rows), Cols: int(cols), Cells: make([][]maze.Cell, rows)}
	for r := 0; r < g.Rows; r++ {
		g.Cells[r] = make([]maze.Cell, g.Cols)
		for c := 0; c < g.Cols; c++ {
			cell, err := decodeCell(rawCells[r*g.Cols+c])
			if err != nil {
				return nil, errors.WithMessagef(err, "cell (%d,%d)", r, c)
			}
			cell.Row, cell.Col = r, c
			g.Cells[r][c] = cell
		}
	}

	return g, nil
}

func decodeCell(b []byte) (maze.Cell, error) {
	var cell maze.Cell
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return cell, errors.Wrapf(ErrProtocolViolation, "cell tag: %v", protowire.ParseError(n))
		}
		b = b[n:]

		var v uint64
		switch {
		case num == cellValueField && typ == protowire.VarintType:
			v, n = protowire.ConsumeVarint(b)
			cell.Value = int(protowire.DecodeZigZag(v))
		case num == cellWallsField && typ == protowire.VarintType:
			v, n = protowire.ConsumeVarint(b)
			cell.Walls = maze.WallsFromMask(uint32(v))
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return cell, errors.Wrapf(ErrProtocolViolation, "cell field %d: %v", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return cell, nil
}
