package maze

// stepRule lists the sides that must be open on the origin and the destination
// for one step direction.
type stepRule struct {
	origin      []Side
	destination []Side
}

// stepRules is indexed by [dRow+1][dCol+1]. A diagonal step needs both L-shaped
// detours open, so it may not cut a walled corner.
var stepRules = [3][3]stepRule{
	{ // dRow = -1
		{origin: []Side{Top, Left}, destination: []Side{Right, Bottom}},
		{origin: []Side{Top}, destination: []Side{Bottom}},
		{origin: []Side{Top, Right}, destination: []Side{Bottom, Left}},
	},
	{ // dRow = 0
		{origin: []Side{Left}, destination: []Side{Right}},
		{},
		{origin: []Side{Right}, destination: []Side{Left}},
	},
	{ // dRow = +1
		{origin: []Side{Bottom, Left}, destination: []Side{Right, Top}},
		{origin: []Side{Bottom}, destination: []Side{Top}},
		{origin: []Side{Bottom, Right}, destination: []Side{Top, Left}},
	},
}

// IsLegalMove reports whether a single step from (fromRow, fromCol) to
// (toRow, toCol) is possible. Positions outside the maze and steps longer than
// one cell in either axis are illegal. Staying in place is legal.
func IsLegalMove(m *Maze, fromRow, fromCol, toRow, toCol int) bool {
	if m == nil || !m.InBound(fromRow, fromCol) || !m.InBound(toRow, toCol) {
		return false
	}

	dRow, dCol := toRow-fromRow, toCol-fromCol
	if dRow < -1 || dRow > 1 || dCol < -1 || dCol > 1 {
		return false
	}

	rule := stepRules[dRow+1][dCol+1]
	return m.grid[fromRow][fromCol].Walls.Open(rule.origin...) &&
		m.grid[toRow][toCol].Walls.Open(rule.destination...)
}
