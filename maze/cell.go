package maze

// Side names one edge of a cell. The order matches the wire bit order.
type Side int

const (
	Top Side = iota
	Right
	Bottom
	Left
)

// Walls holds one flag per side, indexed by Side.
type Walls [4]bool

// Has reports whether the given side is walled.
func (w Walls) Has(s Side) bool {
	return w[s]
}

// Open reports whether none of the given sides is walled.
func (w Walls) Open(sides ...Side) bool {
	for _, s := range sides {
		if w[s] {
			return false
		}
	}
	return true
}

// Mask packs the walls into bits: Top=1, Right=2, Bottom=4, Left=8.
func (w Walls) Mask() uint32 {
	var m uint32
	for s, walled := range w {
		if walled {
			m |= 1 << uint(s)
		}
	}
	return m
}

// WallsFromMask is the inverse of Walls.Mask. Bits above Left are ignored.
func WallsFromMask(m uint32) Walls {
	var w Walls
	for s := range w {
		w[s] = m&(1<<uint(s)) != 0
	}
	return w
}

// Cell represents a single cell in a maze grid.
type Cell struct {
	Row   int   // Row index of the cell
	Col   int   // Column index of the cell
	Value int   // Game assigned label, opaque to the client
	Walls Walls // Walls on each side of the cell
}
