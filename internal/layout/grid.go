// Package layout splits the window into a grid of viewport cells.
package layout

import "math"

// Cell is one viewport's rectangle in window pixels, origin top-left.
type Cell struct {
	Index      int
	X, Y, W, H int
}

// Size returns the cell size.
func (c *Cell) Size() (int, int) {
	return c.W, c.H
}

// Contains reports whether the window point (x, y) lies in the cell.
func (c *Cell) Contains(x, y int) bool {
	return x >= c.X && x < c.X+c.W && y >= c.Y && y < c.Y+c.H
}

// Grid arranges N cells in the most square grid that holds them, filling
// rows left to right. Cell pointers stay valid across Resize.
type Grid struct {
	Cols, Rows int
	Gap        int

	width, height int
	cells         []*Cell
}

// NewGrid creates a grid of n cells over a width x height window.
func NewGrid(n, width, height, gap int) *Grid {
	if n < 1 {
		n = 1
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	g := &Grid{
		Cols:  cols,
		Rows:  (n + cols - 1) / cols,
		Gap:   gap,
		cells: make([]*Cell, n),
	}
	for i := range g.cells {
		g.cells[i] = &Cell{Index: i}
	}
	g.Resize(width, height)
	return g
}

// Resize recomputes every cell for a new window size.
func (g *Grid) Resize(width, height int) {
	g.width, g.height = max(width, 0), max(height, 0)
	for i, c := range g.cells {
		col, row := i%g.Cols, i/g.Cols
		x0, x1 := col*g.width/g.Cols, (col+1)*g.width/g.Cols
		y0, y1 := row*g.height/g.Rows, (row+1)*g.height/g.Rows
		if col < g.Cols-1 {
			x1 -= g.Gap
		}
		if row < g.Rows-1 {
			y1 -= g.Gap
		}
		c.X, c.Y = x0, y0
		c.W, c.H = max(x1-x0, 0), max(y1-y0, 0)
	}
}

// Size returns the window size the grid was laid out for.
func (g *Grid) Size() (int, int) {
	return g.width, g.height
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.cells)
}

// Cell returns cell i, or nil when i is out of range.
func (g *Grid) Cell(i int) *Cell {
	if i < 0 || i >= len(g.cells) {
		return nil
	}
	return g.cells[i]
}

// CellAt returns the index of the cell under the window point (x, y).
func (g *Grid) CellAt(x, y int) (int, bool) {
	for _, c := range g.cells {
		if c.Contains(x, y) {
			return c.Index, true
		}
	}
	return -1, false
}

// Framebuffer converts the cell to framebuffer pixels with a bottom-left
// origin, as gl.Viewport expects. windowHeight is the logical window height
// and scale the drawable-to-window ratio on HiDPI displays.
func (c *Cell) Framebuffer(windowHeight int, scale float32) (x, y, w, h int32) {
	if scale <= 0 {
		scale = 1
	}
	x = int32(float32(c.X) * scale)
	y = int32(float32(windowHeight-c.Y-c.H) * scale)
	w = int32(float32(c.W) * scale)
	h = int32(float32(c.H) * scale)
	return x, y, w, h
}
