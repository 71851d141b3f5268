package effects

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Cell is one character of the backdrop. Heat is the cell's intensity in
// [0, 1]; renderers map it to a color.
type Cell struct {
	Glyph rune
	Heat  float64
}

// Canvas is the character grid effects draw on. Out-of-bounds writes are
// dropped, so effects never have to clip.
type Canvas struct {
	width, height int
	cells         []Cell
}

// NewCanvas creates a blank canvas.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Resize changes the canvas dimensions and blanks it.
func (c *Canvas) Resize(width, height int) {
	c.width = max(width, 0)
	c.height = max(height, 0)
	c.cells = make([]Cell, c.width*c.height)
	c.Clear()
}

// Width returns the canvas width in cells.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in cells.
func (c *Canvas) Height() int { return c.height }

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = Cell{Glyph: ' '}
	}
}

// Set writes a glyph. A hotter write wins over a cooler one already in the
// cell, so overlapping effects keep their brightest point.
func (c *Canvas) Set(x, y int, glyph rune, heat float64) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	cell := &c.cells[y*c.width+x]
	if cell.Glyph != ' ' && cell.Heat > heat {
		return
	}
	*cell = Cell{Glyph: glyph, Heat: heat}
}

// At returns the cell at (x, y), or a blank cell when out of bounds.
func (c *Canvas) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return Cell{Glyph: ' '}
	}
	return c.cells[y*c.width+x]
}

// Line draws a straight line with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int, glyph rune, heat float64) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0, glyph, heat)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// String returns the canvas as plain text, one line per row.
func (c *Canvas) String() string {
	return c.Render(nil)
}

// Render returns the canvas with each glyph styled by ramp, indexed by heat.
// A nil ramp renders plain text.
func (c *Canvas) Render(ramp []lipgloss.Style) string {
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < c.width; x++ {
			cell := c.cells[y*c.width+x]
			if len(ramp) == 0 || cell.Glyph == ' ' {
				b.WriteRune(cell.Glyph)
				continue
			}
			idx := int(cell.Heat * float64(len(ramp)))
			idx = min(max(idx, 0), len(ramp)-1)
			b.WriteString(ramp[idx].Render(string(cell.Glyph)))
		}
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
