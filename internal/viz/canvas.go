package viz

import (
	"strings"

	"github.com/san-kum/nssim/internal/field"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// Plot lights every sub-pixel whose nearest grid point of sample b exceeds
// level. x runs left to right, y bottom to top.
func (c *Canvas) Plot(f field.Field, b int, level float64) {
	c.Clear()
	if b < 0 || b >= f.Batch || f.N == 0 {
		return
	}

	w, h := c.Width*2, c.Height*4
	for py := 0; py < h; py++ {
		j := (h - 1 - py) * f.N / h
		for px := 0; px < w; px++ {
			i := px * f.N / w
			if f.At(b, i, j) > level {
				c.Set(px, py)
			}
		}
	}
}

// Lit counts the set sub-pixels.
func (c *Canvas) Lit() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for bits := int(r - 0x2800); bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}
