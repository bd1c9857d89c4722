package main

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	gridWidth  = 80
	gridHeight = 25
)

// Grid is the program space: a fixed size torus of command bytes, stored row
// major. Any cell may be read or written at any time.
type Grid struct {
	cells [gridWidth * gridHeight]byte
}

// Load builds a Grid from program source. Each line becomes one row; lines
// end at "\n", "\r\n", or a lone "\r". Rows past gridHeight and columns past
// gridWidth are discarded, and anything missing is filled with spaces.
func Load(src []byte) *Grid {
	var g Grid
	g.clear()
	for y := 0; y < gridHeight && len(src) > 0; y++ {
		line := src
		if i := bytes.IndexAny(src, "\r\n"); i < 0 {
			src = nil
		} else {
			end := i + 1
			if src[i] == '\r' && end < len(src) && src[end] == '\n' {
				end++
			}
			line, src = src[:i], src[end:]
		}
		if len(line) > gridWidth {
			line = line[:gridWidth]
		}
		copy(g.cells[y*gridWidth:], line)
	}
	return &g
}

func (g *Grid) clear() {
	for i := range g.cells {
		g.cells[i] = ' '
	}
}

// Size returns the grid's width and height.
func (g *Grid) Size() (width, height int) { return gridWidth, gridHeight }

// Get returns the byte at (x, y) after wrapping both coordinates into the
// grid, so Get(-1, 0) is the last cell of the first row.
func (g *Grid) Get(x, y int) byte { return g.cells[cellIndex(x, y)] }

// Put writes b at (x, y), wrapping coordinates as Get does.
func (g *Grid) Put(x, y int, b byte) { g.cells[cellIndex(x, y)] = b }

// Row returns a copy of row y (wrapped).
func (g *Grid) Row(y int) []byte {
	i := cellIndex(0, y)
	return append([]byte(nil), g.cells[i:i+gridWidth]...)
}

// Bytes returns a copy of all cells in row major order.
func (g *Grid) Bytes() []byte { return append([]byte(nil), g.cells[:]...) }

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	c := *g
	return &c
}

// gridFromCells is the inverse of Bytes.
func gridFromCells(width, height int, cells []byte) (*Grid, error) {
	if width != gridWidth || height != gridHeight {
		return nil, fmt.Errorf("unsupported grid size %v x %v", width, height)
	}
	if len(cells) != gridWidth*gridHeight {
		return nil, fmt.Errorf("have %v cells, expected %v", len(cells), gridWidth*gridHeight)
	}
	var g Grid
	copy(g.cells[:], cells)
	return &g, nil
}

// String renders the grid as source text: trailing spaces on each row and
// trailing empty rows are trimmed, so String of a loaded program reproduces
// its (truncated) source.
func (g *Grid) String() string {
	var sb strings.Builder
	blank := 0
	for y := 0; y < gridHeight; y++ {
		row := bytes.TrimRight(g.cells[y*gridWidth:(y+1)*gridWidth], " ")
		if len(row) == 0 {
			blank++
			continue
		}
		for ; blank > 0; blank-- {
			sb.WriteByte('\n')
		}
		sb.Write(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func cellIndex(x, y int) int {
	return wrapCoord(y, gridHeight)*gridWidth + wrapCoord(x, gridWidth)
}

func wrapCoord(v, n int) int {
	if v %= n; v < 0 {
		v += n
	}
	return v
}
