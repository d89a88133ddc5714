/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package table implements the cell grid carried by table components:
// per-cell text, per-cell box size and row/column spans for merged cells.
//
// A cell whose span is the zero Span has been absorbed by a merge anchor
// above/left of it. It renders nothing and cannot be edited. Every absorbed
// cell is covered by exactly one anchor rectangle and anchor rectangles never
// overlap; Validate checks this.
package table

import (
	"fmt"

	"reportdesigner/internal/geom"
)

// DefaultMinSize is the smallest width/height a cell may be resized to.
const DefaultMinSize = 20.0

// DefaultCellSize is the size used for new and unmerged cells.
var DefaultCellSize = geom.Size{Width: 100, Height: 24}

// Span is a (rowspan, colspan) pair. The zero value marks an absorbed cell.
type Span struct {
	Rows int `json:"rowspan"`
	Cols int `json:"colspan"`
}

// Single is the span of an unmerged cell.
var Single = Span{Rows: 1, Cols: 1}

// IsAnchor reports whether the cell owning this span is addressable.
func (s Span) IsAnchor() bool { return s.Rows > 0 && s.Cols > 0 }

// Cell addresses a grid cell by zero-based row and column.
type Cell struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Region is an inclusive rectangle of cells.
type Region struct {
	Top, Left, Bottom, Right int
}

func (r Region) contains(row, col int) bool {
	return row >= r.Top && row <= r.Bottom && col >= r.Left && col <= r.Right
}

// Grid is the cell model of a table. Text, Sizes and Spans are parallel
// row-major arrays of identical shape.
type Grid struct {
	Text        [][]string
	Sizes       [][]geom.Size
	Spans       [][]Span
	DefaultSize geom.Size
	MinSize     float64
}

// New builds a rows x cols grid of empty, unmerged cells. Zero or negative
// defSize/minSize fall back to DefaultCellSize/DefaultMinSize.
func New(rows, cols int, defSize geom.Size, minSize float64) *Grid {
	if defSize.Width <= 0 || defSize.Height <= 0 {
		defSize = DefaultCellSize
	}
	if minSize <= 0 {
		minSize = DefaultMinSize
	}
	g := &Grid{DefaultSize: defSize, MinSize: minSize}
	if rows <= 0 || cols <= 0 {
		return g
	}
	for i := 0; i < rows; i++ {
		g.appendRow(cols)
	}
	return g
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return len(g.Spans) }

// Cols returns the number of columns.
func (g *Grid) Cols() int {
	if len(g.Spans) == 0 {
		return 0
	}
	return len(g.Spans[0])
}

func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < g.Rows() && col < g.Cols()
}

// SpanAt returns the span of a cell; ok is false when out of bounds.
func (g *Grid) SpanAt(row, col int) (Span, bool) {
	if !g.inBounds(row, col) {
		return Span{}, false
	}
	return g.Spans[row][col], true
}

// IsAnchor reports whether (row, col) is an in-bounds, addressable cell.
func (g *Grid) IsAnchor(row, col int) bool {
	s, ok := g.SpanAt(row, col)
	return ok && s.IsAnchor()
}

func (g *Grid) appendRow(cols int) {
	text := make([]string, cols)
	sizes := make([]geom.Size, cols)
	spans := make([]Span, cols)
	for j := range cols {
		sizes[j] = g.DefaultSize
		spans[j] = Single
	}
	g.Text = append(g.Text, text)
	g.Sizes = append(g.Sizes, sizes)
	g.Spans = append(g.Spans, spans)
}

// AddRow appends a row of default cells. It is a no-op on a grid without
// columns.
func (g *Grid) AddRow() bool {
	cols := g.Cols()
	if cols == 0 {
		return false
	}
	g.appendRow(cols)
	return true
}

// AddColumn appends a default cell to every existing row.
func (g *Grid) AddColumn() bool {
	if g.Rows() == 0 {
		return false
	}
	for i := range g.Spans {
		g.Text[i] = append(g.Text[i], "")
		g.Sizes[i] = append(g.Sizes[i], g.DefaultSize)
		g.Spans[i] = append(g.Spans[i], Single)
	}
	return true
}

// SetText writes the text of an anchor cell.
func (g *Grid) SetText(row, col int, text string) bool {
	if !g.IsAnchor(row, col) {
		return false
	}
	g.Text[row][col] = text
	return true
}

// Resize sets the box size of an anchor cell, clamping each dimension to
// MinSize.
func (g *Grid) Resize(row, col int, width, height float64) bool {
	if !g.IsAnchor(row, col) {
		return false
	}
	g.Sizes[row][col] = geom.Size{Width: width, Height: height}.ClampMin(g.minSize())
	return true
}

func (g *Grid) minSize() float64 {
	if g.MinSize <= 0 {
		return DefaultMinSize
	}
	return g.MinSize
}

// MergeRight absorbs the anchor immediately right of (row, col)'s span.
// The absorbed strip spans the anchor's rows and the neighbour's columns and
// must be tiled exactly by anchors lying inside it; otherwise nothing changes.
func (g *Grid) MergeRight(row, col int) bool {
	if !g.IsAnchor(row, col) {
		return false
	}
	a := g.Spans[row][col]
	nc := col + a.Cols
	if !g.IsAnchor(row, nc) {
		return false
	}
	n := g.Spans[row][nc]
	strip := Region{Top: row, Left: nc, Bottom: row + a.Rows - 1, Right: nc + n.Cols - 1}
	if !g.tiled(strip) {
		return false
	}
	grow := g.Sizes[row][nc].Width
	g.absorb(strip)
	g.Spans[row][col].Cols += n.Cols
	g.Sizes[row][col].Width += grow
	return true
}

// MergeDown absorbs the anchor immediately below (row, col)'s span, with the
// same tiling rule as MergeRight.
func (g *Grid) MergeDown(row, col int) bool {
	if !g.IsAnchor(row, col) {
		return false
	}
	a := g.Spans[row][col]
	nr := row + a.Rows
	if !g.IsAnchor(nr, col) {
		return false
	}
	n := g.Spans[nr][col]
	strip := Region{Top: nr, Left: col, Bottom: nr + n.Rows - 1, Right: col + a.Cols - 1}
	if !g.tiled(strip) {
		return false
	}
	grow := g.Sizes[nr][col].Height
	g.absorb(strip)
	g.Spans[row][col].Rows += n.Rows
	g.Sizes[row][col].Height += grow
	return true
}

// tiled reports whether every anchor inside r lies fully within r and the
// anchors together cover r.
func (g *Grid) tiled(r Region) bool {
	if !g.inBounds(r.Top, r.Left) || !g.inBounds(r.Bottom, r.Right) {
		return false
	}
	area := 0
	for i := r.Top; i <= r.Bottom; i++ {
		for j := r.Left; j <= r.Right; j++ {
			s := g.Spans[i][j]
			if !s.IsAnchor() {
				continue
			}
			if i+s.Rows-1 > r.Bottom || j+s.Cols-1 > r.Right {
				return false
			}
			area += s.Rows * s.Cols
		}
	}
	return area == (r.Bottom-r.Top+1)*(r.Right-r.Left+1)
}

func (g *Grid) absorb(r Region) {
	for i := r.Top; i <= r.Bottom; i++ {
		for j := r.Left; j <= r.Right; j++ {
			g.Spans[i][j] = Span{}
		}
	}
}

// Bounds returns the bounding region of cells. ok is false if cells is empty
// or any cell is out of bounds.
func (g *Grid) Bounds(cells []Cell) (Region, bool) {
	if len(cells) == 0 {
		return Region{}, false
	}
	r := Region{Top: cells[0].Row, Left: cells[0].Col, Bottom: cells[0].Row, Right: cells[0].Col}
	for _, c := range cells {
		if !g.inBounds(c.Row, c.Col) {
			return Region{}, false
		}
		r.Top = min(r.Top, c.Row)
		r.Left = min(r.Left, c.Col)
		r.Bottom = max(r.Bottom, c.Row)
		r.Right = max(r.Right, c.Col)
	}
	return r, true
}

// MergeSelection merges the bounding rectangle of cells into its top-left
// cell. Fewer than two distinct cells is a no-op. The anchor width is the sum
// of the top row's widths and its height the sum of the left column's
// heights; cells inside the rectangle are assumed to be grid-aligned.
// A rectangle whose edge cuts through an existing merge is rejected. The
// returned selection holds only the anchor.
func (g *Grid) MergeSelection(cells []Cell) ([]Cell, bool) {
	if distinct(cells) < 2 {
		return cells, false
	}
	r, ok := g.Bounds(cells)
	if !ok || g.Enclose(r) != r {
		return cells, false
	}
	var width, height float64
	for j := r.Left; j <= r.Right; j++ {
		width += g.Sizes[r.Top][j].Width
	}
	for i := r.Top; i <= r.Bottom; i++ {
		height += g.Sizes[i][r.Left].Height
	}
	g.absorb(r)
	g.Spans[r.Top][r.Left] = Span{Rows: r.Bottom - r.Top + 1, Cols: r.Right - r.Left + 1}
	g.Sizes[r.Top][r.Left] = geom.Size{Width: width, Height: height}
	return []Cell{{Row: r.Top, Col: r.Left}}, true
}

// UnmergeSelection resets every cell of the selection's bounding rectangle,
// grown to enclose any merge it cuts through, to an unmerged cell of the
// default size. Prior merged sizes are discarded.
func (g *Grid) UnmergeSelection(cells []Cell) bool {
	r, ok := g.Bounds(cells)
	if !ok {
		return false
	}
	r = g.Enclose(r)
	for i := r.Top; i <= r.Bottom; i++ {
		for j := r.Left; j <= r.Right; j++ {
			g.Spans[i][j] = Single
			g.Sizes[i][j] = g.DefaultSize
		}
	}
	return true
}

// Enclose grows r until every merge rectangle touching it lies inside it.
func (g *Grid) Enclose(r Region) Region {
	for {
		grown := r
		for i := r.Top; i <= r.Bottom; i++ {
			for j := r.Left; j <= r.Right; j++ {
				a, ok := g.Owner(i, j)
				if !ok {
					continue
				}
				s := g.Spans[a.Row][a.Col]
				grown.Top = min(grown.Top, a.Row)
				grown.Left = min(grown.Left, a.Col)
				grown.Bottom = max(grown.Bottom, a.Row+s.Rows-1)
				grown.Right = max(grown.Right, a.Col+s.Cols-1)
			}
		}
		if grown == r {
			return r
		}
		r = grown
	}
}

// Owner returns the anchor whose rectangle covers (row, col).
func (g *Grid) Owner(row, col int) (Cell, bool) {
	if !g.inBounds(row, col) {
		return Cell{}, false
	}
	if g.Spans[row][col].IsAnchor() {
		return Cell{Row: row, Col: col}, true
	}
	for i := row; i >= 0; i-- {
		for j := col; j >= 0; j-- {
			s := g.Spans[i][j]
			if s.IsAnchor() && i+s.Rows > row && j+s.Cols > col {
				return Cell{Row: i, Col: j}, true
			}
		}
	}
	return Cell{}, false
}

// Anchors lists the addressable cells in row-major order.
func (g *Grid) Anchors() []Cell {
	var out []Cell
	for i, row := range g.Spans {
		for j, s := range row {
			if s.IsAnchor() {
				out = append(out, Cell{Row: i, Col: j})
			}
		}
	}
	return out
}

// Validate checks the shape and merge invariants of the grid.
func (g *Grid) Validate() error {
	rows, cols := g.Rows(), g.Cols()
	if len(g.Text) != rows || len(g.Sizes) != rows {
		return fmt.Errorf("row count mismatch: text=%d sizes=%d spans=%d", len(g.Text), len(g.Sizes), rows)
	}
	cover := make([][]int, rows)
	for i := 0; i < rows; i++ {
		if len(g.Text[i]) != cols || len(g.Sizes[i]) != cols || len(g.Spans[i]) != cols {
			return fmt.Errorf("row %d is not %d columns wide", i, cols)
		}
		cover[i] = make([]int, cols)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			s := g.Spans[i][j]
			if s == (Span{}) {
				continue
			}
			if !s.IsAnchor() {
				return fmt.Errorf("cell (%d,%d) has invalid span %+v", i, j, s)
			}
			if i+s.Rows > rows || j+s.Cols > cols {
				return fmt.Errorf("anchor (%d,%d) span %+v exceeds %dx%d grid", i, j, s, rows, cols)
			}
			for a := i; a < i+s.Rows; a++ {
				for b := j; b < j+s.Cols; b++ {
					if (a != i || b != j) && g.Spans[a][b] != (Span{}) {
						return fmt.Errorf("cell (%d,%d) inside anchor (%d,%d) is not absorbed", a, b, i, j)
					}
					cover[a][b]++
				}
			}
		}
	}
	for i := range cover {
		for j, n := range cover[i] {
			switch {
			case n == 0:
				return fmt.Errorf("absorbed cell (%d,%d) has no anchor", i, j)
			case n > 1:
				return fmt.Errorf("cell (%d,%d) is covered by %d merges", i, j, n)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	out := &Grid{DefaultSize: g.DefaultSize, MinSize: g.MinSize}
	out.Text = make([][]string, len(g.Text))
	for i := range g.Text {
		out.Text[i] = append([]string(nil), g.Text[i]...)
	}
	out.Sizes = make([][]geom.Size, len(g.Sizes))
	for i := range g.Sizes {
		out.Sizes[i] = append([]geom.Size(nil), g.Sizes[i]...)
	}
	out.Spans = make([][]Span, len(g.Spans))
	for i := range g.Spans {
		out.Spans[i] = append([]Span(nil), g.Spans[i]...)
	}
	return out
}

func distinct(cells []Cell) int {
	seen := make(map[Cell]struct{}, len(cells))
	for _, c := range cells {
		seen[c] = struct{}{}
	}
	return len(seen)
}
