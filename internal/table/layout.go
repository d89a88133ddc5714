/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package table

import "reportdesigner/internal/geom"

// CellBox is the resolved placement of one anchor cell, relative to the
// table origin.
type CellBox struct {
	Cell Cell
	Span Span
	Rect geom.Rect
	Text string
}

// Tracks returns the column widths and row heights of the grid. A track is as
// large as the largest unmerged anchor in it; tracks without any fall back to
// DefaultSize.
func (g *Grid) Tracks() (colW, rowH []float64) {
	rows, cols := g.Rows(), g.Cols()
	colW = make([]float64, cols)
	rowH = make([]float64, rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			s := g.Spans[i][j]
			if s.Cols == 1 {
				colW[j] = max(colW[j], g.Sizes[i][j].Width)
			}
			if s.Rows == 1 {
				rowH[i] = max(rowH[i], g.Sizes[i][j].Height)
			}
		}
	}
	for j := range colW {
		if colW[j] == 0 {
			colW[j] = g.DefaultSize.Width
		}
	}
	for i := range rowH {
		if rowH[i] == 0 {
			rowH[i] = g.DefaultSize.Height
		}
	}
	return colW, rowH
}

// Layout resolves anchor boxes for renderers and exporters from Tracks. A
// merged anchor spans the sum of its tracks.
func (g *Grid) Layout(origin geom.Point) ([]CellBox, geom.Size) {
	rows, cols := g.Rows(), g.Cols()
	colW, rowH := g.Tracks()
	colX := prefix(colW)
	rowY := prefix(rowH)

	var boxes []CellBox
	for _, a := range g.Anchors() {
		s := g.Spans[a.Row][a.Col]
		boxes = append(boxes, CellBox{
			Cell: a,
			Span: s,
			Rect: geom.R(
				origin.X+colX[a.Col],
				origin.Y+rowY[a.Row],
				colX[a.Col+s.Cols]-colX[a.Col],
				rowY[a.Row+s.Rows]-rowY[a.Row],
			),
			Text: g.Text[a.Row][a.Col],
		})
	}
	return boxes, geom.Size{Width: colX[cols], Height: rowY[rows]}
}

// prefix returns running sums with a leading zero.
func prefix(v []float64) []float64 {
	out := make([]float64, len(v)+1)
	for i, x := range v {
		out[i+1] = out[i] + x
	}
	return out
}
