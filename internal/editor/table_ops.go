/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"reportdesigner/internal/domain"
	"reportdesigner/internal/geom"
	"reportdesigner/internal/table"
)

// mutateTable runs fn on the grid of a table component as one history step.
// Grid operations that reject their input leave the grid as it was and are
// not reported as errors.
func (e *Editor) mutateTable(op string, id int64, fn func(g *table.Grid)) error {
	return e.mutate(op, id, func(d *domain.Document, i int) error {
		c := &d.Components[i]
		if c.Kind != domain.KindTable || c.Table == nil {
			return ErrWrongKind
		}
		fn(c.Table)
		return nil
	})
}

func (e *Editor) AddRow(id int64) error {
	return e.mutateTable("add_row", id, func(g *table.Grid) { g.AddRow() })
}

func (e *Editor) AddColumn(id int64) error {
	return e.mutateTable("add_column", id, func(g *table.Grid) { g.AddColumn() })
}

// SetCellText writes text into an anchor cell.
func (e *Editor) SetCellText(id int64, row, col int, text string) error {
	return e.mutateTable("set_cell_text", id, func(g *table.Grid) { g.SetText(row, col, text) })
}

// ResizeCell sets an anchor cell's box size, clamped to the grid minimum.
func (e *Editor) ResizeCell(id int64, row, col int, size geom.Size) error {
	return e.mutateTable("resize_cell", id, func(g *table.Grid) { g.Resize(row, col, size.Width, size.Height) })
}

func (e *Editor) MergeRight(id int64, row, col int) error {
	return e.mutateTable("merge_right", id, func(g *table.Grid) { g.MergeRight(row, col) })
}

func (e *Editor) MergeDown(id int64, row, col int) error {
	return e.mutateTable("merge_down", id, func(g *table.Grid) { g.MergeDown(row, col) })
}

// MergeSelection merges the bounding rectangle of cells and returns the
// selection the caller should show afterwards: the single anchor cell, or
// cells unchanged if nothing was merged.
func (e *Editor) MergeSelection(id int64, cells []table.Cell) ([]table.Cell, error) {
	sel := cells
	err := e.mutateTable("merge_selection", id, func(g *table.Grid) {
		sel, _ = g.MergeSelection(cells)
	})
	return sel, err
}

// UnmergeSelection resets the cells under the selection to unmerged default
// cells.
func (e *Editor) UnmergeSelection(id int64, cells []table.Cell) error {
	return e.mutateTable("unmerge_selection", id, func(g *table.Grid) { g.UnmergeSelection(cells) })
}
