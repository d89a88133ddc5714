/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"reportdesigner/internal/domain"
)

// Excel column widths are in characters of the default font; one character
// is about 7px. Row heights are in points.
const pxPerChar = 7.0

// SheetName is the worksheet name used for a table component.
func SheetName(c domain.Component) string { return fmt.Sprintf("Table %d", c.ID) }

// WriteTablesXLSX writes every table component of doc to its own worksheet,
// in document order. Merged regions become sheet merges and the component
// style applies to every cell.
func WriteTablesXLSX(w io.Writer, doc domain.Document) error {
	f, err := buildWorkbook(doc)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// ExportTablesXLSX is WriteTablesXLSX to a file, creating its directory.
func ExportTablesXLSX(doc domain.Document, outPath string) error {
	if err := ensureDir(outPath); err != nil {
		return err
	}
	f, err := buildWorkbook(doc)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func buildWorkbook(doc domain.Document) (*excelize.File, error) {
	f := excelize.NewFile()
	first := true
	for _, c := range doc.Components {
		if c.Kind != domain.KindTable || c.Table == nil {
			continue
		}
		name := SheetName(c)
		if first {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("sheet %s: %w", name, err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		if err := writeTable(f, name, c); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	if first {
		_ = f.Close()
		return nil, ErrNoTables
	}
	return f, nil
}

func writeTable(f *excelize.File, sheet string, c domain.Component) error {
	g := c.Table
	colW, rowH := g.Tracks()
	for j, w := range colW {
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w/pxPerChar); err != nil {
			return err
		}
	}
	for i, h := range rowH {
		if err := f.SetRowHeight(sheet, i+1, h*0.75); err != nil {
			return err
		}
	}
	for _, a := range g.Anchors() {
		start, err := excelize.CoordinatesToCellName(a.Col+1, a.Row+1)
		if err != nil {
			return err
		}
		if txt := g.Text[a.Row][a.Col]; txt != "" {
			if err := f.SetCellStr(sheet, start, txt); err != nil {
				return err
			}
		}
		s := g.Spans[a.Row][a.Col]
		if s.Rows == 1 && s.Cols == 1 {
			continue
		}
		end, err := excelize.CoordinatesToCellName(a.Col+s.Cols, a.Row+s.Rows)
		if err != nil {
			return err
		}
		if err := f.MergeCell(sheet, start, end); err != nil {
			return err
		}
	}
	if g.Rows() == 0 || g.Cols() == 0 {
		return nil
	}
	style, err := f.NewStyle(cellStyle(c.Style))
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(g.Cols(), g.Rows())
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func hexNoHash(c domain.Color) string { return strings.ToUpper(strings.TrimPrefix(c.Hex(), "#")) }

func cellStyle(st domain.Style) *excelize.Style {
	font := &excelize.Font{
		Bold:   st.IsBold(),
		Italic: st.IsItalic(),
		Size:   st.FontSizeOr(DefaultFontSize) * 0.75,
		Color:  hexNoHash(colorOr(st.Color, black)),
	}
	if st.IsUnderline() {
		font.Underline = "single"
	}
	out := &excelize.Style{
		Font: font,
		Alignment: &excelize.Alignment{
			Horizontal: string(st.AlignOr(domain.AlignLeft)),
			Vertical:   "top",
			WrapText:   true,
		},
	}
	for _, side := range []string{"left", "top", "right", "bottom"} {
		out.Border = append(out.Border, excelize.Border{Type: side, Color: "000000", Style: 1})
	}
	if st.BackgroundColor != nil {
		out.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hexNoHash(colorOr(st.BackgroundColor, white))}}
	}
	return out
}
