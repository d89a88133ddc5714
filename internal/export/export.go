/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders a report document to PDF, PNG page previews and an
// XLSX workbook of its tables. Exporters only read the document.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"reportdesigner/internal/domain"
	"reportdesigner/internal/geom"
	"reportdesigner/internal/table"
	"reportdesigner/internal/textlayout"
)

// Page geometry and text defaults in document pixels.
const (
	DefaultPageWidth  = 794
	DefaultPageHeight = 1123
	DefaultFontSize   = 14
	CellPadding       = 4
	lineSpacing       = 1.2
)

var ErrNoTables = errors.New("document has no tables")

// Page describes the page box the document coordinates refer to.
type Page struct {
	Width, Height float64
}

func (p Page) orDefault() Page {
	if p.Width <= 0 || p.Height <= 0 {
		return Page{Width: DefaultPageWidth, Height: DefaultPageHeight}
	}
	return p
}

var (
	black = domain.Color{A: 255}
	white = domain.Color{R: 255, G: 255, B: 255, A: 255}
	guide = domain.Color{R: 64, G: 160, B: 255, A: 255}
	ghost = domain.Color{R: 235, G: 235, B: 235, A: 255}
	frame = domain.Color{R: 150, G: 150, B: 150, A: 255}
)

func pageIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	var out []int
	for _, p := range specific {
		if p >= 0 && p < total {
			out = append(out, p)
		}
	}
	return out
}

// componentBox returns the component rectangle in page coordinates. Tables
// without an explicit size use their grid extent.
func componentBox(c domain.Component) geom.Rect {
	var def geom.Size
	switch c.Kind {
	case domain.KindLabel:
		def = geom.Size{Width: 120, Height: 40}
	case domain.KindImage:
		def = geom.Size{Width: 120, Height: 120}
	case domain.KindTable:
		if c.Table != nil {
			_, def = c.Table.Layout(geom.Point{})
		}
	}
	return geom.RectAt(c.Position, c.SizeOr(def))
}

func cellBoxes(c domain.Component) []table.CellBox {
	if c.Table == nil {
		return nil
	}
	boxes, _ := c.Table.Layout(c.Position)
	return boxes
}

func colorOr(s *string, def domain.Color) domain.Color {
	if s == nil {
		return def
	}
	c, err := domain.ParseHexColor(*s)
	if err != nil {
		return def
	}
	return c
}

func alignOf(s domain.Style) textlayout.Align {
	switch s.AlignOr(domain.AlignLeft) {
	case domain.AlignCenter:
		return textlayout.AlignCenter
	case domain.AlignRight:
		return textlayout.AlignRight
	default:
		return textlayout.AlignLeft
	}
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return nil
}
