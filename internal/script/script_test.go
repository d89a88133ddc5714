/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reportdesigner/internal/domain"
	"reportdesigner/internal/editor"
	"reportdesigner/internal/geom"
	"reportdesigner/internal/table"
)

const invoice = `pages: 2
events:
  - {op: drop, kind: label, x: 300, y: 560, ref: title}
  - {op: text, ref: title, text: Invoice}
  - op: style
    ref: title
    style: {fontWeight: bold, textAlign: center, color: "#333"}
  - {op: add, kind: table, page: 1, x: 40, y: 40, ref: items}
  - {op: add_row, ref: items}
  - {op: cell_text, ref: items, row: 2, col: 1, text: Total}
  - {op: merge_right, ref: items, row: 0, col: 0}
  - {op: merge_down, ref: items, row: 0, col: 0}
  - {op: resize, ref: title, width: 300, height: 60}
`

func TestParseAndRun(t *testing.T) {
	s, err := Parse([]byte(invoice))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Pages != 2 || len(s.Events) != 9 {
		t.Fatalf("parsed %d pages, %d events", s.Pages, len(s.Events))
	}
	if s.Events[0].Line != 3 || s.Events[2].Line != 5 || s.Events[3].Line != 8 {
		t.Fatalf("lines = %d %d %d", s.Events[0].Line, s.Events[2].Line, s.Events[3].Line)
	}

	ed := editor.New(editor.Options{Pages: s.Pages, Layout: editor.Layout{PageWidth: 794, PageHeight: 1123, PageGap: 20, HeaderHeight: 50, CanvasLeft: 200}})
	r := NewRunner(ed)
	if errs := r.Run(context.Background(), s); len(errs) != 0 {
		t.Fatalf("run errors: %v", errs)
	}

	titleID, _ := r.Ref("title")
	title, ok := ed.Component(titleID)
	if !ok {
		t.Fatalf("title missing")
	}
	if title.Page != 0 || title.Position != (geom.Point{X: 100, Y: 510}) {
		t.Fatalf("title placed at page %d %+v", title.Page, title.Position)
	}
	if title.Text() != "Invoice" || !title.Style.IsBold() || title.Style.AlignOr("") != domain.AlignCenter {
		t.Fatalf("title = %q %+v", title.Text(), title.Style)
	}
	if *title.Size != (geom.Size{Width: 300, Height: 60}) || title.Position != (geom.Point{X: 100, Y: 510}) {
		t.Fatalf("resize without x/y must keep the position: %+v %+v", *title.Size, title.Position)
	}

	itemsID, _ := r.Ref("items")
	items, _ := ed.Component(itemsID)
	g := items.Table
	if items.Page != 1 || g.Rows() != 3 || g.Text[2][1] != "Total" {
		t.Fatalf("items = page %d, %d rows", items.Page, g.Rows())
	}
	if g.Spans[0][0] != (table.Span{Rows: 2, Cols: 2}) {
		t.Fatalf("merge span = %+v", g.Spans[0][0])
	}
}

func TestRunCollectsErrors(t *testing.T) {
	src := `events:
  - {op: add, kind: label, x: 0, y: 0, ref: a}
  - {op: cell_text, ref: a, row: 0, col: 0, text: nope}
  - {op: text, ref: ghost, text: boo}
  - {op: delete, ref: a}
  - {op: move, ref: a, x: 1, y: 1}
  - {op: undo}
  - {op: undo}
  - {op: text, ref: a, text: back}
`
	s, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ed := editor.New(editor.Options{})
	errs := Run(context.Background(), ed, s)
	if len(errs) != 3 {
		t.Fatalf("errors = %v", errs)
	}
	if errs[0].Line != 3 || !strings.Contains(errs[0].Message, editor.ErrWrongKind.Error()) {
		t.Fatalf("first error = %+v", errs[0])
	}
	if errs[1].Line != 4 || !strings.Contains(errs[1].Message, ErrUnknownRef.Error()) {
		t.Fatalf("second error = %+v", errs[1])
	}
	if errs[2].Line != 6 || !strings.Contains(errs[2].Message, editor.ErrComponentNotFound.Error()) {
		t.Fatalf("third error = %+v", errs[2])
	}
	// the two undos revert the failed move and the delete
	doc := ed.Document()
	if len(doc.Components) != 1 || doc.Components[0].Text() != "back" {
		t.Fatalf("document = %+v", doc.Components)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s, err := Parse([]byte("events:\n  - {op: add_page}\n  - {op: add_page}\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ed := editor.New(editor.Options{})
	errs := Run(ctx, ed, s)
	if len(errs) != 1 || errs[0].Line != 2 {
		t.Fatalf("errors = %v", errs)
	}
	if ed.PageCount() != 1 {
		t.Fatalf("events ran after cancel")
	}
}

func TestParseRejectsInvalidScripts(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unknown op", "events:\n  - {op: explode}\n", 2},
		{"missing kind", "events:\n  - {op: add_page}\n  - {op: add, x: 1, y: 2}\n", 3},
		{"drop needs coordinates", "events:\n  - {op: drop, kind: label}\n", 2},
		{"bad style value", "events:\n  - {op: style, ref: a, style: {textAlign: middle}}\n", 2},
		{"bad color", "events:\n  - {op: style, ref: a, style: {color: red}}\n", 2},
		{"cell arity", "events:\n  - {op: merge, ref: t, cells: [[0]]}\n", 2},
		{"unknown field", "events:\n  - {op: undo, bogus: 1}\n", 2},
		{"missing events", "pages: 1\n", 1},
		{"malformed yaml", "events: [\n", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src))
			var errs Errors
			if !errors.As(err, &errs) || len(errs) == 0 {
				t.Fatalf("expected Errors, got %v", err)
			}
			if tc.line > 0 && errs[0].Line != tc.line {
				t.Fatalf("line = %d, want %d (%v)", errs[0].Line, tc.line, errs)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatalf("empty script accepted")
	}
}
