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
	"errors"
	"reflect"
	"slices"
	"testing"

	"reportdesigner/internal/domain"
	"reportdesigner/internal/geom"
	"reportdesigner/internal/table"
)

func newEditor(t *testing.T, pages int) *Editor {
	t.Helper()
	return New(Options{Pages: pages})
}

func mustAdd(t *testing.T, e *Editor, kind domain.Kind, page int) domain.Component {
	t.Helper()
	c, err := e.AddComponent(kind, page, geom.Point{X: 10, Y: 20})
	if err != nil {
		t.Fatalf("add %s: %v", kind, err)
	}
	return c
}

func TestAddLabelUndoRedo(t *testing.T) {
	e := newEditor(t, 1)
	c := mustAdd(t, e, domain.KindLabel, 0)
	doc := e.Document()
	if len(doc.Components) != 1 || doc.Components[0].Kind != domain.KindLabel {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if got := doc.Components[0].Text(); got != DefaultDefaults().LabelText {
		t.Fatalf("label text = %q", got)
	}
	before, err := e.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if !e.Undo() {
		t.Fatalf("undo reported false")
	}
	if n := len(e.Document().Components); n != 0 {
		t.Fatalf("expected empty document after undo, got %d components", n)
	}
	if !e.Redo() {
		t.Fatalf("redo reported false")
	}
	if !reflect.DeepEqual(e.Document(), before) {
		t.Fatalf("redo did not restore the document:\n got %+v\nwant %+v", e.Document(), before)
	}
	if got, _ := e.Component(c.ID); got.ID != c.ID {
		t.Fatalf("component %d missing after redo", c.ID)
	}
}

func TestKindDefaults(t *testing.T) {
	e := newEditor(t, 1)
	tbl := mustAdd(t, e, domain.KindTable, 0)
	if tbl.Table == nil || tbl.Table.Rows() != 2 || tbl.Table.Cols() != 2 {
		t.Fatalf("table default grid not 2x2: %+v", tbl.Table)
	}
	if tbl.Size == nil || *tbl.Size != (geom.Size{Width: 200, Height: 48}) {
		t.Fatalf("table default size = %+v", tbl.Size)
	}
	img := mustAdd(t, e, domain.KindImage, 0)
	if img.Label != nil || img.Table != nil {
		t.Fatalf("image carries a payload: %+v", img)
	}
	if err := e.Document().Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := e.AddComponent("chart", 0, geom.Point{}); err == nil {
		t.Fatalf("unknown kind accepted")
	}
	if e.CanRedo() {
		t.Fatalf("unexpected redo state")
	}
}

func TestIDsStrictlyIncreaseAndAreNeverReused(t *testing.T) {
	e := newEditor(t, 1)
	a := mustAdd(t, e, domain.KindLabel, 0)
	b := mustAdd(t, e, domain.KindLabel, 0)
	e.Undo()
	c := mustAdd(t, e, domain.KindLabel, 0)
	if !(a.ID < b.ID && b.ID < c.ID) {
		t.Fatalf("ids not strictly increasing: %d %d %d", a.ID, b.ID, c.ID)
	}
}

func TestAddClampsPage(t *testing.T) {
	e := newEditor(t, 2)
	if c := mustAdd(t, e, domain.KindLabel, 7); c.Page != 1 {
		t.Fatalf("page = %d, want 1", c.Page)
	}
	if c := mustAdd(t, e, domain.KindLabel, -3); c.Page != 0 {
		t.Fatalf("page = %d, want 0", c.Page)
	}
}

func TestDropUsesPageGeometry(t *testing.T) {
	e := New(Options{Pages: 2, Layout: Layout{PageWidth: 794, PageHeight: 1123, PageGap: 20, HeaderHeight: 50, CanvasLeft: 220}})
	c, err := e.Drop(domain.KindLabel, geom.Point{X: 300, Y: 560})
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if c.Page != 0 || c.Position != (geom.Point{X: 80, Y: 510}) {
		t.Fatalf("drop placed at page %d %+v", c.Page, c.Position)
	}
	c, _ = e.Drop(domain.KindImage, geom.Point{X: 220, Y: 50 + 1143 + 30})
	if c.Page != 1 || c.Position.Y != 30 {
		t.Fatalf("second drop placed at page %d %+v", c.Page, c.Position)
	}
}

func TestMoveAndResize(t *testing.T) {
	e := newEditor(t, 1)
	c := mustAdd(t, e, domain.KindLabel, 0)
	if err := e.MoveComponent(c.ID, geom.Point{X: 5, Y: 6}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := e.ResizeComponent(c.ID, geom.Size{Width: 300, Height: 90}, geom.Point{X: 1, Y: 2}); err != nil {
		t.Fatalf("resize: %v", err)
	}
	got, _ := e.Component(c.ID)
	if got.Position != (geom.Point{X: 1, Y: 2}) || *got.Size != (geom.Size{Width: 300, Height: 90}) {
		t.Fatalf("unexpected geometry: %+v %+v", got.Position, got.Size)
	}
	e.Undo()
	got, _ = e.Component(c.ID)
	if got.Position != (geom.Point{X: 5, Y: 6}) || *got.Size != DefaultDefaults().LabelSize {
		t.Fatalf("undo did not restore geometry: %+v %+v", got.Position, got.Size)
	}
}

func TestUnknownIDConsumesHistoryStep(t *testing.T) {
	e := newEditor(t, 1)
	mustAdd(t, e, domain.KindLabel, 0)
	before := e.Document()
	err := e.MoveComponent(999, geom.Point{X: 1, Y: 1})
	if !errors.Is(err, ErrComponentNotFound) {
		t.Fatalf("expected ErrComponentNotFound, got %v", err)
	}
	if !reflect.DeepEqual(e.Document(), before) {
		t.Fatalf("document changed by unknown id")
	}
	// the ignored command is one undo step, the add is the next one
	e.Undo()
	if len(e.Document().Components) != 1 {
		t.Fatalf("first undo should revert the no-op step")
	}
	e.Undo()
	if len(e.Document().Components) != 0 {
		t.Fatalf("second undo should revert the add")
	}
}

func TestSetTextOnlyForLabels(t *testing.T) {
	e := newEditor(t, 1)
	l := mustAdd(t, e, domain.KindLabel, 0)
	tbl := mustAdd(t, e, domain.KindTable, 0)
	if err := e.SetText(l.ID, "Title"); err != nil {
		t.Fatalf("set text: %v", err)
	}
	if got, _ := e.Component(l.ID); got.Text() != "Title" {
		t.Fatalf("text = %q", got.Text())
	}
	if err := e.SetText(tbl.ID, "nope"); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
	if got, _ := e.Component(tbl.ID); got.Label != nil {
		t.Fatalf("table gained a label payload")
	}
}

func TestSetStyleMerges(t *testing.T) {
	e := newEditor(t, 1)
	c := mustAdd(t, e, domain.KindLabel, 0)
	if err := e.SetStyle(c.ID, domain.Style{FontWeight: domain.Ptr(domain.WeightBold)}); err != nil {
		t.Fatalf("style: %v", err)
	}
	if err := e.SetStyle(c.ID, domain.Style{Color: domain.Ptr("#ff0000")}); err != nil {
		t.Fatalf("style: %v", err)
	}
	s, ok := e.Style(c.ID)
	if !ok || !s.IsBold() || s.Color == nil || *s.Color != "#ff0000" {
		t.Fatalf("style not merged: %+v", s)
	}
	past, _ := e.hist.Depth()
	if err := e.SetStyle(c.ID, domain.Style{TextAlign: domain.Ptr(domain.TextAlign("middle"))}); err == nil {
		t.Fatalf("invalid style accepted")
	}
	if now, _ := e.hist.Depth(); now != past {
		t.Fatalf("invalid style recorded a history step")
	}
}

func TestDeleteClearsSession(t *testing.T) {
	e := newEditor(t, 1)
	c := mustAdd(t, e, domain.KindLabel, 0)
	if err := e.Select(c.ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := e.BeginEdit(c.ID); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if err := e.BeginMove(c.ID, geom.Point{}); err != nil {
		t.Fatalf("begin move: %v", err)
	}
	if err := e.DeleteComponent(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := e.Selected(); ok {
		t.Fatalf("selection survived delete")
	}
	if _, ok := e.Editing(); ok {
		t.Fatalf("edit survived delete")
	}
	if e.ActiveGesture() != GestureNone {
		t.Fatalf("gesture survived delete")
	}
	if _, ok := e.Component(c.ID); ok {
		t.Fatalf("component still present")
	}
}

func TestComponentsForPagePartition(t *testing.T) {
	e := newEditor(t, 3)
	var want [3][]int64
	for _, p := range []int{0, 2, 0, 1, 2, 0} {
		c := mustAdd(t, e, domain.KindLabel, p)
		want[p] = append(want[p], c.ID)
	}
	for p := 0; p < 3; p++ {
		seq := e.ComponentsForPage(p)
		var got []int64
		for c := range seq {
			if c.Page != p {
				t.Fatalf("page %d yielded component on page %d", p, c.Page)
			}
			got = append(got, c.ID)
		}
		if !slices.Equal(got, want[p]) {
			t.Fatalf("page %d = %v, want %v", p, got, want[p])
		}
		// restartable
		var again []int64
		for c := range seq {
			again = append(again, c.ID)
		}
		if !slices.Equal(again, got) {
			t.Fatalf("second iteration differs: %v vs %v", again, got)
		}
	}
	// early break stops the sequence
	n := 0
	for range e.ComponentsForPage(0) {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("break not honoured")
	}
}

func TestAddPageAndMoveToPage(t *testing.T) {
	e := newEditor(t, 1)
	c := mustAdd(t, e, domain.KindLabel, 0)
	if n, err := e.AddPage(); err != nil || n != 2 {
		t.Fatalf("AddPage = %d, %v", n, err)
	}
	if err := e.MoveToPage(c.ID, 5); err != nil {
		t.Fatalf("move to page: %v", err)
	}
	if got, _ := e.Component(c.ID); got.Page != 1 {
		t.Fatalf("page = %d, want clamped 1", got.Page)
	}
	e.Undo()
	e.Undo()
	if e.PageCount() != 1 {
		t.Fatalf("page count after undo = %d", e.PageCount())
	}
}

func TestNewCommandTruncatesRedo(t *testing.T) {
	e := newEditor(t, 1)
	c := mustAdd(t, e, domain.KindLabel, 0)
	_ = e.MoveComponent(c.ID, geom.Point{X: 1})
	e.Undo()
	if !e.CanRedo() {
		t.Fatalf("redo expected")
	}
	_ = e.SetText(c.ID, "x")
	if e.CanRedo() {
		t.Fatalf("new command must clear redo")
	}
}

func TestTableCommandsAndUndo(t *testing.T) {
	e := newEditor(t, 1)
	tbl := mustAdd(t, e, domain.KindTable, 0)
	if err := e.MergeRight(tbl.ID, 0, 0); err != nil {
		t.Fatalf("merge right: %v", err)
	}
	if err := e.MergeDown(tbl.ID, 0, 0); err != nil {
		t.Fatalf("merge down: %v", err)
	}
	got, _ := e.Component(tbl.ID)
	if got.Table.Spans[0][0] != (table.Span{Rows: 2, Cols: 2}) {
		t.Fatalf("span = %+v", got.Table.Spans[0][0])
	}
	e.Undo()
	e.Undo()
	got, _ = e.Component(tbl.ID)
	if got.Table.Spans[0][0] != table.Single || got.Table.Spans[1][1] != table.Single {
		t.Fatalf("undo did not restore grid: %+v", got.Table.Spans)
	}
	e.Redo()
	e.Redo()
	if err := e.UnmergeSelection(tbl.ID, []table.Cell{{Row: 0, Col: 0}, {Row: 1, Col: 1}}); err != nil {
		t.Fatalf("unmerge: %v", err)
	}
	got, _ = e.Component(tbl.ID)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if got.Table.Spans[i][j] != table.Single || got.Table.Sizes[i][j] != table.DefaultCellSize {
				t.Fatalf("cell (%d,%d) not reset", i, j)
			}
		}
	}
}

func TestTableCommandsRejectOtherKinds(t *testing.T) {
	e := newEditor(t, 1)
	l := mustAdd(t, e, domain.KindLabel, 0)
	for name, op := range map[string]func() error{
		"add_row":    func() error { return e.AddRow(l.ID) },
		"add_column": func() error { return e.AddColumn(l.ID) },
		"cell_text":  func() error { return e.SetCellText(l.ID, 0, 0, "x") },
		"merge":      func() error { _, err := e.MergeSelection(l.ID, []table.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}}); return err },
	} {
		if err := op(); !errors.Is(err, ErrWrongKind) {
			t.Fatalf("%s: expected ErrWrongKind, got %v", name, err)
		}
	}
}

func TestMergeSelectionCrossingMergeIsIgnored(t *testing.T) {
	e := newEditor(t, 1)
	tbl := mustAdd(t, e, domain.KindTable, 0)
	_ = e.AddRow(tbl.ID)
	_ = e.AddColumn(tbl.ID)
	if err := e.MergeDown(tbl.ID, 0, 1); err != nil {
		t.Fatalf("merge down: %v", err)
	}
	past, _ := e.hist.Depth()

	picks := []table.Cell{{Row: 1, Col: 0}, {Row: 2, Col: 2}}
	sel, err := e.MergeSelection(tbl.ID, picks)
	if err != nil {
		t.Fatalf("geometry no-op must not error: %v", err)
	}
	if !slices.Equal(sel, picks) {
		t.Fatalf("selection = %+v, want unchanged %+v", sel, picks)
	}
	if n, _ := e.hist.Depth(); n != past+1 {
		t.Fatalf("history depth = %d, want %d", n, past+1)
	}
	got, _ := e.Component(tbl.ID)
	if got.Table.Spans[1][0] != table.Single || got.Table.Spans[0][1] != (table.Span{Rows: 2, Cols: 1}) {
		t.Fatalf("grid changed: %+v", got.Table.Spans)
	}
	if err := e.Document().Validate(); err != nil {
		t.Fatalf("document invalid: %v", err)
	}
}

func TestTableEditsThroughEditor(t *testing.T) {
	e := newEditor(t, 1)
	tbl := mustAdd(t, e, domain.KindTable, 0)
	_ = e.AddRow(tbl.ID)
	_ = e.AddColumn(tbl.ID)
	_ = e.SetCellText(tbl.ID, 2, 2, "total")
	_ = e.ResizeCell(tbl.ID, 0, 0, geom.Size{Width: 5, Height: 50})
	sel, err := e.MergeSelection(tbl.ID, []table.Cell{{Row: 1, Col: 1}, {Row: 2, Col: 1}})
	if err != nil {
		t.Fatalf("merge selection: %v", err)
	}
	if len(sel) != 1 || sel[0] != (table.Cell{Row: 1, Col: 1}) {
		t.Fatalf("selection = %+v", sel)
	}
	// out-of-bounds merge is silently ignored
	if err := e.MergeRight(tbl.ID, 0, 2); err != nil {
		t.Fatalf("geometry no-op must not error: %v", err)
	}
	got, _ := e.Component(tbl.ID)
	g := got.Table
	if g.Rows() != 3 || g.Cols() != 3 || g.Text[2][2] != "total" {
		t.Fatalf("unexpected grid: %dx%d %q", g.Rows(), g.Cols(), g.Text[2][2])
	}
	if g.Sizes[0][0] != (geom.Size{Width: 20, Height: 50}) {
		t.Fatalf("resize not clamped: %+v", g.Sizes[0][0])
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
