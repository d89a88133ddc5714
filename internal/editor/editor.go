/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor implements the component registry of the report designer:
// every user command (drop, move, resize, edit, restyle, table edits) is a
// transformation of the document applied through the history engine, so each
// command is exactly one undo step.
package editor

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync/atomic"

	"reportdesigner/internal/domain"
	"reportdesigner/internal/geom"
	"reportdesigner/internal/history"
	applog "reportdesigner/internal/log"
	"reportdesigner/internal/table"
)

var (
	// ErrComponentNotFound is returned by commands addressing an unknown id.
	// The command still occupies one undo step, leaving the document as is.
	ErrComponentNotFound = errors.New("component not found")
	// ErrWrongKind is returned when a command does not apply to the
	// component's kind (text on a table, table edits on a label). The
	// document is left unchanged, the undo step is still recorded.
	ErrWrongKind = errors.New("command does not apply to component kind")
	// ErrInvalidCell is returned when a gesture starts on a cell that cannot
	// be addressed.
	ErrInvalidCell = errors.New("invalid table cell")
)

// Defaults are the kind-specific initial values of new components.
type Defaults struct {
	LabelText   string
	LabelSize   geom.Size
	ImageSize   geom.Size
	TableRows   int
	TableCols   int
	CellSize    geom.Size
	MinCellSize float64
}

// DefaultDefaults mirrors the built-in configuration.
func DefaultDefaults() Defaults {
	return Defaults{
		LabelText:   "New Label",
		LabelSize:   geom.Size{Width: 120, Height: 40},
		ImageSize:   geom.Size{Width: 120, Height: 120},
		TableRows:   2,
		TableCols:   2,
		CellSize:    table.DefaultCellSize,
		MinCellSize: table.DefaultMinSize,
	}
}

// Options configures a new Editor. Zero values select the defaults.
type Options struct {
	Layout   Layout
	Defaults Defaults
	History  history.Config
	Pages    int
}

// Editor owns the document history and the transient interaction state
// (active gesture, selection, in-place edit) that is not part of undo.
type Editor struct {
	hist     *history.Engine[domain.Document]
	layout   Layout
	defaults Defaults
	nextID   atomic.Int64
	l        *slog.Logger

	gesture *gesture
	session session
}

// New creates an editor over an empty document.
func New(opts Options) *Editor {
	if opts.Layout == (Layout{}) {
		opts.Layout = DefaultLayout()
	}
	if opts.Defaults == (Defaults{}) {
		opts.Defaults = DefaultDefaults()
	}
	return &Editor{
		hist:     history.New(domain.NewDocument(opts.Pages), opts.History),
		layout:   opts.Layout,
		defaults: opts.Defaults,
		l:        applog.WithComponent("editor"),
	}
}

func (e *Editor) Layout() Layout     { return e.layout }
func (e *Editor) Defaults() Defaults { return e.defaults }

// Document returns the present document. It shares memory with the history
// snapshot and must not be modified; use Snapshot for a private copy.
func (e *Editor) Document() domain.Document { return e.hist.Present() }

// Snapshot returns a deep copy of the present document.
func (e *Editor) Snapshot() (domain.Document, error) { return e.hist.Snapshot() }

func (e *Editor) PageCount() int { return e.hist.Present().PageCount }

// Component returns the component with id from the present document.
func (e *Editor) Component(id int64) (domain.Component, bool) {
	return e.hist.Present().Find(id)
}

// ComponentsForPage yields, in z-order, the components placed on page. The
// sequence reads the document present at call time and can be iterated any
// number of times.
func (e *Editor) ComponentsForPage(page int) iter.Seq[domain.Component] {
	doc := e.hist.Present()
	return func(yield func(domain.Component) bool) {
		for _, c := range doc.Components {
			if c.Page != page {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Undo and Redo drop any selection, edit or gesture whose component the
// restored document no longer holds.
func (e *Editor) Undo() bool {
	ok := e.hist.Undo()
	if ok {
		e.prune()
	}
	e.l.Debug("undo", slog.Bool("applied", ok))
	return ok
}

func (e *Editor) Redo() bool {
	ok := e.hist.Redo()
	if ok {
		e.prune()
	}
	e.l.Debug("redo", slog.Bool("applied", ok))
	return ok
}

func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// AddComponent places a new component of kind on page (clamped into the
// document's pages) at pos, with the kind defaults, on top of all others.
func (e *Editor) AddComponent(kind domain.Kind, page int, pos geom.Point) (domain.Component, error) {
	c, err := e.newComponent(kind)
	if err != nil {
		return domain.Component{}, err
	}
	c.Position = pos
	err = e.hist.Update(func(d domain.Document) domain.Document {
		c.Page = min(d.PageCount-1, max(0, page))
		d.Components = append(d.Components, c)
		return d
	})
	if err != nil {
		e.l.Error("add component failed", slog.Any("err", err))
		return domain.Component{}, err
	}
	e.l.Debug("add component", slog.Int64("id", c.ID), slog.String("kind", string(kind)), slog.Int("page", c.Page))
	added, _ := e.Component(c.ID)
	return added, nil
}

// Drop handles a palette drop at an absolute canvas pointer position.
func (e *Editor) Drop(kind domain.Kind, pointer geom.Point) (domain.Component, error) {
	page, y := PageIndexForDrop(pointer.Y, e.PageCount(), e.layout)
	return e.AddComponent(kind, page, geom.Point{X: pointer.X - e.layout.CanvasLeft, Y: y})
}

func (e *Editor) newComponent(kind domain.Kind) (domain.Component, error) {
	c := domain.Component{Kind: kind}
	switch kind {
	case domain.KindLabel:
		c.Label = &domain.LabelContent{Text: e.defaults.LabelText}
		c.Size = &geom.Size{Width: e.defaults.LabelSize.Width, Height: e.defaults.LabelSize.Height}
	case domain.KindTable:
		c.Table = table.New(e.defaults.TableRows, e.defaults.TableCols, e.defaults.CellSize, e.defaults.MinCellSize)
		_, box := c.Table.Layout(geom.Point{})
		c.Size = &box
	case domain.KindImage:
		c.Size = &geom.Size{Width: e.defaults.ImageSize.Width, Height: e.defaults.ImageSize.Height}
	default:
		return c, fmt.Errorf("add component: unknown kind %q", kind)
	}
	c.ID = e.nextID.Add(1)
	return c, nil
}

// mutate applies fn to the component with id as one history step. A missing
// id records the step with an unchanged document and returns
// ErrComponentNotFound.
func (e *Editor) mutate(op string, id int64, fn func(d *domain.Document, i int) error) error {
	var opErr error
	err := e.hist.Update(func(d domain.Document) domain.Document {
		i := d.Index(id)
		if i < 0 {
			opErr = fmt.Errorf("%s %d: %w", op, id, ErrComponentNotFound)
			return d
		}
		if err := fn(&d, i); err != nil {
			opErr = fmt.Errorf("%s %d: %w", op, id, err)
		}
		return d
	})
	if err != nil {
		e.l.Error("command failed", slog.String("op", op), slog.Int64("id", id), slog.Any("err", err))
		return err
	}
	if opErr != nil {
		e.l.Debug("command ignored", slog.String("op", op), slog.Int64("id", id), slog.Any("err", opErr))
		return opErr
	}
	e.l.Debug(op, slog.Int64("id", id))
	return nil
}

// MoveComponent sets the page-local position of a component.
func (e *Editor) MoveComponent(id int64, pos geom.Point) error {
	return e.mutate("move", id, func(d *domain.Document, i int) error {
		d.Components[i].Position = pos
		return nil
	})
}

// ResizeComponent sets size and position together; resizing from a top or
// left handle moves the component as well.
func (e *Editor) ResizeComponent(id int64, size geom.Size, pos geom.Point) error {
	return e.mutate("resize", id, func(d *domain.Document, i int) error {
		d.Components[i].Size = &size
		d.Components[i].Position = pos
		return nil
	})
}

// SetText replaces the text of a label.
func (e *Editor) SetText(id int64, text string) error {
	return e.mutate("set_text", id, func(d *domain.Document, i int) error {
		c := &d.Components[i]
		if c.Kind != domain.KindLabel {
			return ErrWrongKind
		}
		c.Label.Text = text
		return nil
	})
}

// DeleteComponent removes a component and drops any selection, edit or
// gesture that refers to it.
func (e *Editor) DeleteComponent(id int64) error {
	e.forget(id)
	return e.mutate("delete", id, func(d *domain.Document, i int) error {
		d.Components = append(d.Components[:i], d.Components[i+1:]...)
		return nil
	})
}

// SetStyle merges patch into the component's style. An invalid patch is
// rejected before any history step is recorded.
func (e *Editor) SetStyle(id int64, patch domain.Style) error {
	if err := patch.Validate(); err != nil {
		return fmt.Errorf("set_style %d: %w", id, err)
	}
	return e.mutate("set_style", id, func(d *domain.Document, i int) error {
		d.Components[i].Style = d.Components[i].Style.Merge(patch)
		return nil
	})
}

// Style returns the component's style.
func (e *Editor) Style(id int64) (domain.Style, bool) {
	c, ok := e.Component(id)
	if !ok {
		return domain.Style{}, false
	}
	return c.Style, true
}

// MoveToPage reassigns a component to page, clamped into the document's
// pages. The page-local position is kept.
func (e *Editor) MoveToPage(id int64, page int) error {
	return e.mutate("move_to_page", id, func(d *domain.Document, i int) error {
		d.Components[i].Page = min(d.PageCount-1, max(0, page))
		return nil
	})
}

// AddPage appends a page and returns the new page count.
func (e *Editor) AddPage() (int, error) {
	var n int
	err := e.hist.Update(func(d domain.Document) domain.Document {
		d.PageCount++
		n = d.PageCount
		return d
	})
	if err != nil {
		e.l.Error("add page failed", slog.Any("err", err))
		return e.PageCount(), err
	}
	e.l.Debug("add page", slog.Int("pages", n))
	return n, nil
}
