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
	"fmt"
	"log/slog"

	"reportdesigner/internal/domain"
	"reportdesigner/internal/geom"
	"reportdesigner/internal/table"
)

// Pointer gestures keep their in-progress state here, outside the history,
// and record a single undo step when they end. Only one gesture is active at
// a time: beginning a new one discards the previous one unrecorded.

// GestureKind identifies the active gesture.
type GestureKind int

const (
	GestureNone GestureKind = iota
	GestureMove
	GestureResize
	GestureCellResize
)

// Handle is the resize handle grabbed by the pointer.
type Handle int

const (
	HandleBottomRight Handle = iota
	HandleBottom
	HandleRight
	HandleTopLeft
	HandleTop
	HandleLeft
	HandleTopRight
	HandleBottomLeft
)

func (h Handle) left() bool   { return h == HandleTopLeft || h == HandleLeft || h == HandleBottomLeft }
func (h Handle) right() bool  { return h == HandleBottomRight || h == HandleRight || h == HandleTopRight }
func (h Handle) top() bool    { return h == HandleTopLeft || h == HandleTop || h == HandleTopRight }
func (h Handle) bottom() bool { return h == HandleBottomRight || h == HandleBottom || h == HandleBottomLeft }

type gesture struct {
	kind      GestureKind
	id        int64
	cell      table.Cell
	handle    Handle
	start     geom.Point
	startPos  geom.Point
	startSize geom.Size
}

// Preview is the transient geometry of the active gesture.
type Preview struct {
	Kind     GestureKind
	ID       int64
	Cell     table.Cell
	Position geom.Point
	Size     geom.Size
}

// ActiveGesture returns the kind of gesture in progress.
func (e *Editor) ActiveGesture() GestureKind {
	if e.gesture == nil {
		return GestureNone
	}
	return e.gesture.kind
}

// BeginMove starts dragging a component from pointer position start.
func (e *Editor) BeginMove(id int64, start geom.Point) error {
	c, ok := e.Component(id)
	if !ok {
		e.gesture = nil
		return fmt.Errorf("begin move %d: %w", id, ErrComponentNotFound)
	}
	e.begin(&gesture{kind: GestureMove, id: id, start: start, startPos: c.Position, startSize: e.sizeOf(c)})
	return nil
}

// BeginResize starts resizing a component by handle from pointer position
// start.
func (e *Editor) BeginResize(id int64, handle Handle, start geom.Point) error {
	c, ok := e.Component(id)
	if !ok {
		e.gesture = nil
		return fmt.Errorf("begin resize %d: %w", id, ErrComponentNotFound)
	}
	e.begin(&gesture{kind: GestureResize, id: id, handle: handle, start: start, startPos: c.Position, startSize: e.sizeOf(c)})
	return nil
}

// BeginCellResize starts dragging the bottom-right corner of a table cell.
func (e *Editor) BeginCellResize(id int64, cell table.Cell, start geom.Point) error {
	e.gesture = nil
	c, ok := e.Component(id)
	if !ok {
		return fmt.Errorf("begin cell resize %d: %w", id, ErrComponentNotFound)
	}
	if c.Kind != domain.KindTable || c.Table == nil {
		return fmt.Errorf("begin cell resize %d: %w", id, ErrWrongKind)
	}
	if !c.Table.IsAnchor(cell.Row, cell.Col) {
		return fmt.Errorf("begin cell resize %d (%d,%d): %w", id, cell.Row, cell.Col, ErrInvalidCell)
	}
	e.begin(&gesture{kind: GestureCellResize, id: id, cell: cell, start: start, startSize: c.Table.Sizes[cell.Row][cell.Col]})
	return nil
}

func (e *Editor) begin(g *gesture) {
	if e.gesture != nil {
		e.l.Debug("gesture replaced", slog.Int64("id", e.gesture.id))
	}
	e.gesture = g
}

func (e *Editor) sizeOf(c domain.Component) geom.Size {
	switch c.Kind {
	case domain.KindLabel:
		return c.SizeOr(e.defaults.LabelSize)
	case domain.KindImage:
		return c.SizeOr(e.defaults.ImageSize)
	default:
		if c.Table != nil {
			_, box := c.Table.Layout(geom.Point{})
			return c.SizeOr(box)
		}
		return c.SizeOr(geom.Size{})
	}
}

// UpdateGesture computes the geometry for pointer position p without
// touching the document.
func (e *Editor) UpdateGesture(p geom.Point) (Preview, bool) {
	if e.gesture == nil {
		return Preview{}, false
	}
	return e.gesture.preview(p, e.minSize()), true
}

// EndGesture finishes the active gesture at p and records it as one undo
// step. It reports false when no gesture was active.
func (e *Editor) EndGesture(p geom.Point) (bool, error) {
	g := e.gesture
	if g == nil {
		return false, nil
	}
	e.gesture = nil
	pv := g.preview(p, e.minSize())
	switch g.kind {
	case GestureMove:
		return true, e.MoveComponent(g.id, pv.Position)
	case GestureResize:
		return true, e.ResizeComponent(g.id, pv.Size, pv.Position)
	case GestureCellResize:
		return true, e.ResizeCell(g.id, g.cell.Row, g.cell.Col, pv.Size)
	default:
		return false, nil
	}
}

// CancelGesture drops the active gesture without recording anything.
func (e *Editor) CancelGesture() { e.gesture = nil }

func (e *Editor) minSize() float64 {
	if e.defaults.MinCellSize > 0 {
		return e.defaults.MinCellSize
	}
	return table.DefaultMinSize
}

func (g *gesture) preview(p geom.Point, minSize float64) Preview {
	d := p.Sub(g.start)
	pv := Preview{Kind: g.kind, ID: g.id, Cell: g.cell, Position: g.startPos, Size: g.startSize}
	switch g.kind {
	case GestureMove:
		pv.Position = g.startPos.Add(d)
	case GestureCellResize:
		pv.Size = geom.Size{Width: g.startSize.Width + d.X, Height: g.startSize.Height + d.Y}.ClampMin(minSize)
	case GestureResize:
		w, h := g.startSize.Width, g.startSize.Height
		switch {
		case g.handle.right():
			w += d.X
		case g.handle.left():
			w -= d.X
		}
		switch {
		case g.handle.bottom():
			h += d.Y
		case g.handle.top():
			h -= d.Y
		}
		pv.Size = geom.Size{Width: w, Height: h}.ClampMin(minSize)
		// keep the opposite edge fixed when dragging a top/left handle
		if g.handle.left() {
			pv.Position.X = g.startPos.X + g.startSize.Width - pv.Size.Width
		}
		if g.handle.top() {
			pv.Position.Y = g.startPos.Y + g.startSize.Height - pv.Size.Height
		}
	}
	return pv
}
