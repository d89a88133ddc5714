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
	"fmt"
	"log/slog"

	"reportdesigner/internal/editor"
	"reportdesigner/internal/geom"
	applog "reportdesigner/internal/log"
)

// ErrUnknownRef is reported for events naming a ref no drop or add event
// assigned. A ref keeps pointing at its id after delete, so undo can bring
// the component back under the same name.
var ErrUnknownRef = errors.New("unknown component ref")

// Runner applies events to an editor and remembers the component ids behind
// ref names across Run calls.
type Runner struct {
	ed   *editor.Editor
	refs map[string]int64
	l    *slog.Logger
}

func NewRunner(ed *editor.Editor) *Runner {
	return &Runner{ed: ed, refs: make(map[string]int64), l: applog.WithComponent("script")}
}

// Ref returns the component id assigned to name.
func (r *Runner) Ref(name string) (int64, bool) {
	id, ok := r.refs[name]
	return id, ok
}

// Run applies every event of s in order. Failing events are collected and do
// not stop the run; a cancelled ctx does.
func Run(ctx context.Context, ed *editor.Editor, s Script) []Error {
	return NewRunner(ed).Run(ctx, s)
}

func (r *Runner) Run(ctx context.Context, s Script) []Error {
	var errs []Error
	for _, ev := range s.Events {
		if err := ctx.Err(); err != nil {
			errs = append(errs, Error{Line: ev.Line, Message: err.Error()})
			break
		}
		ectx := applog.ContextWith(ctx, slog.Int("line", ev.Line), slog.String("op", ev.Op))
		if err := r.apply(ev); err != nil {
			r.l.WarnContext(ectx, "event failed", slog.Any("err", err))
			errs = append(errs, Error{Line: ev.Line, Message: err.Error()})
			continue
		}
		r.l.DebugContext(ectx, "event applied")
	}
	return errs
}

func (r *Runner) lookup(ev Event) (int64, error) {
	id, ok := r.refs[ev.Ref]
	if !ok {
		return 0, fmt.Errorf("%s: %w %q", ev.Op, ErrUnknownRef, ev.Ref)
	}
	return id, nil
}

func point(ev Event) geom.Point {
	var p geom.Point
	if ev.X != nil {
		p.X = *ev.X
	}
	if ev.Y != nil {
		p.Y = *ev.Y
	}
	return p
}

func (r *Runner) apply(ev Event) error {
	switch ev.Op {
	case "drop", "add":
		var err error
		var id int64
		if ev.Op == "drop" {
			c, e := r.ed.Drop(ev.Kind, point(ev))
			id, err = c.ID, e
		} else {
			c, e := r.ed.AddComponent(ev.Kind, ev.Page, point(ev))
			id, err = c.ID, e
		}
		if err != nil {
			return err
		}
		if ev.Ref != "" {
			r.refs[ev.Ref] = id
		}
		return nil
	case "add_page":
		_, err := r.ed.AddPage()
		return err
	case "undo":
		r.ed.Undo()
		return nil
	case "redo":
		r.ed.Redo()
		return nil
	}

	id, err := r.lookup(ev)
	if err != nil {
		return err
	}
	switch ev.Op {
	case "move":
		return r.ed.MoveComponent(id, point(ev))
	case "resize":
		pos := point(ev)
		if c, ok := r.ed.Component(id); ok {
			if ev.X == nil {
				pos.X = c.Position.X
			}
			if ev.Y == nil {
				pos.Y = c.Position.Y
			}
		}
		return r.ed.ResizeComponent(id, geom.Size{Width: ev.Width, Height: ev.Height}, pos)
	case "text":
		return r.ed.SetText(id, ev.Text)
	case "delete":
		return r.ed.DeleteComponent(id)
	case "style":
		return r.ed.SetStyle(id, ev.Style)
	case "move_to_page":
		return r.ed.MoveToPage(id, ev.Page)
	case "add_row":
		return r.ed.AddRow(id)
	case "add_column":
		return r.ed.AddColumn(id)
	case "cell_text":
		return r.ed.SetCellText(id, ev.Row, ev.Col, ev.Text)
	case "resize_cell":
		return r.ed.ResizeCell(id, ev.Row, ev.Col, geom.Size{Width: ev.Width, Height: ev.Height})
	case "merge_right":
		return r.ed.MergeRight(id, ev.Row, ev.Col)
	case "merge_down":
		return r.ed.MergeDown(id, ev.Row, ev.Col)
	case "merge":
		_, err := r.ed.MergeSelection(id, ev.TableCells())
		return err
	case "unmerge":
		return r.ed.UnmergeSelection(id, ev.TableCells())
	default:
		return fmt.Errorf("unsupported op %q", ev.Op)
	}
}
