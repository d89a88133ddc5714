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

	"reportdesigner/internal/domain"
)

// session is the selection and in-place text edit state of the canvas. Ids
// start at 1, so 0 means "none".
type session struct {
	selected int64
	editing  int64
	buffer   string
}

// Select marks a component as selected; id 0 clears the selection.
func (e *Editor) Select(id int64) error {
	if id == 0 {
		e.session.selected = 0
		return nil
	}
	if _, ok := e.Component(id); !ok {
		return fmt.Errorf("select %d: %w", id, ErrComponentNotFound)
	}
	e.session.selected = id
	return nil
}

// Selected returns the selected component id.
func (e *Editor) Selected() (int64, bool) { return e.session.selected, e.session.selected != 0 }

// BeginEdit opens an in-place text edit on a label, seeding the buffer with
// its current text.
func (e *Editor) BeginEdit(id int64) error {
	c, ok := e.Component(id)
	if !ok {
		return fmt.Errorf("begin edit %d: %w", id, ErrComponentNotFound)
	}
	if c.Kind != domain.KindLabel {
		return fmt.Errorf("begin edit %d: %w", id, ErrWrongKind)
	}
	e.session.editing = id
	e.session.buffer = c.Text()
	return nil
}

// Editing returns the id of the label being edited.
func (e *Editor) Editing() (int64, bool) { return e.session.editing, e.session.editing != 0 }

func (e *Editor) EditBuffer() string { return e.session.buffer }

func (e *Editor) SetEditBuffer(s string) { e.session.buffer = s }

// CommitEdit writes the edit buffer to the label as one undo step and closes
// the edit. It is a no-op without an open edit.
func (e *Editor) CommitEdit() error {
	id := e.session.editing
	if id == 0 {
		return nil
	}
	text := e.session.buffer
	e.session.editing, e.session.buffer = 0, ""
	return e.SetText(id, text)
}

// CancelEdit closes the edit without writing.
func (e *Editor) CancelEdit() { e.session.editing, e.session.buffer = 0, "" }

func (e *Editor) forget(id int64) {
	if e.session.selected == id {
		e.session.selected = 0
	}
	if e.session.editing == id {
		e.session.editing, e.session.buffer = 0, ""
	}
	if e.gesture != nil && e.gesture.id == id {
		e.gesture = nil
	}
}

// prune forgets session and gesture references to components missing from
// the present document.
func (e *Editor) prune() {
	doc := e.hist.Present()
	for _, id := range []int64{e.session.selected, e.session.editing} {
		if id != 0 && doc.Index(id) < 0 {
			e.forget(id)
		}
	}
	if e.gesture != nil && doc.Index(e.gesture.id) < 0 {
		e.forget(e.gesture.id)
	}
}
