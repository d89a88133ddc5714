/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the report document model: placed components and the
// page count. Component is a tagged union over Kind; exactly the payload that
// matches the kind is set.

import (
	"errors"
	"fmt"
	"strings"

	"reportdesigner/internal/geom"
	"reportdesigner/internal/table"
)

// Kind discriminates the component variants.
type Kind string

const (
	KindLabel Kind = "label"
	KindTable Kind = "table"
	KindImage Kind = "image"
)

// ParseKind accepts the kind names case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindLabel, KindTable, KindImage:
		return k, nil
	default:
		return "", fmt.Errorf("unknown component kind %q", s)
	}
}

// Document is the full editable state: components in z-order (last is
// topmost) and the number of pages.
type Document struct {
	Components []Component
	PageCount  int
}

// NewDocument returns an empty document with at least one page.
func NewDocument(pages int) Document {
	if pages < 1 {
		pages = 1
	}
	return Document{PageCount: pages}
}

// Component is a placed report element.
type Component struct {
	ID       int64
	Kind     Kind
	Page     int
	Position geom.Point
	// Size is nil when the kind default applies.
	Size  *geom.Size
	Style Style

	Label *LabelContent
	Table *table.Grid
}

// LabelContent is the payload of a label.
type LabelContent struct {
	Text string
}

var ErrPayloadMismatch = errors.New("component payload does not match kind")

// Validate checks that exactly the payload matching Kind is present and that a
// table payload satisfies the grid invariants.
func (c Component) Validate() error {
	switch c.Kind {
	case KindLabel:
		if c.Label == nil || c.Table != nil {
			return fmt.Errorf("component %d (%s): %w", c.ID, c.Kind, ErrPayloadMismatch)
		}
	case KindTable:
		if c.Table == nil || c.Label != nil {
			return fmt.Errorf("component %d (%s): %w", c.ID, c.Kind, ErrPayloadMismatch)
		}
		if err := c.Table.Validate(); err != nil {
			return fmt.Errorf("component %d table: %w", c.ID, err)
		}
	case KindImage:
		if c.Label != nil || c.Table != nil {
			return fmt.Errorf("component %d (%s): %w", c.ID, c.Kind, ErrPayloadMismatch)
		}
	default:
		return fmt.Errorf("component %d: unknown kind %q", c.ID, c.Kind)
	}
	return nil
}

// Text returns the label text, or "" for other kinds.
func (c Component) Text() string {
	if c.Label == nil {
		return ""
	}
	return c.Label.Text
}

// SizeOr returns the explicit size or def when none is set.
func (c Component) SizeOr(def geom.Size) geom.Size {
	if c.Size == nil {
		return def
	}
	return *c.Size
}

// Index returns the slice position of the component with id, or -1.
func (d Document) Index(id int64) int {
	for i := range d.Components {
		if d.Components[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the component with id.
func (d Document) Find(id int64) (Component, bool) {
	if i := d.Index(id); i >= 0 {
		return d.Components[i], true
	}
	return Component{}, false
}

// Validate checks every component and its page assignment.
func (d Document) Validate() error {
	if d.PageCount < 1 {
		return fmt.Errorf("page count %d < 1", d.PageCount)
	}
	seen := make(map[int64]struct{}, len(d.Components))
	for _, c := range d.Components {
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate component id %d", c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.Page < 0 || c.Page >= d.PageCount {
			return fmt.Errorf("component %d on page %d outside [0,%d)", c.ID, c.Page, d.PageCount)
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
