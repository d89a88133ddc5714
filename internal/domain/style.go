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

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

func (a TextAlign) Valid() bool { return a == AlignLeft || a == AlignCenter || a == AlignRight }

type FontWeight string

const (
	WeightNormal FontWeight = "normal"
	WeightBold   FontWeight = "bold"
)

func (w FontWeight) Valid() bool { return w == WeightNormal || w == WeightBold }

type FontStyle string

const (
	StyleNormal FontStyle = "normal"
	StyleItalic FontStyle = "italic"
)

func (s FontStyle) Valid() bool { return s == StyleNormal || s == StyleItalic }

type TextDecoration string

const (
	DecorationNone      TextDecoration = "none"
	DecorationUnderline TextDecoration = "underline"
)

func (d TextDecoration) Valid() bool { return d == DecorationNone || d == DecorationUnderline }

// Style holds the text/box attributes of a whole component. Nil fields are
// unset; the consuming renderer picks its own default for them. The same type
// is used as a partial update in Merge.
type Style struct {
	FontSize        *float64        `yaml:"fontSize,omitempty" json:"fontSize,omitempty"`
	Color           *string         `yaml:"color,omitempty" json:"color,omitempty"`
	BackgroundColor *string         `yaml:"backgroundColor,omitempty" json:"backgroundColor,omitempty"`
	TextAlign       *TextAlign      `yaml:"textAlign,omitempty" json:"textAlign,omitempty"`
	FontWeight      *FontWeight     `yaml:"fontWeight,omitempty" json:"fontWeight,omitempty"`
	FontStyle       *FontStyle      `yaml:"fontStyle,omitempty" json:"fontStyle,omitempty"`
	TextDecoration  *TextDecoration `yaml:"textDecoration,omitempty" json:"textDecoration,omitempty"`
}

// Ptr returns a pointer to v, for building Style literals.
func Ptr[T any](v T) *T { return &v }

// Merge returns s with every field set in patch copied over it. Fields not
// set in patch keep their current value.
func (s Style) Merge(patch Style) Style {
	out := s
	if patch.FontSize != nil {
		out.FontSize = Ptr(*patch.FontSize)
	}
	if patch.Color != nil {
		out.Color = Ptr(*patch.Color)
	}
	if patch.BackgroundColor != nil {
		out.BackgroundColor = Ptr(*patch.BackgroundColor)
	}
	if patch.TextAlign != nil {
		out.TextAlign = Ptr(*patch.TextAlign)
	}
	if patch.FontWeight != nil {
		out.FontWeight = Ptr(*patch.FontWeight)
	}
	if patch.FontStyle != nil {
		out.FontStyle = Ptr(*patch.FontStyle)
	}
	if patch.TextDecoration != nil {
		out.TextDecoration = Ptr(*patch.TextDecoration)
	}
	return out
}

// Validate rejects enum values outside their sets, non-positive or non-finite
// font sizes and malformed colors.
func (s Style) Validate() error {
	if v := s.FontSize; v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0) {
		return fmt.Errorf("fontSize must be positive, got %v", *s.FontSize)
	}
	if s.TextAlign != nil && !s.TextAlign.Valid() {
		return fmt.Errorf("invalid textAlign %q", *s.TextAlign)
	}
	if s.FontWeight != nil && !s.FontWeight.Valid() {
		return fmt.Errorf("invalid fontWeight %q", *s.FontWeight)
	}
	if s.FontStyle != nil && !s.FontStyle.Valid() {
		return fmt.Errorf("invalid fontStyle %q", *s.FontStyle)
	}
	if s.TextDecoration != nil && !s.TextDecoration.Valid() {
		return fmt.Errorf("invalid textDecoration %q", *s.TextDecoration)
	}
	if s.Color != nil {
		if _, err := ParseHexColor(*s.Color); err != nil {
			return err
		}
	}
	if s.BackgroundColor != nil {
		if _, err := ParseHexColor(*s.BackgroundColor); err != nil {
			return err
		}
	}
	return nil
}

func (s Style) IsBold() bool      { return s.FontWeight != nil && *s.FontWeight == WeightBold }
func (s Style) IsItalic() bool    { return s.FontStyle != nil && *s.FontStyle == StyleItalic }
func (s Style) IsUnderline() bool { return s.TextDecoration != nil && *s.TextDecoration == DecorationUnderline }

// FontSizeOr returns the font size or def when unset.
func (s Style) FontSizeOr(def float64) float64 {
	if s.FontSize == nil {
		return def
	}
	return *s.FontSize
}

// AlignOr returns the alignment or def when unset.
func (s Style) AlignOr(def TextAlign) TextAlign {
	if s.TextAlign == nil {
		return def
	}
	return *s.TextAlign
}

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// ParseHexColor parses #rgb, #rrggbb and #rrggbbaa (leading # optional).
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats c as #rrggbb (alpha is dropped).
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }
