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

import "math"

// Layout carries the page geometry of the designer canvas. Pages are stacked
// vertically below a header, separated by a gap.
type Layout struct {
	PageWidth    float64
	PageHeight   float64
	PageGap      float64
	HeaderHeight float64
	// CanvasLeft is subtracted from pointer X on drop (palette/sidebar width).
	CanvasLeft float64
}

// DefaultLayout is an A4 page at 96 units per inch.
func DefaultLayout() Layout {
	return Layout{PageWidth: 794, PageHeight: 1123, PageGap: 20, HeaderHeight: 50}
}

func (l Layout) stride() float64 { return l.PageHeight + l.PageGap }

// PageTop returns the absolute canvas Y of the top edge of page.
func (l Layout) PageTop(page int) float64 { return l.HeaderHeight + float64(page)*l.stride() }

// PageIndexForDrop maps an absolute canvas Y to a page index clamped into
// [0, pageCount) and the Y coordinate local to that page. A drop above the
// first page or below the last one lands on that page with a local Y outside
// [0, PageHeight); it is never rejected. A non-finite rawY lands at the top of
// the first page.
func PageIndexForDrop(rawY float64, pageCount int, l Layout) (page int, localY float64) {
	if pageCount < 1 {
		pageCount = 1
	}
	if math.IsNaN(rawY) || math.IsInf(rawY, 0) {
		return 0, 0
	}
	y := rawY - l.HeaderHeight
	if s := l.stride(); s > 0 {
		page = int(math.Floor(y / s))
	}
	page = min(pageCount-1, max(0, page))
	return page, y - float64(page)*l.stride()
}
