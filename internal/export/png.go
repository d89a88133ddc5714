/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"reportdesigner/internal/domain"
	"reportdesigner/internal/geom"
	"reportdesigner/internal/textlayout"
)

// PNGOptions controls raster preview export.
//   - DPI: output resolution; document pixels are 1/96 inch (96 if zero)
//   - Fonts: faces for styled text; basicfont when nil
//   - Pages: if empty, export all
type PNGOptions struct {
	Page          Page
	DPI           float64
	Fonts         *textlayout.FontLibrary
	Family        string
	IncludeGuides bool
	Pages         []int
}

func (o PNGOptions) scale() float64 {
	if o.DPI <= 0 {
		return 1
	}
	return o.DPI / 96
}

func (o PNGOptions) provider() textlayout.Provider {
	if o.Fonts == nil {
		return textlayout.BasicProvider{}
	}
	dpi := o.DPI
	if dpi <= 0 {
		dpi = 96
	}
	return textlayout.OTProvider{Lib: o.Fonts, DPI: dpi}
}

// RenderPagePNG rasterizes one document page.
func RenderPagePNG(doc domain.Document, page int, opt PNGOptions) *image.RGBA {
	pg := opt.Page.orDefault()
	r := &pngRenderer{s: opt.scale(), fonts: opt.provider(), family: opt.Family}
	img := image.NewRGBA(image.Rect(0, 0, r.px(pg.Width), r.px(pg.Height)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	r.img = img
	for _, c := range doc.Components {
		if c.Page != page {
			continue
		}
		r.component(c)
		if opt.IncludeGuides {
			r.stroke(componentBox(c), guide)
		}
	}
	return img
}

// ExportPNGPages writes page-<n>.png (1-based) for each page into outDir and
// returns the written paths.
func ExportPNGPages(doc domain.Document, outDir string, opt PNGOptions) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var written []string
	for _, p := range pageIndexes(doc.PageCount, opt.Pages) {
		img := RenderPagePNG(doc, p, opt)
		name := filepath.Join(outDir, fmt.Sprintf("page-%d.png", p+1))
		f, err := os.Create(name)
		if err != nil {
			return written, fmt.Errorf("create png: %w", err)
		}
		if err := png.Encode(f, img); err != nil {
			_ = f.Close()
			return written, fmt.Errorf("encode png: %w", err)
		}
		if err := f.Close(); err != nil {
			return written, fmt.Errorf("close png: %w", err)
		}
		written = append(written, name)
	}
	return written, nil
}

type pngRenderer struct {
	img    *image.RGBA
	s      float64
	fonts  textlayout.Provider
	family string
}

func (r *pngRenderer) px(v float64) int { return int(math.Round(v * r.s)) }

func (r *pngRenderer) bounds(b geom.Rect) image.Rectangle {
	return image.Rect(r.px(b.X), r.px(b.Y), r.px(b.X+b.Width), r.px(b.Y+b.Height))
}

func (r *pngRenderer) component(c domain.Component) {
	box := componentBox(c)
	switch c.Kind {
	case domain.KindLabel:
		if c.Style.BackgroundColor != nil {
			r.fill(box, colorOr(c.Style.BackgroundColor, white))
		}
		r.text(box, c.Text(), c.Style, 0)
	case domain.KindTable:
		for _, cb := range cellBoxes(c) {
			if c.Style.BackgroundColor != nil {
				r.fill(cb.Rect, colorOr(c.Style.BackgroundColor, white))
			}
			r.stroke(cb.Rect, black)
			r.text(cb.Rect, cb.Text, c.Style, CellPadding)
		}
	case domain.KindImage:
		r.fill(box, ghost)
		r.stroke(box, frame)
		r.cross(box, frame)
	}
}

func nrgba(c domain.Color) color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

func (r *pngRenderer) fill(b geom.Rect, c domain.Color) {
	draw.Draw(r.img, r.bounds(b), &image.Uniform{C: nrgba(c)}, image.Point{}, draw.Over)
}

// stroke draws a 1px border inside b.
func (r *pngRenderer) stroke(b geom.Rect, c domain.Color) {
	rb := r.bounds(b).Intersect(r.img.Bounds())
	if rb.Empty() {
		return
	}
	col := nrgba(c)
	for x := rb.Min.X; x < rb.Max.X; x++ {
		r.img.Set(x, rb.Min.Y, col)
		r.img.Set(x, rb.Max.Y-1, col)
	}
	for y := rb.Min.Y; y < rb.Max.Y; y++ {
		r.img.Set(rb.Min.X, y, col)
		r.img.Set(rb.Max.X-1, y, col)
	}
}

func (r *pngRenderer) cross(b geom.Rect, c domain.Color) {
	rb := r.bounds(b)
	w, h := rb.Dx(), rb.Dy()
	if w <= 0 || h <= 0 {
		return
	}
	col := nrgba(c)
	clip := rb.Intersect(r.img.Bounds())
	for x := 0; x < w; x++ {
		y := x * h / w
		for _, p := range []image.Point{{rb.Min.X + x, rb.Min.Y + y}, {rb.Max.X - 1 - x, rb.Min.Y + y}} {
			if p.In(clip) {
				r.img.Set(p.X, p.Y, col)
			}
		}
	}
}

// text wraps s into b and draws it clipped to b.
func (r *pngRenderer) text(b geom.Rect, s string, st domain.Style, pad float64) {
	inner := b.Inset(pad, pad)
	if s == "" || inner.Width <= 0 || inner.Height <= 0 {
		return
	}
	spec := textlayout.FontSpec{
		Family: r.family,
		SizePt: st.FontSizeOr(DefaultFontSize) * 0.75,
		Bold:   st.IsBold(),
		Italic: st.IsItalic(),
	}
	width := inner.Width * r.s
	box := textlayout.Wrap(r.fonts, s, spec, width)
	face, met := r.fonts.Resolve(spec)
	dst, ok := r.img.SubImage(r.bounds(b)).(*image.RGBA)
	if !ok || dst.Bounds().Empty() {
		return
	}
	ink := image.NewUniform(nrgba(colorOr(st.Color, black)))
	d := &font.Drawer{Dst: dst, Src: ink, Face: face}
	align := alignOf(st)
	x0 := inner.X * r.s
	y := inner.Y*r.s + met.Ascent
	for _, ln := range box.Lines {
		x := x0 + align.Offset(ln.Width, width)
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
		d.DrawString(ln.Text)
		if st.IsUnderline() && ln.Width > 0 {
			uy := int(math.Round(y)) + 1
			for ux := int(math.Round(x)); ux < int(math.Round(x+ln.Width)); ux++ {
				if image.Pt(ux, uy).In(dst.Bounds()) {
					dst.Set(ux, uy, ink.C)
				}
			}
		}
		y += met.LineHeight()
	}
}
