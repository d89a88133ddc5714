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
	"io"

	"github.com/jung-kurt/gofpdf"

	"reportdesigner/internal/domain"
	"reportdesigner/internal/geom"
	"reportdesigner/internal/textlayout"
)

// PDFOptions controls PDF export. Document coordinates are CSS pixels; the
// PDF is written in points with 1px = 72/DPI pt.
type PDFOptions struct {
	Page          Page
	DPI           float64 // 96 if zero
	Font          string  // core font family, Helvetica if empty
	IncludeGuides bool    // outline every component box
	Title         string
	Pages         []int // if empty, export all pages
}

// WritePDF renders doc as one PDF page per document page to w.
func WritePDF(w io.Writer, doc domain.Document, opt PDFOptions) error {
	pdf := buildPDF(doc, opt)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ExportPDF is WritePDF to a file, creating its directory.
func ExportPDF(doc domain.Document, outPath string, opt PDFOptions) error {
	if err := ensureDir(outPath); err != nil {
		return err
	}
	pdf := buildPDF(doc, opt)
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type pdfRenderer struct {
	pdf    *gofpdf.Fpdf
	k      float64
	family string
	tr     func(string) string
	guides bool
}

func buildPDF(doc domain.Document, opt PDFOptions) *gofpdf.Fpdf {
	page := opt.Page.orDefault()
	dpi := opt.DPI
	if dpi <= 0 {
		dpi = 96
	}
	family := opt.Font
	if family == "" {
		family = "Helvetica"
	}
	k := 72 / dpi
	size := gofpdf.SizeType{Wd: page.Width * k, Ht: page.Height * k}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetCreator("reportdesigner", false)
	pdf.SetFont(family, "", DefaultFontSize*k)

	r := &pdfRenderer{pdf: pdf, k: k, family: family, tr: pdf.UnicodeTranslatorFromDescriptor(""), guides: opt.IncludeGuides}
	for _, p := range pageIndexes(doc.PageCount, opt.Pages) {
		pdf.AddPageFormat("", size)
		for _, c := range doc.Components {
			if c.Page == p {
				r.component(c)
			}
		}
	}
	return pdf
}

func (r *pdfRenderer) component(c domain.Component) {
	box := componentBox(c)
	switch c.Kind {
	case domain.KindLabel:
		if c.Style.BackgroundColor != nil {
			r.fill(box, colorOr(c.Style.BackgroundColor, white))
		}
		r.text(box, c.Text(), c.Style, 0)
	case domain.KindTable:
		r.pdf.SetLineWidth(r.k)
		for _, cb := range cellBoxes(c) {
			if c.Style.BackgroundColor != nil {
				r.fill(cb.Rect, colorOr(c.Style.BackgroundColor, white))
			}
			r.setDraw(black)
			r.rect(cb.Rect, "D")
			r.text(cb.Rect, cb.Text, c.Style, CellPadding)
		}
	case domain.KindImage:
		r.fill(box, ghost)
		r.setDraw(frame)
		r.pdf.SetLineWidth(r.k)
		r.rect(box, "D")
		r.pdf.Line(box.X*r.k, box.Y*r.k, (box.X+box.Width)*r.k, (box.Y+box.Height)*r.k)
		r.pdf.Line((box.X+box.Width)*r.k, box.Y*r.k, box.X*r.k, (box.Y+box.Height)*r.k)
	}
	if r.guides {
		r.setDraw(guide)
		r.pdf.SetLineWidth(0.5 * r.k)
		r.pdf.SetDashPattern([]float64{2, 2}, 0)
		r.rect(box, "D")
		r.pdf.SetDashPattern([]float64{}, 0)
	}
}

func (r *pdfRenderer) rect(b geom.Rect, style string) {
	r.pdf.Rect(b.X*r.k, b.Y*r.k, b.Width*r.k, b.Height*r.k, style)
}

func (r *pdfRenderer) fill(b geom.Rect, c domain.Color) {
	r.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	r.rect(b, "F")
}

func (r *pdfRenderer) setDraw(c domain.Color) {
	r.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

// text writes wrapped text inside b, clipped to it.
func (r *pdfRenderer) text(b geom.Rect, s string, st domain.Style, pad float64) {
	inner := b.Inset(pad, pad)
	if s == "" || inner.Width <= 0 || inner.Height <= 0 {
		return
	}
	fontStyle := ""
	if st.IsBold() {
		fontStyle += "B"
	}
	if st.IsItalic() {
		fontStyle += "I"
	}
	if st.IsUnderline() {
		fontStyle += "U"
	}
	size := st.FontSizeOr(DefaultFontSize) * r.k
	c := colorOr(st.Color, black)
	r.pdf.SetFont(r.family, fontStyle, size)
	r.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))

	r.pdf.ClipRect(b.X*r.k, b.Y*r.k, b.Width*r.k, b.Height*r.k, false)
	r.pdf.SetXY(inner.X*r.k, inner.Y*r.k)
	r.pdf.MultiCell(inner.Width*r.k, size*lineSpacing, r.tr(s), "", pdfAlign(alignOf(st)), false)
	r.pdf.ClipEnd()
}

func pdfAlign(a textlayout.Align) string {
	switch a {
	case textlayout.AlignCenter:
		return "C"
	case textlayout.AlignRight:
		return "R"
	default:
		return "L"
	}
}
