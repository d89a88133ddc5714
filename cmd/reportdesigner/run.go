/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reportdesigner/internal/crash"
	"reportdesigner/internal/domain"
	"reportdesigner/internal/editor"
	"reportdesigner/internal/export"
	"reportdesigner/internal/geom"
	"reportdesigner/internal/script"
	"reportdesigner/internal/textlayout"
)

var errScript = errors.New("script reported errors")

type runFlags struct {
	pdf      string
	pngDir   string
	xlsx     string
	crashDir string
	ttf      []string
	strict   bool
}

func (a *app) runCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Replay an event script and print or export the resulting document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.pdf, "pdf", "", "write the document as PDF")
	cmd.Flags().StringVar(&f.pngDir, "png-dir", "", "write one PNG preview per page into this directory")
	cmd.Flags().StringVar(&f.xlsx, "xlsx", "", "write table components to an XLSX workbook")
	cmd.Flags().StringVar(&f.crashDir, "crash-dir", "", "directory for crash reports (default: temp dir)")
	cmd.Flags().StringArrayVar(&f.ttf, "ttf", nil, "TrueType font for PNG text, as path or style=path with style regular|bold|italic|bolditalic (repeatable)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail when any event reports an error")
	return cmd
}

func (a *app) run(cmd *cobra.Command, path string, f runFlags) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	s, err := script.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	ed := editor.New(a.editorOptions(s.Pages))
	defer crash.Recover(ed, f.crashDir)

	errs := script.Run(cmd.Context(), ed, s)
	for _, e := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, e)
	}
	a.l.Info("script applied", slog.String("path", path), slog.Int("events", len(s.Events)), slog.Int("errors", len(errs)))

	doc, err := ed.Snapshot()
	if err != nil {
		return err
	}
	printDocument(cmd.OutOrStdout(), ed)

	if err := a.export(doc, f); err != nil {
		return err
	}
	if f.strict && len(errs) > 0 {
		return fmt.Errorf("%w: %d", errScript, len(errs))
	}
	return nil
}

func (a *app) export(doc domain.Document, f runFlags) error {
	page := export.Page{Width: a.cfg.Page.Width, Height: a.cfg.Page.Height}
	if f.pdf != "" {
		opt := export.PDFOptions{Page: page, Font: a.cfg.Export.Font, IncludeGuides: a.cfg.Export.IncludeGuides}
		if err := export.ExportPDF(doc, f.pdf, opt); err != nil {
			return err
		}
		a.l.Info("pdf written", slog.String("path", f.pdf))
	}
	if f.pngDir != "" {
		opt := export.PNGOptions{Page: page, DPI: a.cfg.Export.DPI, IncludeGuides: a.cfg.Export.IncludeGuides}
		if len(f.ttf) > 0 {
			lib, err := a.fonts(f.ttf)
			if err != nil {
				return err
			}
			opt.Fonts, opt.Family = lib, a.cfg.Export.Font
		}
		paths, err := export.ExportPNGPages(doc, f.pngDir, opt)
		if err != nil {
			return err
		}
		a.l.Info("png pages written", slog.String("dir", f.pngDir), slog.Int("pages", len(paths)))
	}
	if f.xlsx != "" {
		err := export.ExportTablesXLSX(doc, f.xlsx)
		if errors.Is(err, export.ErrNoTables) {
			a.l.Warn("xlsx skipped", slog.Any("err", err))
		} else if err != nil {
			return err
		} else {
			a.l.Info("xlsx written", slog.String("path", f.xlsx))
		}
	}
	return nil
}

// fonts loads --ttf values into a library under the configured export font family.
func (a *app) fonts(specs []string) (*textlayout.FontLibrary, error) {
	lib := textlayout.NewFontLibrary()
	for _, spec := range specs {
		style, path, ok := strings.Cut(spec, "=")
		if !ok {
			style, path = "regular", spec
		}
		var bold, italic bool
		switch strings.ToLower(style) {
		case "regular":
		case "bold":
			bold = true
		case "italic":
			italic = true
		case "bolditalic":
			bold, italic = true, true
		default:
			return nil, fmt.Errorf("--ttf %q: unknown style %q", spec, style)
		}
		if err := lib.LoadTTF(a.cfg.Export.Font, bold, italic, path); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

func num(v float64) string { return strconv.FormatFloat(geom.FloatRound(v, 2), 'f', -1, 64) }

// printDocument lists the components page by page in z-order.
func printDocument(w io.Writer, ed *editor.Editor) {
	for p := 0; p < ed.PageCount(); p++ {
		fmt.Fprintf(w, "page %d\n", p+1)
		for c := range ed.ComponentsForPage(p) {
			size := c.SizeOr(ed.Defaults().LabelSize)
			fmt.Fprintf(w, "  #%d %s at (%s,%s) %sx%s", c.ID, c.Kind, num(c.Position.X), num(c.Position.Y), num(size.Width), num(size.Height))
			switch c.Kind {
			case domain.KindLabel:
				fmt.Fprintf(w, " %q", c.Text())
			case domain.KindTable:
				fmt.Fprintf(w, " %dx%d", c.Table.Rows(), c.Table.Cols())
				for _, anchor := range c.Table.Anchors() {
					s := c.Table.Spans[anchor.Row][anchor.Col]
					if s.Rows > 1 || s.Cols > 1 {
						fmt.Fprintf(w, " merge(%d,%d)=%dx%d", anchor.Row, anchor.Col, s.Rows, s.Cols)
					}
				}
			}
			fmt.Fprintln(w)
		}
	}
}
