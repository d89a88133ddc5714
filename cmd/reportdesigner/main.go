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
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"reportdesigner/internal/config"
	"reportdesigner/internal/editor"
	"reportdesigner/internal/geom"
	"reportdesigner/internal/history"
	applog "reportdesigner/internal/log"
	"reportdesigner/internal/version"
)

type app struct {
	configPath string
	cfg        config.AppConfig
	l          *slog.Logger
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "reportdesigner",
		Short:         "Report designer document engine",
		Long:          "reportdesigner replays designer event scripts against the report document model and exports the result.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: per-user config.yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "reportdesigner", version.String())
			},
		},
		a.pageForCmd(),
		a.configCmd(),
		a.runCmd(),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applog.Init(applog.Options{
		Level:     a.cfg.Logging.Level,
		Format:    a.cfg.Logging.Format,
		AddSource: a.cfg.Logging.Source,
		File:      a.cfg.Logging.File,
		Console:   stderr,
	})
	a.l = applog.WithComponent("cli")
	a.l.Debug("config loaded", slog.String("path", a.configPath))
	return nil
}

func (a *app) layout() editor.Layout {
	p := a.cfg.Page
	return editor.Layout{PageWidth: p.Width, PageHeight: p.Height, PageGap: p.Gap, HeaderHeight: p.HeaderHeight, CanvasLeft: p.CanvasLeft}
}

func (a *app) editorOptions(pages int) editor.Options {
	d := a.cfg.Defaults
	return editor.Options{
		Layout: a.layout(),
		Defaults: editor.Defaults{
			LabelText:   d.LabelText,
			LabelSize:   geom.Size{Width: d.Label.Width, Height: d.Label.Height},
			ImageSize:   geom.Size{Width: d.Image.Width, Height: d.Image.Height},
			TableRows:   d.TableRows,
			TableCols:   d.TableCols,
			CellSize:    geom.Size{Width: d.Cell.Width, Height: d.Cell.Height},
			MinCellSize: max(d.MinCellSize, 0),
		},
		History: history.Config{MaxDepth: a.cfg.History.MaxDepth},
		Pages:   max(pages, a.cfg.Page.Count, 1),
	}
}

func (a *app) pageForCmd() *cobra.Command {
	var y float64
	var pages int
	cmd := &cobra.Command{
		Use:   "page-for",
		Short: "Map an absolute canvas y coordinate to a page and page-local y",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pages <= 0 {
				pages = a.cfg.Page.Count
			}
			page, local := editor.PageIndexForDrop(y, pages, a.layout())
			fmt.Fprintf(cmd.OutOrStdout(), "page=%d y=%s\n", page, strconv.FormatFloat(local, 'f', -1, 64))
			return nil
		},
	}
	cmd.Flags().Float64Var(&y, "y", 0, "absolute pointer y in canvas pixels")
	cmd.Flags().IntVar(&pages, "pages", 0, "page count (default: config page.count)")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

func (a *app) configCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if save {
				if err := a.saveConfig(); err != nil {
					return err
				}
			}
			out, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if _, err := w.Write(out); err != nil {
				return err
			}
			var overridden []string
			for _, key := range []string{
				"page.width", "page.height", "page.count", "history.max_depth", "export.dpi",
				"export.font", "logging.level", "logging.format", "logging.source", "logging.file",
			} {
				if env, ok := config.EnvOverrideFor(key); ok {
					overridden = append(overridden, fmt.Sprintf("# %s overridden by %s", key, env))
				}
			}
			sort.Strings(overridden)
			for _, line := range overridden {
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "write the effective configuration back to the config file")
	return cmd
}

func (a *app) saveConfig() error {
	var err error
	if a.configPath != "" {
		err = config.SaveFile(a.configPath, a.cfg)
	} else {
		err = config.Save(a.cfg)
	}
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	a.l.Info("config saved", slog.String("path", a.configPath))
	return nil
}
