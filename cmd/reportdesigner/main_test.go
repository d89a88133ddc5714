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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"reportdesigner/internal/config"
	applog "reportdesigner/internal/log"
	"reportdesigner/internal/version"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"RD_PAGE_WIDTH", "RD_PAGE_HEIGHT", "RD_PAGE_COUNT", "RD_HISTORY_MAX_DEPTH", "RD_EXPORT_DPI", "RD_EXPORT_FONT", "RD_LOG_LEVEL", "RD_LOG_FORMAT", "RD_LOG_SOURCE", "RD_LOG_FILE"} {
		t.Setenv(k, "")
	}
	t.Cleanup(func() { _ = applog.Close() })
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "reportdesigner "+version.String() {
		t.Fatalf("out = %q", out)
	}
}

func TestPageFor(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"page-for", "--y", "560", "--pages", "2"}, "page=0 y=510"},
		{[]string{"page-for", "--y", "1200", "--pages", "2"}, "page=1 y=7"},
		{[]string{"page-for", "--y", "99999", "--pages", "2"}, "page=1 y=98806"},
		{[]string{"page-for", "--y", "10"}, "page=0 y=-40"},
	}
	for _, tc := range cases {
		out, _, err := execute(t, tc.args...)
		if err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		if strings.TrimSpace(out) != tc.want {
			t.Fatalf("%v = %q, want %q", tc.args, out, tc.want)
		}
	}
	if _, _, err := execute(t, "page-for"); err == nil {
		t.Fatalf("missing --y must fail")
	}
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "page:\n  count: 3\nhistory:\n  max_depth: 50\n")
	t.Setenv("RD_EXPORT_FONT", "Times")

	var stdout, stderr bytes.Buffer
	t.Cleanup(func() { _ = applog.Close() })
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"--config", cfgPath, "config"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config: %v", err)
	}
	out := stdout.String()
	for _, want := range []string{"count: 3", "max_depth: 50", "font: Times", "# export.font overridden by RD_EXPORT_FONT"} {
		if !strings.Contains(out, want) {
			t.Fatalf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigSave(t *testing.T) {
	home := t.TempDir()
	var stdout, stderr bytes.Buffer
	t.Setenv("HOME", home)
	t.Setenv("RD_PAGE_COUNT", "4")
	t.Cleanup(func() { _ = applog.Close() })
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"config", "--save"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config --save: %v", err)
	}
	path, err := config.ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	t.Setenv("RD_PAGE_COUNT", "")
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("saved config unreadable: %v", err)
	}
	if cfg.Page.Count != 4 {
		t.Fatalf("saved page count = %d, want 4", cfg.Page.Count)
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "version")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

const report = `pages: 1
events:
  - {op: add, kind: label, page: 0, x: 10, y: 20, ref: title}
  - {op: text, ref: title, text: Hello}
  - {op: add, kind: table, page: 0, x: 40, y: 100, ref: items}
  - {op: merge_right, ref: items, row: 0, col: 0}
  - {op: cell_text, ref: items, row: 1, col: 0, text: Sum}
  - {op: text, ref: ghost, text: lost}
`

func TestRunExports(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "report.yaml", report)
	pdfPath := filepath.Join(dir, "out", "report.pdf")
	xlsxPath := filepath.Join(dir, "out", "report.xlsx")
	pngDir := filepath.Join(dir, "png")

	out, errOut, err := execute(t, "run", scriptPath, "--pdf", pdfPath, "--xlsx", xlsxPath, "--png-dir", pngDir)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, errOut)
	}
	for _, want := range []string{"page 1", "#1 label at (10,20)", `"Hello"`, "#2 table at (40,100)", "merge(0,0)=1x2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(errOut, "line 8:") {
		t.Fatalf("unknown ref not reported:\n%s", errOut)
	}
	for _, p := range []string{pdfPath, xlsxPath, filepath.Join(pngDir, "page-1.png")} {
		if fi, err := os.Stat(p); err != nil || fi.Size() == 0 {
			t.Fatalf("%s not written: %v", p, err)
		}
	}
}

func TestRunTrueTypeFonts(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "report.yaml", report)
	fontPath := writeFile(t, dir, "go.ttf", string(goregular.TTF))
	pngDir := filepath.Join(dir, "png")

	if _, errOut, err := execute(t, "run", scriptPath, "--png-dir", pngDir, "--ttf", fontPath, "--ttf", "bold="+fontPath); err != nil {
		t.Fatalf("run: %v\n%s", err, errOut)
	}
	if _, err := os.Stat(filepath.Join(pngDir, "page-1.png")); err != nil {
		t.Fatalf("png not written: %v", err)
	}
	if _, _, err := execute(t, "run", scriptPath, "--png-dir", pngDir, "--ttf", "heavy="+fontPath); err == nil || !strings.Contains(err.Error(), "unknown style") {
		t.Fatalf("err = %v, want unknown style", err)
	}
	if _, _, err := execute(t, "run", scriptPath, "--png-dir", pngDir, "--ttf", filepath.Join(dir, "none.ttf")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing font err = %v", err)
	}
}

func TestRunStrict(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "report.yaml", report)
	_, _, err := execute(t, "run", scriptPath, "--strict")
	if !errors.Is(err, errScript) {
		t.Fatalf("err = %v, want errScript", err)
	}
}

func TestRunInvalidScript(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "bad.yaml", "events:\n  - {op: explode}\n")
	_, _, err := execute(t, "run", scriptPath)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("err = %v, want a line 2 schema error", err)
	}
	if _, _, err := execute(t, "run", filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing script err = %v", err)
	}
}
