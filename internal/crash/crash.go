/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report plus a snapshot of the
// document that was being edited.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"gopkg.in/yaml.v3"

	"reportdesigner/internal/domain"
	applog "reportdesigner/internal/log"
	"reportdesigner/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Source provides the document to include in a crash report. The editor
// satisfies it.
type Source interface {
	Snapshot() (domain.Document, error)
}

// Recover captures a panic, logs it with the stack, writes a report and a
// YAML snapshot of the document into dir (os.TempDir when empty) and exits
// with code 2.
//
// Usage: defer crash.Recover(ed, dir)
func Recover(src Source, dir string) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	var doc *domain.Document
	if src != nil {
		if d, err := snapshot(src); err != nil {
			l.Error("document snapshot failed", slog.Any("err", err))
		} else {
			doc = &d
		}
	}
	reportPath, err := writeReport(dir, doc, r, stack)
	if err != nil {
		l.Error("crash report failed", slog.Any("err", err), slog.String("path", reportPath))
	}
	if doc != nil {
		if path, err := writeSnapshot(dir, *doc); err != nil {
			l.Error("crash snapshot failed", slog.Any("err", err))
		} else {
			l.Info("crash snapshot written", slog.String("path", path))
		}
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

// snapshot guards against the source panicking again.
func snapshot(src Source) (doc domain.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("snapshot panicked: %v", r)
		}
	}()
	return src.Snapshot()
}

func reportDir(dir string) (string, error) {
	if dir == "" {
		return os.TempDir(), nil
	}
	return dir, os.MkdirAll(dir, 0o755)
}

func stampedPath(dir, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("crash-%s%s", time.Now().Format("20060102-150405"), ext))
}

// Summary describes a document in one line per fact.
func Summary(doc domain.Document) string {
	counts := map[domain.Kind]int{}
	for _, c := range doc.Components {
		counts[c.Kind]++
	}
	return fmt.Sprintf("Pages: %d\nComponents: %d (labels %d, tables %d, images %d)\n",
		doc.PageCount, len(doc.Components),
		counts[domain.KindLabel], counts[domain.KindTable], counts[domain.KindImage])
}

func writeReport(dir string, doc *domain.Document, panicVal any, stack []byte) (string, error) {
	dir, err := reportDir(dir)
	if err != nil {
		return "", err
	}
	path := stampedPath(dir, ".log")

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Report Designer Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if doc != nil {
		buf.WriteString(Summary(*doc))
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}

func writeSnapshot(dir string, doc domain.Document) (string, error) {
	dir, err := reportDir(dir)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	path := stampedPath(dir, ".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return path, err
	}
	return path, nil
}
