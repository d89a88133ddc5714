/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package script replays designer interactions from a YAML event script.
// A script is the non-interactive stand-in for the canvas: every event maps
// to one editor command, and components are addressed by names assigned when
// they are dropped or added.
//
//	pages: 2
//	events:
//	  - {op: drop, kind: label, x: 300, y: 560, ref: title}
//	  - {op: text, ref: title, text: Invoice}
//	  - {op: add, kind: table, page: 1, x: 40, y: 40, ref: items}
//	  - {op: merge, ref: items, cells: [[0, 0], [1, 1]]}
package script

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"reportdesigner/internal/domain"
	"reportdesigner/internal/table"
)

//go:embed schema.json
var schemaJSON []byte

var schema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("script schema: %v", err))
	}
	return s
}()

// Script is a parsed event script.
type Script struct {
	Pages  int     `yaml:"pages"`
	Events []Event `yaml:"events"`
}

// Event is one designer interaction. Which fields apply depends on Op.
type Event struct {
	Op     string       `yaml:"op"`
	Ref    string       `yaml:"ref"`
	Kind   domain.Kind  `yaml:"kind"`
	Page   int          `yaml:"page"`
	X      *float64     `yaml:"x"`
	Y      *float64     `yaml:"y"`
	Width  float64      `yaml:"width"`
	Height float64      `yaml:"height"`
	Text   string       `yaml:"text"`
	Style  domain.Style `yaml:"style"`
	Row    int          `yaml:"row"`
	Col    int          `yaml:"col"`
	Cells  [][]int      `yaml:"cells"`

	// Line is the 1-based source line of the event.
	Line int `yaml:"-"`
}

// TableCells converts Cells to grid coordinates.
func (e Event) TableCells() []table.Cell {
	out := make([]table.Cell, 0, len(e.Cells))
	for _, c := range e.Cells {
		if len(c) == 2 {
			out = append(out, table.Cell{Row: c[0], Col: c[1]})
		}
	}
	return out
}

// Error is a script problem with its source position.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e Error) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Errors collects every problem found in a script.
type Errors []Error

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Parse decodes and validates a YAML script. Validation failures are
// returned as Errors, one per schema violation, ordered by line.
func Parse(data []byte) (Script, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Script{}, Errors{{Line: yamlErrLine(err), Message: err.Error()}}
	}
	if len(root.Content) == 0 {
		return Script{}, Errors{{Line: 1, Message: "empty script"}}
	}
	doc := root.Content[0]

	var generic any
	if err := doc.Decode(&generic); err != nil {
		return Script{}, Errors{{Line: doc.Line, Message: err.Error()}}
	}
	res, err := schema.Validate(gojsonschema.NewGoLoader(generic))
	if err != nil {
		return Script{}, Errors{{Line: doc.Line, Message: err.Error()}}
	}
	if !res.Valid() {
		events := eventNodes(doc)
		var errs Errors
		for _, re := range res.Errors() {
			errs = append(errs, Error{Line: lineFor(re.Field(), doc, events), Message: re.String()})
		}
		sort.SliceStable(errs, func(i, j int) bool { return errs[i].Line < errs[j].Line })
		return Script{}, errs
	}

	var s Script
	if err := doc.Decode(&s); err != nil {
		return Script{}, Errors{{Line: doc.Line, Message: err.Error()}}
	}
	for i, n := range eventNodes(doc) {
		if i < len(s.Events) {
			s.Events[i].Line = n.Line
		}
	}
	return s, nil
}

func eventNodes(doc *yaml.Node) []*yaml.Node {
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == "events" && doc.Content[i+1].Kind == yaml.SequenceNode {
			return doc.Content[i+1].Content
		}
	}
	return nil
}

var eventField = regexp.MustCompile(`^events\.(\d+)`)

func lineFor(field string, doc *yaml.Node, events []*yaml.Node) int {
	if m := eventField.FindStringSubmatch(field); m != nil {
		if i, err := strconv.Atoi(m[1]); err == nil && i < len(events) {
			return events[i].Line
		}
	}
	return doc.Line
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func yamlErrLine(err error) int {
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 1
}
