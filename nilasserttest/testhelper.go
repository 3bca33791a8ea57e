//  Copyright (c) 2025 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package nilasserttest implements utility functions for tests.
package nilasserttest

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/nilassert/annotation"
	"go.uber.org/nilassert/dataflow"
	"go.uber.org/nilassert/syntax"
	"go.uber.org/nilassert/typesys"
	"go.uber.org/nilassert/unitfile"
	"golang.org/x/tools/txtar"
)

// The sections of a golden archive.
const (
	// UnitSection holds the unit file.
	UnitSection = "unit.yaml"
	// WantSection lists the expected requirements, one Entry.String per line, sorted by slot kind
	// and then by site. Blank lines and lines starting with '#' are ignored.
	WantSection = "want"
)

// Golden is a golden test case: a unit and the requirements the checkers must find in it.
type Golden struct {
	// Comment is the free text preceding the first section.
	Comment string
	Unit    *unitfile.Unit
	Want    []string
}

// LoadGolden reads a txtar golden archive with a UnitSection and a WantSection.
func LoadGolden(path string) (*Golden, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read golden file: %w", err)
	}
	return ParseGolden(path, data)
}

// ParseGolden parses the contents of a txtar golden archive. name is only used in errors.
func ParseGolden(name string, data []byte) (*Golden, error) {
	archive := txtar.Parse(data)
	g := &Golden{Comment: strings.TrimSpace(string(archive.Comment))}

	var unitData, wantData []byte
	var hasUnit, hasWant bool
	for _, f := range archive.Files {
		switch f.Name {
		case UnitSection:
			unitData, hasUnit = f.Data, true
		case WantSection:
			wantData, hasWant = f.Data, true
		default:
			return nil, fmt.Errorf("golden file %q: unexpected section %q", name, f.Name)
		}
	}
	if !hasUnit || !hasWant {
		return nil, fmt.Errorf("golden file %q: need both %q and %q sections", name, UnitSection, WantSection)
	}

	u, err := unitfile.Parse(unitData)
	if err != nil {
		return nil, fmt.Errorf("golden file %q: %w", name, err)
	}
	g.Unit = u

	scanner := bufio.NewScanner(strings.NewReader(string(wantData)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		g.Want = append(g.Want, line)
	}
	return g, scanner.Err()
}

// Listing renders the requirements in s the way WantSection lists them.
func Listing(s *annotation.Store) []string {
	var lines []string
	for _, e := range s.Sorted() {
		lines = append(lines, e.String())
	}
	return lines
}

// RecordingOracle wraps an oracle and records the sites it was queried for.
type RecordingOracle struct {
	dataflow.Oracle

	mu      sync.Mutex
	queries map[syntax.SiteID]int
}

// NewRecordingOracle returns a RecordingOracle forwarding to oracle.
func NewRecordingOracle(oracle dataflow.Oracle) *RecordingOracle {
	return &RecordingOracle{Oracle: oracle, queries: make(map[syntax.SiteID]int)}
}

// StableNullability implements dataflow.Oracle.
func (o *RecordingOracle) StableNullability(expr *syntax.Expression, t typesys.Type) dataflow.Nullability {
	o.mu.Lock()
	o.queries[expr.Site]++
	o.mu.Unlock()
	return o.Oracle.StableNullability(expr, t)
}

// Queries returns how many times site was queried.
func (o *RecordingOracle) Queries(site syntax.SiteID) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.queries[site]
}
