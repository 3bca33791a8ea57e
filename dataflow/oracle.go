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

package dataflow

import (
	"sync"

	"go.uber.org/nilassert/syntax"
	"go.uber.org/nilassert/typesys"
)

// Nullability is the stable nullability of a value at a program point.
type Nullability uint8

// The possible nullabilities. The zero value is Nullable, i.e., nothing is known.
const (
	// Nullable values may or may not be null.
	Nullable Nullability = iota
	// Null values are definitely null.
	Null
	// NotNull values are definitely not null.
	NotNull
	// Impossible marks unreachable program points.
	Impossible
)

var _nullabilityNames = [...]string{
	Nullable:   "nullable",
	Null:       "null",
	NotNull:    "not_null",
	Impossible: "impossible",
}

func (n Nullability) String() string {
	if int(n) < len(_nullabilityNames) {
		return _nullabilityNames[n]
	}
	return "unknown"
}

// ParseNullability is the inverse of Nullability.String.
func ParseNullability(s string) (Nullability, bool) {
	for n, name := range _nullabilityNames {
		if name == s {
			return Nullability(n), true
		}
	}
	return Nullable, false
}

// CanBeNull returns true if a value with this nullability may be null.
func (n Nullability) CanBeNull() bool {
	return n == Nullable || n == Null
}

// Oracle answers flow-sensitive nullability questions. Implementations must be safe for
// concurrent use.
type Oracle interface {
	// StableNullability returns the nullability of expr (whose static type is t) at its program
	// point, taking every stable narrowing into account.
	StableNullability(expr *syntax.Expression, t typesys.Type) Nullability
}

// FactTable is an Oracle backed by narrowing facts recorded per site. Sites without a recorded
// fact fall back to the static type: Nullable if typesys.IsNullable, NotNull otherwise.
type FactTable struct {
	mu    sync.RWMutex
	facts map[syntax.SiteID]Nullability
}

// NewFactTable returns an empty FactTable.
func NewFactTable() *FactTable {
	return &FactTable{facts: make(map[syntax.SiteID]Nullability)}
}

// Record sets the stable nullability of the value at site.
func (f *FactTable) Record(site syntax.SiteID, n Nullability) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.facts[site] = n
}

// StableNullability implements Oracle.
func (f *FactTable) StableNullability(expr *syntax.Expression, t typesys.Type) Nullability {
	f.mu.RLock()
	n, ok := f.facts[expr.Site]
	f.mu.RUnlock()
	if ok {
		return n
	}
	if typesys.IsNullable(t) {
		return Nullable
	}
	return NotNull
}
