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

package syntax

import (
	"sync"

	"go.uber.org/nilassert/typesys"
)

// TypeTable answers the inferred type of an expression, as recorded by type inference.
type TypeTable interface {
	TypeOf(expr *Expression) (typesys.Type, bool)
}

// TypeMap is a TypeTable backed by a map from sites to types. It is safe for concurrent reads
// and writes.
type TypeMap struct {
	mu    sync.RWMutex
	types map[SiteID]typesys.Type
}

// NewTypeMap returns an empty TypeMap.
func NewTypeMap() *TypeMap {
	return &TypeMap{types: make(map[SiteID]typesys.Type)}
}

// Record sets the inferred type of the expression.
func (m *TypeMap) Record(expr *Expression, t typesys.Type) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[expr.Site] = t
}

// TypeOf implements TypeTable.
func (m *TypeMap) TypeOf(expr *Expression) (typesys.Type, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.types[expr.Site]
	return t, ok
}

// CheckedExpression is an expression after type checking, together with the bits of its
// resolution context the expression checker needs.
type CheckedExpression struct {
	Expression *Expression
	// Type is the inferred type of the expression (without smart casts).
	Type typesys.Type
	// ExpectedType is the type the context expects, or nil if the context has no expectation.
	ExpectedType typesys.Type
	Scope        ScopeKind
}

// CallSite is a resolved call together with the lexical scope it was resolved in.
type CallSite struct {
	Call  *Call
	Scope ScopeKind
}

// Unit is a type-checked compilation unit, i.e., everything the checkers run over.
type Unit struct {
	Name         string
	Expressions  []*CheckedExpression
	Calls        []*CallSite
	Declarations []Declaration
	Types        TypeTable
}
