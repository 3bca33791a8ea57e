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

package assertion

import (
	"go.uber.org/nilassert/annotation"
	"go.uber.org/nilassert/config"
	"go.uber.org/nilassert/dataflow"
	"go.uber.org/nilassert/syntax"
	"go.uber.org/nilassert/typesys"
)

// Context bundles everything a checker needs to know about the position it checks. Checkers never
// look anywhere else, so a Context fully determines what they record.
type Context struct {
	// Store receives the requirements found by the checkers.
	Store *annotation.Store
	// Oracle answers narrowing queries for the expressions being checked.
	Oracle dataflow.Oracle
	// Types maps expressions to their inferred types.
	Types syntax.TypeTable
	// Settings are the language settings of the compilation unit.
	Settings config.LanguageVersionSettings
	// ScopeKind is the kind of lexical scope enclosing the checked position.
	ScopeKind syntax.ScopeKind
	// ExpectedType is the type expected at the checked position, or nil if there is none.
	ExpectedType typesys.Type
}

// At returns a copy of c positioned in a scope of the given kind, with the given expected type.
func (c *Context) At(scope syntax.ScopeKind, expected typesys.Type) *Context {
	cp := *c
	cp.ScopeKind = scope
	cp.ExpectedType = expected
	return &cp
}

func (c *Context) supports(f config.Feature) bool {
	return c.Settings != nil && c.Settings.SupportsFeature(f)
}

func (c *Context) record(kind annotation.SlotKind, site syntax.SiteID, info *annotation.Info) {
	if info == nil {
		return
	}
	c.Store.Record(kind, site, info)
}
