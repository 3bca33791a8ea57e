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

import "go.uber.org/nilassert/syntax"

// Checkers is the set of checkers run over a compilation unit.
type Checkers struct {
	Expression ExpressionChecker
	Calls      []CallChecker
	Body       BodyChecker
}

// DefaultCheckers returns every checker of this package.
func DefaultCheckers() *Checkers {
	return &Checkers{
		Calls: []CallChecker{ExtensionReceiverChecker{}, GenericReturnChecker{}},
	}
}

// CheckExpression runs the expression checker on e.
func (cs *Checkers) CheckExpression(e *syntax.CheckedExpression, c *Context) {
	cs.Expression.CheckType(e.Expression, e.Type, c.At(e.Scope, e.ExpectedType))
}

// CheckCall runs every call checker on site.
func (cs *Checkers) CheckCall(site *syntax.CallSite, c *Context) {
	c = c.At(site.Scope, nil)
	for _, checker := range cs.Calls {
		checker.Check(site.Call, c)
	}
}

// CheckDeclaration runs the body checker on d.
func (cs *Checkers) CheckDeclaration(d syntax.Declaration, c *Context) {
	cs.Body.Check(d, c)
}
