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
	"go.uber.org/nilassert/dataflow"
	"go.uber.org/nilassert/syntax"
	"go.uber.org/nilassert/typesys"
)

// ExpressionChecker checks every expression that has an expected type against it.
type ExpressionChecker struct{}

// CheckType records an Expression requirement for expr, of type exprType, when c carries an
// expected type that exprType may violate.
func (ExpressionChecker) CheckType(expr *syntax.Expression, exprType typesys.Type, c *Context) {
	if c.ExpectedType == nil || exprType == nil {
		return
	}
	info := Create(c.ExpectedType, exprType, dataflow.NewExtras(c.Oracle, exprType, expr))
	c.record(annotation.Expression, expr.Site, info)
}
