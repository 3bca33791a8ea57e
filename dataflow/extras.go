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

// Package dataflow is the interface between the nullability assertion checkers and flow-sensitive
// narrowing. The checkers never run data-flow analysis themselves: they ask an Oracle, lazily and
// at most once per checked expression, whether a value can still be null at its program point.
package dataflow

import (
	"sync"

	"go.uber.org/nilassert/syntax"
	"go.uber.org/nilassert/typesys"
)

// Extras carries the flow-sensitive facts about a checked expression.
type Extras interface {
	// CanBeNull returns false if narrowing (e.g., a smart cast after a null check) proved the
	// value non-null at this program point.
	CanBeNull() bool
	// PresentableText describes the expression in assertion messages.
	PresentableText() string
}

// OnlyMessage is an Extras without flow information: the value is always assumed to possibly be
// null, and the message is used verbatim.
type OnlyMessage string

// CanBeNull always returns true for OnlyMessage.
func (OnlyMessage) CanBeNull() bool { return true }

// PresentableText returns the message.
func (m OnlyMessage) PresentableText() string { return string(m) }

// lazyExtras queries the oracle on the first call to CanBeNull only. The query can be expensive
// and several checkers may ask about the same expression from different goroutines, so the
// result is memoized with an at-most-once guarantee: concurrent first callers block until the
// single query completes and then all observe its result.
type lazyExtras struct {
	expr      *syntax.Expression
	canBeNull func() bool
}

// NewExtras returns the Extras for expr, whose statically inferred type is exprType. The oracle is
// not consulted until CanBeNull is called.
func NewExtras(oracle Oracle, exprType typesys.Type, expr *syntax.Expression) Extras {
	return &lazyExtras{
		expr: expr,
		canBeNull: sync.OnceValue(func() bool {
			return oracle.StableNullability(expr, exprType).CanBeNull()
		}),
	}
}

func (e *lazyExtras) CanBeNull() bool         { return e.canBeNull() }
func (e *lazyExtras) PresentableText() string { return e.expr.PresentableText() }
