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

// Package syntax models the parts of the syntax tree the nullability assertion checkers need:
// expressions with stable site identities, resolved calls with their receivers, and the
// declaration shapes whose bodies may need assertions.
package syntax

import (
	"cmp"
	"strconv"
	"strings"

	"go.uber.org/nilassert/config"
	"go.uber.org/nilassert/descriptor"
	"go.uber.org/nilassert/typesys"
)

// SiteID is the stable identity of a syntactic site, e.g., `Main.kt:12:5`. Annotations recorded
// by the checkers are keyed by site, so two expressions must never share a SiteID.
type SiteID string

// Compare orders sites by file, then numerically by line and column, so `A.kt:2:1` comes before
// `A.kt:10:1`. A site not of the form `file:line:col` uses its whole text as the file.
func (s SiteID) Compare(other SiteID) int {
	sf, sl, sc := s.position()
	of, ol, oc := other.position()
	if n := cmp.Compare(sf, of); n != 0 {
		return n
	}
	if n := cmp.Compare(sl, ol); n != 0 {
		return n
	}
	if n := cmp.Compare(sc, oc); n != 0 {
		return n
	}
	return cmp.Compare(s, other)
}

func (s SiteID) position() (file string, line, col int) {
	rest, colText, found := cutLast(string(s))
	if !found {
		return string(s), 0, 0
	}
	file, lineText, found := cutLast(rest)
	if !found {
		return string(s), 0, 0
	}
	line, lerr := strconv.Atoi(lineText)
	col, cerr := strconv.Atoi(colText)
	if lerr != nil || cerr != nil {
		return string(s), 0, 0
	}
	return file, line, col
}

func cutLast(s string) (before, after string, found bool) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

// Expression is an expression in the source.
type Expression struct {
	Site SiteID
	Text string
}

// PresentableText returns the expression text shortened for use in runtime assertion messages.
func (e *Expression) PresentableText() string {
	return TrimMiddle(e.Text, config.PresentableTextLimit)
}

// TrimMiddle shortens s to at most limit runes by replacing its middle with a single ellipsis
// rune. The tail keeps limit/2 runes and the head takes what is left.
func TrimMiddle(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit || limit < 2 {
		return s
	}
	suffix := limit / 2
	prefix := limit - suffix - 1
	return string(runes[:prefix]) + "…" + string(runes[len(runes)-suffix:])
}

// ReceiverValue is the actual receiver of a call. The variants are ExpressionReceiver,
// ImplicitReceiver and SyntheticReceiver.
type ReceiverValue interface {
	// Type returns the type of the receiver value at the call site.
	Type() typesys.Type

	isReceiverValue()
}

// ExpressionReceiver is an explicit receiver expression, e.g., `foo` in `foo.bar()`.
type ExpressionReceiver struct {
	Expression *Expression
	ValueType  typesys.Type
}

// ImplicitReceiver is a receiver taken from the enclosing scope, e.g., `this` of a class body.
type ImplicitReceiver struct {
	Owner     descriptor.ID
	ValueType typesys.Type
}

// SyntheticReceiver is a receiver introduced by the compiler, e.g., the receiver of a call to a
// property delegate's `getValue`.
type SyntheticReceiver struct {
	Reason    string
	ValueType typesys.Type
}

func (r *ExpressionReceiver) Type() typesys.Type { return r.ValueType }
func (r *ImplicitReceiver) Type() typesys.Type   { return r.ValueType }
func (r *SyntheticReceiver) Type() typesys.Type  { return r.ValueType }

func (*ExpressionReceiver) isReceiverValue() {}
func (*ImplicitReceiver) isReceiverValue()   {}
func (*SyntheticReceiver) isReceiverValue()  {}

// Call is a resolved call.
type Call struct {
	// Element is the whole call expression.
	Element *Expression
	// SafeCall is set for `?.` calls, which are already guarded against a null receiver.
	SafeCall bool

	// Candidate is the chosen candidate before type-argument substitution.
	Candidate *descriptor.Function
	// Resulting is the candidate after substituting the inferred type arguments.
	Resulting *descriptor.Function

	DispatchReceiver  ReceiverValue
	ExtensionReceiver ReceiverValue
}

// ScopeKind is the kind of lexical scope a call or expression is resolved in.
type ScopeKind uint8

// Lexical scope kinds that matter to the checkers. Everything else is ScopeOther.
const (
	ScopeOther ScopeKind = iota
	ScopeCodeBlock
	ScopeFunctionInner
	ScopePropertyInitializer
	ScopePropertyDelegateMethod
)

var _scopeKindNames = [...]string{
	ScopeOther:                  "other",
	ScopeCodeBlock:              "code_block",
	ScopeFunctionInner:          "function_inner",
	ScopePropertyInitializer:    "property_initializer",
	ScopePropertyDelegateMethod: "property_delegate_method",
}

func (k ScopeKind) String() string {
	if int(k) < len(_scopeKindNames) {
		return _scopeKindNames[k]
	}
	return "unknown"
}

// ParseScopeKind is the inverse of ScopeKind.String. The empty string maps to ScopeOther.
func ParseScopeKind(s string) (ScopeKind, bool) {
	if s == "" {
		return ScopeOther, true
	}
	for k, name := range _scopeKindNames {
		if name == s {
			return ScopeKind(k), true
		}
	}
	return ScopeOther, false
}
