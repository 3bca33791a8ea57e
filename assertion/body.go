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
	"fmt"

	"go.uber.org/nilassert/annotation"
	"go.uber.org/nilassert/config"
	"go.uber.org/nilassert/syntax"
	"go.uber.org/nilassert/typesys"
)

// BodyChecker checks declarations whose type is inferred from their body (`val x = javaCall()`,
// `fun f() = javaCall()`): the inferred declared type is non-null because of enhanced nullability,
// so the body value must be asserted. It only runs under the StrictJavaNullabilityAssertions
// feature.
type BodyChecker struct{}

// Check records a Body requirement for the body expression of decl, if it needs one.
func (BodyChecker) Check(decl syntax.Declaration, c *Context) {
	if !c.supports(config.StrictJavaNullabilityAssertions) {
		return
	}

	switch d := decl.(type) {
	case *syntax.LocalVariable:
		if d.HasTypeReference || d.Initializer == nil || d.Descriptor == nil {
			return
		}
		checkNullabilityAssertion(d.Initializer, d.Descriptor.Type, c)
	case *syntax.Property:
		// TODO: delegate initializers get no assertion; insert one on the delegate's getValue call.
		if d.HasTypeReference || d.Delegate != nil {
			return
		}
		if d.Initializer == nil || d.Descriptor == nil {
			return
		}
		checkNullabilityAssertion(d.Initializer, d.Descriptor.Type, c)
	case *syntax.Function:
		if d.HasTypeReference || d.HasBlockBody || d.BodyExpression == nil {
			return
		}
		if d.Descriptor == nil || d.Descriptor.ReturnType == nil {
			return
		}
		checkNullabilityAssertion(d.BodyExpression, d.Descriptor.ReturnType, c)
	case *syntax.PropertyAccessor:
		if d.Property == nil || d.Property.HasTypeReference || d.HasBlockBody || d.BodyExpression == nil {
			return
		}
		if d.Descriptor == nil || d.Descriptor.CorrespondingProperty == nil {
			return
		}
		checkNullabilityAssertion(d.BodyExpression, d.Descriptor.CorrespondingProperty.Type, c)
	default:
		panic(fmt.Sprintf("unknown declaration variant %T", decl))
	}
}

func checkNullabilityAssertion(expr *syntax.Expression, declared typesys.Type, c *Context) {
	if declared == nil || CanContainNull(declared) {
		return
	}
	if c.Types == nil {
		return
	}
	exprType, ok := c.Types.TypeOf(expr)
	if !ok || exprType.IsError() || !exprType.HasEnhancedNullability() {
		return
	}
	c.record(annotation.Body, expr.Site, annotation.NewInfo(expr.PresentableText()))
}

// CanContainNull reports whether a value of type t may be null: t (or its upper bound, if t is
// flexible) is marked nullable, or it is a type parameter all of whose bounds can contain null.
// A type parameter without bounds can contain null.
func CanContainNull(t typesys.Type) bool {
	return canContainNull(t, make(map[typesys.Type]bool))
}

func canContainNull(t typesys.Type, visiting map[typesys.Type]bool) bool {
	upper := typesys.UpperIfFlexible(t)
	if upper.IsMarkedNullable() {
		return true
	}
	if upper.IsClassType() {
		return false
	}
	// Malformed bound cycles do not constrain the parameter.
	if visiting[upper] {
		return true
	}
	visiting[upper] = true
	defer delete(visiting, upper)

	for _, super := range upper.ImmediateSupertypes() {
		if !canContainNull(super, visiting) {
			return false
		}
	}
	return true
}
