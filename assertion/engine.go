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

// Package assertion decides where generated code must check at runtime that a value declared
// non-null by an external nullability annotation really is non-null. The decision engine (Create)
// is pure; the checkers apply it to expressions, calls, and declaration bodies and record the
// requirements they find in an annotation.Store that code generation later reads.
package assertion

import (
	"go.uber.org/nilassert/annotation"
	"go.uber.org/nilassert/dataflow"
	"go.uber.org/nilassert/typesys"
)

// Create decides whether a value of type expression, flowing into a location of type expected,
// needs a not-null assertion. It returns nil when no assertion is needed. extras.CanBeNull is only
// read when the static types alone cannot decide, so the data-flow oracle behind it is consulted
// only when necessary.
func Create(expected, expression typesys.Type, extras dataflow.Extras) *annotation.Info {
	if expected.IsError() || expression.IsError() {
		return nil
	}
	if typesys.IsNullable(expected) || expected.HasEnhancedNullability() || expected.IsNullableUnderlyingType() {
		return nil
	}

	nullable := typesys.IsNullable(expression)
	if !nullable && !expression.HasEnhancedNullability() {
		return nil
	}
	// Narrowing wins over the static type.
	if nullable && !extras.CanBeNull() {
		return nil
	}
	return annotation.NewInfo(extras.PresentableText())
}
