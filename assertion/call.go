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

// CallChecker checks a resolved call.
type CallChecker interface {
	Check(call *syntax.Call, c *Context)
}

// _specialFunctionNames are the names of the synthetic functions control structures are resolved
// as. Their generic returns are checked by the control structures themselves.
var _specialFunctionNames = map[string]bool{
	"<SPECIAL-FUNCTION-FOR-IF-RESOLVE>":      true,
	"<SPECIAL-FUNCTION-FOR-ELVIS-RESOLVE>":   true,
	"<SPECIAL-FUNCTION-FOR-EXCLEXCL-RESOLVE>": true,
	"<SPECIAL-FUNCTION-FOR-WHEN-RESOLVE>":    true,
	"<SPECIAL-FUNCTION-FOR-TRY-RESOLVE>":     true,
}

// IsSpecialFunctionName reports whether name is the name of a synthetic control-structure
// function.
func IsSpecialFunctionName(name string) bool {
	return _specialFunctionNames[name]
}

// ExtensionReceiverChecker checks the explicit receiver of an extension call against the
// receiver parameter of the callee.
type ExtensionReceiverChecker struct{}

var _ CallChecker = ExtensionReceiverChecker{}

// Check implements CallChecker.
func (ExtensionReceiverChecker) Check(call *syntax.Call, c *Context) {
	// A safe call already checks its receiver.
	if call.SafeCall || call.Resulting == nil {
		return
	}
	param := call.Resulting.ExtensionReceiver
	if param == nil || call.ExtensionReceiver == nil {
		return
	}
	// Implicit receivers are never null.
	receiver, ok := call.ExtensionReceiver.(*syntax.ExpressionReceiver)
	if !ok || receiver.Expression == nil || receiver.ValueType == nil {
		return
	}

	extras := dataflow.NewExtras(c.Oracle, receiver.ValueType, receiver.Expression)
	c.record(annotation.Receiver, receiver.Expression.Site, Create(param.Type, receiver.ValueType, extras))
}

// GenericReturnChecker checks calls to functions declared to return a nullable type parameter
// whose return type was inferred as non-null, e.g. `fun <T> id(t: T): T` called as
// `id<String>(javaValue)`.
//
// The GenerateNullChecksForGenericTypeReturningFunctions feature is not consulted: the check is
// always on.
type GenericReturnChecker struct{}

var _ CallChecker = GenericReturnChecker{}

// Check implements CallChecker.
func (GenericReturnChecker) Check(call *syntax.Call, c *Context) {
	if call.Candidate == nil || call.Resulting == nil || call.Element == nil {
		return
	}
	declared := call.Candidate.OriginalOrSelf().ReturnType
	inferred := call.Resulting.ReturnType
	if declared == nil || inferred == nil {
		return
	}
	if !declared.IsTypeParameter() || !typesys.IsNullable(declared) || typesys.IsNullable(inferred) {
		return
	}
	if IsSpecialFunctionName(call.Candidate.Name) {
		return
	}

	kind := annotation.GenericCall
	if c.ScopeKind == syntax.ScopePropertyDelegateMethod {
		kind = annotation.Delegate
	}
	c.record(kind, call.Element.Site, annotation.NewInfo(call.Element.PresentableText()))
}
