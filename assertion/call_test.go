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
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/nilassert/annotation"
	"go.uber.org/nilassert/config"
	"go.uber.org/nilassert/dataflow"
	"go.uber.org/nilassert/descriptor"
	"go.uber.org/nilassert/syntax"
	"go.uber.org/nilassert/typesys"
)

func newContext(oracle dataflow.Oracle, features ...config.Feature) *Context {
	return &Context{
		Store:    annotation.NewStore(),
		Oracle:   oracle,
		Types:    syntax.NewTypeMap(),
		Settings: config.NewLanguageSettings(features...),
	}
}

func TestExpressionChecker(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	expr := &syntax.Expression{Site: "A.kt:3:9", Text: "javaObject.getName()"}
	narrowed := &syntax.Expression{Site: "A.kt:4:9", Text: "checked"}
	facts := dataflow.NewFactTable()
	facts.Record(narrowed.Site, dataflow.NotNull)
	c := newContext(facts)

	var checker ExpressionChecker
	// No expected type: nothing to check against.
	checker.CheckType(expr, env.MustParse("String!"), c)
	require.Zero(t, c.Store.Len())

	checker.CheckType(expr, env.MustParse("String!"), c.At(syntax.ScopeCodeBlock, env.MustParse("String")))
	checker.CheckType(narrowed, env.MustParse("String!"), c.At(syntax.ScopeCodeBlock, env.MustParse("String")))

	info, ok := c.Store.Lookup(annotation.Expression, expr.Site)
	require.True(t, ok)
	require.Equal(t, "javaObject.getName()", info.Message)
	_, ok = c.Store.Lookup(annotation.Expression, narrowed.Site)
	require.False(t, ok, "narrowed expression must not be asserted")
	require.Equal(t, 1, c.Store.Len())
}

func TestExtensionReceiverChecker(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	ext := &descriptor.Function{
		ID:                "StringKt.shout",
		Name:              "shout",
		ExtensionReceiver: &descriptor.Receiver{Type: env.MustParse("String")},
		ReturnType:        env.MustParse("String"),
	}
	receiverExpr := &syntax.Expression{Site: "A.kt:5:1", Text: "javaObject.name"}
	explicit := &syntax.ExpressionReceiver{Expression: receiverExpr, ValueType: env.MustParse("String!")}

	tests := []struct {
		name string
		call *syntax.Call
		want bool
	}{
		{
			name: "explicit receiver",
			call: &syntax.Call{Resulting: ext, Candidate: ext, ExtensionReceiver: explicit},
			want: true,
		},
		{
			name: "safe call",
			call: &syntax.Call{Resulting: ext, Candidate: ext, ExtensionReceiver: explicit, SafeCall: true},
		},
		{
			name: "implicit receiver",
			call: &syntax.Call{Resulting: ext, Candidate: ext, ExtensionReceiver: &syntax.ImplicitReceiver{Owner: "A", ValueType: env.MustParse("String!")}},
		},
		{
			name: "synthetic receiver",
			call: &syntax.Call{Resulting: ext, Candidate: ext, ExtensionReceiver: &syntax.SyntheticReceiver{Reason: "delegate", ValueType: env.MustParse("String!")}},
		},
		{
			name: "no receiver value",
			call: &syntax.Call{Resulting: ext, Candidate: ext},
		},
		{
			name: "not an extension",
			call: &syntax.Call{Resulting: &descriptor.Function{ID: "f"}, ExtensionReceiver: explicit},
		},
		{
			name: "nullable receiver parameter",
			call: &syntax.Call{
				Resulting:         &descriptor.Function{ID: "g", ExtensionReceiver: &descriptor.Receiver{Type: env.MustParse("String?")}},
				ExtensionReceiver: explicit,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newContext(dataflow.NewFactTable())
			ExtensionReceiverChecker{}.Check(tt.call, c)
			info, ok := c.Store.Lookup(annotation.Receiver, receiverExpr.Site)
			require.Equal(t, tt.want, ok)
			if tt.want {
				require.Equal(t, "javaObject.name", info.Message)
				require.Equal(t, 1, c.Store.Len())
			} else {
				require.Zero(t, c.Store.Len())
			}
		})
	}
}

func TestGenericReturnChecker(t *testing.T) {
	t.Parallel()

	env := typesys.NewEnv()
	anyQ := env.MustParse("Any?")
	tParam, err := env.DeclareParam("id", "T", anyQ)
	require.NoError(t, err)
	bounded, err := env.DeclareParam("idNotNull", "B", env.MustParse("Any"))
	require.NoError(t, err)

	id := &descriptor.Function{ID: "id", Name: "id", TypeParameters: []*typesys.Param{tParam}, ReturnType: tParam}
	idString := &descriptor.Function{ID: "id<String>", Name: "id", ReturnType: env.MustParse("String"), Original: id}
	idNullable := &descriptor.Function{ID: "id<String?>", Name: "id", ReturnType: env.MustParse("String?"), Original: id}
	idNotNull := &descriptor.Function{ID: "idNotNull", Name: "idNotNull", ReturnType: bounded}
	uParam, err := env.DeclareParam("identity", "U")
	require.NoError(t, err)
	identity := &descriptor.Function{ID: "identity", Name: "identity", TypeParameters: []*typesys.Param{uParam}, ReturnType: uParam}
	identityString := &descriptor.Function{ID: "identity<String>", Name: "identity", ReturnType: env.MustParse("String"), Original: identity}
	special := &descriptor.Function{ID: "if", Name: "<SPECIAL-FUNCTION-FOR-ELVIS-RESOLVE>", ReturnType: tParam}
	element := &syntax.Expression{Site: "A.kt:7:3", Text: "id<String>(javaObject.getName())"}

	tests := []struct {
		name  string
		call  *syntax.Call
		scope syntax.ScopeKind
		want  annotation.SlotKind
		fires bool
	}{
		{
			name:  "substituted non-null",
			call:  &syntax.Call{Element: element, Candidate: idString, Resulting: idString},
			want:  annotation.GenericCall,
			fires: true,
		},
		{
			name:  "inside property delegate method",
			call:  &syntax.Call{Element: element, Candidate: idString, Resulting: idString},
			scope: syntax.ScopePropertyDelegateMethod,
			want:  annotation.Delegate,
			fires: true,
		},
		{
			name:  "unbounded type parameter",
			call:  &syntax.Call{Element: element, Candidate: identityString, Resulting: identityString},
			want:  annotation.GenericCall,
			fires: true,
		},
		{
			name: "substituted nullable",
			call: &syntax.Call{Element: element, Candidate: idNullable, Resulting: idNullable},
		},
		{
			name: "non-null bound",
			call: &syntax.Call{Element: element, Candidate: idNotNull, Resulting: idNotNull},
		},
		{
			name: "special function",
			call: &syntax.Call{Element: element, Candidate: special, Resulting: idString},
		},
		{
			name: "missing return type",
			call: &syntax.Call{Element: element, Candidate: idString, Resulting: &descriptor.Function{ID: "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// The generic check does not depend on any feature.
			c := newContext(dataflow.NewFactTable()).At(tt.scope, nil)
			GenericReturnChecker{}.Check(tt.call, c)
			if !tt.fires {
				require.Zero(t, c.Store.Len())
				return
			}
			require.Equal(t, 1, c.Store.Len())
			info, ok := c.Store.Lookup(tt.want, element.Site)
			require.True(t, ok)
			require.Equal(t, element.Text, info.Message)
		})
	}
}

func TestIsSpecialFunctionName(t *testing.T) {
	t.Parallel()

	require.True(t, IsSpecialFunctionName("<SPECIAL-FUNCTION-FOR-IF-RESOLVE>"))
	require.True(t, IsSpecialFunctionName("<SPECIAL-FUNCTION-FOR-TRY-RESOLVE>"))
	require.False(t, IsSpecialFunctionName("id"))
}

func TestCheckers_RunsEveryChecker(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	c := newContext(dataflow.NewFactTable(), config.StrictJavaNullabilityAssertions)
	cs := DefaultCheckers()

	expr := &syntax.Expression{Site: "A.kt:1:1", Text: "javaObject.name"}
	cs.CheckExpression(&syntax.CheckedExpression{
		Expression:   expr,
		Type:         env.MustParse("String!"),
		ExpectedType: env.MustParse("String"),
	}, c)

	ext := &descriptor.Function{ID: "shout", ExtensionReceiver: &descriptor.Receiver{Type: env.MustParse("String")}}
	cs.CheckCall(&syntax.CallSite{Call: &syntax.Call{
		Resulting:         ext,
		Candidate:         ext,
		ExtensionReceiver: &syntax.ExpressionReceiver{Expression: expr, ValueType: env.MustParse("String!")},
	}}, c)

	_, ok := c.Store.Lookup(annotation.Expression, expr.Site)
	require.True(t, ok)
	_, ok = c.Store.Lookup(annotation.Receiver, expr.Site)
	require.True(t, ok)
	require.Nil(t, c.ExpectedType, "checkers must not modify the caller's context")
}
