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

package ir

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/nilassert/descriptor"
	"go.uber.org/nilassert/lazy"
	"go.uber.org/nilassert/typesys"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixture builds `class Box<T> { fun <R> T.map(f: R, n: Int = 0): R? }` plus a bridge whose
// initial signature is `map`.
type fixture struct {
	env    *typesys.Env
	boxT   *typesys.Param
	mapR   *typesys.Param
	mapFn  *descriptor.Function
	bridge *descriptor.Function
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	env := typesys.NewEnv()
	boxT, err := env.DeclareParam("Box", "T")
	require.NoError(t, err)
	mapR, err := env.DeclareParam("Box.map", "R")
	require.NoError(t, err)
	box := env.DeclareClass("Box")

	mapFn := &descriptor.Function{
		ID:                      "Box.map",
		Name:                    "map",
		Visibility:              descriptor.Public,
		IsInline:                true,
		StartOffset:             10,
		EndOffset:               42,
		Container:               "Box",
		ContainerTypeParameters: []*typesys.Param{boxT},
		TypeParameters:          []*typesys.Param{mapR},
		DispatchReceiver:        &descriptor.Receiver{Type: box},
		ExtensionReceiver:       &descriptor.Receiver{Type: boxT},
		ValueParameters: []*descriptor.ValueParameter{
			{Name: "f", Type: mapR},
			{Name: "n", Type: env.MustParse("Int"), HasDefault: true},
		},
		ReturnType: env.MustParse("R?"),
	}
	bridge := &descriptor.Function{
		ID:               "Box.map$bridge",
		Name:             "map",
		Visibility:       descriptor.Public,
		StartOffset:      -1,
		EndOffset:        -1,
		ReturnType:       env.MustParse("Any?"),
		InitialSignature: mapFn,
	}
	return &fixture{env: env, boxT: boxT, mapR: mapR, mapFn: mapFn, bridge: bridge}
}

func TestMaterialize_StaticAttributes(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	f, err := NewMaterializer(Translator{}, WithOrigin(ExternalJavaDeclarationStub)).Materialize(fx.mapFn)
	require.NoError(t, err)

	require.Equal(t, "map", f.Name)
	require.Equal(t, descriptor.Public, f.Visibility)
	require.Equal(t, ExternalJavaDeclarationStub, f.Origin)
	require.True(t, f.IsInline)
	require.False(t, f.IsExternal)
	require.EqualValues(t, 10, f.StartOffset)
	require.EqualValues(t, 42, f.EndOffset)
	require.Nil(t, f.Body())
	require.Nil(t, f.Metadata())
	require.Same(t, fx.mapFn, f.Descriptor())
}

func TestMaterialize_FieldsAreLazy(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	f, err := NewMaterializer(Translator{}).Materialize(fx.mapFn)
	require.NoError(t, err)

	for name, state := range f.FieldStates() {
		require.Equal(t, lazy.Unset, state, "field %s computed eagerly", name)
	}

	_, err = f.ReturnType(context.Background())
	require.NoError(t, err)

	want := map[string]lazy.State{
		"dispatchReceiverParameter":  lazy.Unset,
		"extensionReceiverParameter": lazy.Unset,
		"valueParameters":            lazy.Unset,
		"returnType":                 lazy.Set,
		"initialSignatureFunction":   lazy.Unset,
	}
	if diff := cmp.Diff(want, f.FieldStates()); diff != "" {
		t.Errorf("field states mismatch (-want +got):\n%s", diff)
	}
}

func TestMaterialize_Parameters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newFixture(t)
	f, err := NewMaterializer(Translator{}).Materialize(fx.mapFn)
	require.NoError(t, err)

	dispatch, err := f.DispatchReceiverParameter(ctx)
	require.NoError(t, err)
	require.Equal(t, DispatchReceiverName, dispatch.Name)
	require.True(t, dispatch.IsReceiver())
	require.Equal(t, "Box", dispatch.Type.String())
	require.Equal(t, f.ID(), dispatch.Parent)

	extension, err := f.ExtensionReceiverParameter(ctx)
	require.NoError(t, err)
	require.Equal(t, ExtensionReceiverName, extension.Name)
	require.Equal(t, Classifier{Kind: TypeParameterClassifier, Name: "T", Owner: "Box", Index: 0}, extension.Type.Classifier)

	params, err := f.ValueParameters(ctx)
	require.NoError(t, err)
	require.Len(t, params, 2)
	for i, p := range params {
		require.Equal(t, i, p.Index)
		require.Equal(t, f.ID(), p.Parent)
		require.False(t, p.IsReceiver())
	}
	require.Equal(t, "f", params[0].Name)
	require.Equal(t, Classifier{Kind: TypeParameterClassifier, Name: "R", Owner: "Box.map", Index: 0}, params[0].Type.Classifier)
	require.Equal(t, "n", params[1].Name)
	require.True(t, params[1].HasDefault)

	again, err := f.ValueParameters(ctx)
	require.NoError(t, err)
	require.Same(t, params[0], again[0])

	ret, err := f.ReturnType(ctx)
	require.NoError(t, err)
	require.Equal(t, "R?", ret.String())
}

func TestMaterialize_NoReceivers(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	f, err := NewMaterializer(Translator{}).Materialize(fx.bridge)
	require.NoError(t, err)

	dispatch, err := f.DispatchReceiverParameter(context.Background())
	require.NoError(t, err)
	require.Nil(t, dispatch)
	params, err := f.ValueParameters(context.Background())
	require.NoError(t, err)
	require.Empty(t, params)
}

func TestMaterialize_InitialSignature(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newFixture(t)
	m := NewMaterializer(Translator{})

	bridge, err := m.Materialize(fx.bridge)
	require.NoError(t, err)
	initial, err := bridge.InitialSignatureFunction(ctx)
	require.NoError(t, err)
	require.NotNil(t, initial)

	direct, err := m.Materialize(fx.mapFn)
	require.NoError(t, err)
	require.Same(t, direct, initial, "initial signature must go through the shared cache")

	none, err := direct.InitialSignatureFunction(ctx)
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestMaterialize_InitialSignatureIsSelf(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fx.mapFn.InitialSignature = fx.mapFn
	f, err := NewMaterializer(Translator{}).Materialize(fx.mapFn)
	require.NoError(t, err)

	initial, err := f.InitialSignatureFunction(context.Background())
	require.NoError(t, err)
	require.Nil(t, initial)
}

func TestMaterialize_InitialSignatureUsesOriginal(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	substituted := *fx.mapFn
	substituted.ID = "Box.map<String>"
	substituted.Original = fx.mapFn
	fx.bridge.InitialSignature = &substituted

	m := NewMaterializer(Translator{})
	bridge, err := m.Materialize(fx.bridge)
	require.NoError(t, err)
	initial, err := bridge.InitialSignatureFunction(context.Background())
	require.NoError(t, err)
	require.Equal(t, fx.mapFn.ID, initial.ID())
}

func TestMaterialize_MissingReturnType(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fx.mapFn.ReturnType = nil
	f, err := NewMaterializer(Translator{}).Materialize(fx.mapFn)
	require.NoError(t, err)

	_, err = f.ReturnType(context.Background())
	require.ErrorIs(t, err, ErrMissingReturnType)
	require.Equal(t, lazy.Unset, f.FieldStates()["returnType"], "failures must not be cached")
}

func TestMaterialize_UnboundTypeParameter(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	stray, err := fx.env.DeclareParam("Other.fun", "S")
	require.NoError(t, err)
	fx.mapFn.ReturnType = stray

	f, err := NewMaterializer(Translator{}).Materialize(fx.mapFn)
	require.NoError(t, err)
	_, err = f.ReturnType(context.Background())
	require.ErrorIs(t, err, ErrUnboundTypeParameter)
}

func TestMaterialize_FlexibleTypes(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fx.mapFn.ReturnType = fx.env.MustParse("String!")
	f, err := NewMaterializer(Translator{}).Materialize(fx.mapFn)
	require.NoError(t, err)

	ret, err := f.ReturnType(context.Background())
	require.NoError(t, err)
	require.True(t, ret.Flexible)
	require.False(t, ret.Nullable)
	require.Equal(t, "String!", ret.String())
}

func TestFunction_String(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	f, err := NewMaterializer(Translator{}).Materialize(fx.mapFn)
	require.NoError(t, err)

	require.Equal(t, "FUN IR_EXTERNAL_DECLARATION_STUB name:map visibility:public", f.String())
	require.Equal(t, lazy.Unset, f.FieldStates()["returnType"], "String must not compute fields")

	_, err = f.ReturnType(context.Background())
	require.NoError(t, err)
	require.Equal(t, "FUN IR_EXTERNAL_DECLARATION_STUB name:map visibility:public returnType:R?", f.String())
}

func TestMaterialize_NullableUnderlyingType(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fx.env.DeclareClass("Wrapper")
	fx.mapFn.ReturnType = fx.env.MustParse("Wrapper#!")
	f, err := NewMaterializer(Translator{}).Materialize(fx.mapFn)
	require.NoError(t, err)

	ret, err := f.ReturnType(context.Background())
	require.NoError(t, err)
	require.True(t, ret.NullableUnderlying)
	require.True(t, ret.Flexible)
	require.Equal(t, "Wrapper#!", ret.String())

	params, err := f.ValueParameters(context.Background())
	require.NoError(t, err)
	require.False(t, params[1].Type.NullableUnderlying)
}

func TestMaterialize_Cancelled(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	f, err := NewMaterializer(Translator{}).Materialize(fx.mapFn)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.ValueParameters(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, lazy.Unset, f.FieldStates()["valueParameters"])

	params, err := f.ValueParameters(context.Background())
	require.NoError(t, err)
	require.Len(t, params, 2)
}

func TestMaterialize_OffsetOverflow(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fx.mapFn.EndOffset = 1 << 40
	m := NewMaterializer(Translator{})
	_, err := m.Materialize(fx.mapFn)
	require.Error(t, err)
	require.Zero(t, m.Cache().Len())
}

func TestMaterialize_NilDescriptor(t *testing.T) {
	t.Parallel()

	_, err := NewMaterializer(Translator{}).Materialize(nil)
	require.Error(t, err)
}

func TestSetMetadata_Panics(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	f, err := NewMaterializer(Translator{}).Materialize(fx.mapFn)
	require.NoError(t, err)
	require.PanicsWithValue(t, "cannot store metadata of external declaration Box.map", func() {
		f.SetMetadata(nil)
	})
}

func TestMaterialize_Concurrent(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	m := NewMaterializer(Translator{})

	const n = 16
	nodes := make([]*Function, n)
	params := make([][]*ValueParameter, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, err := m.Materialize(fx.mapFn)
			if err != nil {
				errs[i] = err
				return
			}
			nodes[i] = f
			params[i], errs[i] = f.ValueParameters(context.Background())
		}(i)
	}
	wg.Wait()

	require.NoError(t, errors.Join(errs...))
	for i := 1; i < n; i++ {
		require.Same(t, nodes[0], nodes[i])
		require.Same(t, params[0][0], params[i][0])
	}
}

type mockStubGenerator struct {
	mock.Mock
	fallback StubGenerator
}

func (g *mockStubGenerator) GenerateReceiverParameterStub(scope *Scope, name string, r *descriptor.Receiver) (*ValueParameter, error) {
	return g.fallback.GenerateReceiverParameterStub(scope, name, r)
}

func (g *mockStubGenerator) GenerateValueParameterStub(scope *Scope, index int, p *descriptor.ValueParameter) (*ValueParameter, error) {
	g.Called(scope.Owner(), index, p.Name)
	return g.fallback.GenerateValueParameterStub(scope, index, p)
}

func (g *mockStubGenerator) GenerateFunctionStub(d *descriptor.Function) (*Function, error) {
	args := g.Called(d.ID)
	f, _ := args.Get(0).(*Function)
	return f, args.Error(1)
}

func TestMaterialize_DelegatesToStubGenerator(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newFixture(t)
	stubs := &mockStubGenerator{}
	m := NewMaterializer(Translator{}, WithStubGenerator(stubs))
	stubs.fallback = &DeclarationStubGenerator{types: Translator{}, functions: m}

	stubs.On("GenerateValueParameterStub", descriptor.ID("Box.map"), 0, "f").Return().Once()
	stubs.On("GenerateValueParameterStub", descriptor.ID("Box.map"), 1, "n").Return().Once()
	stubFailure := errors.New("no stub")
	stubs.On("GenerateFunctionStub", descriptor.ID("Box.map")).Return(nil, stubFailure).Once()

	f, err := m.Materialize(fx.mapFn)
	require.NoError(t, err)
	_, err = f.ValueParameters(ctx)
	require.NoError(t, err)
	_, err = f.ValueParameters(ctx)
	require.NoError(t, err)

	bridge, err := m.Materialize(fx.bridge)
	require.NoError(t, err)
	_, err = bridge.InitialSignatureFunction(ctx)
	require.ErrorIs(t, err, stubFailure)

	stubs.AssertExpectations(t)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newFixture(t)
	m := NewMaterializer(Translator{})

	var snapshots []*FunctionSnapshot
	for _, d := range []*descriptor.Function{fx.mapFn, fx.bridge} {
		f, err := m.Materialize(d)
		require.NoError(t, err)
		s, err := Snapshot(ctx, f)
		require.NoError(t, err)
		snapshots = append(snapshots, s)
	}

	require.Equal(t, "<receiver>", snapshots[0].ExtensionReceiver.Name)
	require.Equal(t, "R?", snapshots[0].ReturnType)
	require.Equal(t, "Box.map", snapshots[1].InitialSignature)
	require.Nil(t, snapshots[1].DispatchReceiver)

	data, err := EncodeSnapshots(snapshots)
	require.NoError(t, err)
	decoded, err := DecodeSnapshots(data)
	require.NoError(t, err)
	if diff := cmp.Diff(snapshots, decoded); diff != "" {
		t.Errorf("snapshot round trip mismatch (-want +got):\n%s", diff)
	}
}
