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
	"fmt"

	"fortio.org/safecast"
	"go.uber.org/nilassert/descriptor"
	"go.uber.org/nilassert/lazy"
)

// ErrMissingReturnType is returned when the return type of a function is requested before its
// descriptor has one.
var ErrMissingReturnType = errors.New("descriptor has no return type")

// Materializer builds lazy IR function nodes from descriptors. All nodes it builds are shared
// through its Cache.
type Materializer struct {
	types  TypeTranslator
	stubs  StubGenerator
	cache  *Cache
	origin Origin
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithStubGenerator replaces the default DeclarationStubGenerator.
func WithStubGenerator(g StubGenerator) Option {
	return func(m *Materializer) { m.stubs = g }
}

// WithCache makes the Materializer share an existing Cache.
func WithCache(c *Cache) Option {
	return func(m *Materializer) { m.cache = c }
}

// WithOrigin sets the origin of the nodes built by the Materializer. The default is
// ExternalDeclarationStub.
func WithOrigin(o Origin) Option {
	return func(m *Materializer) { m.origin = o }
}

// NewMaterializer returns a Materializer translating types with types.
func NewMaterializer(types TypeTranslator, opts ...Option) *Materializer {
	m := &Materializer{types: types, origin: ExternalDeclarationStub}
	for _, opt := range opts {
		opt(m)
	}
	if m.cache == nil {
		m.cache = NewCache()
	}
	if m.stubs == nil {
		m.stubs = &DeclarationStubGenerator{types: types, functions: m}
	}
	return m
}

// Cache returns the cache of materialized nodes.
func (m *Materializer) Cache() *Cache {
	return m.cache
}

// Materialize returns the IR node of d, creating it on the first request. Creating the node
// captures its static attributes; structural fields are computed when first read.
func (m *Materializer) Materialize(d *descriptor.Function) (*Function, error) {
	if d == nil {
		return nil, errors.New("materialize: nil descriptor")
	}
	return m.cache.GetOrCreate(d.ID, func() (*Function, error) {
		return m.newFunction(d)
	})
}

func (m *Materializer) newFunction(d *descriptor.Function) (*Function, error) {
	start, err := safecast.Conv[int32](d.StartOffset)
	if err != nil {
		return nil, fmt.Errorf("start offset of %q: %w", d.ID, err)
	}
	end, err := safecast.Conv[int32](d.EndOffset)
	if err != nil {
		return nil, fmt.Errorf("end offset of %q: %w", d.ID, err)
	}

	f := &Function{
		descriptor:  d,
		Name:        d.Name,
		Visibility:  d.Visibility,
		Origin:      m.origin,
		IsInline:    d.IsInline,
		IsExternal:  d.IsExternal,
		IsExpect:    d.IsExpect,
		StartOffset: start,
		EndOffset:   end,
	}

	f.dispatchReceiverParameter = lazy.New("dispatchReceiverParameter", func(ctx context.Context) (*ValueParameter, error) {
		return m.receiverParameter(ctx, f, DispatchReceiverName, d.DispatchReceiver)
	})
	f.extensionReceiverParameter = lazy.New("extensionReceiverParameter", func(ctx context.Context) (*ValueParameter, error) {
		return m.receiverParameter(ctx, f, ExtensionReceiverName, d.ExtensionReceiver)
	})
	f.valueParameters = lazy.New("valueParameters", func(ctx context.Context) ([]*ValueParameter, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return BuildWithScope(m.types, d, func(scope *Scope) ([]*ValueParameter, error) {
			params := make([]*ValueParameter, 0, len(d.ValueParameters))
			for i, p := range d.ValueParameters {
				stub, err := m.stubs.GenerateValueParameterStub(scope, i, p)
				if err != nil {
					return nil, err
				}
				stub.Parent = f.ID()
				params = append(params, stub)
			}
			return params, nil
		})
	})
	f.returnType = lazy.New("returnType", func(ctx context.Context) (Type, error) {
		if err := ctx.Err(); err != nil {
			return Type{}, err
		}
		if d.ReturnType == nil {
			return Type{}, fmt.Errorf("%w: %q", ErrMissingReturnType, d.ID)
		}
		return BuildWithScope(m.types, d, func(scope *Scope) (Type, error) {
			return m.types.TranslateType(scope, d.ReturnType)
		})
	})
	f.initialSignatureFunction = lazy.New("initialSignatureFunction", func(ctx context.Context) (*Function, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		initial := d.InitialSignature
		if initial == nil || initial == d || initial.ID == d.ID {
			return nil, nil
		}
		return m.stubs.GenerateFunctionStub(initial.OriginalOrSelf())
	})
	return f, nil
}

func (m *Materializer) receiverParameter(ctx context.Context, f *Function, name string, r *descriptor.Receiver) (*ValueParameter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	return BuildWithScope(m.types, f.descriptor, func(scope *Scope) (*ValueParameter, error) {
		stub, err := m.stubs.GenerateReceiverParameterStub(scope, name, r)
		if err != nil {
			return nil, err
		}
		stub.Parent = f.ID()
		return stub, nil
	})
}
