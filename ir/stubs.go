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
	"fmt"

	"go.uber.org/nilassert/descriptor"
)

// StubGenerator generates IR stubs for declarations described by descriptors.
type StubGenerator interface {
	// GenerateReceiverParameterStub generates the stub of a dispatch or extension receiver
	// parameter, translating its type within scope.
	GenerateReceiverParameterStub(scope *Scope, name string, r *descriptor.Receiver) (*ValueParameter, error)
	// GenerateValueParameterStub generates the stub of the index-th value parameter.
	GenerateValueParameterStub(scope *Scope, index int, p *descriptor.ValueParameter) (*ValueParameter, error)
	// GenerateFunctionStub returns the (lazy) IR node of a function, shared with every other
	// request for the same declaration.
	GenerateFunctionStub(d *descriptor.Function) (*Function, error)
}

// DeclarationStubGenerator is the default StubGenerator: parameter stubs are translated with a
// TypeTranslator, and function stubs are materialized through a Materializer so that they share
// its cache.
type DeclarationStubGenerator struct {
	types     TypeTranslator
	functions *Materializer
}

var _ StubGenerator = (*DeclarationStubGenerator)(nil)

// GenerateReceiverParameterStub implements StubGenerator.
func (g *DeclarationStubGenerator) GenerateReceiverParameterStub(scope *Scope, name string, r *descriptor.Receiver) (*ValueParameter, error) {
	t, err := g.types.TranslateType(scope, r.Type)
	if err != nil {
		return nil, fmt.Errorf("translate %s type: %w", name, err)
	}
	return &ValueParameter{Name: name, Index: receiverIndex, Type: t}, nil
}

// GenerateValueParameterStub implements StubGenerator.
func (g *DeclarationStubGenerator) GenerateValueParameterStub(scope *Scope, index int, p *descriptor.ValueParameter) (*ValueParameter, error) {
	t, err := g.types.TranslateType(scope, p.Type)
	if err != nil {
		return nil, fmt.Errorf("translate type of parameter %q: %w", p.Name, err)
	}
	return &ValueParameter{
		Name:       p.Name,
		Index:      index,
		Type:       t,
		HasDefault: p.HasDefault,
		IsVararg:   p.IsVararg,
	}, nil
}

// GenerateFunctionStub implements StubGenerator.
func (g *DeclarationStubGenerator) GenerateFunctionStub(d *descriptor.Function) (*Function, error) {
	return g.functions.Materialize(d)
}
