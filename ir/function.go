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

	"go.uber.org/nilassert/descriptor"
	"go.uber.org/nilassert/lazy"
)

// Function is the IR node of a function compiled elsewhere. Its static attributes are captured
// when the node is created; each structural field is a lazy.Cell computed from the descriptor on
// first access and never changed afterwards. A Function never has a body, and never carries
// metadata: both only exist for declarations compiled in the current module.
type Function struct {
	descriptor *descriptor.Function

	Name       string
	Visibility descriptor.Visibility
	Origin     Origin
	IsInline   bool
	IsExternal bool
	IsExpect   bool

	StartOffset int32
	EndOffset   int32

	dispatchReceiverParameter  *lazy.Cell[*ValueParameter]
	extensionReceiverParameter *lazy.Cell[*ValueParameter]
	valueParameters            *lazy.Cell[[]*ValueParameter]
	returnType                 *lazy.Cell[Type]
	initialSignatureFunction   *lazy.Cell[*Function]
}

// ID returns the identity of the declaration the node describes.
func (f *Function) ID() descriptor.ID {
	return f.descriptor.ID
}

// Descriptor returns the descriptor the node is materialized from.
func (f *Function) Descriptor() *descriptor.Function {
	return f.descriptor
}

// DispatchReceiverParameter returns the dispatch receiver parameter, or nil for functions that are
// not members.
func (f *Function) DispatchReceiverParameter(ctx context.Context) (*ValueParameter, error) {
	return f.dispatchReceiverParameter.Get(ctx)
}

// ExtensionReceiverParameter returns the extension receiver parameter, or nil for functions that
// are not extensions.
func (f *Function) ExtensionReceiverParameter(ctx context.Context) (*ValueParameter, error) {
	return f.extensionReceiverParameter.Get(ctx)
}

// ValueParameters returns the value parameters in declaration order. The returned slice is shared
// and must not be modified.
func (f *Function) ValueParameters(ctx context.Context) ([]*ValueParameter, error) {
	return f.valueParameters.Get(ctx)
}

// ReturnType returns the return type.
func (f *Function) ReturnType(ctx context.Context) (Type, error) {
	return f.returnType.Get(ctx)
}

// InitialSignatureFunction returns the function whose signature this one was derived from, or nil
// if there is none.
func (f *Function) InitialSignatureFunction(ctx context.Context) (*Function, error) {
	return f.initialSignatureFunction.Get(ctx)
}

// Body always returns nil.
func (*Function) Body() *Body {
	return nil
}

// Metadata always returns nil.
func (*Function) Metadata() MetadataSource {
	return nil
}

// SetMetadata panics: metadata of external declarations is never stored.
func (f *Function) SetMetadata(MetadataSource) {
	panic("cannot store metadata of external declaration " + string(f.ID()))
}

// FieldStates reports the state of every lazy field, keyed by field name. It never triggers a
// computation.
func (f *Function) FieldStates() map[string]lazy.State {
	return map[string]lazy.State{
		f.dispatchReceiverParameter.Name():  f.dispatchReceiverParameter.State(),
		f.extensionReceiverParameter.Name(): f.extensionReceiverParameter.State(),
		f.valueParameters.Name():            f.valueParameters.State(),
		f.returnType.Name():                 f.returnType.State(),
		f.initialSignatureFunction.Name():   f.initialSignatureFunction.State(),
	}
}

// String renders the node's static attributes, plus its return type once that has been computed.
func (f *Function) String() string {
	s := "FUN " + f.Origin.String() + " name:" + f.Name + " visibility:" + f.Visibility.String()
	if ret, ok := f.returnType.Peek(); ok {
		s += " returnType:" + ret.String()
	}
	return s
}
