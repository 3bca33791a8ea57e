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

// Package descriptor hosts the fully resolved semantic descriptions of declarations. Descriptors
// are produced by resolution, are read-only afterwards, and are the single source of truth both
// for the declaration-body checker and for lazy IR materialization.
package descriptor

import (
	"go.uber.org/nilassert/typesys"
)

// ID uniquely and stably identifies a declaration across the whole compilation. IR nodes refer
// to their parents through IDs rather than pointers.
type ID string

// Visibility is the declared visibility of a declaration.
type Visibility uint8

// The supported visibilities.
const (
	Public Visibility = iota
	Internal
	Protected
	Private
	Local
)

var _visibilityNames = [...]string{
	Public:    "public",
	Internal:  "internal",
	Protected: "protected",
	Private:   "private",
	Local:     "local",
}

func (v Visibility) String() string {
	if int(v) < len(_visibilityNames) {
		return _visibilityNames[v]
	}
	return "unknown"
}

// ParseVisibility is the inverse of Visibility.String.
func ParseVisibility(s string) (Visibility, bool) {
	for v, name := range _visibilityNames {
		if name == s {
			return Visibility(v), true
		}
	}
	return Public, false
}

// Receiver describes a dispatch (member) or extension receiver of a callable.
type Receiver struct {
	Type typesys.Type
}

// ValueParameter describes a declared value parameter of a function.
type ValueParameter struct {
	Name       string
	Type       typesys.Type
	HasDefault bool
	IsVararg   bool
}

// Function describes a function (or constructor, or accessor) declaration.
type Function struct {
	ID   ID
	Name string

	Visibility Visibility
	IsInline   bool
	IsExternal bool
	IsExpect   bool

	// StartOffset and EndOffset locate the declaration in its source file, or are negative for
	// declarations without source.
	StartOffset int
	EndOffset   int

	// Container identifies the class declaring the function, if any, and ContainerTypeParameters
	// are the type parameters of that class visible in the function's signature.
	Container               ID
	ContainerTypeParameters []*typesys.Param

	TypeParameters    []*typesys.Param
	DispatchReceiver  *Receiver
	ExtensionReceiver *Receiver
	ValueParameters   []*ValueParameter
	// ReturnType is nil until return type inference has completed.
	ReturnType typesys.Type

	// Original points at the unsubstituted declaration this descriptor was derived from, or is nil
	// if this descriptor is itself the original.
	Original *Function
	// InitialSignature points at the declaration whose signature this one was derived from when
	// signatures are rewritten (e.g., bridged overrides). It may point back at the descriptor
	// itself.
	InitialSignature *Function
}

// OriginalOrSelf returns the unsubstituted original of f.
func (f *Function) OriginalOrSelf() *Function {
	for f.Original != nil && f.Original != f {
		f = f.Original
	}
	return f
}

// Variable describes a local variable.
type Variable struct {
	ID   ID
	Name string
	Type typesys.Type
}

// Property describes a member or top-level property.
type Property struct {
	ID   ID
	Name string
	Type typesys.Type
}

// PropertyAccessor describes a getter or a setter of a property.
type PropertyAccessor struct {
	ID       ID
	IsGetter bool
	// CorrespondingProperty is the property the accessor belongs to.
	CorrespondingProperty *Property
}
