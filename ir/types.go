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

// Package ir implements the part of the intermediate representation that describes declarations
// compiled elsewhere. Such declarations are materialized lazily from their descriptors: creating a
// node only captures its static attributes, and every structural field (receivers, parameters,
// return type, initial signature) is built on first access.
package ir

import (
	"strings"

	"go.uber.org/nilassert/descriptor"
)

// ClassifierKind is what an IR type refers to.
type ClassifierKind uint8

// The kinds of classifiers.
const (
	ClassClassifier ClassifierKind = iota
	TypeParameterClassifier
	ErrorClassifier
)

// Classifier is the declaration an IR type refers to. Type parameters are identified by their
// owning declaration and position rather than by pointers, which keeps IR types free of
// references back into the declaration graph.
type Classifier struct {
	Kind ClassifierKind
	Name string
	// Owner and Index locate a type parameter within its owning declaration.
	Owner descriptor.ID
	Index int
}

// Type is an IR type.
type Type struct {
	Classifier Classifier
	Args       []Type
	Nullable   bool
	// Flexible marks types translated from flexible (platform) types, whose nullability is not
	// known statically.
	Flexible bool
	// Enhanced marks types with enhanced nullability.
	Enhanced bool
	// NullableUnderlying marks value classes whose underlying type is nullable.
	NullableUnderlying bool
}

// IsError returns true for types that failed to resolve.
func (t Type) IsError() bool {
	return t.Classifier.Kind == ErrorClassifier
}

func (t Type) String() string {
	var b strings.Builder
	if t.IsError() {
		b.WriteString("<error>")
		return b.String()
	}
	b.WriteString(t.Classifier.Name)
	if len(t.Args) > 0 {
		b.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	if t.Nullable {
		b.WriteByte('?')
	}
	if t.Enhanced {
		b.WriteByte('$')
	}
	if t.NullableUnderlying {
		b.WriteByte('#')
	}
	if t.Flexible {
		b.WriteByte('!')
	}
	return b.String()
}
