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

// Package typesys models the semantic types that the nullability assertion checkers reason about.
// It is deliberately small: only the attributes that decide whether a value may carry null at
// runtime are represented, together with enough structure (supertypes, flexible bounds) to walk
// type hierarchies.
package typesys

import (
	"strings"
)

// Type is a resolved semantic type. Implementations must be immutable once constructed, since
// the same Type value is shared by every checker that runs over an expression.
type Type interface {
	// String returns a human-readable rendering of the type, e.g., `String?` or `T!`.
	String() string
	// IsError returns true if the type could not be resolved. Checkers never reason about
	// erroneous types.
	IsError() bool
	// IsMarkedNullable returns true if the type carries an explicit nullable marker (`T?`).
	IsMarkedNullable() bool
	// HasEnhancedNullability returns true if the type originates from a platform boundary but was
	// resolved to a definite nullability through external annotations.
	HasEnhancedNullability() bool
	// IsNullableUnderlyingType returns true if the type is a value class whose underlying type is
	// nullable.
	IsNullableUnderlyingType() bool
	// IsTypeParameter returns true if the type is a reference to a type parameter.
	IsTypeParameter() bool
	// IsClassType returns true if the type is a reference to a concrete class.
	IsClassType() bool
	// ImmediateSupertypes returns the direct supertypes (or upper bounds, for type parameters) in
	// declaration order.
	ImmediateSupertypes() []Type
}

// Flexible is a type with independent lower and upper bounds, e.g., `T..T?` for a value that
// crossed a boundary where no nullability information is available.
type Flexible interface {
	Type
	LowerBound() Type
	UpperBound() Type
}

// Class is a reference to a concrete class, possibly with type arguments.
type Class struct {
	Name string
	Args []Type
	// Supertypes are the direct supertypes of the class.
	Supertypes []Type

	Nullable           bool
	Enhanced           bool
	NullableUnderlying bool
}

func (c *Class) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	if len(c.Args) > 0 {
		b.WriteByte('<')
		for i, a := range c.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	writeMarkers(&b, c.Nullable, c.Enhanced)
	return b.String()
}

func (*Class) IsError() bool                    { return false }
func (c *Class) IsMarkedNullable() bool         { return c.Nullable }
func (c *Class) HasEnhancedNullability() bool   { return c.Enhanced }
func (c *Class) IsNullableUnderlyingType() bool { return c.NullableUnderlying }
func (*Class) IsTypeParameter() bool            { return false }
func (*Class) IsClassType() bool                { return true }
func (c *Class) ImmediateSupertypes() []Type    { return c.Supertypes }

// Param is a reference to a type parameter. Owner identifies the declaration that introduces
// the parameter, which lets IR translation resolve the reference within a declaration scope.
type Param struct {
	Name  string
	Owner string
	// Bounds are the declared upper bounds. A parameter without bounds has no supertypes at all.
	Bounds []Type

	Nullable bool
	Enhanced bool
}

func (p *Param) String() string {
	var b strings.Builder
	b.WriteString(p.Name)
	writeMarkers(&b, p.Nullable, p.Enhanced)
	return b.String()
}

func (*Param) IsError() bool                  { return false }
func (p *Param) IsMarkedNullable() bool       { return p.Nullable }
func (p *Param) HasEnhancedNullability() bool { return p.Enhanced }
func (*Param) IsNullableUnderlyingType() bool { return false }
func (*Param) IsTypeParameter() bool          { return true }
func (*Param) IsClassType() bool              { return false }
func (p *Param) ImmediateSupertypes() []Type  { return p.Bounds }

// FlexibleType is the default Flexible implementation. Structural queries are answered by the
// lower bound, while nullability-sensitive callers are expected to consult UpperBound.
type FlexibleType struct {
	Lower Type
	Upper Type
}

// NewFlexible returns the platform type `t!`, i.e., the flexible type `t..t?`.
func NewFlexible(t Type) *FlexibleType {
	return &FlexibleType{Lower: MakeNotNull(t), Upper: MakeNullable(t)}
}

func (f *FlexibleType) LowerBound() Type { return f.Lower }
func (f *FlexibleType) UpperBound() Type { return f.Upper }

func (f *FlexibleType) String() string {
	if f.Upper.String() == MakeNullable(f.Lower).String() {
		return f.Lower.String() + "!"
	}
	return "(" + f.Lower.String() + ".." + f.Upper.String() + ")"
}

func (f *FlexibleType) IsError() bool                  { return f.Lower.IsError() || f.Upper.IsError() }
func (f *FlexibleType) IsMarkedNullable() bool         { return f.Lower.IsMarkedNullable() }
func (f *FlexibleType) HasEnhancedNullability() bool   { return f.Lower.HasEnhancedNullability() }
func (f *FlexibleType) IsNullableUnderlyingType() bool { return f.Lower.IsNullableUnderlyingType() }
func (f *FlexibleType) IsTypeParameter() bool          { return f.Lower.IsTypeParameter() }

// IsClassType is always false for flexible types: only simple types reference a class directly.
func (*FlexibleType) IsClassType() bool            { return false }
func (f *FlexibleType) ImmediateSupertypes() []Type { return f.Lower.ImmediateSupertypes() }

// Error is a type that failed to resolve.
type Error struct {
	Reason string
}

func (e Error) String() string {
	if e.Reason == "" {
		return "<error>"
	}
	return "<error: " + e.Reason + ">"
}

func (Error) IsError() bool                  { return true }
func (Error) IsMarkedNullable() bool         { return false }
func (Error) HasEnhancedNullability() bool   { return false }
func (Error) IsNullableUnderlyingType() bool { return false }
func (Error) IsTypeParameter() bool          { return false }
func (Error) IsClassType() bool              { return false }
func (Error) ImmediateSupertypes() []Type    { return nil }

func writeMarkers(b *strings.Builder, nullable, enhanced bool) {
	if nullable {
		b.WriteByte('?')
	}
	if enhanced {
		b.WriteByte('$')
	}
}
