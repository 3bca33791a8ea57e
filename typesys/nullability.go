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

package typesys

// IsNullable returns true if a value of type t may be null as far as the static type is
// concerned: t is marked nullable, t is flexible with a nullable upper bound, or t is a type
// parameter with at least one nullable upper bound. A type parameter declared without bounds is
// implicitly bounded by `Any?` and so is nullable.
func IsNullable(t Type) bool {
	return isNullable(t, make(map[*Param]bool))
}

func isNullable(t Type, visiting map[*Param]bool) bool {
	if t.IsMarkedNullable() {
		return true
	}
	if f, ok := t.(Flexible); ok && isNullable(f.UpperBound(), visiting) {
		return true
	}
	if !t.IsTypeParameter() {
		return false
	}

	// Guard against (malformed) cyclic bounds such as `T : U, U : T`.
	if p, ok := LowerIfFlexible(t).(*Param); ok {
		if visiting[p] {
			return false
		}
		visiting[p] = true
		defer delete(visiting, p)
	}
	bounds := t.ImmediateSupertypes()
	if len(bounds) == 0 {
		return true
	}
	for _, s := range bounds {
		if isNullable(s, visiting) {
			return true
		}
	}
	return false
}

// UpperIfFlexible returns the upper bound of t if it is flexible, and t itself otherwise.
func UpperIfFlexible(t Type) Type {
	if f, ok := t.(Flexible); ok {
		return f.UpperBound()
	}
	return t
}

// LowerIfFlexible returns the lower bound of t if it is flexible, and t itself otherwise.
func LowerIfFlexible(t Type) Type {
	if f, ok := t.(Flexible); ok {
		return f.LowerBound()
	}
	return t
}

// MakeNullable returns a copy of t marked nullable. Error types are returned unchanged.
func MakeNullable(t Type) Type {
	return withNullability(t, true)
}

// MakeNotNull returns a copy of t with the nullable marker removed. Error types are returned
// unchanged.
func MakeNotNull(t Type) Type {
	return withNullability(t, false)
}

func withNullability(t Type, nullable bool) Type {
	switch t := t.(type) {
	case *Class:
		c := *t
		c.Nullable = nullable
		return &c
	case *Param:
		p := *t
		p.Nullable = nullable
		return &p
	case *FlexibleType:
		return &FlexibleType{Lower: withNullability(t.Lower, nullable), Upper: withNullability(t.Upper, nullable)}
	default:
		return t
	}
}

// WithEnhancedNullability returns a copy of t flagged as having enhanced nullability. For
// flexible types the flag is applied to both bounds.
func WithEnhancedNullability(t Type) Type {
	switch t := t.(type) {
	case *Class:
		c := *t
		c.Enhanced = true
		return &c
	case *Param:
		p := *t
		p.Enhanced = true
		return &p
	case *FlexibleType:
		return &FlexibleType{Lower: WithEnhancedNullability(t.Lower), Upper: WithEnhancedNullability(t.Upper)}
	default:
		return t
	}
}
