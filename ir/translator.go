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
	"errors"
	"fmt"

	"go.uber.org/nilassert/descriptor"
	"go.uber.org/nilassert/typesys"
)

// ErrUnboundTypeParameter is returned when translating a reference to a type parameter that is
// not declared by any declaration of the translation scope.
var ErrUnboundTypeParameter = errors.New("unbound type parameter")

// Scope is the chain of declarations being built, innermost first. Type-parameter references are
// resolved against it. Scopes are immutable and safe to share between goroutines.
type Scope struct {
	parent *Scope
	owner  descriptor.ID
	params []*typesys.Param
}

// Owner returns the declaration the scope was opened for.
func (s *Scope) Owner() descriptor.ID {
	if s == nil {
		return ""
	}
	return s.owner
}

func (s *Scope) resolve(p *typesys.Param) (Classifier, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.owner != descriptor.ID(p.Owner) {
			continue
		}
		for i, declared := range cur.params {
			if declared.Name == p.Name {
				return Classifier{Kind: TypeParameterClassifier, Name: p.Name, Owner: cur.owner, Index: i}, true
			}
		}
	}
	return Classifier{}, false
}

// TypeTranslator translates semantic types into IR types within the scope of the declaration
// being built.
type TypeTranslator interface {
	// Scope opens the scope of the given function: its own type parameters, nested in those of
	// its container.
	Scope(d *descriptor.Function) *Scope
	// TranslateType translates t, resolving type parameters against scope.
	TranslateType(scope *Scope, t typesys.Type) (Type, error)
}

// BuildWithScope runs build within the scope of d, so that everything it translates attributes
// type-parameter references to d (or its container).
func BuildWithScope[T any](tr TypeTranslator, d *descriptor.Function, build func(*Scope) (T, error)) (T, error) {
	return build(tr.Scope(d))
}

// Translator is the default TypeTranslator. Flexible types are translated from their lower bound
// and flagged as Flexible, so that code generation knows their nullability is unchecked.
type Translator struct{}

var _ TypeTranslator = Translator{}

// Scope implements TypeTranslator.
func (Translator) Scope(d *descriptor.Function) *Scope {
	var scope *Scope
	if d.Container != "" {
		scope = &Scope{owner: d.Container, params: d.ContainerTypeParameters}
	}
	return &Scope{parent: scope, owner: d.ID, params: d.TypeParameters}
}

// TranslateType implements TypeTranslator.
func (tr Translator) TranslateType(scope *Scope, t typesys.Type) (Type, error) {
	switch t := t.(type) {
	case typesys.Error:
		return Type{Classifier: Classifier{Kind: ErrorClassifier, Name: t.String()}}, nil
	case typesys.Flexible:
		lower, err := tr.TranslateType(scope, t.LowerBound())
		if err != nil {
			return Type{}, err
		}
		lower.Flexible = true
		return lower, nil
	case *typesys.Class:
		args := make([]Type, 0, len(t.Args))
		for _, a := range t.Args {
			translated, err := tr.TranslateType(scope, a)
			if err != nil {
				return Type{}, err
			}
			args = append(args, translated)
		}
		return Type{
			Classifier:         Classifier{Kind: ClassClassifier, Name: t.Name},
			Args:               args,
			Nullable:           t.Nullable,
			Enhanced:           t.Enhanced,
			NullableUnderlying: t.NullableUnderlying,
		}, nil
	case *typesys.Param:
		classifier, ok := scope.resolve(t)
		if !ok {
			return Type{}, fmt.Errorf("%w %s (declared by %q) in scope of %q", ErrUnboundTypeParameter, t.Name, t.Owner, scope.Owner())
		}
		return Type{Classifier: classifier, Nullable: t.Nullable, Enhanced: t.Enhanced}, nil
	default:
		return Type{}, fmt.Errorf("unsupported type %T (%s)", t, t)
	}
}
