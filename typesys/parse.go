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

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnknownType is returned when a type expression references a name that was never declared in
// the Env.
var ErrUnknownType = errors.New("unknown type")

// Env is the set of named classes and type parameters type expressions can refer to. It is not
// safe for concurrent declaration, but Parse only reads and may be called concurrently once all
// declarations are done.
type Env struct {
	classes map[string]*Class
	params  map[string]*Param
}

// _builtinClasses are declared in every Env, all directly extending `Any`.
var _builtinClasses = [...]string{"String", "Int", "Long", "Boolean", "Unit", "Nothing"}

// NewEnv returns an Env pre-populated with `Any` and a handful of builtin classes.
func NewEnv() *Env {
	e := &Env{classes: make(map[string]*Class), params: make(map[string]*Param)}
	anyClass := &Class{Name: "Any"}
	e.classes[anyClass.Name] = anyClass
	for _, name := range _builtinClasses {
		e.classes[name] = &Class{Name: name, Supertypes: []Type{anyClass}}
	}
	return e
}

// DeclareClass declares (or redeclares) a class. A class declared without supertypes implicitly
// extends `Any`.
func (e *Env) DeclareClass(name string, supertypes ...Type) *Class {
	if len(supertypes) == 0 && name != "Any" {
		supertypes = []Type{e.classes["Any"]}
	}
	c := &Class{Name: name, Supertypes: supertypes}
	e.classes[name] = c
	return c
}

// DeclareParam declares a type parameter owned by the declaration identified by owner. Unlike
// classes, a parameter declared without bounds has no supertypes at all; IsNullable treats it as
// bounded by `Any?`.
func (e *Env) DeclareParam(owner, name string, bounds ...Type) (*Param, error) {
	if _, ok := e.classes[name]; ok {
		return nil, fmt.Errorf("type parameter %q shadows a class of the same name", name)
	}
	if p, ok := e.params[name]; ok && p.Owner != owner {
		return nil, fmt.Errorf("type parameter %q already declared by %q", name, p.Owner)
	}
	p := &Param{Name: name, Owner: owner, Bounds: bounds}
	e.params[name] = p
	return p, nil
}

// Param returns the declared type parameter with the given name.
func (e *Env) Param(name string) (*Param, bool) {
	p, ok := e.params[name]
	return p, ok
}

// Parse parses a type expression. The grammar is
//
//	type   := "<error>" | name [ "<" type { "," type } ">" ] { suffix }
//	suffix := "?" (nullable) | "!" (flexible) | "$" (enhanced nullability) | "#" (nullable underlying type)
//
// The flexible suffix applies to everything before it, so `String$!` is the flexible type
// `String$..String?$`.
func (e *Env) Parse(expr string) (Type, error) {
	p := &typeParser{env: e, src: []rune(expr)}
	t, err := p.parseType()
	if err != nil {
		return nil, fmt.Errorf("parse type %q: %w", expr, err)
	}
	p.skipSpace()
	if !p.eof() {
		return nil, fmt.Errorf("parse type %q: unexpected %q at offset %d", expr, string(p.peek()), p.pos)
	}
	return t, nil
}

// MustParse is like Parse but panics on error. It is intended for tests and static tables.
func (e *Env) MustParse(expr string) Type {
	t, err := e.Parse(expr)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	env *Env
	src []rune
	pos int
}

func (p *typeParser) eof() bool  { return p.pos >= len(p.src) }
func (p *typeParser) peek() rune { return p.src[p.pos] }

func (p *typeParser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.pos++
	}
}

func (p *typeParser) parseType() (Type, error) {
	p.skipSpace()
	if strings.HasPrefix(string(p.src[p.pos:]), "<error>") {
		p.pos += len("<error>")
		return Error{}, nil
	}

	start := p.pos
	for !p.eof() && (unicode.IsLetter(p.peek()) || unicode.IsDigit(p.peek()) || p.peek() == '_' || p.peek() == '.') {
		p.pos++
	}
	name := string(p.src[start:p.pos])
	if name == "" {
		return nil, errors.New("expected a type name")
	}

	var args []Type
	p.skipSpace()
	if !p.eof() && p.peek() == '<' {
		p.pos++
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			p.skipSpace()
			if p.eof() {
				return nil, errors.New("unterminated type argument list")
			}
			if p.peek() == ',' {
				p.pos++
				continue
			}
			if p.peek() == '>' {
				p.pos++
				break
			}
			return nil, fmt.Errorf("unexpected %q in type argument list", string(p.peek()))
		}
	}

	t, err := p.lookup(name, args)
	if err != nil {
		return nil, err
	}
	return p.parseSuffixes(t)
}

func (p *typeParser) lookup(name string, args []Type) (Type, error) {
	if c, ok := p.env.classes[name]; ok {
		cp := *c
		cp.Args = args
		return &cp, nil
	}
	if param, ok := p.env.params[name]; ok {
		if len(args) > 0 {
			return nil, fmt.Errorf("type parameter %q cannot take type arguments", name)
		}
		cp := *param
		return &cp, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownType, name)
}

func (p *typeParser) parseSuffixes(t Type) (Type, error) {
	for !p.eof() {
		switch p.peek() {
		case '?':
			t = MakeNullable(t)
		case '$':
			t = WithEnhancedNullability(t)
		case '#':
			c, ok := t.(*Class)
			if !ok {
				return nil, fmt.Errorf("nullable underlying marker only applies to classes, got %s", t)
			}
			cp := *c
			cp.NullableUnderlying = true
			t = &cp
		case '!':
			if _, ok := t.(Flexible); ok {
				return nil, fmt.Errorf("type %s is already flexible", t)
			}
			t = NewFlexible(t)
		default:
			return t, nil
		}
		p.pos++
	}
	return t, nil
}
