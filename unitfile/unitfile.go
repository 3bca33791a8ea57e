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

// Package unitfile loads compilation units described in YAML. A unit file stands in for the
// parser, the type-inference engine, and the data-flow analysis: it lists the types, descriptors,
// typed expressions, resolved calls, declarations, and narrowing facts the checkers and the IR
// materializer consume.
//
// A minimal unit file looks like:
//
//	name: Sample.kt
//	features: [StrictJavaNullabilityAssertions]
//	expressions:
//	  - {site: "Sample.kt:2:9", text: "javaObject.getName()", type: "String$"}
//	declarations:
//	  - {kind: local_variable, site: "Sample.kt:2:5", name: x, type: String, initializer: "Sample.kt:2:9"}
package unitfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/nilassert/config"
	"go.uber.org/nilassert/dataflow"
	"go.uber.org/nilassert/descriptor"
	"go.uber.org/nilassert/syntax"
	"go.uber.org/nilassert/typesys"
	"gopkg.in/yaml.v3"
)

// Unit is a loaded unit file.
type Unit struct {
	// Unit is the compilation unit to check.
	Unit *syntax.Unit
	// Facts are the narrowing facts of the unit.
	Facts *dataflow.FactTable
	// Functions are the function descriptors of the unit, in declaration order.
	Functions []*descriptor.Function
	// Settings are the language settings declared by the unit. They are empty if the file has no
	// features key.
	Settings *config.LanguageSettings
	// Env resolves the type names used by the unit.
	Env *typesys.Env
}

// Function returns the descriptor with the given ID.
func (u *Unit) Function(id descriptor.ID) (*descriptor.Function, bool) {
	for _, f := range u.Functions {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

type file struct {
	Name         string             `yaml:"name"`
	Features     []string           `yaml:"features"`
	Classes      []classEntry       `yaml:"classes"`
	Params       []paramEntry       `yaml:"params"`
	Functions    []functionEntry    `yaml:"functions"`
	Expressions  []expressionEntry  `yaml:"expressions"`
	Facts        map[string]string  `yaml:"facts"`
	Calls        []callEntry        `yaml:"calls"`
	Declarations []declarationEntry `yaml:"declarations"`
}

type classEntry struct {
	Name       string   `yaml:"name"`
	Supertypes []string `yaml:"supertypes"`
}

type paramEntry struct {
	Owner  string   `yaml:"owner"`
	Name   string   `yaml:"name"`
	Bounds []string `yaml:"bounds"`
}

type parameterEntry struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default bool   `yaml:"default"`
	Vararg  bool   `yaml:"vararg"`
}

type functionEntry struct {
	ID                      string           `yaml:"id"`
	Name                    string           `yaml:"name"`
	Visibility              string           `yaml:"visibility"`
	Inline                  bool             `yaml:"inline"`
	External                bool             `yaml:"external"`
	Expect                  bool             `yaml:"expect"`
	Start                   int              `yaml:"start"`
	End                     int              `yaml:"end"`
	Container               string           `yaml:"container"`
	ContainerTypeParameters []string         `yaml:"container_type_parameters"`
	TypeParameters          []string         `yaml:"type_parameters"`
	DispatchReceiver        string           `yaml:"dispatch_receiver"`
	ExtensionReceiver       string           `yaml:"extension_receiver"`
	Parameters              []parameterEntry `yaml:"parameters"`
	Returns                 string           `yaml:"returns"`
	Original                string           `yaml:"original"`
	InitialSignature        string           `yaml:"initial_signature"`
}

type expressionEntry struct {
	Site     string `yaml:"site"`
	Text     string `yaml:"text"`
	Type     string `yaml:"type"`
	Expected string `yaml:"expected"`
	Scope    string `yaml:"scope"`
}

type receiverEntry struct {
	Kind       string `yaml:"kind"`
	Expression string `yaml:"expression"`
	Owner      string `yaml:"owner"`
	Reason     string `yaml:"reason"`
	Type       string `yaml:"type"`
}

type callEntry struct {
	Element           string         `yaml:"element"`
	Safe              bool           `yaml:"safe"`
	Candidate         string         `yaml:"candidate"`
	Resulting         string         `yaml:"resulting"`
	DispatchReceiver  *receiverEntry `yaml:"dispatch_receiver"`
	ExtensionReceiver *receiverEntry `yaml:"extension_receiver"`
	Scope             string         `yaml:"scope"`
}

type declarationEntry struct {
	Kind        string `yaml:"kind"`
	Site        string `yaml:"site"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Typed       bool   `yaml:"typed"`
	Initializer string `yaml:"initializer"`
	Delegate    string `yaml:"delegate"`
	Function    string `yaml:"function"`
	BlockBody   bool   `yaml:"block_body"`
	Body        string `yaml:"body"`
	Property    string `yaml:"property"`
	Setter      bool   `yaml:"setter"`
}

// The declaration kinds of a unit file.
const (
	KindLocalVariable    = "local_variable"
	KindProperty         = "property"
	KindFunction         = "function"
	KindPropertyAccessor = "property_accessor"
)

// Load reads the unit file at path.
func Load(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read unit file: %w", err)
	}
	u, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("unit file %q: %w", path, err)
	}
	return u, nil
}

// Parse parses the contents of a unit file. Unknown keys are rejected.
func Parse(data []byte) (*Unit, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode unit: %w", err)
	}

	settings, err := config.ParseFeatures(f.Features)
	if err != nil {
		return nil, err
	}
	b := &builder{
		env:         typesys.NewEnv(),
		functions:   make(map[string]*descriptor.Function),
		expressions: make(map[string]*syntax.Expression),
		properties:  make(map[string]*syntax.Property),
		types:       syntax.NewTypeMap(),
		facts:       dataflow.NewFactTable(),
	}
	u := &Unit{
		Unit:     &syntax.Unit{Name: f.Name, Types: b.types},
		Facts:    b.facts,
		Settings: settings,
		Env:      b.env,
	}
	if err := b.build(&f, u); err != nil {
		return nil, err
	}
	return u, nil
}

type builder struct {
	env         *typesys.Env
	functions   map[string]*descriptor.Function
	expressions map[string]*syntax.Expression
	properties  map[string]*syntax.Property
	types       *syntax.TypeMap
	facts       *dataflow.FactTable
}

func (b *builder) build(f *file, u *Unit) error {
	for _, c := range f.Classes {
		supers, err := b.parseTypes(c.Supertypes)
		if err != nil {
			return fmt.Errorf("class %q: %w", c.Name, err)
		}
		b.env.DeclareClass(c.Name, supers...)
	}
	// Bounds may only refer to classes and to parameters declared earlier.
	for _, p := range f.Params {
		bounds, err := b.parseTypes(p.Bounds)
		if err != nil {
			return fmt.Errorf("type parameter %q: %w", p.Name, err)
		}
		if _, err := b.env.DeclareParam(p.Owner, p.Name, bounds...); err != nil {
			return err
		}
	}

	if err := b.buildFunctions(f.Functions, u); err != nil {
		return err
	}
	for _, e := range f.Expressions {
		if err := b.buildExpression(e, u.Unit); err != nil {
			return fmt.Errorf("expression %q: %w", e.Site, err)
		}
	}
	for site, fact := range f.Facts {
		n, ok := dataflow.ParseNullability(fact)
		if !ok {
			return fmt.Errorf("fact for %q: unknown nullability %q", site, fact)
		}
		b.facts.Record(syntax.SiteID(site), n)
	}
	for i, c := range f.Calls {
		site, err := b.buildCall(c)
		if err != nil {
			return fmt.Errorf("call #%d (%s): %w", i, c.Element, err)
		}
		u.Unit.Calls = append(u.Unit.Calls, site)
	}
	for _, d := range f.Declarations {
		decl, err := b.buildDeclaration(d)
		if err != nil {
			return fmt.Errorf("declaration %q: %w", d.Site, err)
		}
		u.Unit.Declarations = append(u.Unit.Declarations, decl)
	}
	return nil
}

// parseType parses a type expression. The empty string is the absent type.
func (b *builder) parseType(expr string) (typesys.Type, error) {
	if expr == "" {
		return nil, nil
	}
	return b.env.Parse(expr)
}

func (b *builder) parseTypes(exprs []string) ([]typesys.Type, error) {
	types := make([]typesys.Type, 0, len(exprs))
	for _, expr := range exprs {
		t, err := b.env.Parse(expr)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func (b *builder) params(names []string) ([]*typesys.Param, error) {
	params := make([]*typesys.Param, 0, len(names))
	for _, name := range names {
		p, ok := b.env.Param(name)
		if !ok {
			return nil, fmt.Errorf("%w: type parameter %q", typesys.ErrUnknownType, name)
		}
		params = append(params, p)
	}
	return params, nil
}

func (b *builder) function(id string) (*descriptor.Function, error) {
	if id == "" {
		return nil, nil
	}
	f, ok := b.functions[id]
	if !ok {
		return nil, fmt.Errorf("unknown function %q", id)
	}
	return f, nil
}

func (b *builder) expression(site string) (*syntax.Expression, error) {
	if site == "" {
		return nil, nil
	}
	e, ok := b.expressions[site]
	if !ok {
		return nil, fmt.Errorf("unknown expression %q", site)
	}
	return e, nil
}

func (b *builder) buildFunctions(entries []functionEntry, u *Unit) error {
	for _, e := range entries {
		if _, ok := b.functions[e.ID]; ok {
			return fmt.Errorf("duplicate function %q", e.ID)
		}
		d := &descriptor.Function{ID: descriptor.ID(e.ID)}
		b.functions[e.ID] = d
		u.Functions = append(u.Functions, d)
	}

	for i, e := range entries {
		if err := b.fillFunction(u.Functions[i], e); err != nil {
			return fmt.Errorf("function %q: %w", e.ID, err)
		}
	}
	return nil
}

func (b *builder) fillFunction(d *descriptor.Function, e functionEntry) error {
	visibility, ok := descriptor.ParseVisibility(e.Visibility)
	if !ok && e.Visibility != "" {
		return fmt.Errorf("unknown visibility %q", e.Visibility)
	}
	d.Name = e.Name
	d.Visibility = visibility
	d.IsInline, d.IsExternal, d.IsExpect = e.Inline, e.External, e.Expect
	d.StartOffset, d.EndOffset = e.Start, e.End
	d.Container = descriptor.ID(e.Container)

	var err error
	if d.ContainerTypeParameters, err = b.params(e.ContainerTypeParameters); err != nil {
		return err
	}
	if d.TypeParameters, err = b.params(e.TypeParameters); err != nil {
		return err
	}
	if d.DispatchReceiver, err = b.receiver(e.DispatchReceiver); err != nil {
		return err
	}
	if d.ExtensionReceiver, err = b.receiver(e.ExtensionReceiver); err != nil {
		return err
	}
	for _, p := range e.Parameters {
		t, err := b.env.Parse(p.Type)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		d.ValueParameters = append(d.ValueParameters, &descriptor.ValueParameter{
			Name:       p.Name,
			Type:       t,
			HasDefault: p.Default,
			IsVararg:   p.Vararg,
		})
	}
	if d.ReturnType, err = b.parseType(e.Returns); err != nil {
		return err
	}
	if d.Original, err = b.function(e.Original); err != nil {
		return err
	}
	if d.InitialSignature, err = b.function(e.InitialSignature); err != nil {
		return err
	}
	return nil
}

func (b *builder) receiver(expr string) (*descriptor.Receiver, error) {
	t, err := b.parseType(expr)
	if err != nil || t == nil {
		return nil, err
	}
	return &descriptor.Receiver{Type: t}, nil
}

func (b *builder) buildExpression(e expressionEntry, unit *syntax.Unit) error {
	if e.Site == "" {
		return errors.New("missing site")
	}
	if _, ok := b.expressions[e.Site]; ok {
		return errors.New("duplicate site")
	}
	expr := &syntax.Expression{Site: syntax.SiteID(e.Site), Text: e.Text}
	b.expressions[e.Site] = expr

	typ, err := b.parseType(e.Type)
	if err != nil {
		return err
	}
	expected, err := b.parseType(e.Expected)
	if err != nil {
		return err
	}
	scope, ok := syntax.ParseScopeKind(e.Scope)
	if !ok {
		return fmt.Errorf("unknown scope kind %q", e.Scope)
	}
	if typ != nil {
		b.types.Record(expr, typ)
	}
	unit.Expressions = append(unit.Expressions, &syntax.CheckedExpression{
		Expression:   expr,
		Type:         typ,
		ExpectedType: expected,
		Scope:        scope,
	})
	return nil
}

func (b *builder) buildCall(c callEntry) (*syntax.CallSite, error) {
	scope, ok := syntax.ParseScopeKind(c.Scope)
	if !ok {
		return nil, fmt.Errorf("unknown scope kind %q", c.Scope)
	}
	call := &syntax.Call{SafeCall: c.Safe}
	var err error
	if call.Element, err = b.expression(c.Element); err != nil {
		return nil, err
	}
	if call.Candidate, err = b.function(c.Candidate); err != nil {
		return nil, err
	}
	if call.Resulting, err = b.function(c.Resulting); err != nil {
		return nil, err
	}
	if call.Resulting == nil {
		call.Resulting = call.Candidate
	}
	if call.DispatchReceiver, err = b.receiverValue(c.DispatchReceiver); err != nil {
		return nil, fmt.Errorf("dispatch receiver: %w", err)
	}
	if call.ExtensionReceiver, err = b.receiverValue(c.ExtensionReceiver); err != nil {
		return nil, fmt.Errorf("extension receiver: %w", err)
	}
	return &syntax.CallSite{Call: call, Scope: scope}, nil
}

// The receiver kinds of a unit file.
const (
	ReceiverExpression = "expression"
	ReceiverImplicit   = "implicit"
	ReceiverSynthetic  = "synthetic"
)

func (b *builder) receiverValue(r *receiverEntry) (syntax.ReceiverValue, error) {
	if r == nil {
		return nil, nil
	}
	typ, err := b.parseType(r.Type)
	if err != nil {
		return nil, err
	}

	switch r.Kind {
	case ReceiverExpression, "":
		expr, err := b.expression(r.Expression)
		if err != nil {
			return nil, err
		}
		if expr == nil {
			return nil, errors.New("expression receiver without expression")
		}
		// The type of an expression receiver defaults to the type of its expression.
		if typ == nil {
			typ, _ = b.types.TypeOf(expr)
		}
		return &syntax.ExpressionReceiver{Expression: expr, ValueType: typ}, nil
	case ReceiverImplicit:
		return &syntax.ImplicitReceiver{Owner: descriptor.ID(r.Owner), ValueType: typ}, nil
	case ReceiverSynthetic:
		return &syntax.SyntheticReceiver{Reason: r.Reason, ValueType: typ}, nil
	default:
		return nil, fmt.Errorf("unknown receiver kind %q", r.Kind)
	}
}

func (b *builder) buildDeclaration(d declarationEntry) (syntax.Declaration, error) {
	site := syntax.SiteID(d.Site)
	typ, err := b.parseType(d.Type)
	if err != nil {
		return nil, err
	}
	initializer, err := b.expression(d.Initializer)
	if err != nil {
		return nil, err
	}
	body, err := b.expression(d.Body)
	if err != nil {
		return nil, err
	}

	switch d.Kind {
	case KindLocalVariable:
		return &syntax.LocalVariable{
			Site:             site,
			Descriptor:       &descriptor.Variable{ID: descriptor.ID(d.Site), Name: d.Name, Type: typ},
			HasTypeReference: d.Typed,
			Initializer:      initializer,
		}, nil
	case KindProperty:
		delegate, err := b.expression(d.Delegate)
		if err != nil {
			return nil, err
		}
		p := &syntax.Property{
			Site:             site,
			Descriptor:       &descriptor.Property{ID: descriptor.ID(d.Site), Name: d.Name, Type: typ},
			HasTypeReference: d.Typed,
			Initializer:      initializer,
			Delegate:         delegate,
		}
		b.properties[d.Site] = p
		return p, nil
	case KindFunction:
		fn, err := b.function(d.Function)
		if err != nil {
			return nil, err
		}
		if fn == nil {
			return nil, errors.New("function declaration without function")
		}
		return &syntax.Function{
			Site:             site,
			Descriptor:       fn,
			HasTypeReference: d.Typed,
			HasBlockBody:     d.BlockBody,
			BodyExpression:   body,
		}, nil
	case KindPropertyAccessor:
		p, ok := b.properties[d.Property]
		if !ok {
			return nil, fmt.Errorf("accessor of unknown property %q", d.Property)
		}
		return &syntax.PropertyAccessor{
			Site: site,
			Descriptor: &descriptor.PropertyAccessor{
				ID:                    descriptor.ID(d.Site),
				IsGetter:              !d.Setter,
				CorrespondingProperty: p.Descriptor,
			},
			Property:       p,
			HasBlockBody:   d.BlockBody,
			BodyExpression: body,
		}, nil
	default:
		return nil, fmt.Errorf("unknown declaration kind %q", d.Kind)
	}
}
