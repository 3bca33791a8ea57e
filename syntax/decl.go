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

package syntax

import (
	"go.uber.org/nilassert/descriptor"
)

// Declaration is a declaration whose body expression may need a runtime nullability assertion.
// It is a closed sum type: the only implementations are LocalVariable, Property, Function and
// PropertyAccessor, and consumers are expected to switch over all of them exhaustively.
type Declaration interface {
	// DeclarationSite returns the site of the declaration itself (not of its body).
	DeclarationSite() SiteID

	isDeclaration()
}

// LocalVariable is a `val`/`var` declared inside a function body.
type LocalVariable struct {
	Site       SiteID
	Descriptor *descriptor.Variable
	// HasTypeReference is set if the declaration spells out its type, e.g., `val x: String = ...`.
	HasTypeReference bool
	Initializer      *Expression
}

// Property is a member or top-level property.
type Property struct {
	Site             SiteID
	Descriptor       *descriptor.Property
	HasTypeReference bool
	Initializer      *Expression
	// Delegate is the delegate expression of a delegated property (`val x by lazy { ... }`).
	Delegate *Expression
}

// Function is a function declaration.
type Function struct {
	Site             SiteID
	Descriptor       *descriptor.Function
	HasTypeReference bool
	HasBlockBody     bool
	// BodyExpression is the body of an expression-bodied function, i.e., what follows `=`.
	BodyExpression *Expression
}

// PropertyAccessor is a getter or setter declared on a property.
type PropertyAccessor struct {
	Site       SiteID
	Descriptor *descriptor.PropertyAccessor
	// Property is the syntactic property declaring the accessor.
	Property       *Property
	HasBlockBody   bool
	BodyExpression *Expression
}

func (d *LocalVariable) DeclarationSite() SiteID    { return d.Site }
func (d *Property) DeclarationSite() SiteID         { return d.Site }
func (d *Function) DeclarationSite() SiteID         { return d.Site }
func (d *PropertyAccessor) DeclarationSite() SiteID { return d.Site }

func (*LocalVariable) isDeclaration()    {}
func (*Property) isDeclaration()         {}
func (*Function) isDeclaration()         {}
func (*PropertyAccessor) isDeclaration() {}
