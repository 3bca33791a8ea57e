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

// Origin tells where an IR declaration comes from.
type Origin uint8

// The origins of lazily materialized declarations.
const (
	// ExternalDeclarationStub is a declaration from a dependency compiled by this compiler.
	ExternalDeclarationStub Origin = iota
	// ExternalJavaDeclarationStub is a declaration from a dependency compiled from another
	// language, i.e., one whose types may be flexible.
	ExternalJavaDeclarationStub
	// FakeOverride is an inherited member that is not redeclared.
	FakeOverride
)

var _originNames = [...]string{
	ExternalDeclarationStub:     "IR_EXTERNAL_DECLARATION_STUB",
	ExternalJavaDeclarationStub: "IR_EXTERNAL_JAVA_DECLARATION_STUB",
	FakeOverride:                "FAKE_OVERRIDE",
}

func (o Origin) String() string {
	if int(o) < len(_originNames) {
		return _originNames[o]
	}
	return fmt.Sprintf("Origin(%d)", o)
}

// ParseOrigin is the inverse of Origin.String.
func ParseOrigin(s string) (Origin, bool) {
	for o, name := range _originNames {
		if name == s {
			return Origin(o), true
		}
	}
	return ExternalDeclarationStub, false
}

// Receiver parameters are not part of the value parameter list and have no index.
const receiverIndex = -1

// The names given to receiver parameters.
const (
	DispatchReceiverName  = "<this>"
	ExtensionReceiverName = "<receiver>"
)

// ValueParameter is a value (or receiver) parameter stub.
type ValueParameter struct {
	Name string
	// Index is the position in the value parameter list, or -1 for receivers.
	Index      int
	Type       Type
	HasDefault bool
	IsVararg   bool
	// Parent identifies the function owning the parameter. Use Cache.Lookup to get the node.
	Parent descriptor.ID
}

// IsReceiver returns true for dispatch and extension receiver parameters.
func (p *ValueParameter) IsReceiver() bool {
	return p.Index == receiverIndex
}

func (p *ValueParameter) String() string {
	return fmt.Sprintf("%s: %s", p.Name, p.Type)
}

// Body is the body of a function compiled in this module. Materialized declarations never have
// one.
type Body struct {
	Statements []string
}

// MetadataSource is the debug/serialization metadata attached to declarations compiled in this
// module.
type MetadataSource interface {
	MetadataName() string
}
