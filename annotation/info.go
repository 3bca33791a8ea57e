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

// Package annotation hosts the runtime assertion requirements produced by the nullability
// checkers and the store they are recorded into. The store is written during type checking and
// read, possibly much later and in another process, by code generation.
package annotation

import (
	"fmt"
)

// Info is a runtime assertion requirement. The mere presence of an Info for a site means that a
// not-null assertion must be generated there, so NeedNotNullAssertion is always true for Infos
// created by the checkers; the field is kept so the encoded form is self-describing.
type Info struct {
	NeedNotNullAssertion bool
	// Message describes the asserted expression in the exception thrown at runtime.
	Message string
}

// NewInfo returns an Info requiring a not-null assertion with the given message.
func NewInfo(message string) *Info {
	return &Info{NeedNotNullAssertion: true, Message: message}
}

func (i Info) String() string {
	return fmt.Sprintf("assert not-null %q", i.Message)
}

// SlotKind distinguishes the independent places an Info can be recorded for. The same syntactic
// site can carry one Info per slot kind, e.g., an expression used as a receiver can need both an
// Expression and a Receiver assertion.
type SlotKind uint8

// The slot kinds.
const (
	// Expression holds assertions on the value of an expression checked against an expected type.
	Expression SlotKind = iota
	// Receiver holds assertions on the extension receiver of a call.
	Receiver
	// GenericCall holds assertions on the result of a call to a generic function whose nullable
	// type-parameter return type was substituted with a non-null type.
	GenericCall
	// Delegate is GenericCall for calls resolved inside property-delegate methods.
	Delegate
	// Body holds assertions on the body expression of a declaration without an explicit type.
	Body
)

// AllSlotKinds lists every SlotKind in order.
var AllSlotKinds = []SlotKind{Expression, Receiver, GenericCall, Delegate, Body}

var _slotKindNames = [...]string{
	Expression:  "expression",
	Receiver:    "receiver",
	GenericCall: "generic_call",
	Delegate:    "delegate",
	Body:        "body",
}

func (k SlotKind) String() string {
	if int(k) < len(_slotKindNames) {
		return _slotKindNames[k]
	}
	return fmt.Sprintf("SlotKind(%d)", k)
}

// ParseSlotKind is the inverse of SlotKind.String.
func ParseSlotKind(s string) (SlotKind, bool) {
	for k, name := range _slotKindNames {
		if name == s {
			return SlotKind(k), true
		}
	}
	return Expression, false
}
