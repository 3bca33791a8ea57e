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

// Package checkhelper provides helpers for running checker work items.
package checkhelper

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Result is the result of a wrapped work item where the actual result is accompanied by an
// optional error.
type Result[T any] struct {
	// Res is the actual result from the work item.
	Res T
	// Err is the optional error from the work item.
	Err error
}

// WrapRun wraps a work item to:
// (1) put its error in the Result[T].Err field in order to _not_ stop the other work items and let
// the driver decide what to do.
// (2) recover from a panic and convert it to an error with stack traces for easier debugging.
// Invariant violations inside the checkers (e.g., a cyclic lazy computation) are signaled with
// panics, and this is where they turn into errors attributed to the offending work item.
// Moreover, it also wraps the error with the name of the work item to make it easier to identify
// the source of the error.
func WrapRun[T any](name string, f func(context.Context) (T, error)) func(context.Context) *Result[T] {
	return func(ctx context.Context) (result *Result[T]) {
		result = &Result[T]{}
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("INTERNAL PANIC from %q: %s\n%s", name, r, string(debug.Stack()))
			}
		}()

		r, err := f(ctx)
		if err != nil {
			// Prefix the error with the name of the work item to make it easier to identify the
			// source of the error.
			err = fmt.Errorf("%s: %w", name, err)
		}
		result.Res = r
		result.Err = err
		return result
	}
}
