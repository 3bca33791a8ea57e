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

package checkhelper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapRun_Panic(t *testing.T) {
	t.Parallel()

	// Test that WrapRun recovers from a panic and returns the panic as an error.
	panickingFunc := func(context.Context) (int, error) { panic("panic") }
	r := WrapRun("item", panickingFunc)(context.Background())

	require.Empty(t, r.Res)
	require.ErrorContains(t, r.Err, "INTERNAL PANIC")
	require.ErrorContains(t, r.Err, `"item"`)
}

func TestWrapRun_Error(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("my error")
	errFunc := func(context.Context) (int, error) { return 0, sentinel }
	r := WrapRun("item", errFunc)(context.Background())

	require.Empty(t, r.Res)
	require.ErrorIs(t, r.Err, sentinel)
	require.ErrorContains(t, r.Err, "item: my error")
}

func TestWrapRun_NoPanic(t *testing.T) {
	t.Parallel()

	nonPanickingFunc := func(context.Context) (int, error) { return 42, nil }
	r := WrapRun("item", nonPanickingFunc)(context.Background())

	require.NoError(t, r.Err)
	require.Equal(t, 42, r.Res)
}

func TestWrapRun_PassesContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := WrapRun("item", func(ctx context.Context) (struct{}, error) { return struct{}{}, ctx.Err() })(ctx)
	require.ErrorIs(t, r.Err, context.Canceled)
}
