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

package driver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/nilassert/descriptor"
	"go.uber.org/nilassert/ir"
	"go.uber.org/nilassert/util/checkhelper"
	"golang.org/x/sync/errgroup"
)

// Materialize builds the IR nodes of functions through m and forces every lazy field, in
// parallel. The snapshots are returned in the order of functions; the entries of functions that
// failed are nil, and their errors are joined in the returned error.
func Materialize(ctx context.Context, m *ir.Materializer, functions []*descriptor.Function, opts Options) ([]*ir.FunctionSnapshot, error) {
	logger := opts.logger()
	snapshots := make([]*ir.FunctionSnapshot, len(functions))
	errs := make([]error, len(functions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(len(functions)))
	for i, d := range functions {
		if gctx.Err() != nil {
			break
		}
		name := fmt.Sprintf("materialize function #%d", i)
		if d != nil {
			name = "materialize " + string(d.ID)
		}
		run := checkhelper.WrapRun(name, func(ctx context.Context) (*ir.FunctionSnapshot, error) {
			f, err := m.Materialize(d)
			if err != nil {
				return nil, err
			}
			return ir.Snapshot(ctx, f)
		})
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := run(gctx)
			if r.Err != nil {
				logger.Debug("materialization failed", "work", name, "error", r.Err)
			}
			snapshots[i], errs[i] = r.Res, r.Err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return snapshots, fmt.Errorf("materialize functions: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return snapshots, fmt.Errorf("materialize functions: %w", err)
	}
	return snapshots, errors.Join(errs...)
}
