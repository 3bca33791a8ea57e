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

// Package driver runs the assertion checkers over a compilation unit, and the IR materializer over
// a set of descriptors, with bounded parallelism.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"go.uber.org/nilassert/annotation"
	"go.uber.org/nilassert/assertion"
	"go.uber.org/nilassert/config"
	"go.uber.org/nilassert/dataflow"
	"go.uber.org/nilassert/syntax"
	"go.uber.org/nilassert/util/checkhelper"
	"golang.org/x/sync/errgroup"
)

// Options configures a run.
type Options struct {
	// Jobs bounds the number of work items run in parallel. Non-positive values mean
	// runtime.GOMAXPROCS(0).
	Jobs int
	// Logger receives debug traces. Nil discards them.
	Logger *slog.Logger
	// Checkers are the checkers to run. Nil means assertion.DefaultCheckers().
	Checkers *assertion.Checkers
	// Store receives the requirements. Nil means a fresh store.
	Store *annotation.Store
}

func (o *Options) jobs(items int) int {
	jobs := o.Jobs
	if jobs <= config.DefaultJobs {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, items))
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// workItem is one unit of checking: a single expression, call, or declaration.
type workItem struct {
	name string
	run  func(context.Context) (struct{}, error)
}

// Check runs the checkers over every expression, call, and declaration of unit and returns the
// store holding what they recorded. Errors of individual items, including recovered panics, do not
// stop the other items: they are joined in the returned error, and the store is returned along
// with it. Cancelling ctx stops scheduling new items.
func Check(
	ctx context.Context,
	unit *syntax.Unit,
	oracle dataflow.Oracle,
	settings config.LanguageVersionSettings,
	opts Options,
) (*annotation.Store, error) {
	store := opts.Store
	if store == nil {
		store = annotation.NewStore()
	}
	checkers := opts.Checkers
	if checkers == nil {
		checkers = assertion.DefaultCheckers()
	}
	logger := opts.logger().With("unit", unit.Name)

	base := &assertion.Context{
		Store:    store,
		Oracle:   oracle,
		Types:    unit.Types,
		Settings: settings,
	}
	items := workItems(unit, checkers, base)
	logger.Debug("checking unit", "items", len(items), "jobs", opts.jobs(len(items)))

	errs := make([]error, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(len(items)))
	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		run := checkhelper.WrapRun(item.name, item.run)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if r := run(gctx); r.Err != nil {
				logger.Debug("work item failed", "item", item.name, "error", r.Err)
				errs[i] = r.Err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return store, fmt.Errorf("check unit %q: %w", unit.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return store, fmt.Errorf("check unit %q: %w", unit.Name, err)
	}

	logger.Debug("checked unit", "requirements", store.Len())
	return store, errors.Join(errs...)
}

func workItems(unit *syntax.Unit, checkers *assertion.Checkers, base *assertion.Context) []workItem {
	items := make([]workItem, 0, len(unit.Expressions)+len(unit.Calls)+len(unit.Declarations))
	for _, e := range unit.Expressions {
		items = append(items, workItem{
			name: "expression " + string(e.Expression.Site),
			run: func(context.Context) (struct{}, error) {
				checkers.CheckExpression(e, base)
				return struct{}{}, nil
			},
		})
	}
	for _, site := range unit.Calls {
		name := "call"
		if site.Call.Element != nil {
			name += " " + string(site.Call.Element.Site)
		}
		items = append(items, workItem{
			name: name,
			run: func(context.Context) (struct{}, error) {
				checkers.CheckCall(site, base)
				return struct{}{}, nil
			},
		})
	}
	for _, d := range unit.Declarations {
		items = append(items, workItem{
			name: "declaration " + string(d.DeclarationSite()),
			run: func(context.Context) (struct{}, error) {
				checkers.CheckDeclaration(d, base)
				return struct{}{}, nil
			},
		})
	}
	return items
}
