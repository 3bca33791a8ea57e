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

// Package lazy implements the per-field memoization cell used by lazily built IR nodes.
package lazy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/petermattis/goid"
)

// State is the state of a Cell.
type State uint8

// The states of a Cell. A Cell only ever moves Unset -> Computing -> Set, or back from Computing
// to Unset when a computation fails.
const (
	Unset State = iota
	Computing
	Set
)

func (s State) String() string {
	switch s {
	case Unset:
		return "unset"
	case Computing:
		return "computing"
	case Set:
		return "set"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// CycleError is the panic value raised when a Cell is read from within its own computation.
// This always indicates a programming error in the computation and is never recovered by the
// Cell itself.
type CycleError struct {
	Name string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic read of lazy value %q from within its own computation", e.Name)
}

// attempt is one run of a Cell's computation. done is closed once the run finished, after err
// has been set.
type attempt struct {
	done chan struct{}
	err  error
}

// Cell is a value computed on first access and cached afterwards. The computation runs at most
// once at a time: concurrent readers block until the running computation completes and then
// observe its outcome. A computation that fails (including one whose context was cancelled) is
// not cached, leaving the Cell unset so that the next read starts over.
//
// The zero Cell is not usable; create Cells with New or Value.
type Cell[T any] struct {
	name    string
	compute func(context.Context) (T, error)

	mu           sync.Mutex
	state        State
	value        T
	owner        int64
	current      *attempt
	computations int
}

// New returns an unset Cell that computes its value with compute. The name is only used in error
// messages.
func New[T any](name string, compute func(context.Context) (T, error)) *Cell[T] {
	return &Cell[T]{name: name, compute: compute}
}

// Value returns a Cell that is already set to v.
func Value[T any](name string, v T) *Cell[T] {
	return &Cell[T]{name: name, state: Set, value: v}
}

// Name returns the name of the cell.
func (c *Cell[T]) Name() string { return c.name }

// State returns the current state of the Cell.
func (c *Cell[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Computations returns how many times the computation has been started.
func (c *Cell[T]) Computations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.computations
}

// Peek returns the value if the Cell is set, without ever triggering the computation.
func (c *Cell[T]) Peek() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Set {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Get returns the value of the Cell, computing it first if needed. If another goroutine is
// computing the value, Get waits for it, or until ctx is done. If that computation fails because
// its own context was cancelled and ctx is still live, Get starts a new computation; any other
// failure is returned to every waiting caller. Reading a Cell from inside its own computation
// panics with a *CycleError.
func (c *Cell[T]) Get(ctx context.Context) (T, error) {
	var zero T
	for {
		c.mu.Lock()
		switch c.state {
		case Set:
			v := c.value
			c.mu.Unlock()
			return v, nil

		case Computing:
			if c.owner == goid.Get() {
				c.mu.Unlock()
				panic(&CycleError{Name: c.name})
			}
			a := c.current
			c.mu.Unlock()

			select {
			case <-a.done:
			case <-ctx.Done():
				return zero, ctx.Err()
			}
			if a.err == nil {
				continue
			}
			if isCancellation(a.err) && ctx.Err() == nil {
				// The computing caller gave up, but this one did not: start over.
				continue
			}
			return zero, a.err

		default:
			a := &attempt{done: make(chan struct{})}
			c.state = Computing
			c.owner = goid.Get()
			c.current = a
			c.computations++
			c.mu.Unlock()

			return c.run(ctx, a)
		}
	}
}

// run executes the computation for attempt a and publishes its outcome. A panicking computation
// is treated as a failed attempt (waiters see an error) before the panic is propagated.
func (c *Cell[T]) run(ctx context.Context, a *attempt) (v T, err error) {
	completed := false
	defer func() {
		if completed {
			return
		}
		// A nil recover means the goroutine is exiting through runtime.Goexit; publish the
		// failure and let it continue.
		r := recover()
		c.finish(a, v, fmt.Errorf("computation of lazy value %q did not complete: %v", c.name, r))
		if r != nil {
			panic(r)
		}
	}()

	v, err = c.compute(ctx)
	if err == nil && ctx.Err() != nil {
		// The value may be partial: never cache what a cancelled computation produced.
		err = ctx.Err()
	}
	if err != nil {
		err = fmt.Errorf("compute %s: %w", c.name, err)
		var zero T
		v = zero
	}
	completed = true
	c.finish(a, v, err)
	return v, err
}

func (c *Cell[T]) finish(a *attempt, v T, err error) {
	c.mu.Lock()
	if err != nil {
		c.state = Unset
	} else {
		c.state = Set
		c.value = v
	}
	c.owner = 0
	c.current = nil
	a.err = err
	c.mu.Unlock()
	close(a.done)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
