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
	"sync"

	"go.uber.org/nilassert/descriptor"
)

// Cache holds the IR nodes already materialized, keyed by declaration identity. It guarantees
// that every request for the same declaration observes the same node, which is what lets IR
// elements refer to declarations by ID.
type Cache struct {
	mu        sync.Mutex
	functions map[descriptor.ID]*Function
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{functions: make(map[descriptor.ID]*Function)}
}

// Lookup returns the node materialized for id, if any.
func (c *Cache) Lookup(id descriptor.ID) (*Function, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.functions[id]
	return f, ok
}

// GetOrCreate returns the node cached for id, calling create to build it if there is none. create
// runs with the cache locked: it must be cheap and must not call back into the cache. Creating a
// node only captures static attributes, so this holds for Materializer.
func (c *Cache) GetOrCreate(id descriptor.ID, create func() (*Function, error)) (*Function, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.functions[id]; ok {
		return f, nil
	}
	f, err := create()
	if err != nil {
		return nil, err
	}
	c.functions[id] = f
	return f, nil
}

// Len returns the number of cached nodes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.functions)
}
