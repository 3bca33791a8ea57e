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

// Package orderedmap implements a generic map that remembers insertion order, so that anything
// derived from iterating it (exported stores, reports) is deterministic.
package orderedmap

import (
	"bytes"
	"encoding/gob"
	"io"
)

// Pair is a key-value pair stored in an OrderedMap.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// OrderedMap is a map that iterates in insertion order. It is not safe for concurrent use.
type OrderedMap[K comparable, V any] struct {
	inner map[K]int
	// Pairs holds the entries in insertion order. Callers may range over it but must not modify it.
	Pairs []*Pair[K, V]
}

// New returns an empty OrderedMap.
func New[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{inner: make(map[K]int)}
}

// Load returns the value stored for key, and whether it was present.
func (m *OrderedMap[K, V]) Load(key K) (V, bool) {
	i, ok := m.inner[key]
	if !ok {
		var zero V
		return zero, false
	}
	return m.Pairs[i].Value, true
}

// Value returns the value stored for key, or the zero value if it is absent.
func (m *OrderedMap[K, V]) Value(key K) V {
	v, _ := m.Load(key)
	return v
}

// Store sets the value for key. Overwriting a key keeps its original position.
func (m *OrderedMap[K, V]) Store(key K, value V) {
	if i, ok := m.inner[key]; ok {
		m.Pairs[i].Value = value
		return
	}
	m.inner[key] = len(m.Pairs)
	m.Pairs = append(m.Pairs, &Pair[K, V]{Key: key, Value: value})
}

// Len returns the number of entries.
func (m *OrderedMap[K, V]) Len() int {
	return len(m.Pairs)
}

// OrderedRange calls f for every entry in insertion order until f returns false.
func (m *OrderedMap[K, V]) OrderedRange(f func(key K, value V) bool) {
	for _, p := range m.Pairs {
		if !f(p.Key, p.Value) {
			return
		}
	}
}

// GobEncode encodes the entries as an alternating stream of keys and values. Keys and values are
// encoded through pointers so that interface-typed values keep their dynamic type.
func (m *OrderedMap[K, V]) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	for _, p := range m.Pairs {
		if err := enc.Encode(&p.Key); err != nil {
			return nil, err
		}
		if err := enc.Encode(&p.Value); err != nil {
			return nil, err
		}
	}

	if buf.Len() == 0 {
		return nil, nil
	}
	return buf.Bytes(), nil
}

// GobDecode decodes entries produced by GobEncode, appending them to the map.
func (m *OrderedMap[K, V]) GobDecode(b []byte) error {
	if m.inner == nil {
		m.inner = make(map[K]int)
	}
	dec := gob.NewDecoder(bytes.NewBuffer(b))
	for {
		var k K
		if err := dec.Decode(&k); err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return err
		}
		m.Store(k, v)
	}

	return nil
}
