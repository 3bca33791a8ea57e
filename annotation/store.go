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

package annotation

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/nilassert/syntax"
	"go.uber.org/nilassert/util/orderedmap"
)

// Key identifies a slot in the Store.
type Key struct {
	Kind SlotKind
	Site syntax.SiteID
}

// Entry is a recorded Info together with its key.
type Entry struct {
	Key
	Info Info
}

// String renders e as `<kind> <site>: <message>`, quoting the message.
func (e Entry) String() string {
	return fmt.Sprintf("%s %s: %q", e.Kind, e.Site, e.Info.Message)
}

// Store maps (slot kind, site) keys to Infos. It is append-only and write-once per key: the
// first Info recorded for a key wins. All methods are safe for concurrent use, since checkers
// for independent declarations run in parallel and record into the same Store.
type Store struct {
	mu      sync.RWMutex
	entries *orderedmap.OrderedMap[Key, Info]
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: orderedmap.New[Key, Info]()}
}

// Record stores a copy of info under (kind, site). It returns false, leaving the Store
// unchanged, if the key was already recorded.
func (s *Store) Record(kind SlotKind, site syntax.SiteID, info *Info) bool {
	if info == nil {
		panic("nil Info recorded for " + kind.String() + " site " + string(site))
	}

	key := Key{Kind: kind, Site: site}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries.Load(key); ok {
		return false
	}
	s.entries.Store(key, *info)
	return true
}

// Lookup returns the Info recorded under (kind, site).
func (s *Store) Lookup(kind SlotKind, site syntax.SiteID) (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Load(Key{Kind: kind, Site: site})
}

// Len returns the number of recorded Infos.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Len()
}

// Entries returns a snapshot of all recorded Infos in recording order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]Entry, 0, s.entries.Len())
	s.entries.OrderedRange(func(k Key, v Info) bool {
		entries = append(entries, Entry{Key: k, Info: v})
		return true
	})
	return entries
}

// Sorted returns a snapshot of all recorded Infos ordered by slot kind and then by site position
// (see syntax.SiteID.Compare). Unlike
// Entries, the result does not depend on the order concurrent checkers happened to record in.
func (s *Store) Sorted() []Entry {
	entries := s.Entries()
	slices.SortFunc(entries, compareEntries)
	return entries
}

// Slot returns the Infos recorded for one slot kind, ordered by site.
func (s *Store) Slot(kind SlotKind) []Entry {
	var entries []Entry
	for _, e := range s.Sorted() {
		if e.Kind == kind {
			entries = append(entries, e)
		}
	}
	return entries
}

func compareEntries(a, b Entry) int {
	if n := cmp.Compare(a.Kind, b.Kind); n != 0 {
		return n
	}
	return a.Site.Compare(b.Site)
}
