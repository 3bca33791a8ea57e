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
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/s2"
	"go.uber.org/nilassert/config"
	"go.uber.org/nilassert/util/orderedmap"
)

// ErrSchemaMismatch is returned when decoding a store exported with a different schema version.
var ErrSchemaMismatch = errors.New("annotation store schema mismatch")

// GobEncode encodes the store as a schema version followed by the entries ordered by slot kind and
// site, the whole stream being s2-compressed. Encoding the sorted entries (rather than recording
// order) makes the output deterministic no matter how the checkers were scheduled.
func (s *Store) GobEncode() (b []byte, err error) {
	var buf bytes.Buffer
	writer := s2.NewWriter(&buf)
	defer func() {
		if cerr := writer.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	sorted := orderedmap.New[Key, Info]()
	for _, e := range s.Sorted() {
		sorted.Store(e.Key, e.Info)
	}

	enc := gob.NewEncoder(writer)
	if err := enc.Encode(config.StoreSchemaVersion); err != nil {
		return nil, err
	}
	if err := enc.Encode(sorted); err != nil {
		return nil, err
	}

	// Close the s2 writer before getting the bytes such that we have complete information.
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode decodes a store produced by GobEncode, replacing the contents of s.
func (s *Store) GobDecode(input []byte) error {
	dec := gob.NewDecoder(s2.NewReader(bytes.NewBuffer(input)))
	var version uint16
	if err := dec.Decode(&version); err != nil {
		return fmt.Errorf("decode schema version: %w", err)
	}
	if version != config.StoreSchemaVersion {
		return fmt.Errorf("%w: got version %d, want %d", ErrSchemaMismatch, version, config.StoreSchemaVersion)
	}

	var entries *orderedmap.OrderedMap[Key, Info]
	if err := dec.Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode entries: %w", err)
	}
	if entries == nil {
		entries = orderedmap.New[Key, Info]()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	return nil
}

// Write exports the store to w for consumption by code generation.
func Write(w io.Writer, s *Store) error {
	if err := gob.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("encode annotation store: %w", err)
	}
	return nil
}

// Read imports a store written by Write.
func Read(r io.Reader) (*Store, error) {
	var s *Store
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode annotation store: %w", err)
	}
	return s, nil
}
