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
	"bytes"
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// FunctionSnapshot is a fully materialized, serializable view of a Function.
type FunctionSnapshot struct {
	ID                string              `msgpack:"id"`
	Name              string              `msgpack:"name"`
	Visibility        string              `msgpack:"visibility"`
	Origin            string              `msgpack:"origin"`
	IsInline          bool                `msgpack:"inline,omitempty"`
	IsExternal        bool                `msgpack:"external,omitempty"`
	IsExpect          bool                `msgpack:"expect,omitempty"`
	StartOffset       int32               `msgpack:"start"`
	EndOffset         int32               `msgpack:"end"`
	DispatchReceiver  *ParameterSnapshot  `msgpack:"dispatch_receiver,omitempty"`
	ExtensionReceiver *ParameterSnapshot  `msgpack:"extension_receiver,omitempty"`
	ValueParameters   []ParameterSnapshot `msgpack:"value_parameters"`
	ReturnType        string              `msgpack:"return_type"`
	InitialSignature  string              `msgpack:"initial_signature,omitempty"`
}

// ParameterSnapshot is the serializable view of a ValueParameter.
type ParameterSnapshot struct {
	Name       string `msgpack:"name"`
	Index      int    `msgpack:"index"`
	Type       string `msgpack:"type"`
	HasDefault bool   `msgpack:"default,omitempty"`
	IsVararg   bool   `msgpack:"vararg,omitempty"`
	Parent     string `msgpack:"parent"`
}

func snapshotParameter(p *ValueParameter) ParameterSnapshot {
	return ParameterSnapshot{
		Name:       p.Name,
		Index:      p.Index,
		Type:       p.Type.String(),
		HasDefault: p.HasDefault,
		IsVararg:   p.IsVararg,
		Parent:     string(p.Parent),
	}
}

// Snapshot forces every lazy field of f and returns the result.
func Snapshot(ctx context.Context, f *Function) (*FunctionSnapshot, error) {
	s := &FunctionSnapshot{
		ID:          string(f.ID()),
		Name:        f.Name,
		Visibility:  f.Visibility.String(),
		Origin:      f.Origin.String(),
		IsInline:    f.IsInline,
		IsExternal:  f.IsExternal,
		IsExpect:    f.IsExpect,
		StartOffset: f.StartOffset,
		EndOffset:   f.EndOffset,
	}

	dispatch, err := f.DispatchReceiverParameter(ctx)
	if err != nil {
		return nil, err
	}
	if dispatch != nil {
		p := snapshotParameter(dispatch)
		s.DispatchReceiver = &p
	}
	extension, err := f.ExtensionReceiverParameter(ctx)
	if err != nil {
		return nil, err
	}
	if extension != nil {
		p := snapshotParameter(extension)
		s.ExtensionReceiver = &p
	}

	params, err := f.ValueParameters(ctx)
	if err != nil {
		return nil, err
	}
	s.ValueParameters = make([]ParameterSnapshot, 0, len(params))
	for _, p := range params {
		s.ValueParameters = append(s.ValueParameters, snapshotParameter(p))
	}

	ret, err := f.ReturnType(ctx)
	if err != nil {
		return nil, err
	}
	s.ReturnType = ret.String()

	initial, err := f.InitialSignatureFunction(ctx)
	if err != nil {
		return nil, err
	}
	if initial != nil {
		s.InitialSignature = string(initial.ID())
	}
	return s, nil
}

// EncodeSnapshots serializes snapshots with msgpack.
func EncodeSnapshots(snapshots []*FunctionSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(snapshots); err != nil {
		return nil, fmt.Errorf("encode ir snapshots: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshots is the inverse of EncodeSnapshots.
func DecodeSnapshots(data []byte) ([]*FunctionSnapshot, error) {
	var snapshots []*FunctionSnapshot
	if err := msgpack.Unmarshal(data, &snapshots); err != nil {
		return nil, fmt.Errorf("decode ir snapshots: %w", err)
	}
	return snapshots, nil
}
