// Copyright 2025 Tom Barlow
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

package body

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// PatchOp is an RFC 6902 operation name.
type PatchOp string

const (
	OpAdd     PatchOp = "add"
	OpRemove  PatchOp = "remove"
	OpReplace PatchOp = "replace"
	OpMove    PatchOp = "move"
	OpCopy    PatchOp = "copy"
	OpTest    PatchOp = "test"
)

// PatchOperation is a single entry of a JSON Patch document.
type PatchOperation struct {
	Op    PatchOp
	Path  string
	From  string
	Value any
}

// MarshalJSON emits only the members each operation defines, so a nil
// value on add is still written as "value": null.
func (o PatchOperation) MarshalJSON() ([]byte, error) {
	switch o.Op {
	case OpAdd, OpReplace, OpTest:
		return json.Marshal(struct {
			Op    PatchOp `json:"op"`
			Path  string  `json:"path"`
			Value any     `json:"value"`
		}{o.Op, o.Path, o.Value})
	case OpMove, OpCopy:
		return json.Marshal(struct {
			Op   PatchOp `json:"op"`
			Path string  `json:"path"`
			From string  `json:"from"`
		}{o.Op, o.Path, o.From})
	case OpRemove:
		return json.Marshal(struct {
			Op   PatchOp `json:"op"`
			Path string  `json:"path"`
		}{o.Op, o.Path})
	}
	return nil, fmt.Errorf("unknown patch op %q", o.Op)
}

// UnmarshalJSON accepts the wire form produced by MarshalJSON.
func (o *PatchOperation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Op    PatchOp `json:"op"`
		Path  string  `json:"path"`
		From  string  `json:"from"`
		Value any     `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = PatchOperation{Op: raw.Op, Path: raw.Path, From: raw.From, Value: raw.Value}
	return nil
}

// JSONPatch builds an application/json-patch+json document.
type JSONPatch struct {
	ops []PatchOperation
}

// NewJSONPatch returns an empty patch.
func NewJSONPatch() *JSONPatch {
	return &JSONPatch{}
}

func (p *JSONPatch) Add(path string, value any) *JSONPatch {
	p.ops = append(p.ops, PatchOperation{Op: OpAdd, Path: path, Value: value})
	return p
}

func (p *JSONPatch) Remove(path string) *JSONPatch {
	p.ops = append(p.ops, PatchOperation{Op: OpRemove, Path: path})
	return p
}

func (p *JSONPatch) Replace(path string, value any) *JSONPatch {
	p.ops = append(p.ops, PatchOperation{Op: OpReplace, Path: path, Value: value})
	return p
}

func (p *JSONPatch) Move(from, path string) *JSONPatch {
	p.ops = append(p.ops, PatchOperation{Op: OpMove, Path: path, From: from})
	return p
}

func (p *JSONPatch) Copy(from, path string) *JSONPatch {
	p.ops = append(p.ops, PatchOperation{Op: OpCopy, Path: path, From: from})
	return p
}

func (p *JSONPatch) Test(path string, value any) *JSONPatch {
	p.ops = append(p.ops, PatchOperation{Op: OpTest, Path: path, Value: value})
	return p
}

// Operations returns a copy of the operations in insertion order.
func (p *JSONPatch) Operations() []PatchOperation {
	return append([]PatchOperation(nil), p.ops...)
}

// MarshalJSON renders the patch as a JSON array; an empty patch is [].
func (p *JSONPatch) MarshalJSON() ([]byte, error) {
	if len(p.ops) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(p.ops)
}

// Encode returns the patch document and its content type.
func (p *JSONPatch) Encode() (io.Reader, string, error) {
	b, err := p.MarshalJSON()
	if err != nil {
		return nil, "", fmt.Errorf("encoding json patch: %w", err)
	}
	return bytes.NewReader(b), ContentTypeJSONPatch, nil
}
