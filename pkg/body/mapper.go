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

	"github.com/goccy/go-json"
)

// ObjectMapper converts between Go values and a wire representation.
type ObjectMapper interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONMapper is the default ObjectMapper, backed by go-json.
type JSONMapper struct {
	// Indent, when set, pretty-prints marshalled output.
	Indent string
	// DisallowUnknownFields rejects object keys with no matching field.
	DisallowUnknownFields bool
}

var _ ObjectMapper = JSONMapper{}

func (m JSONMapper) Marshal(v any) ([]byte, error) {
	if m.Indent != "" {
		return json.MarshalIndent(v, "", m.Indent)
	}
	return json.Marshal(v)
}

func (m JSONMapper) Unmarshal(data []byte, v any) error {
	if m.DisallowUnknownFields {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	}
	return json.Unmarshal(data, v)
}

// MapperOrDefault returns m, or a JSONMapper when m is nil.
func MapperOrDefault(m ObjectMapper) ObjectMapper {
	if m == nil {
		return JSONMapper{}
	}
	return m
}
