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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONPatch_Encode(t *testing.T) {
	patch := NewJSONPatch().
		Add("/tags/-", "new").
		Remove("/obsolete").
		Replace("/name", "fluent").
		Move("/old", "/new").
		Copy("/a", "/b").
		Test("/flag", false).
		Add("/nothing", nil)

	r, contentType, err := patch.Encode()
	require.NoError(t, err)
	assert.Equal(t, "application/json-patch+json", contentType)

	b, err := ToBytes(r)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"op":"add","path":"/tags/-","value":"new"},
		{"op":"remove","path":"/obsolete"},
		{"op":"replace","path":"/name","value":"fluent"},
		{"op":"move","path":"/new","from":"/old"},
		{"op":"copy","path":"/b","from":"/a"},
		{"op":"test","path":"/flag","value":false},
		{"op":"add","path":"/nothing","value":null}
	]`, string(b))
}

func TestJSONPatch_Empty(t *testing.T) {
	b, err := NewJSONPatch().MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestJSONPatch_UnknownOp(t *testing.T) {
	_, err := PatchOperation{Op: "merge", Path: "/"}.MarshalJSON()
	assert.Error(t, err)
}

func TestPatchOperation_Unmarshal(t *testing.T) {
	var ops []PatchOperation
	require.NoError(t, JSONMapper{}.Unmarshal([]byte(`[{"op":"move","from":"/a","path":"/b"}]`), &ops))
	require.Len(t, ops, 1)
	assert.Equal(t, PatchOperation{Op: OpMove, From: "/a", Path: "/b"}, ops[0])
}

func TestJSONPatch_OperationsIsCopy(t *testing.T) {
	patch := NewJSONPatch().Remove("/a")
	ops := patch.Operations()
	ops[0].Path = "/changed"
	assert.Equal(t, "/a", patch.Operations()[0].Path)
}
