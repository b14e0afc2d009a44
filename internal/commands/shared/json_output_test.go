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

package shared

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitJSON(t *testing.T) {
	var buf bytes.Buffer
	resp := struct {
		JSONResponse
		Status int `json:"status"`
	}{
		JSONResponse: NewJSONResponse("request", true),
		Status:       200,
	}
	require.NoError(t, EmitJSON(&buf, resp))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "1.0", got["@version"])
	assert.Equal(t, "request", got["command"])
	assert.Equal(t, true, got["success"])
	assert.Equal(t, float64(200), got["status"])
	assert.Contains(t, buf.String(), "\n  \"", "output is indented")
}

func TestEmitJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := EmitJSONError(&buf, "request", []JSONError{{Code: "REQUEST_FAILED", Message: "refused"}})
	require.NoError(t, err)

	var got struct {
		Success bool        `json:"success"`
		Errors  []JSONError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.False(t, got.Success)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, "REQUEST_FAILED", got.Errors[0].Code)
	assert.Empty(t, got.Errors[0].Suggestion)
}

func TestNewLogger_VerboseAndQuiet(t *testing.T) {
	t.Cleanup(ResetFlagsForTest)
	t.Setenv("FLUENT_DEBUG", "")
	t.Setenv("FLUENT_LOG_LEVEL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	var buf bytes.Buffer
	verbose, quiet, _, _ := RegisterFlagPointers()

	*verbose = true
	NewLogger(&buf).Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")

	buf.Reset()
	*verbose = false
	*quiet = true
	logger := NewLogger(&buf)
	logger.Warn("hidden")
	logger.Error("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
