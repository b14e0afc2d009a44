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

package encode

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/fluent/internal/commands/shared"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return out.String(), err
}

func TestEncode(t *testing.T) {
	shared.ResetFlagsForTest()

	out, err := execute(t, "a b&c", "x=y/z")
	require.NoError(t, err)
	assert.Equal(t, "a+b%26c\nx%3Dy%2Fz\n", out)
}

func TestDecode(t *testing.T) {
	shared.ResetFlagsForTest()

	out, err := execute(t, "--decode", "a+b%26c", "caf%C3%A9")
	require.NoError(t, err)
	assert.Equal(t, "a b&c\ncafé\n", out)
}

func TestDecode_Invalid(t *testing.T) {
	shared.ResetFlagsForTest()

	_, err := execute(t, "--decode", "%zz")
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidUsage, shared.ExitCode(err))
}

func TestEncode_RequiresArgument(t *testing.T) {
	_, err := execute(t)
	require.Error(t, err)
}

func TestEncode_JSON(t *testing.T) {
	shared.ResetFlagsForTest()
	t.Cleanup(shared.ResetFlagsForTest)
	_, _, jsonFlag, _ := shared.RegisterFlagPointers()
	*jsonFlag = true

	out, err := execute(t, "a b")
	require.NoError(t, err)

	var got struct {
		Command string `json:"command"`
		Results []struct {
			Input  string `json:"input"`
			Output string `json:"output"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "encode", got.Command)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "a b", got.Results[0].Input)
	assert.Equal(t, "a+b", got.Results[0].Output)
}
