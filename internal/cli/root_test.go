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

package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/fluent/internal/commands/shared"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "fluent", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.SilenceErrors)
	assert.True(t, cmd.ContainsGroup(GroupRequests))
	assert.True(t, cmd.ContainsGroup(GroupUtilities))
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"verbose", "quiet", "json", "config"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
	assert.Equal(t, "q", cmd.PersistentFlags().Lookup("quiet").Shorthand)
}

func TestGlobalFlagsReachShared(t *testing.T) {
	shared.ResetFlagsForTest()
	t.Cleanup(shared.ResetFlagsForTest)

	root := NewRootCommand()
	var seen bool
	AddToGroup(root, GroupUtilities, &cobra.Command{
		Use: "probe",
		RunE: func(*cobra.Command, []string) error {
			seen = shared.GetJSON() && shared.GetVerbose() && shared.GetConfigPath() == "/tmp/fluent.yaml"
			return nil
		},
	})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"probe", "--json", "-v", "--config", "/tmp/fluent.yaml"})

	require.NoError(t, root.Execute())
	assert.True(t, seen)
}

func TestVerboseAndQuietExclusive(t *testing.T) {
	shared.ResetFlagsForTest()
	t.Cleanup(shared.ResetFlagsForTest)

	root := NewRootCommand()
	AddToGroup(root, GroupUtilities, &cobra.Command{Use: "probe", RunE: func(*cobra.Command, []string) error { return nil }})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"probe", "-v", "-q"})

	assert.Error(t, root.Execute())
}

func TestAddToGroup(t *testing.T) {
	root := NewRootCommand()
	a := &cobra.Command{Use: "a"}
	b := &cobra.Command{Use: "b"}
	AddToGroup(root, GroupRequests, a, b)

	assert.Equal(t, GroupRequests, a.GroupID)
	assert.Equal(t, GroupRequests, b.GroupID)
	assert.Len(t, root.Commands(), 2)
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-05")
	defer SetVersion("dev", "unknown", "unknown")

	v, c, b := GetVersion()
	assert.Equal(t, "1.2.3", v)
	assert.Equal(t, "abc123", c)
	assert.Equal(t, "2026-01-05", b)
}
