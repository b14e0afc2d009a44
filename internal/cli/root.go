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
	"github.com/spf13/cobra"

	"github.com/tombee/fluent/internal/commands/shared"
)

// Command group IDs shown in the root help.
const (
	GroupRequests  = "requests"
	GroupUtilities = "utilities"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for fluent
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fluent",
		Short: "fluent - a friendly HTTP client",
		Long: `fluent sends HTTP requests from the command line with pooled
connections, redirects, cookies, proxies, retries and pluggable
authentication (basic, bearer, OAuth2 client credentials, AWS SigV4).

Run 'fluent get https://example.com' to fetch a page.
Run 'fluent help request' to see every request flag.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	verbose, quiet, json, config := shared.RegisterFlagPointers()

	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable debug logging on stderr")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/fluent/config.yaml)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddGroup(
		&cobra.Group{ID: GroupRequests, Title: "Requests:"},
		&cobra.Group{ID: GroupUtilities, Title: "Utilities:"},
	)

	return cmd
}

// AddToGroup registers cmds on root under the given group.
func AddToGroup(root *cobra.Command, group string, cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.GroupID = group
		root.AddCommand(c)
	}
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
