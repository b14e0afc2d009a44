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

// Package config implements the config command, which shows the
// effective HTTP client configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/fluent/internal/commands/shared"
	"github.com/tombee/fluent/pkg/httpclient"
)

type showResponse struct {
	shared.JSONResponse
	Path   string         `json:"path,omitempty"`
	Config map[string]any `json:"config"`
}

// NewCommand creates the config command with subcommands.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View the effective configuration",
		Long: `View the configuration fluent requests start from.

Subcommands:
  show - Display the merged file, environment and default settings
  path - Show the config file location`,
		Args: cobra.NoArgs,
	}

	show := newShowCommand()
	cmd.AddCommand(show, newPathCommand())
	cmd.RunE = show.RunE

	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration after the config file and FLUENT_*
environment variables are applied. The proxy password is masked.`,
		Args: cobra.NoArgs,
		RunE: runShow,
	}
}

func newPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := shared.GetConfigPath()
			if path == "" {
				var err error
				path, err = httpclient.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("failed to determine config path: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func runShow(cmd *cobra.Command, _ []string) error {
	path := shared.ConfigFile()
	cfg, err := httpclient.LoadConfig(path)
	if err != nil {
		return shared.NewUsageError("invalid configuration", err)
	}
	masked := mask(cfg)

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		data, err := yaml.Marshal(masked)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return shared.EmitJSON(out, showResponse{
			JSONResponse: shared.NewJSONResponse("config show", true),
			Path:         path,
			Config:       tree,
		})
	}

	source := path
	if source == "" {
		source = "defaults and environment"
	}
	fmt.Fprintf(out, "# Configuration: %s\n", source)

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(masked); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return encoder.Close()
}

// mask returns a copy of cfg safe to print.
func mask(cfg httpclient.Config) httpclient.Config {
	if cfg.Proxy != nil {
		p := *cfg.Proxy
		p.Password = maskSecret(p.Password)
		cfg.Proxy = &p
	}
	return cfg
}

// maskSecret keeps the first and last two characters of long secrets.
func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 6:
		return "****"
	default:
		return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
	}
}
