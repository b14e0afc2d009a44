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

package main

import (
	"github.com/tombee/fluent/internal/cli"
	"github.com/tombee/fluent/internal/commands/completion"
	configcmd "github.com/tombee/fluent/internal/commands/config"
	"github.com/tombee/fluent/internal/commands/encode"
	"github.com/tombee/fluent/internal/commands/request"
	versioncmd "github.com/tombee/fluent/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	cli.AddToGroup(rootCmd, cli.GroupRequests, request.NewCommand())
	cli.AddToGroup(rootCmd, cli.GroupRequests, request.NewVerbCommands()...)

	cli.AddToGroup(rootCmd, cli.GroupUtilities,
		encode.NewCommand(),
		configcmd.NewCommand(),
		completion.NewCommand(),
		versioncmd.NewCommand(),
	)

	rootCmd.SetHelpCommand(cli.NewHelpCommand(rootCmd))

	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
