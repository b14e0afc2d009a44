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

// Package shared holds the global flags, exit codes and output helpers
// used by every fluent command.
package shared

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	fluentlog "github.com/tombee/fluent/internal/log"
	"github.com/tombee/fluent/pkg/httpclient"
)

// Global flag values, bound by the root command.
var (
	verboseFlag bool
	quietFlag   bool
	jsonFlag    bool
	configFlag  string

	// Build-time version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// RegisterFlagPointers returns pointers to the global flag variables for
// the root command to bind.
func RegisterFlagPointers() (verbose, quiet, json *bool, config *string) {
	return &verboseFlag, &quietFlag, &jsonFlag, &configFlag
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verboseFlag
}

// GetQuiet returns the quiet flag value
func GetQuiet() bool {
	return quietFlag
}

// GetJSON returns the JSON output flag value
func GetJSON() bool {
	return jsonFlag
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return configFlag
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

// SetConfigPathForTest sets the config path for testing purposes
func SetConfigPathForTest(path string) {
	configFlag = path
}

// ConfigFile returns the --config path. Without one it returns the
// default path if that file exists, and "" otherwise.
func ConfigFile() string {
	if configFlag != "" {
		return configFlag
	}
	p, err := httpclient.DefaultConfigPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return p
}

// ResetFlagsForTest clears every global flag.
func ResetFlagsForTest() {
	verboseFlag, quietFlag, jsonFlag, configFlag = false, false, false, ""
}

// NewLogger builds the CLI logger writing to w. Environment settings
// apply first, then --verbose forces debug and --quiet forces error.
// Output is text unless LOG_FORMAT or --json ask for JSON.
func NewLogger(w io.Writer) *slog.Logger {
	cfg := fluentlog.FromEnv()
	cfg.Output = w
	if os.Getenv("LOG_FORMAT") == "" && !jsonFlag {
		cfg.Format = fluentlog.FormatText
	}
	switch {
	case verboseFlag:
		cfg.Level = "debug"
	case quietFlag:
		cfg.Level = "error"
	}
	return fluentlog.New(cfg)
}
