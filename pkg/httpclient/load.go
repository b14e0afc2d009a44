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

package httpclient

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	fluenterrors "github.com/tombee/fluent/pkg/errors"
)

// Environment variables read by ApplyEnv.
const (
	EnvFollowRedirects = "FLUENT_FOLLOW_REDIRECTS"
	EnvCookies         = "FLUENT_COOKIES"
	EnvTimeout         = "FLUENT_TIMEOUT"
	EnvUserAgent       = "FLUENT_USER_AGENT"
	EnvProxyURL        = "FLUENT_PROXY_URL"
	EnvProxyUser       = "FLUENT_PROXY_USER"
	EnvProxyPassword   = "FLUENT_PROXY_PASSWORD"
)

// LoadConfig reads a YAML config file on top of DefaultConfig and then
// applies environment overrides. Keys absent from the file keep their
// defaults. Environment variables take precedence over the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, &fluenterrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		reason := fmt.Sprintf("failed to read %s", path)
		if errors.Is(err, fs.ErrNotExist) {
			reason = fmt.Sprintf("config file %s not found", path)
		}
		return &fluenterrors.ConfigError{Key: "config_file", Reason: reason, Cause: err}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &fluenterrors.ConfigError{
			Key:    "config_file",
			Reason: fmt.Sprintf("failed to parse YAML in %s", path),
			Cause:  err,
		}
	}
	return nil
}

// ApplyEnv overrides cfg from FLUENT_* environment variables.
func ApplyEnv(cfg *Config) error {
	if val := os.Getenv(EnvFollowRedirects); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return envError(EnvFollowRedirects, err)
		}
		cfg.FollowRedirects = b
	}

	if val := os.Getenv(EnvCookies); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return envError(EnvCookies, err)
		}
		cfg.CookieManagement = b
	}

	if val := os.Getenv(EnvTimeout); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return envError(EnvTimeout, err)
		}
		cfg.Timeout = d
	}

	if val := os.Getenv(EnvUserAgent); val != "" {
		cfg.UserAgent = val
	}

	if val := os.Getenv(EnvProxyURL); val != "" {
		if cfg.Proxy == nil {
			cfg.Proxy = &ProxyConfig{}
		}
		cfg.Proxy.URL = val
	}
	if cfg.Proxy != nil {
		if val := os.Getenv(EnvProxyUser); val != "" {
			cfg.Proxy.Username = val
		}
		if val := os.Getenv(EnvProxyPassword); val != "" {
			cfg.Proxy.Password = val
		}
	}

	return nil
}

func envError(key string, err error) error {
	return &fluenterrors.ConfigError{
		Key:    key,
		Reason: "invalid value",
		Cause:  err,
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/fluent/config.yaml, falling
// back to ~/.config/fluent/config.yaml.
func DefaultConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "fluent", "config.yaml"), nil
}
