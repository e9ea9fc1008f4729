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

// Package config loads relay settings from the XDG config directory with
// environment-variable overrides.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/forit/m365-relay/pkg/errors"
)

// Settings configures an adapter process.
type Settings struct {
	// Adapter is this process's identity against connection mcps lists.
	Adapter string `yaml:"adapter"`

	// PoolURL is the session pool endpoint.
	PoolURL string `yaml:"pool_url"`

	// TimeoutSeconds is the pool request timeout. Long by default: remote
	// execution and interactive auth are slow.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// RegistryPath overrides the shared connection registry file path.
	// Empty means ~/.m365-connections.json.
	RegistryPath string `yaml:"registry_path"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	// Empty defers to the logging package's environment handling.
	LogLevel string `yaml:"log_level"`

	// LogFormat is json or text. Empty defers to the environment.
	LogFormat string `yaml:"log_format"`
}

// Defaults returns the baseline settings. LogLevel and LogFormat stay
// empty so that M365_RELAY_DEBUG and the other log environment knobs
// win unless the user configures logging explicitly.
func Defaults() *Settings {
	return &Settings{
		Adapter:        "mm",
		PoolURL:        "http://localhost:5200",
		TimeoutSeconds: 120,
	}
}

// Timeout returns the pool request timeout as a duration.
func (s *Settings) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Load reads settings from the config file (if present) and applies
// environment overrides. A missing file is not an error; a malformed one is.
func Load() (*Settings, error) {
	settings := Defaults()

	path, err := Path()
	if err == nil {
		if data, readErr := os.ReadFile(path); readErr == nil {
			if err := yaml.Unmarshal(data, settings); err != nil {
				return nil, &errors.ConfigError{Key: path, Reason: "malformed settings file", Cause: err}
			}
		}
	}

	applyEnv(settings)
	return settings, nil
}

// applyEnv overlays M365_RELAY_* environment variables.
func applyEnv(s *Settings) {
	if v := os.Getenv("M365_RELAY_ADAPTER"); v != "" {
		s.Adapter = v
	}
	if v := os.Getenv("M365_RELAY_POOL_URL"); v != "" {
		s.PoolURL = v
	}
	if v := os.Getenv("M365_RELAY_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			s.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv("M365_RELAY_CONNECTIONS_FILE"); v != "" {
		s.RegistryPath = v
	}
	if v := os.Getenv("M365_RELAY_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv("M365_RELAY_LOG_FORMAT"); v != "" {
		s.LogFormat = v
	}
}
