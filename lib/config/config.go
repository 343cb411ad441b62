// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/qaboard/lib/questionevent"
)

// EnvironmentVariable names the configuration file when no --config
// flag is given.
const EnvironmentVariable = "QABOARD_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the configuration shared by the qaboard client and the
// reference server.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// API configures the request/response endpoint.
	API APIConfig `yaml:"api"`

	// Push configures the push channel.
	Push PushConfig `yaml:"push"`

	// View configures the dashboard.
	View ViewConfig `yaml:"view"`

	// Session configures where login state is saved.
	Session SessionConfig `yaml:"session"`

	// Server configures qaboard-server.
	Server ServerConfig `yaml:"server"`

	// Per-environment overrides, applied after the base config is
	// loaded when Environment matches.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per
// environment. Zero values leave the base value in place.
type ConfigOverrides struct {
	API    *APIConfig    `yaml:"api,omitempty"`
	Push   *PushConfig   `yaml:"push,omitempty"`
	View   *ViewConfig   `yaml:"view,omitempty"`
	Server *ServerConfig `yaml:"server,omitempty"`
}

// APIConfig configures the request/response endpoint.
type APIConfig struct {
	// URL is the API root.
	// Default: http://127.0.0.1:8000
	URL string `yaml:"url"`

	// Timeout bounds each request. Zero means no timeout.
	// Default: 15s
	Timeout time.Duration `yaml:"timeout"`
}

// PushConfig configures the push channel.
type PushConfig struct {
	// URL is the push endpoint. Empty derives it from API.URL by
	// swapping the scheme to ws/wss and appending /ws.
	URL string `yaml:"url"`

	// ReconnectDelay is the fixed wait between reconnect attempts.
	// Default: 3s
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`

	// ReadLimit caps one push message in bytes.
	// Default: 1 MiB
	ReadLimit int64 `yaml:"read_limit"`
}

// ViewConfig configures the dashboard.
type ViewConfig struct {
	// PageSize is how many questions each tab reveals at a time.
	// Default: 20
	PageSize int `yaml:"page_size"`
}

// SessionConfig configures where login state is saved.
type SessionConfig struct {
	// File is the session file path. Empty uses
	// $XDG_CONFIG_HOME/qaboard/session.json.
	File string `yaml:"file"`
}

// ServerConfig configures the reference server.
type ServerConfig struct {
	// Listen is the TCP address to serve on.
	// Default: 127.0.0.1:8000
	Listen string `yaml:"listen"`

	// AdminUsers are usernames granted admin rights when they
	// register.
	AdminUsers []string `yaml:"admin_users"`

	// TokenSecret signs access tokens. Required to run the server.
	// Default: ${QABOARD_TOKEN_SECRET}
	TokenSecret string `yaml:"token_secret"`

	// TokenTTL is how long an access token stays valid.
	// Default: 30m
	TokenTTL time.Duration `yaml:"token_ttl"`

	// FrameFormat is the push frame encoding: "json" (text frames)
	// or "cbor" (binary frames).
	// Default: json
	FrameFormat string `yaml:"frame_format"`

	// AllowedOrigins lists CORS origins. Default allows any.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when no file is given. Every
// field has a working value for a local server.
func Default() *Config {
	return &Config{
		Environment: Development,
		API: APIConfig{
			URL:     "http://127.0.0.1:8000",
			Timeout: 15 * time.Second,
		},
		Push: PushConfig{
			ReconnectDelay: 3 * time.Second,
			ReadLimit:      1 << 20,
		},
		View: ViewConfig{
			PageSize: 20,
		},
		Server: ServerConfig{
			Listen:         "127.0.0.1:8000",
			TokenSecret:    "${QABOARD_TOKEN_SECRET}",
			TokenTTL:       30 * time.Minute,
			FrameFormat:    "json",
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load loads the file named by QABOARD_CONFIG. When the variable is
// unset, it returns Default with variables expanded.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		cfg.derivePushURL()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Files ending
// in .json or .jsonc may contain comments and trailing commas.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	cfg.derivePushURL()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is a subset of YAML, so one decoder serves both.
		data = jsonc.ToJSON(data)
	}

	return yaml.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.API != nil {
		if overrides.API.URL != "" {
			c.API.URL = overrides.API.URL
		}
		if overrides.API.Timeout != 0 {
			c.API.Timeout = overrides.API.Timeout
		}
	}

	if overrides.Push != nil {
		if overrides.Push.URL != "" {
			c.Push.URL = overrides.Push.URL
		}
		if overrides.Push.ReconnectDelay != 0 {
			c.Push.ReconnectDelay = overrides.Push.ReconnectDelay
		}
		if overrides.Push.ReadLimit != 0 {
			c.Push.ReadLimit = overrides.Push.ReadLimit
		}
	}

	if overrides.View != nil && overrides.View.PageSize != 0 {
		c.View.PageSize = overrides.View.PageSize
	}

	if overrides.Server != nil {
		if overrides.Server.Listen != "" {
			c.Server.Listen = overrides.Server.Listen
		}
		if len(overrides.Server.AdminUsers) > 0 {
			c.Server.AdminUsers = overrides.Server.AdminUsers
		}
		if overrides.Server.TokenSecret != "" {
			c.Server.TokenSecret = overrides.Server.TokenSecret
		}
		if overrides.Server.TokenTTL != 0 {
			c.Server.TokenTTL = overrides.Server.TokenTTL
		}
		if overrides.Server.FrameFormat != "" {
			c.Server.FrameFormat = overrides.Server.FrameFormat
		}
		if len(overrides.Server.AllowedOrigins) > 0 {
			c.Server.AllowedOrigins = overrides.Server.AllowedOrigins
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in URLs,
// paths, and secrets.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.API.URL = expandVars(c.API.URL, vars)
	vars["QABOARD_API_URL"] = c.API.URL

	c.Push.URL = expandVars(c.Push.URL, vars)
	c.Session.File = expandVars(c.Session.File, vars)
	c.Server.Listen = expandVars(c.Server.Listen, vars)
	c.Server.TokenSecret = expandVars(c.Server.TokenSecret, vars)
}

// derivePushURL fills Push.URL from API.URL when it is unset. An API
// URL that does not parse is left for Validate to report.
func (c *Config) derivePushURL() {
	if c.Push.URL != "" {
		return
	}
	derived, err := PushURLFor(c.API.URL)
	if err != nil {
		return
	}
	c.Push.URL = derived
}

// PushURLFor returns the push endpoint served next to an API root:
// http becomes ws, https becomes wss, and /ws is appended to the path.
func PushURLFor(apiURL string) (string, error) {
	parsed, err := url.Parse(apiURL)
	if err != nil {
		return "", err
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("API URL %q must use http or https", apiURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/ws"
	return parsed.String(), nil
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the client-side configuration and reports every
// problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if err := checkScheme("api.url", c.API.URL, "http", "https"); err != nil {
		errs = append(errs, err)
	}
	if c.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("api.timeout must not be negative"))
	}

	if err := checkScheme("push.url", c.Push.URL, "ws", "wss"); err != nil {
		errs = append(errs, err)
	}
	if c.Push.ReconnectDelay <= 0 {
		errs = append(errs, fmt.Errorf("push.reconnect_delay must be positive"))
	}
	if c.Push.ReadLimit <= 0 {
		errs = append(errs, fmt.Errorf("push.read_limit must be positive"))
	}

	if c.View.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("view.page_size must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ValidateServer checks the sections qaboard-server needs.
func (c *Config) ValidateServer() error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, fmt.Errorf("server.listen is required"))
	}
	if c.Server.TokenSecret == "" {
		errs = append(errs, fmt.Errorf("server.token_secret is required (set QABOARD_TOKEN_SECRET)"))
	}
	if c.Server.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("server.token_ttl must be positive"))
	}
	if _, err := questionevent.ParseFormat(c.Server.FrameFormat); err != nil {
		errs = append(errs, fmt.Errorf("server.frame_format: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func checkScheme(field, value string, schemes ...string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	for _, scheme := range schemes {
		if parsed.Scheme == scheme {
			return nil
		}
	}
	return fmt.Errorf("%s %q must use one of: %s", field, value, strings.Join(schemes, ", "))
}
