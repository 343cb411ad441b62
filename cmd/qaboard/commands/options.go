// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/qaboard/cmd/qaboard/cli"
	"github.com/bureau-foundation/qaboard/lib/config"
	"github.com/bureau-foundation/qaboard/lib/qaclient"
)

// ClientOptions are the flags shared by every command that talks to
// the API.
type ClientOptions struct {
	ConfigPath string
	EnvFile    string
	APIURL     string
	LogLevel   string
}

// AddFlags registers --config, --env-file, --api, and --log-level.
func (options *ClientOptions) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&options.ConfigPath, "config", "", "configuration file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&options.EnvFile, "env-file", "", "load environment variables from this file before reading the configuration")
	flagSet.StringVar(&options.APIURL, "api", "", "API root URL (overrides the configuration)")
	flagSet.StringVar(&options.LogLevel, "log-level", "warn", "log level: debug, info, warn, or error")
}

// Environment is everything a command needs to reach the API.
type Environment struct {
	Config *config.Config
	Client *qaclient.Client
	Logger *slog.Logger

	// SessionPath is where login state is read and written.
	SessionPath string

	// Session is the saved login for Config.API.URL, or nil when
	// anonymous.
	Session *cli.Session
}

// Authenticated reports whether requests carry a bearer token.
func (environment *Environment) Authenticated() bool {
	return environment.Session != nil
}

// Resolve loads the environment file and configuration, applies flag
// overrides, and builds an API client. A saved session is used only
// when it was issued by the same API root.
func (options *ClientOptions) Resolve(streams cli.Streams) (*Environment, error) {
	level, err := cli.ParseLevel(options.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := cli.NewCommandLogger(streams.Err, level)
	return options.resolve(logger)
}

// resolve is Resolve with the logger chosen by the caller. The watch
// command routes logs into the dashboard instead of stderr.
func (options *ClientOptions) resolve(logger *slog.Logger) (*Environment, error) {
	if options.EnvFile != "" {
		if err := godotenv.Load(options.EnvFile); err != nil {
			return nil, cli.Validation("loading env file %s: %w", options.EnvFile, err)
		}
	}

	var cfg *config.Config
	var err error
	if options.ConfigPath != "" {
		cfg, err = config.LoadFile(options.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, cli.Validation("%w", err)
	}

	if options.APIURL != "" {
		cfg.API.URL = strings.TrimRight(options.APIURL, "/")
		pushURL, err := config.PushURLFor(cfg.API.URL)
		if err != nil {
			return nil, cli.Validation("--api: %w", err)
		}
		cfg.Push.URL = pushURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration: %w", err)
	}

	environment := &Environment{
		Config:      cfg,
		Logger:      logger,
		SessionPath: cli.SessionFilePath(cfg.Session.File),
	}

	session, err := cli.LoadSessionFrom(environment.SessionPath)
	switch {
	case errors.Is(err, cli.ErrNoSession):
	case err != nil:
		logger.Warn("ignoring unreadable session file",
			"path", environment.SessionPath,
			"error", err,
		)
	case sameAPI(session.APIURL, cfg.API.URL):
		environment.Session = session
	default:
		logger.Info("ignoring session for a different API",
			"session_api", session.APIURL,
			"api", cfg.API.URL,
		)
	}

	token := ""
	if environment.Session != nil {
		token = environment.Session.AccessToken
	}
	environment.Client, err = qaclient.NewClient(qaclient.ClientConfig{
		BaseURL:    cfg.API.URL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout},
		Logger:     logger,
	})
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	return environment, nil
}

// PushHeader returns the headers sent when opening the push channel.
func (environment *Environment) PushHeader() http.Header {
	header := http.Header{}
	if environment.Session != nil {
		header.Set("Authorization", "Bearer "+environment.Session.AccessToken)
	}
	return header
}

func sameAPI(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}

// requireSession returns an error directing the user to log in when
// the environment is anonymous.
func requireSession(environment *Environment, action string) error {
	if environment.Session == nil {
		return cli.Forbidden("%s: %w", action, cli.ErrNoSession)
	}
	return nil
}
