// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/qaboard/lib/boardserver"
	"github.com/bureau-foundation/qaboard/lib/config"
	"github.com/bureau-foundation/qaboard/lib/questionevent"
	"github.com/bureau-foundation/qaboard/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args, builds the server, and serves until ctx is done.
// When ready is not nil, the bound listen address is sent on it once
// the listener is open.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, ready chan<- string) error {
	var (
		configPath  string
		envFile     string
		listen      string
		logLevel    string
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("qaboard-server", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "configuration file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&envFile, "env-file", "", "load environment variables from this file before reading the configuration")
	flagSet.StringVar(&listen, "listen", "", "listen address (overrides server.listen)")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, or error")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	if showVersion {
		fmt.Fprintf(stdout, "qaboard-server %s\n", version.Info())
		return nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	format, err := questionevent.ParseFormat(cfg.Server.FrameFormat)
	if err != nil {
		return err
	}

	server, err := boardserver.New(boardserver.Config{
		TokenSecret:    cfg.Server.TokenSecret,
		TokenTTL:       cfg.Server.TokenTTL,
		AdminUsers:     cfg.Server.AdminUsers,
		FrameFormat:    format,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Listen, err)
	}
	logger.Info("qaboard-server starting",
		"version", version.Info(),
		"environment", cfg.Environment,
		"address", listener.Addr().String(),
		"frame_format", cfg.Server.FrameFormat,
		"admin_users", len(cfg.Server.AdminUsers),
	)
	if ready != nil {
		ready <- listener.Addr().String()
	}

	if err := server.Serve(ctx, listener); err != nil {
		return err
	}
	logger.Info("qaboard-server stopped")
	return nil
}
