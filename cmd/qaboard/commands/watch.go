// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/qaboard/cmd/qaboard/cli"
	"github.com/bureau-foundation/qaboard/lib/boardui"
	"github.com/bureau-foundation/qaboard/lib/livesync"
	"github.com/bureau-foundation/qaboard/lib/pushconn"
	"github.com/bureau-foundation/qaboard/lib/qaclient"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

type watchParams struct {
	ClientOptions
	PageSize int `flag:"page-size" desc:"questions revealed per page (default from configuration)"`
}

func watchCommand(streams cli.Streams) *cli.Command {
	var params watchParams
	return &cli.Command{
		Name:    "watch",
		Summary: "Open the live dashboard",
		Description: `Open the interactive dashboard. Questions are fetched once and then
kept current over the push channel, which reconnects on its own if
the server goes away.

Everyone can browse, search, and ask. Answering and changing status
are offered only when logged in as an admin.`,
		Usage:  "qaboard watch [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.PageSize < 0 {
				return cli.Validation("--page-size must not be negative")
			}
			level, err := cli.ParseLevel(params.LogLevel)
			if err != nil {
				return err
			}

			// The dashboard owns the terminal, so log records go to
			// its status bar instead of stderr.
			logHandler := boardui.NewTUILogHandler(level)
			logger := slog.New(logHandler)
			environment, err := params.resolve(logger)
			if err != nil {
				return err
			}

			user, err := currentUser(ctx, environment)
			if err != nil {
				return err
			}

			notifier := boardui.NewNotifier()
			session, err := livesync.Open(livesync.Config{
				Backend:        environment.Client,
				PushURL:        environment.Config.Push.URL,
				PushHeader:     environment.PushHeader(),
				ReconnectDelay: environment.Config.Push.ReconnectDelay,
				Dialer: pushconn.WebSocketDialer{
					ReadLimit: environment.Config.Push.ReadLimit,
				},
				Logger:            logger,
				OnPushEvent:       notifier.PushEvent,
				OnConnectionState: notifier.ConnectionState,
			})
			if err != nil {
				return cli.Internal("watch: %w", err)
			}
			defer session.Close()

			pageSize := environment.Config.View.PageSize
			if params.PageSize > 0 {
				pageSize = params.PageSize
			}
			model := boardui.NewModel(boardui.NewSessionSource(session), boardui.Options{
				User:     user,
				PageSize: pageSize,
			})

			program := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithInput(streams.In),
				tea.WithOutput(streams.Out),
			)
			notifier.SetProgram(program)
			logHandler.SetProgram(program)

			if _, err := program.Run(); err != nil && ctx.Err() == nil {
				return cli.Internal("watch: %w", err)
			}
			return nil
		},
	}
}

// currentUser returns the logged-in account, or nil when anonymous. A
// rejected token falls back to anonymous browsing.
func currentUser(ctx context.Context, environment *Environment) (*question.User, error) {
	if !environment.Authenticated() {
		return nil, nil
	}
	user, err := environment.Client.Me(ctx)
	if qaclient.IsAPIError(err, http.StatusUnauthorized) {
		environment.Logger.Warn("saved session was rejected, continuing anonymously",
			"path", environment.SessionPath,
		)
		return nil, nil
	}
	if err != nil {
		return nil, cli.FromAPI("watch", err)
	}
	return &user, nil
}
