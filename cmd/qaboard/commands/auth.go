// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bureau-foundation/qaboard/cmd/qaboard/cli"
	"github.com/bureau-foundation/qaboard/lib/qaclient"
)

type loginParams struct {
	ClientOptions
	PasswordFile string `flag:"password-file" desc:"read the password from this file (\"-\" for stdin) instead of prompting"`
}

func loginCommand(streams cli.Streams) *cli.Command {
	var params loginParams
	return &cli.Command{
		Name:    "login",
		Summary: "Log in and save a session",
		Description: `Exchange a username and password for an access token and save it to
the session file. Later commands against the same API send the token
automatically.`,
		Usage: "qaboard login <username> [flags]",
		Examples: []cli.Example{
			{Command: "qaboard login dana"},
			{Description: "Non-interactive login", Command: "qaboard login ops --password-file - < password.txt"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return cli.Validation("username is required\n\nUsage: qaboard login <username>")
			}
			username := args[0]
			environment, err := params.Resolve(streams)
			if err != nil {
				return err
			}
			password, err := cli.ReadPassword(streams, params.PasswordFile)
			if err != nil {
				return err
			}

			response, err := environment.Client.Login(ctx, username, password)
			if err != nil {
				return cli.FromAPI("login", err)
			}
			environment.Client.SetToken(response.AccessToken)
			user, err := environment.Client.Me(ctx)
			if err != nil {
				return cli.FromAPI("login", err)
			}

			session := &cli.Session{
				APIURL:      environment.Config.API.URL,
				Username:    user.Username,
				AccessToken: response.AccessToken,
			}
			if err := cli.SaveSessionTo(session, environment.SessionPath); err != nil {
				return cli.Internal("login: %w", err)
			}
			environment.Logger.Info("saved session",
				"path", environment.SessionPath,
				"username", user.Username,
			)

			role := ""
			if user.IsAdmin {
				role = " (admin)"
			}
			fmt.Fprintf(streams.Out, "Logged in as %s%s\n", user.Username, role)
			return nil
		},
	}
}

type registerParams struct {
	ClientOptions
	cli.JSONOutput
	Email        string `flag:"email" desc:"email address for the account"`
	PasswordFile string `flag:"password-file" desc:"read the password from this file (\"-\" for stdin) instead of prompting"`
}

func registerCommand(streams cli.Streams) *cli.Command {
	var params registerParams
	return &cli.Command{
		Name:    "register",
		Summary: "Create an account",
		Description: `Create an account on the board. Registration does not log in; run
"qaboard login" afterwards.`,
		Usage: "qaboard register <username> --email <address> [flags]",
		Examples: []cli.Example{
			{Command: "qaboard register dana --email dana@example.com"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return cli.Validation("username is required\n\nUsage: qaboard register <username> --email <address>")
			}
			if params.Email == "" {
				return cli.Validation("--email is required")
			}
			environment, err := params.Resolve(streams)
			if err != nil {
				return err
			}
			password, err := cli.ReadPassword(streams, params.PasswordFile)
			if err != nil {
				return err
			}

			user, err := environment.Client.Register(ctx, qaclient.RegisterRequest{
				Username: args[0],
				Email:    params.Email,
				Password: password,
			})
			if err != nil {
				return cli.FromAPI("register", err)
			}
			if done, err := params.EmitJSON(streams.Out, user); done {
				return err
			}
			fmt.Fprintf(streams.Out, "Registered %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
}

type whoamiParams struct {
	ClientOptions
	cli.JSONOutput
	Check bool `flag:"check" desc:"also check that the API is healthy; exit non-zero if not"`
}

// whoamiResult is the --json form of "qaboard whoami".
type whoamiResult struct {
	APIURL        string `json:"api_url"`
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	IsAdmin       bool   `json:"is_admin"`
	Healthy       *bool  `json:"healthy,omitempty"`
}

func whoamiCommand(streams cli.Streams) *cli.Command {
	var params whoamiParams
	return &cli.Command{
		Name:    "whoami",
		Summary: "Show the current login",
		Description: `Show which API the CLI talks to and which account, if any, the saved
session belongs to. With --check, also query the health endpoint and
exit with status 1 when the API is not healthy.`,
		Usage:  "qaboard whoami [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			environment, err := params.Resolve(streams)
			if err != nil {
				return err
			}

			result := whoamiResult{APIURL: environment.Config.API.URL}
			if environment.Authenticated() {
				user, err := environment.Client.Me(ctx)
				switch {
				case qaclient.IsAPIError(err, http.StatusUnauthorized):
					environment.Logger.Warn("saved session was rejected", "path", environment.SessionPath)
				case err != nil:
					return cli.FromAPI("whoami", err)
				default:
					result.Authenticated = true
					result.Username = user.Username
					result.IsAdmin = user.IsAdmin
				}
			}

			healthy := true
			if params.Check {
				status, err := environment.Client.Health(ctx)
				if err != nil || status.Status != "ok" {
					healthy = false
					environment.Logger.Warn("health check failed", "status", status.Status, "error", err)
				}
				result.Healthy = &healthy
			}

			if done, err := params.EmitJSON(streams.Out, result); done {
				if err != nil {
					return err
				}
				if !healthy {
					return &cli.ExitError{Code: 1}
				}
				return nil
			}

			fmt.Fprintf(streams.Out, "API:  %s\n", result.APIURL)
			switch {
			case result.Authenticated && result.IsAdmin:
				fmt.Fprintf(streams.Out, "User: %s (admin)\n", result.Username)
			case result.Authenticated:
				fmt.Fprintf(streams.Out, "User: %s\n", result.Username)
			default:
				fmt.Fprintln(streams.Out, "User: anonymous")
			}
			if params.Check {
				if healthy {
					fmt.Fprintln(streams.Out, "Health: ok")
				} else {
					fmt.Fprintln(streams.Out, "Health: unavailable")
					return &cli.ExitError{Code: 1}
				}
			}
			return nil
		},
	}
}

type logoutParams struct {
	ClientOptions
}

func logoutCommand(streams cli.Streams) *cli.Command {
	var params logoutParams
	return &cli.Command{
		Name:    "logout",
		Summary: "Forget the saved session",
		Usage:   "qaboard logout [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			environment, err := params.Resolve(streams)
			if err != nil {
				return err
			}
			if _, err := cli.LoadSessionFrom(environment.SessionPath); errors.Is(err, cli.ErrNoSession) {
				fmt.Fprintln(streams.Out, "Not logged in")
				return nil
			}
			if err := cli.RemoveSession(environment.SessionPath); err != nil {
				return cli.Internal("logout: %w", err)
			}
			fmt.Fprintln(streams.Out, "Logged out")
			return nil
		},
	}
}
