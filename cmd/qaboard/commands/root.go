// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the qaboard CLI command tree.
package commands

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/qaboard/cmd/qaboard/cli"
	"github.com/bureau-foundation/qaboard/lib/version"
)

// Root builds the complete qaboard command tree writing to streams.
func Root(streams cli.Streams) *cli.Command {
	return &cli.Command{
		Name: "qaboard",
		Description: `qaboard: a live question board.

Browse and ask questions from the terminal. Admins can answer them and
move them between pending, escalated, and answered. The dashboard
stays current as other people post and answer.`,
		Subcommands: []*cli.Command{
			watchCommand(streams),
			listCommand(streams),
			askCommand(streams),
			answerCommand(streams),
			statusCommand(streams),
			deleteCommand(streams),
			loginCommand(streams),
			logoutCommand(streams),
			registerCommand(streams),
			whoamiCommand(streams),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string) error {
					fmt.Fprintf(streams.Out, "qaboard %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Open the live dashboard",
				Command:     "qaboard watch",
			},
			{
				Description: "Point at a different server",
				Command:     "qaboard watch --api https://qa.example.com",
			},
			{
				Description: "Log in as an admin (saves session locally)",
				Command:     "qaboard login ops",
			},
			{
				Description: "List escalated questions as JSON",
				Command:     "qaboard list --tab escalated --json",
			},
		},
	}
}
