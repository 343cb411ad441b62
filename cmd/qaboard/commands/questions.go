// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/qaboard/cmd/qaboard/cli"
	"github.com/bureau-foundation/qaboard/lib/questionview"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// columnWidth caps the message and answer columns of "qaboard list".
const columnWidth = 60

type listParams struct {
	ClientOptions
	cli.JSONOutput
	Tab    string `flag:"tab,t" desc:"tab to list: all, pending, escalated, or answered" default:"all"`
	Search string `flag:"search,s" desc:"only questions whose message or author contains this text"`
	Limit  int    `flag:"limit,n" desc:"maximum number of questions to print (0 for no limit)"`
}

func listCommand(streams cli.Streams) *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "list",
		Summary: "Print the questions on the board",
		Description: `Fetch every question once and print the selected tab, ordered the way
the dashboard orders it: escalated questions first, then newest first.`,
		Usage: "qaboard list [flags]",
		Examples: []cli.Example{
			{Description: "Show questions waiting for an answer", Command: "qaboard list --tab pending"},
			{Description: "Search and emit JSON", Command: "qaboard list --search deploy --json"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			tab, err := questionview.ParseTab(params.Tab)
			if err != nil {
				return cli.Validation("--tab: %w", err)
			}
			if params.Limit < 0 {
				return cli.Validation("--limit must not be negative")
			}
			environment, err := params.Resolve(streams)
			if err != nil {
				return err
			}

			questions, err := environment.Client.ListQuestions(ctx)
			if err != nil {
				return cli.FromAPI("list questions", err)
			}
			selected := questionview.Select(questions, params.Search, tab)
			if params.Limit > 0 && len(selected) > params.Limit {
				selected = selected[:params.Limit]
			}

			if done, err := params.EmitJSON(streams.Out, selected); done {
				return err
			}
			if len(selected) == 0 {
				fmt.Fprintln(streams.Out, "No questions")
				return nil
			}
			writer := tabwriter.NewWriter(streams.Out, 2, 0, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tSTATUS\tAUTHOR\tASKED\tMESSAGE\tANSWER")
			for _, q := range selected {
				asked := ""
				if !q.CreatedAt.IsZero() {
					asked = q.CreatedAt.Local().Format("2006-01-02 15:04")
				}
				author := q.AuthorName
				if author == "" {
					author = "-"
				}
				fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\t%s\n",
					q.ID, q.Status, author, asked,
					ansi.Truncate(flatten(q.Message), columnWidth, "…"),
					ansi.Truncate(flatten(q.Answer), columnWidth, "…"),
				)
			}
			return writer.Flush()
		},
	}
}

type askParams struct {
	ClientOptions
	cli.JSONOutput
}

func askCommand(streams cli.Streams) *cli.Command {
	var params askParams
	return &cli.Command{
		Name:    "ask",
		Summary: "Post a question",
		Description: `Post a question to the board. When logged in, the question is
attributed to you; otherwise it is anonymous.`,
		Usage: "qaboard ask <question...> [flags]",
		Examples: []cli.Example{
			{Command: `qaboard ask "When does the keynote start?"`},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return cli.Validation("question text is required\n\nUsage: qaboard ask <question...>")
			}
			environment, err := params.Resolve(streams)
			if err != nil {
				return err
			}

			created, err := environment.Client.CreateQuestion(ctx, message)
			if err != nil {
				return cli.FromAPI("ask", err)
			}
			if done, err := params.EmitJSON(streams.Out, created); done {
				return err
			}
			fmt.Fprintf(streams.Out, "Asked question #%d\n", created.ID)
			return nil
		},
	}
}

type answerParams struct {
	ClientOptions
	cli.JSONOutput
}

func answerCommand(streams cli.Streams) *cli.Command {
	var params answerParams
	return &cli.Command{
		Name:    "answer",
		Summary: "Answer a question",
		Description: `Record an answer on a question, replacing any previous answer. The
question's status is not changed; use "qaboard status" for that.`,
		Usage: "qaboard answer <id> <answer...> [flags]",
		Examples: []cli.Example{
			{Command: `qaboard answer 12 "Room 4B, right after lunch"`},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if len(args) < 2 {
				return cli.Validation("question id and answer are required\n\nUsage: qaboard answer <id> <answer...>")
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			answer := strings.TrimSpace(strings.Join(args[1:], " "))
			if answer == "" {
				return cli.Validation("answer cannot be empty")
			}
			environment, err := params.Resolve(streams)
			if err != nil {
				return err
			}

			updated, err := environment.Client.SubmitAnswer(ctx, id, answer)
			if err != nil {
				return cli.FromAPI("answer", err)
			}
			if done, err := params.EmitJSON(streams.Out, updated); done {
				return err
			}
			fmt.Fprintf(streams.Out, "Answered question #%d\n", updated.ID)
			return nil
		},
	}
}

type statusParams struct {
	ClientOptions
	cli.JSONOutput
}

func statusCommand(streams cli.Streams) *cli.Command {
	var params statusParams
	return &cli.Command{
		Name:    "status",
		Summary: "Change a question's status (admin)",
		Description: `Move a question to pending, escalated, or answered. Requires an admin
login.`,
		Usage: "qaboard status <id> <pending|escalated|answered> [flags]",
		Examples: []cli.Example{
			{Description: "Escalate question 7", Command: "qaboard status 7 escalated"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return cli.Validation("question id and status are required\n\nUsage: qaboard status <id> <pending|escalated|answered>")
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := question.ParseStatus(args[1])
			if err != nil {
				return cli.Validation("%w", err)
			}
			environment, err := params.Resolve(streams)
			if err != nil {
				return err
			}
			if err := requireSession(environment, "status"); err != nil {
				return err
			}

			updated, err := environment.Client.SetStatus(ctx, id, status)
			if err != nil {
				return cli.FromAPI("status", err)
			}
			if done, err := params.EmitJSON(streams.Out, updated); done {
				return err
			}
			fmt.Fprintf(streams.Out, "Question #%d is now %s\n", updated.ID, updated.Status)
			return nil
		},
	}
}

type deleteParams struct {
	ClientOptions
}

func deleteCommand(streams cli.Streams) *cli.Command {
	var params deleteParams
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a question (admin)",
		Description: `Delete a question. Requires an admin login. Open dashboards do not see
the deletion until they refresh.`,
		Usage:  "qaboard delete <id> [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return cli.Validation("question id is required\n\nUsage: qaboard delete <id>")
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			environment, err := params.Resolve(streams)
			if err != nil {
				return err
			}
			if err := requireSession(environment, "delete"); err != nil {
				return err
			}

			if err := environment.Client.DeleteQuestion(ctx, id); err != nil {
				return cli.FromAPI("delete", err)
			}
			fmt.Fprintf(streams.Out, "Deleted question #%d\n", id)
			return nil
		},
	}
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(value, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Validation("invalid question id %q", value)
	}
	return id, nil
}

// flatten collapses whitespace runs to single spaces.
func flatten(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
