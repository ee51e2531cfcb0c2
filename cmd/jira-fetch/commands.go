package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Sternrassler/jira-agile-client/pkg/cache"
	"github.com/Sternrassler/jira-agile-client/pkg/jira"
	"github.com/Sternrassler/jira-agile-client/pkg/webhook"
	"github.com/spf13/cobra"
)

// line is one JSON record written to stdout.
type line struct {
	Kind   cache.Kind   `json:"kind"`
	Record cache.Record `json:"record"`
}

func newBoardsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "List all boards visible to the credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op := a.newOperation()
			n, err := a.emit(cache.KindBoards, a.accessors.Boards(cmd.Context(), op))
			if err != nil {
				return err
			}
			a.logger.Info().Str("operation", op.ID()).Int("boards", n).Msg("Boards listed")
			return nil
		},
	}
}

func newSyncCmd(a *app) *cobra.Command {
	var (
		boardID int
		jql     string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Read the projects, issues and sprints of one board in a single operation",
		Long: `Read the projects, issues and sprints of one board within one operation.

Every record is written to stdout as a JSON line. The issues listing is read a
second time at the end; within the same operation it is served from the
operation cache without contacting Jira.

Example:
  jira-fetch sync --board 12 --jql "status != Done"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if boardID <= 0 {
				return fmt.Errorf("--board must be a positive board id")
			}
			if jql == "" {
				jql = a.cfg.Jira.JQL
			}

			ctx := cmd.Context()
			op := a.newOperation()
			start := time.Now()

			projects, err := a.emit(cache.KindProjects, a.accessors.Projects(ctx, op, boardID))
			if err != nil {
				return err
			}
			issues, err := a.emit(cache.KindIssues, a.accessors.Issues(ctx, op, boardID, jira.IssueOptions{JQL: jql}))
			if err != nil {
				return err
			}
			sprints, err := a.emit(cache.KindSprints, a.accessors.Sprints(ctx, op, boardID))
			if err != nil {
				return err
			}

			cached, err := jira.Collect(a.accessors.Issues(ctx, op, boardID, jira.IssueOptions{JQL: jql}))
			if err != nil {
				return err
			}
			if len(cached) != issues {
				return fmt.Errorf("issue re-read returned %d records, first pass returned %d", len(cached), issues)
			}

			a.logger.Info().
				Str("operation", op.ID()).
				Int("board", boardID).
				Int("projects", projects).
				Int("issues", issues).
				Int("sprints", sprints).
				Dur("duration", time.Since(start)).
				Msg("Board synchronized")
			return nil
		},
	}

	cmd.Flags().IntVarP(&boardID, "board", "b", 0, "board id")
	cmd.Flags().StringVar(&jql, "jql", "", "JQL filter for the issues listing (default: JIRA_JQL)")
	cmd.MarkFlagRequired("board")

	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	get := &cobra.Command{
		Use:   "get",
		Short: "Fetch one project, issue or sprint by key or id",
	}

	get.AddCommand(
		&cobra.Command{
			Use:   "project <key>",
			Short: "Fetch one project by key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				record, err := a.accessors.Project(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.write(cache.KindProjects, record)
			},
		},
		&cobra.Command{
			Use:   "issue <key-or-id>",
			Short: "Fetch one issue by key or id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				record, err := a.accessors.Issue(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.write(cache.KindIssues, record)
			},
		},
		&cobra.Command{
			Use:   "sprint <id>",
			Short: "Fetch one sprint by id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("sprint id must be numeric: %q", args[0])
				}
				record, err := a.accessors.Sprint(cmd.Context(), id)
				if err != nil {
					return err
				}
				return a.write(cache.KindSprints, record)
			},
		},
	)

	return get
}

func newWebhookCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "webhook",
		Short: "Register the integration webhook unless it already exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateWebhook(); err != nil {
				return err
			}
			return webhook.NewRegistrar(a.client).Ensure(
				cmd.Context(),
				a.cfg.Webhook.AppHost,
				a.cfg.Webhook.IntegrationIdentifier,
			)
		},
	}
}

// emit writes every record of batches and returns how many were written.
func (a *app) emit(kind cache.Kind, batches jira.Batches) (int, error) {
	n := 0
	for batch, err := range batches {
		if err != nil {
			return n, err
		}
		for _, record := range batch {
			if err := a.write(kind, record); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func (a *app) write(kind cache.Kind, record cache.Record) error {
	data, err := json.Marshal(line{Kind: kind, Record: record})
	if err != nil {
		return fmt.Errorf("encode %s record: %w", kind, err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}
