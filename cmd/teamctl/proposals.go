package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"teamhub/internal/client"
	"teamhub/internal/maintenance"
	"teamhub/internal/models"
)

func newProposalsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "proposals",
		Aliases: []string{"p"},
		Short:   "Browse and review maintenance proposals",
	}
	cmd.AddCommand(newProposalsListCmd(opts))
	cmd.AddCommand(newProposalShowCmd(opts))
	cmd.AddCommand(newProposalDiffCmd(opts))
	cmd.AddCommand(newReviewCmd(opts, "approve", "Approve and apply a pending proposal", (*client.Client).Approve))
	cmd.AddCommand(newReviewCmd(opts, "reject", "Reject a pending proposal", (*client.Client).Reject))
	return cmd
}

func newProposalsListCmd(opts *rootOptions) *cobra.Command {
	var status string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List proposals visible to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			items, err := c.Proposals(cmd.Context(), status)
			if err != nil {
				return apiFailure(err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tSUBMITTER\tSUMMARY")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Status, it.SubmitterName, it.Summary)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, approved, rejected)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newProposalShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			item, err := c.Proposal(cmd.Context(), id)
			if err != nil {
				return apiFailure(err)
			}
			return writeJSON(cmd.OutOrStdout(), item)
		},
	}
}

func newProposalDiffCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <id>",
		Short: "Show the JSON Patch approving a proposal would apply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			patch, err := c.Diff(cmd.Context(), id)
			if err != nil {
				return apiFailure(err)
			}
			return writeJSON(cmd.OutOrStdout(), patch)
		},
	}
}

type reviewCall func(c *client.Client, ctx context.Context, id uuid.UUID, notes string) (*maintenance.Item, error)

func newReviewCmd(opts *rootOptions, use, short string, call reviewCall) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			item, err := call(c, cmd.Context(), id, notes)
			if err != nil {
				return apiFailure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", item.ID, item.Status, item.Summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "Review comments")
	return cmd
}

func newProposeCmd(opts *rootOptions) *cobra.Command {
	var (
		changeType  string
		target      string
		data        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Submit a change for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub := maintenance.Submission{
				ChangeType:  models.ChangeType(strings.TrimSpace(changeType)),
				Description: description,
			}
			if !sub.ChangeType.Valid() {
				return withCode(exitUsage, fmt.Errorf("unknown change type %q", changeType))
			}
			if target != "" {
				id, err := parseID(target)
				if err != nil {
					return err
				}
				sub.TargetID = &id
			}
			raw, err := readData(data)
			if err != nil {
				return err
			}
			sub.ProposedData = raw

			c, err := opts.client()
			if err != nil {
				return err
			}
			item, err := c.Propose(cmd.Context(), sub)
			if err != nil {
				return apiFailure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", item.ID, item.Status, item.Summary)
			return nil
		},
	}
	cmd.Example = `  teamctl propose --type robot --data '{"year":2024,"name":"Apex","game":"Reefscape"}'
  teamctl propose --type subteam_update --target <id> --data @subteam.json
  teamctl propose --type robot_delete --target <id> --description "duplicate entry"`
	cmd.Flags().StringVar(&changeType, "type", "", "Change type, e.g. robot, page_delete (required)")
	cmd.Flags().StringVar(&target, "target", "", "Target entity id for updates and deletes")
	cmd.Flags().StringVar(&data, "data", "", "Proposed data as JSON, or @file to read it from a file")
	cmd.Flags().StringVar(&description, "description", "", "Why the change is needed")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, withCode(exitUsage, fmt.Errorf("invalid id %q", s))
	}
	return id, nil
}

// readData returns the --data value as JSON. A leading @ names a file.
func readData(v string) (json.RawMessage, error) {
	if v == "" {
		return nil, nil
	}
	b := []byte(v)
	if path, ok := strings.CutPrefix(v, "@"); ok {
		var err error
		b, err = os.ReadFile(path)
		if err != nil {
			return nil, withCode(exitUsage, fmt.Errorf("read --data file: %w", err))
		}
	}
	if !json.Valid(b) {
		return nil, withCode(exitUsage, fmt.Errorf("--data is not valid JSON"))
	}
	return b, nil
}
