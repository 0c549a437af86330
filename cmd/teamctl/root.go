package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"teamhub/internal/client"
)

const defaultServer = "http://localhost:3000"

type rootOptions struct {
	server string
	token  string
}

func (o *rootOptions) client() (*client.Client, error) {
	c, err := client.New(o.server, client.WithToken(o.token))
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	return c, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "teamctl",
		Short:         "Command-line access to the team site API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("TEAMCTL_SERVER")
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", server, "API base URL (env TEAMCTL_SERVER)")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("TEAMCTL_TOKEN"), "Bearer token (env TEAMCTL_TOKEN)")

	cmd.AddCommand(newWhoamiCmd(opts))
	cmd.AddCommand(newProposalsCmd(opts))
	cmd.AddCommand(newProposeCmd(opts))
	cmd.AddCommand(newLeaderboardCmd(opts))
	cmd.AddCommand(newUsersCmd(opts))
	cmd.AddCommand(newTokenCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user, capability and permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			me, err := c.Me(cmd.Context())
			if err != nil {
				return apiFailure(err)
			}
			return writeJSON(cmd.OutOrStdout(), me)
		},
	}
}

func newLeaderboardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show outreach point totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			board, err := c.Leaderboard(cmd.Context())
			if err != nil {
				return apiFailure(err)
			}
			w := cmd.OutOrStdout()
			for i, e := range board {
				fmt.Fprintf(w, "%2d. %-24s %5d pts  %d events\n", i+1, e.Name, e.Points, e.Events)
			}
			return nil
		},
	}
}
