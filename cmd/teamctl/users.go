package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newUsersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage team members (admin only)",
	}
	cmd.AddCommand(newUsersListCmd(opts))
	cmd.AddCommand(newUsersRoleCmd(opts))
	cmd.AddCommand(newUsersAccessCmd(opts))
	return cmd
}

func newUsersListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			users, err := c.Users(cmd.Context())
			if err != nil {
				return apiFailure(err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tMAINTENANCE")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.Role, u.MaintenanceAccess)
			}
			return tw.Flush()
		},
	}
}

func newUsersRoleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "role <id> <student|mentor|admin>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			u, err := c.SetRole(cmd.Context(), id, args[1])
			if err != nil {
				return apiFailure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Name, u.Role)
			return nil
		},
	}
}

func newUsersAccessCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "access <id> <true|false>",
		Short: "Grant or revoke maintenance access",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			enabled, err := strconv.ParseBool(args[1])
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("invalid access value %q", args[1]))
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			u, err := c.SetMaintenanceAccess(cmd.Context(), id, enabled)
			if err != nil {
				return apiFailure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s maintenance access: %t\n", u.Name, u.MaintenanceAccess)
			return nil
		},
	}
}
