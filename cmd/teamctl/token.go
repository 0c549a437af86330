package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"teamhub/internal/middleware"
)

type tokenOptions struct {
	secret string
	user   string
	email  string
	name   string
	issuer string
	ttl    time.Duration
}

// newTokenCmd mints a bearer token locally with the server's shared secret.
// Meant for development and scripting; production tokens come from the
// identity provider.
func newTokenCmd() *cobra.Command {
	opts := tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed bearer token for a user id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.secret) == "" {
				return withCode(exitUsage, fmt.Errorf("--secret or JWT_SECRET is required"))
			}
			id := uuid.New()
			if opts.user != "" {
				var err error
				if id, err = parseID(opts.user); err != nil {
					return err
				}
			}
			if opts.ttl <= 0 {
				return withCode(exitUsage, fmt.Errorf("--ttl must be positive"))
			}

			now := time.Now()
			token, err := middleware.SignClaims(opts.secret, middleware.Claims{
				Email: opts.email,
				Name:  opts.name,
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   id.String(),
					Issuer:    opts.issuer,
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(opts.ttl)),
				},
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.secret, "secret", os.Getenv("JWT_SECRET"), "Shared signing secret (env JWT_SECRET)")
	cmd.Flags().StringVar(&opts.user, "user", "", "User id (random when empty)")
	cmd.Flags().StringVar(&opts.email, "email", "", "Email claim")
	cmd.Flags().StringVar(&opts.name, "name", "", "Name claim")
	cmd.Flags().StringVar(&opts.issuer, "issuer", os.Getenv("JWT_ISSUER"), "Issuer claim (env JWT_ISSUER)")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 12*time.Hour, "Token lifetime")
	return cmd
}
