package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"outreach-backend/internal/shared/auth"
)

func (c *cli) tokenCommand() *cobra.Command {
	var (
		email string
		admin bool
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a bearer token signed with AUTH_JWT_SECRET for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			signer, err := auth.NewJWTVerifier(cfg.AuthJWTSecret, nil)
			if err != nil {
				return err
			}
			id := auth.Identity{UserID: args[0], Email: email}
			if admin {
				id.Role = auth.RoleAdmin
			}
			tok, err := signer.Sign(id, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
