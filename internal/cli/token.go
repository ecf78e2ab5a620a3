package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/civicvoice/complaint-service/internal/auth"
	"github.com/civicvoice/complaint-service/internal/domain"
)

// TokenCmd issues an access token for an existing actor id.
func TokenCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "token <actor-id>",
		Short: "Issue an access token signed with AUTH_JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.Role(strings.ToLower(role))
			if !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}

			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
			token, _, err := tokens.GenerateToken(args[0], r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(domain.RoleCitizen), "role carried in the token")
	return cmd
}
