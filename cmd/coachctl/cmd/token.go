package cmd

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/templui/goalcoach/internal/calendar"
	"github.com/templui/goalcoach/internal/config"
	"github.com/templui/goalcoach/internal/repository"
	"github.com/templui/goalcoach/internal/service"
)

// TokenCmd mints a session token for an existing user, for use as an
// Authorization bearer token against the API.
func TokenCmd() *cobra.Command {
	var expiry time.Duration

	token := &cobra.Command{
		Use:   "token <email>",
		Short: "Mint a session token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				if expiry <= 0 {
					expiry = cfg.JWTExpiry
				}
				auth := service.NewAuthService(
					repository.NewUserRepository(database),
					repository.NewProfileRepository(database),
					calendar.NewResolver(),
					cfg.JWTSecret,
					cfg.IsProduction(),
					expiry,
					cfg.DefaultTimezone,
				)

				user, err := auth.UserByEmail(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to find user %q: %w", args[0], err)
				}

				signed, expiresAt, err := auth.GenerateJWT(user)
				if err != nil {
					return fmt.Errorf("failed to sign token: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), signed)
				fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
				return nil
			})
		},
	}

	token.Flags().DurationVar(&expiry, "expiry", 0, "token lifetime (defaults to JWT_EXPIRY)")
	return token
}
