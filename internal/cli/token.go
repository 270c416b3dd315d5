package cli

import (
	"errors"
	"fmt"
	"time"

	"account-ledger/internal/service"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newTokenCmd(rt *runtime) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rt.config()
			if err != nil {
				return err
			}
			if cfg.Auth.Secret == "" {
				return errors.New("auth.secret is not configured; the API accepts unauthenticated requests")
			}

			tokens := service.NewJWTTokenService(cfg.Auth.Secret, cfg.Auth.Expiry, cfg.Auth.Issuer)
			token, expiresAt, err := tokens.Generate(subject)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			fmt.Fprint(cmd.ErrOrStderr(), pterm.Info.Sprintfln("Token for %q expires %s", subject, expiresAt.UTC().Format(time.RFC3339)))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "API client name carried in the token")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
