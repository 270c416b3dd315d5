package cli

import (
	"fmt"

	"account-ledger/config"
	pgStorage "account-ledger/internal/adapter/storage/postgres"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newMigrateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back the PostgreSQL schema",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(pgStorage.MigrateUp), string(pgStorage.MigrateDown)},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction, err := pgStorage.ParseMigrateDirection(args[0])
			if err != nil {
				return err
			}

			cfg, err := rt.config()
			if err != nil {
				return err
			}
			if cfg.Store.Driver != config.StoreDriverPostgres {
				return fmt.Errorf("migrations apply to the %s store only, configured driver is %s", config.StoreDriverPostgres, cfg.Store.Driver)
			}

			if err := pgStorage.Migrate(cfg.Database.DSN(), direction, rt.logger(cmd, cfg)); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintfln("Migrations applied (%s)", direction))
			return nil
		},
	}
}
