// Package cli implements ledgerctl, the operator command line for the ledger.
package cli

import (
	"context"
	"errors"
	"fmt"

	"account-ledger/config"
	"account-ledger/internal/app"
	"account-ledger/pkg/apperror"
	"account-ledger/pkg/logger"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// runtime carries what commands share: the loaded config and a lazily
// built App that is closed once the command returns.
type runtime struct {
	configPath string
	verbose    bool

	cfg     *config.Config
	app     *app.App
	cleanup func()

	newApp func(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app.App, func(), error)
}

// Execute runs ledgerctl with os.Args and returns the process exit code.
func Execute() int {
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgLightRed, pterm.FgBlack),
	}

	rt := &runtime{newApp: app.New}
	defer rt.close()

	if err := newRootCmd(rt).Execute(); err != nil {
		pterm.Error.Println(describe(err))
		return 1
	}
	return 0
}

func newRootCmd(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "ledgerctl manages ledger accounts and transfers",
		Long:          `ledgerctl opens accounts, moves money between them and runs schema migrations against the configured store.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVarP(&rt.configPath, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "log at the configured level instead of warn")

	root.AddCommand(newMigrateCmd(rt))
	root.AddCommand(newAccountCmd(rt))
	root.AddCommand(newTransferCmd(rt))
	root.AddCommand(newTokenCmd(rt))

	return root
}

func (rt *runtime) config() (*config.Config, error) {
	if rt.cfg != nil {
		return rt.cfg, nil
	}
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return nil, err
	}
	rt.cfg = cfg
	return cfg, nil
}

// logger writes to stderr so command output stays clean on stdout.
func (rt *runtime) logger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	level := "warn"
	if rt.verbose {
		level = cfg.Log.Level
	}
	return logger.NewWithWriter(level, cmd.ErrOrStderr())
}

func (rt *runtime) application(cmd *cobra.Command) (*app.App, error) {
	if rt.app != nil {
		return rt.app, nil
	}
	cfg, err := rt.config()
	if err != nil {
		return nil, err
	}
	a, cleanup, err := rt.newApp(cmd.Context(), cfg, rt.logger(cmd, cfg))
	if err != nil {
		return nil, err
	}
	rt.app, rt.cleanup = a, cleanup
	return a, nil
}

func (rt *runtime) close() {
	if rt.cleanup != nil {
		rt.cleanup()
		rt.cleanup = nil
	}
	rt.app = nil
}

// describe renders err for the terminal, leading with the error kind.
func describe(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return fmt.Sprintf("%s: %s", appErr.Kind, appErr.Message)
	}
	return err.Error()
}
