package cli

import (
	"fmt"

	"account-ledger/internal/core/domain"
	"account-ledger/internal/core/ports"
	"account-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newAccountCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Open accounts and inspect balances and history",
	}

	cmd.AddCommand(newAccountCreateCmd(rt))
	cmd.AddCommand(newAccountShowCmd(rt))
	cmd.AddCommand(newAccountRenameCmd(rt))
	cmd.AddCommand(newAccountTransfersCmd(rt))

	return cmd
}

type accountCreateFlags struct {
	Holder  string
	Balance string
}

func newAccountCreateCmd(rt *runtime) *cobra.Command {
	flags := &accountCreateFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open an account with an opening balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			balance, err := domain.ParseMoney(flags.Balance)
			if err != nil {
				return apperror.ErrInvalidInitialBalance()
			}

			a, err := rt.application(cmd)
			if err != nil {
				return err
			}
			acc, err := a.Accounts.CreateAccount(cmd.Context(), ports.CreateAccountRequest{
				HolderName:     flags.Holder,
				InitialBalance: balance,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, pterm.Success.Sprintfln("Account %s opened", acc.ID))
			return renderAccount(out, acc)
		},
	}

	cmd.Flags().StringVar(&flags.Holder, "holder", "", "account holder name")
	cmd.Flags().StringVar(&flags.Balance, "balance", "0.00", "opening balance")
	_ = cmd.MarkFlagRequired("holder")

	return cmd
}

func newAccountShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account-id>",
		Short: "Show an account and its balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "account")
			if err != nil {
				return err
			}

			a, err := rt.application(cmd)
			if err != nil {
				return err
			}
			acc, err := a.Accounts.GetAccount(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderAccount(cmd.OutOrStdout(), acc)
		},
	}
}

func newAccountRenameCmd(rt *runtime) *cobra.Command {
	var holder string

	cmd := &cobra.Command{
		Use:   "rename <account-id>",
		Short: "Change an account's holder name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "account")
			if err != nil {
				return err
			}

			a, err := rt.application(cmd)
			if err != nil {
				return err
			}
			acc, err := a.Accounts.RenameAccount(cmd.Context(), id, holder)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, pterm.Success.Sprintfln("Account %s renamed", acc.ID))
			return renderAccount(out, acc)
		},
	}

	cmd.Flags().StringVar(&holder, "holder", "", "new account holder name")
	_ = cmd.MarkFlagRequired("holder")

	return cmd
}

type accountTransfersFlags struct {
	Page     int
	PageSize int
}

func newAccountTransfersCmd(rt *runtime) *cobra.Command {
	flags := &accountTransfersFlags{}

	cmd := &cobra.Command{
		Use:   "transfers <account-id>",
		Short: "List transfers sent or received by an account, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "account")
			if err != nil {
				return err
			}

			a, err := rt.application(cmd)
			if err != nil {
				return err
			}
			params := ports.TransferListParams{AccountID: id, Page: flags.Page, PageSize: flags.PageSize}
			records, total, err := a.Accounts.ListTransfers(cmd.Context(), params)
			if err != nil {
				return err
			}
			params.Normalize()
			return renderTransferList(cmd.OutOrStdout(), records, total, params.Page, params.PageSize)
		},
	}

	cmd.Flags().IntVar(&flags.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&flags.PageSize, "page-size", ports.DefaultPageSize, "transfers per page")

	return cmd
}

func parseID(s, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperror.Validation(fmt.Sprintf("invalid %s id %q", what, s))
	}
	return id, nil
}
