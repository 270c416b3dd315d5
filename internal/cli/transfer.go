package cli

import (
	"fmt"

	"account-ledger/internal/core/domain"
	"account-ledger/internal/core/ports"
	"account-ledger/pkg/apperror"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type transferFlags struct {
	From   string
	To     string
	Amount string
}

func newTransferCmd(rt *runtime) *cobra.Command {
	flags := &transferFlags{}

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money from one account to another",
		Long: `Debit the sender and credit the receiver as one atomic unit.
Every call is a new movement: running the same command twice moves the amount twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseID(flags.From, "sender")
			if err != nil {
				return err
			}
			to, err := parseID(flags.To, "receiver")
			if err != nil {
				return err
			}
			amount, err := domain.ParseMoney(flags.Amount)
			if err != nil {
				return apperror.ErrInvalidAmount()
			}

			a, err := rt.application(cmd)
			if err != nil {
				return err
			}
			rec, err := a.Ledger.Transfer(cmd.Context(), ports.TransferRequest{
				SenderID:   from,
				ReceiverID: to,
				Amount:     amount,
			})

			out := cmd.OutOrStdout()
			if rec != nil {
				if err == nil {
					fmt.Fprint(out, pterm.Success.Sprintfln("Transferred %s", flags.Amount))
				}
				if rerr := renderTransfer(out, rec); rerr != nil && err == nil {
					return rerr
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&flags.From, "from", "", "sender account id")
	cmd.Flags().StringVar(&flags.To, "to", "", "receiver account id")
	cmd.Flags().StringVar(&flags.Amount, "amount", "", "amount with at most two decimal places")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
