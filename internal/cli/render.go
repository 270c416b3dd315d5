package cli

import (
	"fmt"
	"io"
	"time"

	"account-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
)

func renderAccount(w io.Writer, a *domain.Account) error {
	data := pterm.TableData{
		{"Field", "Value"},
		{"ID", a.ID.String()},
		{"Holder", a.HolderName},
		{"Balance", domain.FormatMoney(a.Balance)},
		{"Created", a.CreatedAt.UTC().Format(time.RFC3339)},
		{"Updated", a.UpdatedAt.UTC().Format(time.RFC3339)},
	}
	return renderTable(w, data)
}

func renderTransfer(w io.Writer, t *domain.TransferRecord) error {
	id := "(not recorded)"
	if t.ID != uuid.Nil {
		id = t.ID.String()
	}
	data := pterm.TableData{
		{"Field", "Value"},
		{"ID", id},
		{"From", t.SenderID.String()},
		{"To", t.ReceiverID.String()},
		{"Amount", domain.FormatMoney(t.Amount)},
		{"Status", statusText(t)},
		{"Created", t.CreatedAt.UTC().Format(time.RFC3339)},
	}
	if t.Reason != nil {
		data = append(data, []string{"Reason", *t.Reason})
	}
	return renderTable(w, data)
}

func renderTransferList(w io.Writer, records []domain.TransferRecord, total int64, page, pageSize int) error {
	data := pterm.TableData{{"ID", "From", "To", "Amount", "Status", "Created"}}
	for i := range records {
		t := &records[i]
		data = append(data, []string{
			t.ID.String(),
			t.SenderID.String(),
			t.ReceiverID.String(),
			domain.FormatMoney(t.Amount),
			statusText(t),
			t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	fmt.Fprint(w, pterm.DefaultSection.Sprintfln("Transfers"))
	if err := renderTable(w, data); err != nil {
		return err
	}
	pages := (total + int64(pageSize) - 1) / int64(pageSize)
	if pages < 1 {
		pages = 1
	}
	fmt.Fprint(w, pterm.Info.Sprintfln("Page %d of %d, %d transfers", page, pages, total))
	return nil
}

func renderTable(w io.Writer, data pterm.TableData) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func statusText(t *domain.TransferRecord) string {
	if t.Succeeded() {
		return pterm.Green(string(t.Status))
	}
	return pterm.Red(string(t.Status))
}
