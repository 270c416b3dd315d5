package dto

import (
	"time"

	"account-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// FromAccount converts a domain account to its response body.
func FromAccount(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:         a.ID.String(),
		HolderName: a.HolderName,
		Balance:    domain.FormatMoney(a.Balance),
		CreatedAt:  a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// FromTransfer converts a transfer record to its response body.
func FromTransfer(t *domain.TransferRecord) TransferResponse {
	resp := TransferResponse{
		SenderID:   t.SenderID.String(),
		ReceiverID: t.ReceiverID.String(),
		Amount:     domain.FormatMoney(t.Amount),
		Status:     string(t.Status),
		Reason:     t.Reason,
		CreatedAt:  t.CreatedAt.UTC().Format(time.RFC3339),
	}
	// A record whose write failed has no id yet.
	if t.ID != uuid.Nil {
		resp.ID = t.ID.String()
	}
	return resp
}
