package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus is the outcome of a transfer attempt.
type TransferStatus string

const (
	TransferStatusSucceeded TransferStatus = "SUCCEEDED"
	TransferStatusFailed    TransferStatus = "FAILED"
)

// TransferRecord is an immutable log entry for one transfer attempt.
type TransferRecord struct {
	ID         uuid.UUID       `json:"id"`
	SenderID   uuid.UUID       `json:"sender_id"`
	ReceiverID uuid.UUID       `json:"receiver_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     TransferStatus  `json:"status"`
	Reason     *string         `json:"reason,omitempty"` // error kind of a failed attempt
	CreatedAt  time.Time       `json:"created_at"`
}

// NewSucceededTransfer builds the record of a committed transfer.
func NewSucceededTransfer(senderID, receiverID uuid.UUID, amount decimal.Decimal) *TransferRecord {
	return &TransferRecord{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
		Status:     TransferStatusSucceeded,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewFailedTransfer builds the record of an attempt that changed nothing.
func NewFailedTransfer(senderID, receiverID uuid.UUID, amount decimal.Decimal, reason string) *TransferRecord {
	return &TransferRecord{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
		Status:     TransferStatusFailed,
		Reason:     &reason,
		CreatedAt:  time.Now().UTC(),
	}
}

// Succeeded returns true if the transfer was committed.
func (t *TransferRecord) Succeeded() bool {
	return t.Status == TransferStatusSucceeded
}

// Involves returns true if the account sent or received this transfer.
func (t *TransferRecord) Involves(accountID uuid.UUID) bool {
	return t.SenderID == accountID || t.ReceiverID == accountID
}
