package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTransferCompleted is published after a transfer commits.
const EventTransferCompleted = "transfer.completed"

// TransferEvent is the payload published for a committed transfer.
type TransferEvent struct {
	Type            string          `json:"type"`
	TransferID      uuid.UUID       `json:"transfer_id"`
	SenderID        uuid.UUID       `json:"sender_id"`
	ReceiverID      uuid.UUID       `json:"receiver_id"`
	Amount          decimal.Decimal `json:"amount"`
	SenderBalance   decimal.Decimal `json:"sender_balance"`
	ReceiverBalance decimal.Decimal `json:"receiver_balance"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// NewTransferCompletedEvent builds the event for a committed transfer and
// the post-commit balances of both accounts.
func NewTransferCompletedEvent(rec *TransferRecord, sender, receiver *Account) TransferEvent {
	return TransferEvent{
		Type:            EventTransferCompleted,
		TransferID:      rec.ID,
		SenderID:        sender.ID,
		ReceiverID:      receiver.ID,
		Amount:          rec.Amount,
		SenderBalance:   sender.Balance,
		ReceiverBalance: receiver.Balance,
		OccurredAt:      rec.CreatedAt,
	}
}
