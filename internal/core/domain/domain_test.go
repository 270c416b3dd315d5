package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_CanDebit(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		amount  string
		want    bool
	}{
		{"more than enough", "100.00", "30.00", true},
		{"exact balance", "30.00", "30.00", true},
		{"one cent short", "29.99", "30.00", false},
		{"empty account", "0.00", "0.01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{Balance: decimal.RequireFromString(tt.balance)}
			assert.Equal(t, tt.want, a.CanDebit(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestValidTransferAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"30.00", true},
		{"0.01", true},
		{"30", true},
		{"30.000", true},
		{"0", false},
		{"0.00", false},
		{"-5.00", false},
		{"0.001", false},
		{"10.999", false},
		{"1000000000000000000", false},
		{"999999999999999999.99", true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidTransferAmount(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestValidOpeningBalance(t *testing.T) {
	assert.True(t, ValidOpeningBalance(decimal.Zero))
	assert.True(t, ValidOpeningBalance(decimal.RequireFromString("100.50")))
	assert.False(t, ValidOpeningBalance(decimal.RequireFromString("-0.01")))
	assert.False(t, ValidOpeningBalance(decimal.RequireFromString("1.005")))
}

func TestParseMoney(t *testing.T) {
	valid := map[string]string{
		"30":     "30",
		"30.5":   "30.5",
		"30.00":  "30",
		"0.01":   "0.01",
		"-1.25":  "-1.25",
		"0":      "0",
		"1.2300": "1.23",
	}
	for in, want := range valid {
		d, err := ParseMoney(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d.String(), in)
	}

	for _, in := range []string{"", "abc", "1.234", "1e3", "+5", "1,000.00", " 5", "0.005", "."} {
		_, err := ParseMoney(in)
		assert.Error(t, err, "expected invalid: %q", in)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "70.00", FormatMoney(decimal.RequireFromString("70")))
	assert.Equal(t, "0.50", FormatMoney(decimal.RequireFromString("0.5")))
	assert.Equal(t, "1234.56", FormatMoney(decimal.RequireFromString("1234.56")))
}

func TestTransferRecord_Constructors(t *testing.T) {
	sender, receiver := uuid.New(), uuid.New()
	amount := decimal.RequireFromString("30.00")

	ok := NewSucceededTransfer(sender, receiver, amount)
	assert.True(t, ok.Succeeded())
	assert.Nil(t, ok.Reason)
	assert.False(t, ok.CreatedAt.IsZero())

	failed := NewFailedTransfer(sender, receiver, amount, "INSUFFICIENT_FUNDS")
	assert.False(t, failed.Succeeded())
	assert.Equal(t, TransferStatusFailed, failed.Status)
	require.NotNil(t, failed.Reason)
	assert.Equal(t, "INSUFFICIENT_FUNDS", *failed.Reason)
}

func TestTransferRecord_Involves(t *testing.T) {
	sender, receiver, other := uuid.New(), uuid.New(), uuid.New()
	rec := NewSucceededTransfer(sender, receiver, decimal.NewFromInt(1))

	assert.True(t, rec.Involves(sender))
	assert.True(t, rec.Involves(receiver))
	assert.False(t, rec.Involves(other))
}

func TestNewTransferCompletedEvent(t *testing.T) {
	sender := &Account{ID: uuid.New(), Balance: decimal.RequireFromString("70.00")}
	receiver := &Account{ID: uuid.New(), Balance: decimal.RequireFromString("80.00")}
	rec := NewSucceededTransfer(sender.ID, receiver.ID, decimal.RequireFromString("30.00"))
	rec.ID = uuid.New()

	ev := NewTransferCompletedEvent(rec, sender, receiver)

	assert.Equal(t, EventTransferCompleted, ev.Type)
	assert.Equal(t, rec.ID, ev.TransferID)
	assert.Equal(t, sender.ID, ev.SenderID)
	assert.Equal(t, receiver.ID, ev.ReceiverID)
	assert.True(t, ev.SenderBalance.Equal(sender.Balance))
	assert.True(t, ev.ReceiverBalance.Equal(receiver.Balance))
	assert.Equal(t, rec.CreatedAt, ev.OccurredAt)
}
