package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits every balance and amount carries.
const MoneyScale = 2

// MaxMoney is the exclusive upper bound of a NUMERIC(20,2) column.
var MaxMoney = decimal.New(1, 18)

// Account holds a balance that the ledger moves money into and out of.
type Account struct {
	ID         uuid.UUID       `json:"id"`
	HolderName string          `json:"holder_name"`
	Balance    decimal.Decimal `json:"balance"` // never negative
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CanDebit reports whether the balance covers amount.
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// HasMoneyScale reports whether d has no more than MoneyScale fractional digits.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// ValidTransferAmount reports whether d can be moved between accounts.
func ValidTransferAmount(d decimal.Decimal) bool {
	return d.IsPositive() && HasMoneyScale(d) && d.LessThan(MaxMoney)
}

// ValidOpeningBalance reports whether d can seed a new account.
func ValidOpeningBalance(d decimal.Decimal) bool {
	return !d.IsNegative() && HasMoneyScale(d) && d.LessThan(MaxMoney)
}

// moneyRe accepts plain decimal notation only: no exponent, no sign other
// than a leading minus, no thousands separators.
var moneyRe = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// ParseMoney parses a decimal money string such as "30.00". Exponent forms
// and more than MoneyScale fractional digits are rejected. Sign and range
// are left to ValidTransferAmount and ValidOpeningBalance.
func ParseMoney(s string) (decimal.Decimal, error) {
	if !moneyRe.MatchString(s) {
		return decimal.Zero, errors.New("not a decimal number")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !HasMoneyScale(d) {
		return decimal.Zero, errors.New("more than two decimal places")
	}
	return d, nil
}

// FormatMoney renders d with exactly MoneyScale fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}
