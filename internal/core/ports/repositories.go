package ports

import (
	"context"

	"account-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx run inside a transactional unit and take row locks.
// Lookups return (nil, nil) when the account does not exist.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error
	// UpdateHolderName relabels an account outside any transfer unit and
	// returns the updated row. Balances are never touched.
	UpdateHolderName(ctx context.Context, id uuid.UUID, holderName string) (*domain.Account, error)
}

// TransferRepository defines persistence operations for transfer records.
// Records are append-only.
type TransferRepository interface {
	Create(ctx context.Context, record *domain.TransferRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error)
	ListByAccount(ctx context.Context, params TransferListParams) ([]domain.TransferRecord, int64, error)
}

// TransferListParams holds filter + pagination for listing transfers.
type TransferListParams struct {
	AccountID uuid.UUID
	Status    *domain.TransferStatus
	Page      int
	PageSize  int
}

// Page size bounds for transfer history.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps Page and PageSize into range.
func (p *TransferListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the row offset of the requested page.
func (p TransferListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// DBTransactor opens transactional units. Commit makes every write in the
// unit visible at once; Rollback after Commit is a no-op.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
