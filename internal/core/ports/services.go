package ports

import (
	"context"
	"time"

	"account-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks
//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

// TokenService handles API bearer tokens.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// BalanceCache is the read-through cache in front of account lookups.
// Get returns (nil, gen, nil) on a miss, where gen is the entry's current
// invalidation generation. Set stores a snapshot read at gen only while no
// Invalidate has happened since, so a read that raced a committed transfer
// is never cached.
type BalanceCache interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Account, int64, error)
	Set(ctx context.Context, account *domain.Account, gen int64) error
	Invalidate(ctx context.Context, ids ...uuid.UUID) error
}

// EventPublisher emits events for committed transfers.
type EventPublisher interface {
	PublishTransfer(ctx context.Context, event domain.TransferEvent) error
	Close() error
}

// EventSigner signs published event payloads so consumers can verify origin.
type EventSigner interface {
	Sign(payload []byte) string
}

// RateLimitStore counts requests in fixed windows.
type RateLimitStore interface {
	// Allow increments the counter for key and reports whether it is within limit.
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// --- Service Ports (Business Logic) ---

// LedgerService moves money between accounts atomically.
type LedgerService interface {
	// Transfer debits the sender and credits the receiver in one unit.
	// On INSUFFICIENT_FUNDS the FAILED record is returned with the error.
	Transfer(ctx context.Context, req TransferRequest) (*domain.TransferRecord, error)
}

// TransferRequest holds input for a transfer.
type TransferRequest struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Amount     decimal.Decimal
}

// AccountService defines account and transfer-history reads plus account
// creation and relabelling. Accounts are never deleted: transfer history
// references them for good.
type AccountService interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*domain.Account, error)
	RenameAccount(ctx context.Context, id uuid.UUID, holderName string) (*domain.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetTransfer(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error)
	ListTransfers(ctx context.Context, params TransferListParams) ([]domain.TransferRecord, int64, error)
}

// CreateAccountRequest holds input for opening an account.
type CreateAccountRequest struct {
	HolderName     string
	InitialBalance decimal.Decimal
}
