package memory

import (
	"context"
	"fmt"
	"time"

	"account-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	store *Store
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(s *Store) *AccountRepo {
	return &AccountRepo{store: s}
}

// Create stores a new account and assigns its id and timestamps.
func (r *AccountRepo) Create(_ context.Context, a *domain.Account) error {
	if a.Balance.IsNegative() {
		return fmt.Errorf("insert account: balance %s violates check constraint", a.Balance)
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	now := time.Now().UTC()
	a.ID = uuid.New()
	a.CreatedAt = now
	a.UpdatedAt = now

	cp := *a
	s.accounts[a.ID] = &cp
	s.rowLocks[a.ID] = make(chan struct{}, 1)
	return nil
}

// GetByID returns the last committed state of the account, or (nil, nil).
func (r *AccountRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.store.account(id)
}

// GetByIDForUpdate locks the account row for the rest of tx and returns it
// with any balance already staged in tx.
func (r *AccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if !t.holds(id) {
		found, err := r.store.lockRow(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get account for update: %w", err)
		}
		if !found {
			return nil, nil
		}
		t.held = append(t.held, id)
	}

	a, err := r.store.account(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}
	if staged, ok := t.staged[id]; ok {
		a.Balance = staged
	}
	return a, nil
}

// UpdateHolderName relabels an account in place. Row locks held by transfer
// units are not needed: they only guard balances.
func (r *AccountRepo) UpdateHolderName(_ context.Context, id uuid.UUID, holderName string) (*domain.Account, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	a.HolderName = holderName
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	return &cp, nil
}

// UpdateBalance stages a new balance for a row locked by tx.
func (r *AccountRepo) UpdateBalance(_ context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	if !t.holds(id) {
		return fmt.Errorf("update account balance: row %s is not locked by this transaction", id)
	}
	if balance.IsNegative() {
		return fmt.Errorf("update account balance: %s violates check constraint", balance)
	}
	t.staged[id] = balance
	return nil
}
