package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Tx is a transactional unit over the memory store. It satisfies pgx.Tx so
// it can flow through the same ports as a PostgreSQL transaction; only
// Commit and Rollback are implemented, every other pgx.Tx method panics.
type Tx struct {
	pgx.Tx

	store  *Store
	held   []uuid.UUID
	staged map[uuid.UUID]decimal.Decimal
	done   bool
}

// Transactor implements ports.DBTransactor for the memory store.
type Transactor struct {
	store *Store
}

// NewTransactor creates a Transactor over s.
func NewTransactor(s *Store) *Transactor {
	return &Transactor{store: s}
}

// Begin starts a new transactional unit.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := t.store.Ping(ctx); err != nil {
		return nil, err
	}
	return &Tx{
		store:  t.store,
		staged: make(map[uuid.UUID]decimal.Decimal),
	}, nil
}

// Commit applies every staged balance at once and releases the row locks.
func (tx *Tx) Commit(_ context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	defer tx.release()

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	now := time.Now().UTC()
	for id, balance := range tx.staged {
		a, ok := s.accounts[id]
		if !ok {
			return fmt.Errorf("commit: account %s vanished", id)
		}
		a.Balance = balance
		a.UpdatedAt = now
	}
	return nil
}

// Rollback discards staged writes and releases the row locks.
// It returns pgx.ErrTxClosed after Commit, like pgx.
func (tx *Tx) Rollback(_ context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.release()
	return nil
}

func (tx *Tx) release() {
	for _, id := range tx.held {
		tx.store.unlockRow(id)
	}
	tx.held = nil
	tx.staged = nil
}

func (tx *Tx) holds(id uuid.UUID) bool {
	for _, h := range tx.held {
		if h == id {
			return true
		}
	}
	return false
}

func asTx(tx pgx.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("memory store: unsupported transaction type %T", tx)
	}
	if t.done {
		return nil, pgx.ErrTxClosed
	}
	return t, nil
}
