// Package memory is an in-process account store with per-row locks and
// staged writes that become visible together on commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"account-ledger/internal/core/domain"

	"github.com/google/uuid"
)

var (
	// ErrStoreClosed is returned by every operation after Close.
	ErrStoreClosed = errors.New("memory store is closed")
	// ErrLockTimeout is returned when a row lock is not acquired in time.
	ErrLockTimeout = errors.New("row lock wait timed out")
)

// Store holds accounts and transfer records. It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	accounts    map[uuid.UUID]*domain.Account
	rowLocks    map[uuid.UUID]chan struct{}
	transfers   []domain.TransferRecord
	transferIdx map[uuid.UUID]int
	lockTimeout time.Duration
	closed      bool
}

// NewStore creates an empty store. A positive lockTimeout bounds how long a
// transaction waits for a row lock.
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		accounts:    make(map[uuid.UUID]*domain.Account),
		rowLocks:    make(map[uuid.UUID]chan struct{}),
		transferIdx: make(map[uuid.UUID]int),
		lockTimeout: lockTimeout,
	}
}

// Close releases the store. Later calls fail with ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Name returns the dependency name.
func (s *Store) Name() string {
	return "memory"
}

// account returns a copy of the stored account, or nil.
func (s *Store) account(id uuid.UUID) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// lockRow blocks until the row lock for id is held, ctx is done or the
// lock timeout elapses. found is false when the account does not exist.
func (s *Store) lockRow(ctx context.Context, id uuid.UUID) (found bool, err error) {
	s.mu.RLock()
	closed := s.closed
	ch, ok := s.rowLocks[id]
	s.mu.RUnlock()
	if closed {
		return false, ErrStoreClosed
	}
	if !ok {
		return false, nil
	}

	var timeout <-chan time.Time
	if s.lockTimeout > 0 {
		timer := time.NewTimer(s.lockTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case ch <- struct{}{}:
		return true, nil
	case <-ctx.Done():
		return false, fmt.Errorf("waiting for row lock: %w", ctx.Err())
	case <-timeout:
		return false, fmt.Errorf("account %s: %w", id, ErrLockTimeout)
	}
}

func (s *Store) unlockRow(id uuid.UUID) {
	s.mu.RLock()
	ch := s.rowLocks[id]
	s.mu.RUnlock()
	<-ch
}
