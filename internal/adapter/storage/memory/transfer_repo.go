package memory

import (
	"context"
	"fmt"

	"account-ledger/internal/core/domain"
	"account-ledger/internal/core/ports"

	"github.com/google/uuid"
)

// TransferRepo implements ports.TransferRepository. Records are append-only.
type TransferRepo struct {
	store *Store
}

// NewTransferRepo creates a new TransferRepo.
func NewTransferRepo(s *Store) *TransferRepo {
	return &TransferRepo{store: s}
}

// Create appends a record and assigns its id.
func (r *TransferRepo) Create(_ context.Context, t *domain.TransferRecord) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.accounts[t.SenderID]; !ok {
		return fmt.Errorf("insert transfer: unknown sender %s", t.SenderID)
	}
	if _, ok := s.accounts[t.ReceiverID]; !ok {
		return fmt.Errorf("insert transfer: unknown receiver %s", t.ReceiverID)
	}

	t.ID = uuid.New()
	s.transferIdx[t.ID] = len(s.transfers)
	s.transfers = append(s.transfers, *t)
	return nil
}

// GetByID returns the record or (nil, nil).
func (r *TransferRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.TransferRecord, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	i, ok := s.transferIdx[id]
	if !ok {
		return nil, nil
	}
	cp := s.transfers[i]
	return &cp, nil
}

// ListByAccount returns one page of the account's records, newest first.
func (r *TransferRepo) ListByAccount(_ context.Context, params ports.TransferListParams) ([]domain.TransferRecord, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, 0, ErrStoreClosed
	}

	var matched []domain.TransferRecord
	for i := len(s.transfers) - 1; i >= 0; i-- {
		t := s.transfers[i]
		if !t.Involves(params.AccountID) {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		matched = append(matched, t)
	}

	total := int64(len(matched))
	start := params.Offset()
	if start >= len(matched) {
		return nil, total, nil
	}
	end := len(matched)
	if params.PageSize > 0 && start+params.PageSize < end {
		end = start + params.PageSize
	}
	return matched[start:end], total, nil
}
