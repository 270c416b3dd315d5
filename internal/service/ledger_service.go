package service

import (
	"bytes"
	"context"
	"fmt"

	"account-ledger/internal/core/domain"
	"account-ledger/internal/core/ports"
	"account-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	accounts   ports.AccountRepository
	transfers  ports.TransferRepository
	transactor ports.DBTransactor
	cache      ports.BalanceCache   // optional
	events     ports.EventPublisher // optional
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. cache and events may be nil.
func NewLedgerService(
	accounts ports.AccountRepository,
	transfers ports.TransferRepository,
	transactor ports.DBTransactor,
	cache ports.BalanceCache,
	events ports.EventPublisher,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accounts:   accounts,
		transfers:  transfers,
		transactor: transactor,
		cache:      cache,
		events:     events,
		log:        log,
	}
}

// Transfer moves req.Amount from the sender to the receiver. Both balance
// writes commit together or not at all. The transfer record is written
// afterwards and its failure does not undo the transfer.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.TransferRecord, error) {
	if !domain.ValidTransferAmount(req.Amount) {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.SenderID == uuid.Nil || req.ReceiverID == uuid.Nil {
		return nil, apperror.Validation("sender_id and receiver_id are required")
	}
	if req.SenderID == req.ReceiverID {
		return nil, apperror.ErrSelfTransfer()
	}

	sender, receiver, err := s.applyTransfer(ctx, req)
	if err != nil {
		if apperror.IsKind(err, apperror.KindInsufficientFunds) {
			rec := domain.NewFailedTransfer(req.SenderID, req.ReceiverID, req.Amount, string(apperror.KindInsufficientFunds))
			s.record(ctx, rec)
			return rec, err
		}
		return nil, err
	}

	rec := domain.NewSucceededTransfer(req.SenderID, req.ReceiverID, req.Amount)
	s.record(ctx, rec)
	s.afterCommit(ctx, rec, sender, receiver)

	s.log.Info().
		Str("transfer_id", rec.ID.String()).
		Str("sender_id", req.SenderID.String()).
		Str("receiver_id", req.ReceiverID.String()).
		Str("amount", domain.FormatMoney(req.Amount)).
		Msg("transfer committed")

	return rec, nil
}

// applyTransfer runs the debit and credit as one transactional unit and
// returns both accounts as committed.
func (s *LedgerServiceImpl) applyTransfer(ctx context.Context, req ports.TransferRequest) (*domain.Account, *domain.Account, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.ErrStoreFailure(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked, err := s.lockPair(ctx, dbTx, req.SenderID, req.ReceiverID)
	if err != nil {
		return nil, nil, err
	}
	sender, receiver := locked[req.SenderID], locked[req.ReceiverID]

	// Business rule: sufficient funds
	if !sender.CanDebit(req.Amount) {
		return nil, nil, apperror.ErrInsufficientFunds()
	}

	sender.Balance = sender.Balance.Sub(req.Amount)
	receiver.Balance = receiver.Balance.Add(req.Amount)
	if !receiver.Balance.LessThan(domain.MaxMoney) {
		return nil, nil, apperror.ErrStoreFailure(fmt.Errorf("receiver %s balance exceeds storage precision", receiver.ID))
	}

	if err := s.accounts.UpdateBalance(ctx, dbTx, sender.ID, sender.Balance); err != nil {
		return nil, nil, apperror.ErrStoreFailure(fmt.Errorf("debit sender: %w", err))
	}
	if err := s.accounts.UpdateBalance(ctx, dbTx, receiver.ID, receiver.Balance); err != nil {
		return nil, nil, apperror.ErrStoreFailure(fmt.Errorf("credit receiver: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, nil, apperror.ErrStoreFailure(fmt.Errorf("commit tx: %w", err))
	}
	return sender, receiver, nil
}

// lockPair row-locks both accounts in ascending id order, so two transfers
// over the same pair in opposite directions cannot deadlock.
func (s *LedgerServiceImpl) lockPair(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	first, second := a, b
	if bytes.Compare(b[:], a[:]) < 0 {
		first, second = b, a
	}

	locked := make(map[uuid.UUID]*domain.Account, 2)
	for _, id := range []uuid.UUID{first, second} {
		acc, err := s.accounts.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, apperror.ErrStoreFailure(fmt.Errorf("lock account %s: %w", id, err))
		}
		if acc == nil {
			return nil, apperror.ErrAccountNotFound(id)
		}
		locked[id] = acc
	}
	return locked, nil
}

// record writes the transfer record (best-effort).
func (s *LedgerServiceImpl) record(ctx context.Context, rec *domain.TransferRecord) {
	if err := s.transfers.Create(ctx, rec); err != nil {
		s.log.Warn().Err(err).
			Str("sender_id", rec.SenderID.String()).
			Str("receiver_id", rec.ReceiverID.String()).
			Str("status", string(rec.Status)).
			Msg("failed to record transfer")
	}
}

// afterCommit invalidates cached balances and publishes the event (best-effort).
func (s *LedgerServiceImpl) afterCommit(ctx context.Context, rec *domain.TransferRecord, sender, receiver *domain.Account) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sender.ID, receiver.ID); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate cached balances")
		}
	}
	if s.events != nil {
		if err := s.events.PublishTransfer(ctx, domain.NewTransferCompletedEvent(rec, sender, receiver)); err != nil {
			s.log.Warn().Err(err).Str("transfer_id", rec.ID.String()).Msg("failed to publish transfer event")
		}
	}
}
