package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"account-ledger/internal/core/domain"
	"account-ledger/internal/core/ports"
	"account-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxHolderNameLen = 100

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	accounts  ports.AccountRepository
	transfers ports.TransferRepository
	cache     ports.BalanceCache // optional
	log       zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl. cache may be nil.
func NewAccountService(
	accounts ports.AccountRepository,
	transfers ports.TransferRepository,
	cache ports.BalanceCache,
	log zerolog.Logger,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		accounts:  accounts,
		transfers: transfers,
		cache:     cache,
		log:       log,
	}
}

// CreateAccount opens an account with an initial balance.
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, req ports.CreateAccountRequest) (*domain.Account, error) {
	name, err := validHolderName(req.HolderName)
	if err != nil {
		return nil, err
	}
	if !domain.ValidOpeningBalance(req.InitialBalance) {
		return nil, apperror.ErrInvalidInitialBalance()
	}

	account := &domain.Account{
		HolderName: name,
		Balance:    req.InitialBalance,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("create account: %w", err))
	}

	s.log.Info().
		Str("account_id", account.ID.String()).
		Str("balance", domain.FormatMoney(account.Balance)).
		Msg("account created")

	return account, nil
}

// RenameAccount changes the holder name. The balance is untouched.
func (s *AccountServiceImpl) RenameAccount(ctx context.Context, id uuid.UUID, holderName string) (*domain.Account, error) {
	name, err := validHolderName(holderName)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.UpdateHolderName(ctx, id, name)
	if err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("rename account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound(id)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("account_id", id.String()).Msg("failed to invalidate cached account")
		}
	}

	s.log.Info().Str("account_id", id.String()).Msg("account renamed")
	return account, nil
}

// GetAccount returns the account, read through the balance cache.
// A snapshot is cached only if no transfer invalidated it while it was read.
func (s *AccountServiceImpl) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	gen, cacheable := int64(0), false
	if s.cache != nil {
		cached, g, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Str("account_id", id.String()).Msg("account cache read failed, falling through to store")
		} else if cached != nil {
			return cached, nil
		} else {
			gen, cacheable = g, true
		}
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound(id)
	}

	if cacheable {
		if err := s.cache.Set(ctx, account, gen); err != nil {
			s.log.Warn().Err(err).Str("account_id", id.String()).Msg("failed to cache account")
		}
	}
	return account, nil
}

// GetTransfer returns one transfer record.
func (s *AccountServiceImpl) GetTransfer(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error) {
	rec, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("get transfer: %w", err))
	}
	if rec == nil {
		return nil, apperror.ErrTransferNotFound()
	}
	return rec, nil
}

// ListTransfers returns a page of the account's transfers, newest first.
func (s *AccountServiceImpl) ListTransfers(ctx context.Context, params ports.TransferListParams) ([]domain.TransferRecord, int64, error) {
	params.Normalize()

	account, err := s.accounts.GetByID(ctx, params.AccountID)
	if err != nil {
		return nil, 0, apperror.ErrStoreFailure(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, 0, apperror.ErrAccountNotFound(params.AccountID)
	}

	records, total, err := s.transfers.ListByAccount(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrStoreFailure(fmt.Errorf("list transfers: %w", err))
	}
	if records == nil {
		records = []domain.TransferRecord{}
	}
	return records, total, nil
}

func validHolderName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > maxHolderNameLen {
		return "", apperror.ErrInvalidHolderName()
	}
	return name, nil
}
