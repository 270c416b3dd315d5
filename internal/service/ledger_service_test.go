package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"account-ledger/internal/core/domain"
	"account-ledger/internal/core/ports"
	"account-ledger/internal/core/ports/mocks"
	"account-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc        *LedgerServiceImpl
	accounts   *mocks.MockAccountRepository
	transfers  *mocks.MockTransferRepository
	transactor *mocks.MockDBTransactor
	cache      *mocks.MockBalanceCache
	events     *mocks.MockEventPublisher
	ctrl       *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		accounts:   mocks.NewMockAccountRepository(ctrl),
		transfers:  mocks.NewMockTransferRepository(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		cache:      mocks.NewMockBalanceCache(ctrl),
		events:     mocks.NewMockEventPublisher(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewLedgerService(d.accounts, d.transfers, d.transactor, d.cache, d.events, zerolog.Nop())
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct {
	pgx.Tx
	commitErr  error
	committed  bool
	rolledBack bool
}

func (m *mockTx) Rollback(_ context.Context) error {
	if m.committed {
		return pgx.ErrTxClosed
	}
	m.rolledBack = true
	return nil
}

func (m *mockTx) Commit(_ context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = true
	return nil
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func moneyEq(s string) gomock.Matcher {
	want := money(s)
	return cond(func(d decimal.Decimal) bool { return d.Equal(want) })
}

// orderedIDs returns two ids with low < high in lock order.
func orderedIDs() (low, high uuid.UUID) {
	a, b := uuid.New(), uuid.New()
	if bytes.Compare(a[:], b[:]) < 0 {
		return a, b
	}
	return b, a
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, kind, appErr.Kind)
}

func TestLedgerService_Transfer_Success(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	low, high := orderedIDs()
	tx := &mockTx{}
	recordID := uuid.New()

	sender := &domain.Account{ID: low, Balance: money("100.00")}
	receiver := &domain.Account{ID: high, Balance: money("50.00")}

	gomock.InOrder(
		d.transactor.EXPECT().Begin(ctx).Return(tx, nil),
		d.accounts.EXPECT().GetByIDForUpdate(ctx, tx, low).Return(sender, nil),
		d.accounts.EXPECT().GetByIDForUpdate(ctx, tx, high).Return(receiver, nil),
		d.accounts.EXPECT().UpdateBalance(ctx, tx, low, moneyEq("70.00")).Return(nil),
		d.accounts.EXPECT().UpdateBalance(ctx, tx, high, moneyEq("80.00")).Return(nil),
		d.transfers.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, rec *domain.TransferRecord) error {
			assert.Equal(t, domain.TransferStatusSucceeded, rec.Status)
			assert.True(t, tx.committed, "record is written after commit")
			rec.ID = recordID
			return nil
		}),
		d.cache.EXPECT().Invalidate(ctx, low, high).Return(nil),
		d.events.EXPECT().PublishTransfer(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, ev domain.TransferEvent) error {
			assert.Equal(t, domain.EventTransferCompleted, ev.Type)
			assert.Equal(t, recordID, ev.TransferID)
			assert.True(t, ev.SenderBalance.Equal(money("70")))
			assert.True(t, ev.ReceiverBalance.Equal(money("80")))
			return nil
		}),
	)

	rec, err := d.svc.Transfer(ctx, ports.TransferRequest{SenderID: low, ReceiverID: high, Amount: money("30.00")})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, recordID, rec.ID)
	assert.Equal(t, domain.TransferStatusSucceeded, rec.Status)
	assert.Equal(t, low, rec.SenderID)
	assert.Equal(t, high, rec.ReceiverID)
	assert.True(t, rec.Amount.Equal(money("30")))
	assert.Nil(t, rec.Reason)
	assert.True(t, tx.committed)
}

func TestLedgerService_Transfer_LocksInAscendingIDOrder(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	low, high := orderedIDs()
	tx := &mockTx{}

	// Sender has the higher id, so the receiver row is locked first.
	gomock.InOrder(
		d.transactor.EXPECT().Begin(ctx).Return(tx, nil),
		d.accounts.EXPECT().GetByIDForUpdate(ctx, tx, low).Return(&domain.Account{ID: low, Balance: money("0")}, nil),
		d.accounts.EXPECT().GetByIDForUpdate(ctx, tx, high).Return(&domain.Account{ID: high, Balance: money("10")}, nil),
		d.accounts.EXPECT().UpdateBalance(ctx, tx, high, moneyEq("9.99")).Return(nil),
		d.accounts.EXPECT().UpdateBalance(ctx, tx, low, moneyEq("0.01")).Return(nil),
	)
	d.transfers.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.cache.EXPECT().Invalidate(ctx, high, low).Return(nil)
	d.events.EXPECT().PublishTransfer(ctx, gomock.Any()).Return(nil)

	_, err := d.svc.Transfer(ctx, ports.TransferRequest{SenderID: high, ReceiverID: low, Amount: money("0.01")})
	require.NoError(t, err)
}

func TestLedgerService_Transfer_InsufficientFunds(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	low, high := orderedIDs()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accounts.EXPECT().GetByIDForUpdate(ctx, tx, low).Return(&domain.Account{ID: low, Balance: money("20.00")}, nil)
	d.accounts.EXPECT().GetByIDForUpdate(ctx, tx, high).Return(&domain.Account{ID: high, Balance: money("0")}, nil)
	d.transfers.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, rec *domain.TransferRecord) error {
		assert.True(t, tx.rolledBack, "failed record is written after the unit closed")
		rec.ID = uuid.New()
		return nil
	})
	// No UpdateBalance, no cache invalidation, no event.

	rec, err := d.svc.Transfer(ctx, ports.TransferRequest{SenderID: low, ReceiverID: high, Amount: money("100.00")})
	require.Error(t, err)
	assertKind(t, err, apperror.KindInsufficientFunds)
	require.NotNil(t, rec, "failed record is returned with the error")
	assert.Equal(t, domain.TransferStatusFailed, rec.Status)
	require.NotNil(t, rec.Reason)
	assert.Equal(t, "INSUFFICIENT_FUNDS", *rec.Reason)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestLedgerService_Transfer_InvalidAmount(t *testing.T) {
	d := setupLedgerService(t)

	for _, amount := range []string{"0", "-5.00", "0.001", "1000000000000000000"} {
		t.Run(amount, func(t *testing.T) {
			rec, err := d.svc.Transfer(context.Background(), ports.TransferRequest{
				SenderID: uuid.New(), ReceiverID: uuid.New(), Amount: money(amount),
			})
			assert.Nil(t, rec)
			assertKind(t, err, apperror.KindInvalidAmount)
		})
	}
}

func TestLedgerService_Transfer_SelfTransfer(t *testing.T) {
	d := setupLedgerService(t)
	id := uuid.New()

	rec, err := d.svc.Transfer(context.Background(), ports.TransferRequest{SenderID: id, ReceiverID: id, Amount: money("1")})
	assert.Nil(t, rec)
	assertKind(t, err, apperror.KindInvalidRequest)
}

func TestLedgerService_Transfer_MissingIDs(t *testing.T) {
	d := setupLedgerService(t)

	_, err := d.svc.Transfer(context.Background(), ports.TransferRequest{SenderID: uuid.Nil, ReceiverID: uuid.New(), Amount: money("1")})
	assertKind(t, err, apperror.KindInvalidRequest)
}

func TestLedgerService_Transfer_AccountNotFound(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	low, high := orderedIDs()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accounts.EXPECT().GetByIDForUpdate(ctx, tx, low).Return(&domain.Account{ID: low, Balance: money("5")}, nil)
	d.accounts.EXPECT().GetByIDForUpdate(ctx, tx, high).Return(nil, nil)

	rec, err := d.svc.Transfer(ctx, ports.TransferRequest{SenderID: low, ReceiverID: high, Amount: money("1")})
	assert.Nil(t, rec)
	assertKind(t, err, apperror.KindAccountNotFound)
	assert.Contains(t, err.Error(), high.String())
	assert.True(t, tx.rolledBack)
}

func TestLedgerService_Transfer_StoreFailures(t *testing.T) {
	low, high := orderedIDs()
	req := ports.TransferRequest{SenderID: low, ReceiverID: high, Amount: money("10")}

	tests := []struct {
		name  string
		setup func(d *ledgerTestDeps, tx *mockTx)
	}{
		{
			name: "begin fails",
			setup: func(d *ledgerTestDeps, _ *mockTx) {
				d.transactor.EXPECT().Begin(gomock.Any()).Return(nil, errors.New("pool exhausted"))
			},
		},
		{
			name: "lock fails",
			setup: func(d *ledgerTestDeps, tx *mockTx) {
				d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				d.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), tx, low).Return(nil, errors.New("lock timeout"))
			},
		},
		{
			name: "debit fails",
			setup: func(d *ledgerTestDeps, tx *mockTx) {
				d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				d.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), tx, low).Return(&domain.Account{ID: low, Balance: money("10")}, nil)
				d.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), tx, high).Return(&domain.Account{ID: high, Balance: money("0")}, nil)
				d.accounts.EXPECT().UpdateBalance(gomock.Any(), tx, low, gomock.Any()).Return(errors.New("conn reset"))
			},
		},
		{
			name: "credit fails",
			setup: func(d *ledgerTestDeps, tx *mockTx) {
				d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				d.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), tx, low).Return(&domain.Account{ID: low, Balance: money("10")}, nil)
				d.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), tx, high).Return(&domain.Account{ID: high, Balance: money("0")}, nil)
				d.accounts.EXPECT().UpdateBalance(gomock.Any(), tx, low, gomock.Any()).Return(nil)
				d.accounts.EXPECT().UpdateBalance(gomock.Any(), tx, high, gomock.Any()).Return(errors.New("conn reset"))
			},
		},
		{
			name: "commit fails",
			setup: func(d *ledgerTestDeps, tx *mockTx) {
				tx.commitErr = errors.New("serialization failure")
				d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				d.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), tx, low).Return(&domain.Account{ID: low, Balance: money("10")}, nil)
				d.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), tx, high).Return(&domain.Account{ID: high, Balance: money("0")}, nil)
				d.accounts.EXPECT().UpdateBalance(gomock.Any(), tx, low, gomock.Any()).Return(nil)
				d.accounts.EXPECT().UpdateBalance(gomock.Any(), tx, high, gomock.Any()).Return(nil)
			},
		},
		{
			name: "receiver balance overflows storage",
			setup: func(d *ledgerTestDeps, tx *mockTx) {
				d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				d.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), tx, low).Return(&domain.Account{ID: low, Balance: money("10")}, nil)
				d.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), tx, high).Return(&domain.Account{ID: high, Balance: money("999999999999999999.99")}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupLedgerService(t)
			tx := &mockTx{}
			tt.setup(d, tx)

			rec, err := d.svc.Transfer(context.Background(), req)
			assert.Nil(t, rec)
			assertKind(t, err, apperror.KindStoreFailure)
			assert.True(t, apperror.KindOf(err).Retryable())
			assert.False(t, tx.committed)
		})
	}
}

func TestLedgerService_Transfer_BestEffortFailuresDoNotFailTransfer(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	low, high := orderedIDs()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accounts.EXPECT().GetByIDForUpdate(ctx, tx, low).Return(&domain.Account{ID: low, Balance: money("100")}, nil)
	d.accounts.EXPECT().GetByIDForUpdate(ctx, tx, high).Return(&domain.Account{ID: high, Balance: money("0")}, nil)
	d.accounts.EXPECT().UpdateBalance(ctx, tx, low, moneyEq("99")).Return(nil)
	d.accounts.EXPECT().UpdateBalance(ctx, tx, high, moneyEq("1")).Return(nil)
	d.transfers.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("disk full"))
	d.cache.EXPECT().Invalidate(ctx, low, high).Return(errors.New("redis down"))
	d.events.EXPECT().PublishTransfer(ctx, gomock.Any()).Return(errors.New("broker down"))

	rec, err := d.svc.Transfer(ctx, ports.TransferRequest{SenderID: low, ReceiverID: high, Amount: money("1")})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.TransferStatusSucceeded, rec.Status)
	assert.True(t, tx.committed)
}

func TestLedgerService_Transfer_WithoutOptionalCollaborators(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)
	transfers := mocks.NewMockTransferRepository(ctrl)
	transactor := mocks.NewMockDBTransactor(ctrl)
	svc := NewLedgerService(accounts, transfers, transactor, nil, nil, zerolog.Nop())

	low, high := orderedIDs()
	tx := &mockTx{}
	transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	accounts.EXPECT().GetByIDForUpdate(gomock.Any(), tx, low).Return(&domain.Account{ID: low, Balance: money("5")}, nil)
	accounts.EXPECT().GetByIDForUpdate(gomock.Any(), tx, high).Return(&domain.Account{ID: high, Balance: money("5")}, nil)
	accounts.EXPECT().UpdateBalance(gomock.Any(), tx, gomock.Any(), gomock.Any()).Return(nil).Times(2)
	transfers.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Transfer(context.Background(), ports.TransferRequest{SenderID: low, ReceiverID: high, Amount: money("5")})
	require.NoError(t, err)
}

// cond adapts a typed predicate to go.uber.org/mock v0.4's untyped gomock.Cond;
// values of another type do not match.
func cond[T any](fn func(T) bool) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		v, ok := x.(T)
		return ok && fn(v)
	})
}
