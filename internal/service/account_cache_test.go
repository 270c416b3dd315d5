package service

import (
	"context"
	"testing"
	"time"

	"account-ledger/internal/adapter/storage/memory"
	redisStorage "account-ledger/internal/adapter/storage/redis"
	"account-ledger/internal/core/domain"
	"account-ledger/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// interleavingAccounts runs hook once, right after the first GetByID has
// read its snapshot, to land a commit between the read and the cache fill.
type interleavingAccounts struct {
	ports.AccountRepository
	hook func()
}

func (r *interleavingAccounts) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	a, err := r.AccountRepository.GetByID(ctx, id)
	if r.hook != nil {
		hook := r.hook
		r.hook = nil
		hook()
	}
	return a, err
}

func TestAccountService_GetAccount_RacingTransferNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := redisStorage.NewBalanceCache(client, time.Minute)

	store := memory.NewStore(5 * time.Second)
	t.Cleanup(func() { _ = store.Close() })
	accountRepo := memory.NewAccountRepo(store)
	transferRepo := memory.NewTransferRepo(store)
	racing := &interleavingAccounts{AccountRepository: accountRepo}

	ledger := NewLedgerService(accountRepo, transferRepo, memory.NewTransactor(store), cache, nil, zerolog.Nop())
	accounts := NewAccountService(racing, transferRepo, cache, zerolog.Nop())
	ctx := context.Background()

	a, err := accounts.CreateAccount(ctx, ports.CreateAccountRequest{HolderName: "A", InitialBalance: money("100.00")})
	require.NoError(t, err)
	b, err := accounts.CreateAccount(ctx, ports.CreateAccountRequest{HolderName: "B", InitialBalance: money("50.00")})
	require.NoError(t, err)

	racing.hook = func() {
		_, err := ledger.Transfer(ctx, ports.TransferRequest{SenderID: a.ID, ReceiverID: b.ID, Amount: money("30.00")})
		require.NoError(t, err)
	}

	// This read loaded 100.00 before the transfer committed.
	got, err := accounts.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assertMoney(t, "100.00", got.Balance)

	// The next read must see the committed balance, not a cached 100.00.
	got, err = accounts.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assertMoney(t, "70.00", got.Balance)

	cached, _, err := cache.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assertMoney(t, "70.00", cached.Balance)
}
