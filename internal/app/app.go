// Package app wires configuration into a running ledger: the account
// store, optional Redis and Kafka collaborators, services and the router.
package app

import (
	"context"
	"fmt"
	"net/http"

	"account-ledger/config"
	httpHandler "account-ledger/internal/adapter/http/handler"
	"account-ledger/internal/adapter/events/kafka"
	"account-ledger/internal/adapter/storage/memory"
	pgStorage "account-ledger/internal/adapter/storage/postgres"
	redisStorage "account-ledger/internal/adapter/storage/redis"
	"account-ledger/internal/core/ports"
	"account-ledger/internal/service"
	"account-ledger/pkg/logger"

	"github.com/rs/zerolog"
)

// App holds the wired services. Build it with New and release it with
// the returned cleanup func.
type App struct {
	Config   *config.Config
	Ledger   ports.LedgerService
	Accounts ports.AccountService
	Tokens   ports.TokenService // nil when auth.secret is empty

	handler http.Handler
	log     zerolog.Logger
}

// stores groups the persistence ports of one driver.
type stores struct {
	accounts   ports.AccountRepository
	transfers  ports.TransferRepository
	transactor ports.DBTransactor
	health     ports.HealthChecker
}

// New builds an App from cfg. The cleanup func closes every opened handle
// in reverse order. On error nothing is left open and cleanup is nil.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*App, func(), error) {
		cleanup()
		return nil, nil, err
	}

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeStore)
	checkers := []ports.HealthChecker{st.health}

	// Optional collaborators stay nil interfaces when disabled.
	var (
		cache     ports.BalanceCache
		rateStore ports.RateLimitStore
		events    ports.EventPublisher
		tokens    ports.TokenService
	)

	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return fail(fmt.Errorf("connecting to redis: %w", err))
		}
		closers = append(closers, func() { _ = rdb.Close() })
		cache = redisStorage.NewBalanceCache(rdb, cfg.Redis.CacheTTL)
		if cfg.RateLimit.Enabled {
			rateStore = redisStorage.NewRateLimitStore(rdb)
		}
		checkers = append(checkers, redisStorage.NewHealthCheck(rdb))
	} else if cfg.RateLimit.Enabled {
		log.Warn().Msg("rate limiting needs redis.enabled; requests will not be limited")
	}

	if cfg.Kafka.Enabled() {
		var signer ports.EventSigner
		if cfg.Kafka.SigningSecret != "" {
			signer = service.NewHMACSignatureService(cfg.Kafka.SigningSecret)
		}
		pub := kafka.NewPublisher(cfg.Kafka, signer, logger.Component(log, "events"))
		closers = append(closers, func() {
			if err := pub.Close(); err != nil {
				log.Warn().Err(err).Msg("closing kafka publisher")
			}
		})
		events = pub
	}

	if cfg.Auth.Secret != "" {
		tokens = service.NewJWTTokenService(cfg.Auth.Secret, cfg.Auth.Expiry, cfg.Auth.Issuer)
	}

	ledger := service.NewLedgerService(st.accounts, st.transfers, st.transactor, cache, events, logger.Component(log, "ledger"))
	accounts := service.NewAccountService(st.accounts, st.transfers, cache, logger.Component(log, "accounts"))

	a := &App{
		Config:   cfg,
		Ledger:   ledger,
		Accounts: accounts,
		Tokens:   tokens,
		log:      log,
	}
	a.handler = httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      ledger,
		AccountSvc:     accounts,
		TokenSvc:       tokens,
		RateLimitStore: rateStore,
		HealthCheckers: checkers,
		Logger:         logger.Component(log, "http"),
	})

	log.Info().
		Str("store", cfg.Store.Driver).
		Bool("cache", cache != nil).
		Bool("rate_limit", rateStore != nil).
		Bool("events", events != nil).
		Bool("auth", tokens != nil).
		Msg("ledger assembled")

	return a, cleanup, nil
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return a.handler
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		s := memory.NewStore(cfg.Store.LockTimeout)
		log.Warn().Msg("using in-memory account store; data is lost on exit")
		return &stores{
			accounts:   memory.NewAccountRepo(s),
			transfers:  memory.NewTransferRepo(s),
			transactor: memory.NewTransactor(s),
			health:     s,
		}, func() { _ = s.Close() }, nil

	case config.StoreDriverPostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return &stores{
			accounts:   pgStorage.NewAccountRepo(pool),
			transfers:  pgStorage.NewTransferRepo(pool),
			transactor: pgStorage.NewTransactor(pool, cfg.Store.LockTimeout),
			health:     pgStorage.NewHealthCheck(pool),
		}, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
