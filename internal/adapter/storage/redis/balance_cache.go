package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"account-ledger/internal/core/domain"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// genTTL keeps generation counters well beyond any in-flight store read.
const genTTL = 24 * time.Hour

// setIfGeneration stores ARGV[1] under KEYS[1] only while the generation
// counter KEYS[2] still holds ARGV[2].
var setIfGeneration = goredis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[2] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// BalanceCache implements ports.BalanceCache using Redis.
// Every Invalidate bumps a per-account generation; Set is conditional on it,
// so a snapshot read before a committed transfer is never cached after it.
type BalanceCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewBalanceCache creates a new Redis-backed account cache.
func NewBalanceCache(client *goredis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "ledger:account:",
		ttl:    ttl,
	}
}

func (c *BalanceCache) key(id uuid.UUID) string {
	return c.prefix + id.String()
}

func (c *BalanceCache) genKey(id uuid.UUID) string {
	return c.prefix + id.String() + ":gen"
}

// Get returns the cached account, or nil and the current generation on a miss.
func (c *BalanceCache) Get(ctx context.Context, id uuid.UUID) (*domain.Account, int64, error) {
	var val, gen *goredis.StringCmd
	_, err := c.client.Pipelined(ctx, func(p goredis.Pipeliner) error {
		val = p.Get(ctx, c.key(id))
		gen = p.Get(ctx, c.genKey(id))
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, 0, fmt.Errorf("redis account cache get: %w", err)
	}

	generation, err := gen.Int64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, 0, fmt.Errorf("redis account cache generation: %w", err)
	}

	raw, err := val.Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, generation, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("redis account cache get: %w", err)
	}

	var a domain.Account
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, 0, fmt.Errorf("decode cached account: %w", err)
	}
	return &a, generation, nil
}

// Set caches an account snapshot read at generation gen. It is a no-op when
// the account was invalidated since.
func (c *BalanceCache) Set(ctx context.Context, a *domain.Account, gen int64) error {
	val, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	keys := []string{c.key(a.ID), c.genKey(a.ID)}
	err = setIfGeneration.Run(ctx, c.client, keys, val, strconv.FormatInt(gen, 10), c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("redis account cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached entries for ids and bumps their generations.
func (c *BalanceCache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		for _, id := range ids {
			p.Del(ctx, c.key(id))
			p.Incr(ctx, c.genKey(id))
			p.Expire(ctx, c.genKey(id), genTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis account cache invalidate: %w", err)
	}
	return nil
}
