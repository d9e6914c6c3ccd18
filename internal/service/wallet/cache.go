package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pouch/internal/domain"
	"pouch/internal/logging"
)

// BalanceCache is a read-through cache for balance listings. A nil
// *BalanceCache is valid and does nothing, so the service runs without
// Redis configured. Cache failures are logged and degrade to Postgres
// reads; they never fail a request.
type BalanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewBalanceCache(rdb *redis.Client, ttl time.Duration) *BalanceCache {
	if rdb == nil {
		return nil
	}
	return &BalanceCache{rdb: rdb, ttl: ttl}
}

func balanceKey(userID uuid.UUID) string {
	return fmt.Sprintf("pouch:balances:%s", userID)
}

func (c *BalanceCache) Get(ctx context.Context, userID uuid.UUID) ([]domain.AccountBalance, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, balanceKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.FromContext(ctx).Warn("balance cache read failed", "error", err, "user_id", userID)
		}
		balanceCacheMisses.Inc()
		return nil, false
	}

	var balances []domain.AccountBalance
	if err := json.Unmarshal(raw, &balances); err != nil {
		logging.FromContext(ctx).Warn("balance cache entry corrupt", "error", err, "user_id", userID)
		balanceCacheMisses.Inc()
		return nil, false
	}

	balanceCacheHits.Inc()
	return balances, true
}

func (c *BalanceCache) Set(ctx context.Context, userID uuid.UUID, balances []domain.AccountBalance) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(balances)
	if err != nil {
		logging.FromContext(ctx).Warn("balance cache encode failed", "error", err, "user_id", userID)
		return
	}
	if err := c.rdb.Set(ctx, balanceKey(userID), raw, c.ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("balance cache write failed", "error", err, "user_id", userID)
	}
}

// Invalidate drops the cached listings for every user touched by a
// committed transfer.
func (c *BalanceCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	if c == nil {
		return
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, balanceKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logging.FromContext(ctx).Warn("balance cache invalidation failed", "error", err)
	}
}
