package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marketsquare/identity-service/internal/api/metrics"
)

const (
	blacklistKeyPrefix = "blacklist:token:"
	blacklistIndexKey  = "blacklist:index"

	defaultMaxSize = 10_000
)

// Blacklist is the Redis-backed denylist of revoked access tokens.
//
// Each token gets a string key holding its original expiry (unix nanos) with
// a TTL equal to the time left on the token, so Redis evicts entries exactly
// when the token they revoke would have died anyway. A sorted set scored by
// expiry indexes the live entries; writes sweep expired index members and
// evict the soonest-expiring tokens once the cardinality cap is exceeded.
// Losing a not-yet-expired entry under capacity pressure is an accepted
// trade-off. Reads never touch TTLs.
type Blacklist struct {
	client  *redis.Client
	maxSize int64
}

// NewBlacklist wraps the given Redis client. maxSize <= 0 falls back to the
// 10,000 default.
func NewBlacklist(client *redis.Client, maxSize int64) *Blacklist {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	return &Blacklist{client: client, maxSize: maxSize}
}

// Put records the token with its own expiry instant. Tokens already past
// expiry are not stored; there is nothing left to revoke.
func (b *Blacklist) Put(ctx context.Context, token string, expiry time.Time) error {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return nil
	}

	pipe := b.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, blacklistIndexKey, "-inf", strconv.FormatInt(time.Now().Unix(), 10))
	pipe.Set(ctx, blacklistKeyPrefix+token, strconv.FormatInt(expiry.UnixNano(), 10), ttl)
	pipe.ZAdd(ctx, blacklistIndexKey, redis.Z{Score: float64(expiry.Unix()), Member: token})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("blacklist put: %w", err)
	}

	return b.enforceCap(ctx)
}

// IsBlacklisted reports true only when an entry exists and its stored expiry
// is still in the future.
func (b *Blacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	val, err := b.client.Get(ctx, blacklistKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("blacklist get: %w", err)
	}

	nanos, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("blacklist entry corrupt: %w", err)
	}
	return time.Unix(0, nanos).After(time.Now()), nil
}

// enforceCap evicts the soonest-expiring entries while the index holds more
// than maxSize members.
func (b *Blacklist) enforceCap(ctx context.Context) error {
	card, err := b.client.ZCard(ctx, blacklistIndexKey).Result()
	if err != nil {
		return fmt.Errorf("blacklist card: %w", err)
	}
	if card <= b.maxSize {
		return nil
	}

	evicted, err := b.client.ZPopMin(ctx, blacklistIndexKey, card-b.maxSize).Result()
	if err != nil {
		return fmt.Errorf("blacklist evict: %w", err)
	}
	for _, z := range evicted {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		if err := b.client.Del(ctx, blacklistKeyPrefix+member).Err(); err != nil {
			return fmt.Errorf("blacklist evict del: %w", err)
		}
		metrics.BlacklistEvictionsTotal.Inc()
	}
	return nil
}
