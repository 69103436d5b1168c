package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"petmemorial/internal/config"
	"petmemorial/internal/pkg/logger"
)

// Deduper suppresses repeated side effects (emails, SMS) for the same event within a TTL.
type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewClient builds a redis client, or returns nil when no address is configured.
func NewClient(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func New(rdb *redis.Client, ttl time.Duration, l *zap.Logger) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl, log: logger.OrNop(l)}
}

// Key builds the redis key for a scope/id pair.
func Key(scope string, id int64) string {
	return fmt.Sprintf("dedup:%s:%d", scope, id)
}

// AcquireOnce returns true the first time it is called for scope+id within the TTL.
// A nil deduper, a nil client or an unreachable redis all allow the side effect.
func (d *Deduper) AcquireOnce(ctx context.Context, scope string, id int64) bool {
	if d == nil || d.rdb == nil {
		return true
	}

	key := Key(scope, id)
	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		d.log.Warn("redis dedupe check failed, allowing", zap.String("key", key), zap.Error(err))
		return true
	}
	if !ok {
		d.log.Info("skipped duplicated side effect", zap.String("key", key))
	}
	return ok
}
