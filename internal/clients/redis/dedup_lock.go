package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/services"
)

type dedupLock struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewDedupLock builds the Redis-backed dedup window lock from env.
// REDIS_ADDR is required; the caller decides whether its absence is fatal
// or whether the writer runs on the window check alone.
func NewDedupLock(log *logger.Logger) (services.DedupLock, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &dedupLock{
		log: log.With("service", "RedisDedupLock"),
		rdb: rdb,
	}, nil
}

// Acquire takes the window lock with SETNX. The TTL equals the dedup
// window, so the lock expires exactly when a repeat submission would stop
// counting as a duplicate.
func (l *dedupLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}
