package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/splitcpg/splitcpg-backend/internal/platform/envutil"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
)

// ReadinessCache memoizes organizer payout readiness so the payment path does
// not hit the processor's account API on every checkout. Entries are advisory:
// a miss or a cache error always falls through to a live account lookup.
type ReadinessCache interface {
	Get(ctx context.Context, companyID uuid.UUID) (ready bool, found bool, err error)
	Set(ctx context.Context, companyID uuid.UUID, ready bool) error
	Invalidate(ctx context.Context, companyID uuid.UUID) error
	Close() error
}

type readinessCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewReadinessCache(log *logger.Logger) (ReadinessCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       envutil.Int("REDIS_DB", 0),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &readinessCache{
		log: log.With("client", "ReadinessCache"),
		rdb: rdb,
		ttl: envutil.Duration("READINESS_CACHE_TTL", 10*time.Minute),
	}, nil
}

func readinessKey(companyID uuid.UUID) string {
	return "organizer:ready:" + companyID.String()
}

func (c *readinessCache) Get(ctx context.Context, companyID uuid.UUID) (bool, bool, error) {
	val, err := c.rdb.Get(ctx, readinessKey(companyID)).Result()
	if errors.Is(err, goredis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return val == "1", true, nil
}

func (c *readinessCache) Set(ctx context.Context, companyID uuid.UUID, ready bool) error {
	val := "0"
	if ready {
		val = "1"
	}
	return c.rdb.Set(ctx, readinessKey(companyID), val, c.ttl).Err()
}

func (c *readinessCache) Invalidate(ctx context.Context, companyID uuid.UUID) error {
	return c.rdb.Del(ctx, readinessKey(companyID)).Err()
}

func (c *readinessCache) Close() error {
	return c.rdb.Close()
}
