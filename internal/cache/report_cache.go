// Package cache holds the Redis-backed report listing cache. It is a pure
// read optimization: every entry is invalidated on write and expires on its
// own, so a cold or unreachable Redis only costs a database round trip.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/report-service/internal/domain"
)

// ErrMiss reports that no fresh entry exists for the key.
var ErrMiss = errors.New("cache miss")

// ReportCache caches per-user report listings.
type ReportCache interface {
	GetReports(ctx context.Context, userID string) ([]*domain.ReportDocument, error)
	SetReports(ctx context.Context, userID string, reports []*domain.ReportDocument) error
	Invalidate(ctx context.Context, userID string) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewReportCache builds a Redis-backed cache. A nil client or zero TTL yields
// a cache that always misses.
func NewReportCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) ReportCache {
	return &redisReportCache{client: client, ttl: ttl, logger: logger}
}

func reportKey(userID string) string {
	return "reports:user:" + userID
}

func (c *redisReportCache) GetReports(ctx context.Context, userID string) ([]*domain.ReportDocument, error) {
	if c.client == nil || c.ttl <= 0 {
		return nil, ErrMiss
	}

	raw, err := c.client.Get(ctx, reportKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("report cache read failed", zap.Error(err))
		}
		return nil, ErrMiss
	}

	var reports []*domain.ReportDocument
	if err := json.Unmarshal(raw, &reports); err != nil {
		return nil, ErrMiss
	}
	return reports, nil
}

func (c *redisReportCache) SetReports(ctx context.Context, userID string, reports []*domain.ReportDocument) error {
	if c.client == nil || c.ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(reports)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, reportKey(userID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("report cache write failed", zap.Error(err))
	}
	return nil
}

func (c *redisReportCache) Invalidate(ctx context.Context, userID string) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, reportKey(userID)).Err(); err != nil {
		c.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
	return nil
}
