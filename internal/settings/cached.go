package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/cache"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"go.uber.org/zap"
)

// Cached fronts another Provider with Redis. Cache errors degrade to a
// direct read.
type Cached struct {
	next   Provider
	cache  *cache.RedisClient
	ttl    time.Duration
	logger logger.ZapLogger
}

func NewCached(next Provider, c *cache.RedisClient, ttl time.Duration, log logger.ZapLogger) *Cached {
	return &Cached{next: next, cache: c, ttl: ttl, logger: log}
}

func cacheKey(tenantID string) string {
	return fmt.Sprintf("garage:settings:%s", tenantID)
}

func (c *Cached) Get(ctx context.Context, tenantID string) (*model.GarageSettings, error) {
	var gs model.GarageSettings
	err := c.cache.GetJSON(ctx, cacheKey(tenantID), &gs)
	if err == nil {
		return &gs, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		c.logger.Warn("settings cache read failed", zap.String("tenant_id", tenantID), zap.Error(err))
	}

	fresh, err := c.next.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetJSON(ctx, cacheKey(tenantID), fresh, c.ttl); err != nil {
		c.logger.Warn("settings cache write failed", zap.String("tenant_id", tenantID), zap.Error(err))
	}
	return fresh, nil
}
