package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/sirdesai22/recap-service/internal/metrics"
)

// RenderCache keeps rendered public recap pages in Redis, one hash per recap
// with a field per language. A nil *RenderCache is a cache that never hits.
type RenderCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

func NewRenderCache(client goredis.UniversalClient, ttl time.Duration) *RenderCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RenderCache{client: client, ttl: ttl}
}

// Connect pings addr and returns a cache on it.
func Connect(ctx context.Context, addr string, ttl time.Duration) (*RenderCache, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	log.Println("✅ Connected to Redis")
	return NewRenderCache(client, ttl), nil
}

func key(recapID uuid.UUID) string { return "recap:html:" + recapID.String() }

// Get reports whether a page for recapID in lang is cached. Redis errors count as misses.
func (c *RenderCache) Get(ctx context.Context, recapID uuid.UUID, lang string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.client.HGet(ctx, key(recapID), lang).Bytes()
	switch {
	case err == nil:
		metrics.RenderCache.WithLabelValues("hit").Inc()
		return b, true
	case errors.Is(err, goredis.Nil):
		metrics.RenderCache.WithLabelValues("miss").Inc()
	default:
		metrics.RenderCache.WithLabelValues("error").Inc()
		log.WithError(err).Warn("⚠️ render cache read failed")
	}
	return nil, false
}

func (c *RenderCache) Set(ctx context.Context, recapID uuid.UUID, lang string, page []byte) error {
	if c == nil {
		return nil
	}
	k := key(recapID)
	_, err := c.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.HSet(ctx, k, lang, page)
		p.Expire(ctx, k, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("render cache set %s: %w", recapID, err)
	}
	return nil
}

// Invalidate drops every cached language of recapID.
func (c *RenderCache) Invalidate(ctx context.Context, recapID uuid.UUID) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, key(recapID)).Err(); err != nil {
		return fmt.Errorf("render cache invalidate %s: %w", recapID, err)
	}
	return nil
}

func (c *RenderCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
