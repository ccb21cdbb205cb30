// Package ratelimit throttles the expensive endpoints behind a redis token
// bucket. The limiter is nil when disabled; callers treat nil as allow-all.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/flowsight/internal/config"
)

const keyExportClient = "export:client:%s"

// ExportLimiter throttles CSV export requests per client.
type ExportLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewExportLimiter(cfg config.Config) (*ExportLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.ExportRate <= 0 || limitCfg.ExportBurst <= 0 {
		return nil, errors.New("export rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &ExportLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.ExportRate,
		burst:   limitCfg.ExportBurst,
	}, nil
}

func (l *ExportLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowExport takes one export token for the client, usually its IP.
func (l *ExportLimiter) AllowExport(ctx context.Context, clientKey string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyExportClient, strings.TrimSpace(clientKey)), l.rate, l.burst)
}
