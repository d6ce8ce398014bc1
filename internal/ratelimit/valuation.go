package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/opendrive/drivevalue/internal/config"
)

const keyValuation = "valuation:client:%s"

// ValuationLimiter throttles billed valuation calls per client. Each
// upstream call costs money, so the bucket sits in front of the pipeline
// rather than the whole API surface.
type ValuationLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewValuationLimiter(cfg config.Config) (*ValuationLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.ValuationRate <= 0 || limitCfg.ValuationBurst <= 0 {
		return nil, errors.New("valuation rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &ValuationLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.ValuationRate,
		burst:   limitCfg.ValuationBurst,
	}, nil
}

func (l *ValuationLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *ValuationLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyValuation, strings.TrimSpace(clientID)), l.rate, l.burst)
}
