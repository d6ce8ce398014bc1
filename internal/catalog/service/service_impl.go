package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/opendrive/drivevalue/internal/catalog/domain"
	"github.com/opendrive/drivevalue/internal/clock"
	"github.com/opendrive/drivevalue/internal/evalue8"
	obsmetrics "github.com/opendrive/drivevalue/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Client  *evalue8.Client
	Repo    domain.Repository
	Clock   clock.Clock
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	client  *evalue8.Client
	repo    domain.Repository
	clock   clock.Clock
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("catalog.service"),
		client:  p.Client,
		repo:    p.Repo,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

func (s *Service) Makes(ctx context.Context) ([]evalue8.Make, bool, error) {
	return readThrough(s, ctx, domain.MakesKey(), domain.KindMakes, func(ctx context.Context) ([]evalue8.Make, error) {
		return s.client.Makes(ctx)
	})
}

func (s *Service) Models(ctx context.Context, makeName string) ([]evalue8.Variant, bool, error) {
	return readThrough(s, ctx, domain.ModelsKey(makeName), domain.KindModels, func(ctx context.Context) ([]evalue8.Variant, error) {
		return s.client.Models(ctx, makeName)
	})
}

func (s *Service) Years(ctx context.Context, mmCode string) ([]evalue8.Year, bool, error) {
	return readThrough(s, ctx, domain.YearsKey(mmCode), domain.KindYears, func(ctx context.Context) ([]evalue8.Year, error) {
		return s.client.Years(ctx, mmCode)
	})
}

func (s *Service) Accessories(ctx context.Context, mmCode string, year int) ([]evalue8.Accessory, bool, error) {
	return readThrough(s, ctx, domain.AccessoriesKey(mmCode, year), domain.KindAccessories, func(ctx context.Context) ([]evalue8.Accessory, error) {
		return s.client.Accessories(ctx, mmCode, year)
	})
}

// readThrough checks the cache, falls through to the upstream client, and
// writes the fresh result back best-effort. A concurrent same-key miss may
// fetch twice; the upsert is idempotent so the last writer wins harmlessly.
func readThrough[T any](s *Service, ctx context.Context, key string, kind domain.Kind, fetch func(context.Context) ([]T, error)) ([]T, bool, error) {
	now := s.clock.Now()

	if entry, err := s.repo.Find(ctx, s.db, key); err != nil {
		// A broken cache store must not take catalog lookups down.
		s.log.Warn("cache read failed", zap.String("cache_key", key), zap.Error(err))
	} else if entry != nil && now.Before(entry.ExpiresAt) {
		var items []T
		if err := json.Unmarshal(entry.Data, &items); err == nil {
			s.metrics.RecordCacheLookup(ctx, string(kind), true)
			return items, true, nil
		}
		s.log.Warn("cache entry corrupt, refetching", zap.String("cache_key", key))
	}
	s.metrics.RecordCacheLookup(ctx, string(kind), false)

	items, err := fetch(ctx)
	if err != nil {
		return nil, false, err
	}
	if items == nil {
		items = []T{}
	}

	s.put(ctx, key, kind, items, now)
	return items, false, nil
}

func (s *Service) put(ctx context.Context, key string, kind domain.Kind, items any, now time.Time) {
	payload, err := json.Marshal(items)
	if err != nil {
		s.log.Warn("cache payload marshal failed", zap.String("cache_key", key), zap.Error(err))
		return
	}

	entry := &domain.CacheEntry{
		CacheKey:  key,
		DataType:  kind,
		Data:      payload,
		ExpiresAt: now.Add(kind.TTL()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, s.db, entry); err != nil {
		// Best-effort write: the fresh data is still returned to the caller.
		s.log.Warn("cache write failed", zap.String("cache_key", key), zap.Error(err))
	}
}
