package scheduler

import (
	"context"
	"errors"
	"time"

	catalogdomain "github.com/opendrive/drivevalue/internal/catalog/domain"
	"github.com/opendrive/drivevalue/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler dependencies are incomplete")

// Config controls the maintenance loop interval.
type Config struct {
	RunInterval time.Duration
}

func DefaultConfig() Config {
	return Config{RunInterval: time.Hour}
}

func (c Config) withDefaults() Config {
	if c.RunInterval <= 0 {
		c.RunInterval = DefaultConfig().RunInterval
	}
	return c
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  catalogdomain.Repository
	Clock clock.Clock
	Cfg   Config `optional:"true"`
}

// Scheduler runs periodic maintenance. Its only job is purging expired
// catalog cache rows, which the read path never deletes.
type Scheduler struct {
	db    *gorm.DB
	log   *zap.Logger
	cfg   Config
	repo  catalogdomain.Repository
	clock clock.Clock
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Repo == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:    p.DB,
		log:   p.Log.Named("scheduler"),
		cfg:   p.Cfg.withDefaults(),
		repo:  p.Repo,
		clock: p.Clock,
	}, nil
}

// RunOnce purges cache rows that expired before now.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := s.clock.Now()
	purged, err := s.repo.DeleteExpired(ctx, s.db, now)
	if err != nil {
		return err
	}
	if purged > 0 {
		s.log.Info("expired cache entries purged", zap.Int64("count", purged))
	}
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("cache purge failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
