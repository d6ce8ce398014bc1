package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opendrive/drivevalue/internal/apiconfig/domain"
	"github.com/opendrive/drivevalue/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Cfg   config.Config
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	codec *Codec
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("apiconfig.service"),
		repo:  p.Repo,
		genID: p.GenID,
		codec: NewCodec(p.Cfg.ConfigSecret),
	}
}

func (s *Service) Save(ctx context.Context, req domain.SaveRequest) (*domain.Summary, error) {
	appName := strings.TrimSpace(req.AppName)
	username := strings.TrimSpace(req.Username)
	clientRef := strings.TrimSpace(req.ClientRef)
	computerName := strings.TrimSpace(req.ComputerName)
	if appName == "" || username == "" || req.Password == "" || clientRef == "" || computerName == "" {
		return nil, domain.ErrInvalidRequest
	}

	encrypted, err := s.codec.Encrypt(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cfg := &domain.Configuration{
		ID:                s.genID.Generate(),
		AppName:           appName,
		Username:          username,
		PasswordEncrypted: encrypted,
		ClientRef:         clientRef,
		ComputerName:      computerName,
		Environment:       domain.NormalizeEnvironment(req.Environment),
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// Deactivate-then-insert in one transaction keeps the single-active-row
	// invariant; last writer wins.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeactivateAll(ctx, tx, now); err != nil {
			return err
		}
		return s.repo.Insert(ctx, tx, cfg)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("configuration saved",
		zap.String("app_name", cfg.AppName),
		zap.String("environment", string(cfg.Environment)),
	)

	return summaryOf(cfg), nil
}

func (s *Service) GetActive(ctx context.Context) (*domain.Summary, error) {
	cfg, err := s.repo.FindActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.ErrConfigurationMissing
	}
	return summaryOf(cfg), nil
}

func (s *Service) Resolve(ctx context.Context) (*domain.Credentials, error) {
	cfg, err := s.repo.FindActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.ErrConfigurationMissing
	}

	password, err := s.codec.Decrypt(cfg.PasswordEncrypted)
	if err != nil {
		return nil, err
	}

	creds := &domain.Credentials{
		AppName:      cfg.AppName,
		Username:     cfg.Username,
		Password:     password,
		ClientRef:    cfg.ClientRef,
		ComputerName: cfg.ComputerName,
		Environment:  cfg.Environment,
	}
	if !creds.Complete() {
		return nil, domain.ErrConfigurationIncomplete
	}
	return creds, nil
}

func summaryOf(cfg *domain.Configuration) *domain.Summary {
	return &domain.Summary{
		ID:           cfg.ID,
		AppName:      cfg.AppName,
		Username:     cfg.Username,
		ClientRef:    cfg.ClientRef,
		ComputerName: cfg.ComputerName,
		Environment:  cfg.Environment,
		IsActive:     cfg.IsActive,
	}
}
