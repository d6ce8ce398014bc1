package repository

import (
	"context"
	"time"

	apiconfigdomain "github.com/opendrive/drivevalue/internal/apiconfig/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() apiconfigdomain.Repository {
	return &repo{}
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB) (*apiconfigdomain.Configuration, error) {
	var cfg apiconfigdomain.Configuration
	err := db.WithContext(ctx).Raw(
		`SELECT id, app_name, username, password_encrypted, client_ref,
		 computer_name, environment, is_active, created_at, updated_at
		 FROM api_configurations WHERE is_active = ? LIMIT 1`,
		true,
	).Scan(&cfg).Error
	if err != nil {
		return nil, err
	}
	if cfg.ID == 0 {
		return nil, nil
	}
	return &cfg, nil
}

func (r *repo) DeactivateAll(ctx context.Context, db *gorm.DB, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE api_configurations SET is_active = ?, updated_at = ? WHERE is_active = ?`,
		false,
		updatedAt,
		true,
	).Error
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cfg *apiconfigdomain.Configuration) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO api_configurations (
			id, app_name, username, password_encrypted, client_ref,
			computer_name, environment, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cfg.ID,
		cfg.AppName,
		cfg.Username,
		cfg.PasswordEncrypted,
		cfg.ClientRef,
		cfg.ComputerName,
		cfg.Environment,
		cfg.IsActive,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	).Error
}
