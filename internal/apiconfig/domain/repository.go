package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	FindActive(ctx context.Context, db *gorm.DB) (*Configuration, error)
	DeactivateAll(ctx context.Context, db *gorm.DB, updatedAt time.Time) error
	Insert(ctx context.Context, db *gorm.DB, cfg *Configuration) error
}
