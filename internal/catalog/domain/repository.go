package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Find(ctx context.Context, db *gorm.DB, key string) (*CacheEntry, error)
	Upsert(ctx context.Context, db *gorm.DB, entry *CacheEntry) error
	DeleteExpired(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
}
