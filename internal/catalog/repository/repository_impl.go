package repository

import (
	"context"
	"time"

	catalogdomain "github.com/opendrive/drivevalue/internal/catalog/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, key string) (*catalogdomain.CacheEntry, error) {
	var entry catalogdomain.CacheEntry
	err := db.WithContext(ctx).Raw(
		`SELECT cache_key, data_type, data, expires_at, created_at, updated_at
		 FROM cached_vehicle_data WHERE cache_key = ?`,
		key,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.CacheKey == "" {
		return nil, nil
	}
	return &entry, nil
}

// Upsert replaces any existing row for the same key. The conflict clause is
// dialect-portable, which raw SQL upserts are not.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, entry *catalogdomain.CacheEntry) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data_type", "data", "expires_at", "updated_at"}),
	}).Create(entry).Error
}

func (r *repo) DeleteExpired(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM cached_vehicle_data WHERE expires_at < ?`,
		cutoff,
	)
	return res.RowsAffected, res.Error
}
