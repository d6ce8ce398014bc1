package repository

import (
	"context"

	valuationdomain "github.com/opendrive/drivevalue/internal/valuation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() valuationdomain.Repository {
	return &repo{}
}

// Insert appends an audit row. The builder quotes the condition column,
// which is reserved in some dialects.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, log *valuationdomain.ValuationLog) error {
	return db.WithContext(ctx).Create(log).Error
}
