package domain

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Kind tags what a cache entry holds.
type Kind string

const (
	KindMakes       Kind = "makes"
	KindModels      Kind = "models"
	KindYears       Kind = "years"
	KindAccessories Kind = "accessories"
)

// TTL is the type-specific freshness window for cached catalog data.
func (k Kind) TTL() time.Duration {
	switch k {
	case KindMakes, KindModels:
		return 24 * time.Hour
	default:
		return 6 * time.Hour
	}
}

// CacheEntry memoizes one external catalog lookup. The cache key is the
// natural identity; stale entries are superseded on refetch and swept by
// the maintenance scheduler.
type CacheEntry struct {
	CacheKey  string         `json:"cache_key" gorm:"column:cache_key;primaryKey;size:256"`
	DataType  Kind           `json:"data_type" gorm:"column:data_type;type:text;not null"`
	Data      datatypes.JSON `json:"data" gorm:"not null"`
	ExpiresAt time.Time      `json:"expires_at" gorm:"index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (CacheEntry) TableName() string { return "cached_vehicle_data" }

// Cache keys are deterministic functions of the lookup parameters.

func MakesKey() string { return "vehicle_makes" }

func ModelsKey(makeName string) string { return "vehicle_models_" + makeName }

func YearsKey(mmCode string) string { return "vehicle_years_" + mmCode }

func AccessoriesKey(mmCode string, year int) string {
	return fmt.Sprintf("vehicle_accessories_%s_%d", mmCode, year)
}
