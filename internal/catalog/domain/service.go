package domain

import (
	"context"

	"github.com/opendrive/drivevalue/internal/evalue8"
)

// Service serves catalog lookups through the read-through cache. The cached
// flag reports whether the result was served from a live cache entry.
type Service interface {
	Makes(ctx context.Context) ([]evalue8.Make, bool, error)
	Models(ctx context.Context, makeName string) ([]evalue8.Variant, bool, error)
	Years(ctx context.Context, mmCode string) ([]evalue8.Year, bool, error)
	Accessories(ctx context.Context, mmCode string, year int) ([]evalue8.Accessory, bool, error)
}
