package domain

import (
	"context"
	"errors"

	"github.com/opendrive/drivevalue/internal/evalue8"
)

var (
	// ErrInvalidRequest is returned when required lookup fields are absent.
	ErrInvalidRequest = errors.New("mmCode, mmYear, condition and mileage are required")
	// ErrInvalidIdentify is returned when neither VIN nor mmCode+year is given.
	ErrInvalidIdentify = errors.New("provide either vin or mmCode and mmYear")
	// ErrInvalidExtra is returned when the extra-pricing inputs are absent.
	ErrInvalidExtra = errors.New("mmYear and costPrice are required")
)

type Service interface {
	// Valuate runs the full pipeline: resolve configuration, decrypt the
	// credential, fetch the base valuation, enrich with accessories, total,
	// and log.
	Valuate(ctx context.Context, req ValuationRequest) (*ValuationResult, error)
	// Identify resolves vehicle identity without writing a log row.
	Identify(ctx context.Context, req IdentifyRequest) (*evalue8.Identification, error)
	// NonStandardExtra prices a user-declared accessory from its cost price.
	NonStandardExtra(ctx context.Context, req NonStandardExtraRequest) (*evalue8.NonStandardExtra, error)
}
