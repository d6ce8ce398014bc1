package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ValuationLog is the append-only audit record of a completed valuation.
type ValuationLog struct {
	ID                  snowflake.ID   `json:"id" gorm:"primaryKey"`
	Make                string         `json:"make" gorm:"type:text"`
	Model               string         `json:"model" gorm:"type:text"`
	Year                int            `json:"year" gorm:"not null"`
	MMCode              string         `json:"mm_code" gorm:"column:mm_code;type:text;not null;index:idx_valuation_logs_mm_code"`
	Condition           string         `json:"condition" gorm:"type:text;not null"`
	Mileage             string         `json:"mileage" gorm:"type:text;not null"`
	BaseRetail          int64          `json:"base_retail" gorm:"column:base_retail;not null;default:0"`
	BaseTrade           int64          `json:"base_trade" gorm:"column:base_trade;not null;default:0"`
	AccessoriesValue    int64          `json:"accessories_value" gorm:"column:accessories_value;not null;default:0"`
	TotalRetail         int64          `json:"total_retail" gorm:"column:total_retail;not null;default:0"`
	TotalTrade          int64          `json:"total_trade" gorm:"column:total_trade;not null;default:0"`
	SelectedAccessories datatypes.JSON `json:"selected_accessories" gorm:"column:selected_accessories"`
	CreatedAt           time.Time      `json:"created_at"`
}

func (ValuationLog) TableName() string { return "valuation_logs" }

// Accessory is a priced line item with monetary values normalized to whole
// units. Non-standard extras carry a synthetic option code.
type Accessory struct {
	OptionCode  string `json:"option_code"`
	Description string `json:"description"`
	Retail      int64  `json:"retail"`
	Trade       int64  `json:"trade"`
}

// ValuationRequest is the pipeline entry contract. Accessories selects
// standard catalog option codes; Extras carries client-added line items
// (typically non-standard extras priced separately).
type ValuationRequest struct {
	MMCode      string      `json:"mmCode"`
	Year        int         `json:"mmYear"`
	Condition   string      `json:"condition"`
	Mileage     string      `json:"mileage"`
	Accessories []string    `json:"accessories"`
	Extras      []Accessory `json:"extras"`
}

// ValuationResult is the combined base + accessory valuation.
type ValuationResult struct {
	MakeShort         string      `json:"mmMakeShortCode"`
	Model             string      `json:"mvModel"`
	Year              int         `json:"mmYear"`
	MMCode            string      `json:"mmCode"`
	New               string      `json:"mmNew,omitempty"`
	Guide             string      `json:"mmGuide,omitempty"`
	BaseRetail        int64       `json:"base_retail"`
	BaseTrade         int64       `json:"base_trade"`
	Accessories       []Accessory `json:"accessories"`
	AccessoriesRetail int64       `json:"accessories_retail"`
	AccessoriesTrade  int64       `json:"accessories_trade"`
	TotalRetail       int64       `json:"total_retail"`
	TotalTrade        int64       `json:"total_trade"`
}

// IdentifyRequest resolves vehicle identity by VIN or by mmCode+year.
type IdentifyRequest struct {
	VIN    string `json:"vin"`
	MMCode string `json:"mmCode"`
	Year   int    `json:"mmYear"`
}

// NonStandardExtraRequest prices a user-declared accessory.
type NonStandardExtraRequest struct {
	Year        int    `json:"mmYear"`
	CostPrice   int64  `json:"costPrice"`
	VehicleType string `json:"vehicleType"`
}

// ParseAmount coerces an upstream monetary string to whole units. The
// upstream serializes money as strings; anything non-numeric is zero, never
// a NaN that could poison a total.
func ParseAmount(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(v)
	}
	return 0
}
