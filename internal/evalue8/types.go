package evalue8

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Make is a catalog make entry.
type Make struct {
	ShortCode string `json:"mmMakeShortCode"`
	LongName  string `json:"mmMakeLongName,omitempty"`
}

// Variant is a catalog model/variant entry.
type Variant struct {
	Code      string `json:"mvCode"`
	Model     string `json:"mvModel"`
	MakeShort string `json:"mmMakeShortCode"`
}

// Year is a catalog model-year entry.
type Year struct {
	Year int `json:"mmYear"`
}

// Accessory is a priced optional extra from the standard catalog. Monetary
// fields arrive as strings from the upstream service.
type Accessory struct {
	OptionCode  string `json:"OptionCode"`
	Description string `json:"Description"`
	Retail      string `json:"Retail"`
	Trade       string `json:"Trade"`
}

// ValuationData is the upstream payload of a billed valuation call.
type ValuationData struct {
	MakeShort string `json:"mmMakeShortCode"`
	Model     string `json:"mvModel"`
	Year      int    `json:"mmYear"`
	Code      string `json:"mmCode"`
	New       string `json:"mmNew"`
	Retail    string `json:"mmRetail"`
	Trade     string `json:"mmTrade"`
	Guide     string `json:"mmGuide"`
	Estimator string `json:"mmEstimator,omitempty"`
}

// Identification is the subset of valuation data returned by an
// identify-only lookup (by VIN or mmCode+year).
type Identification struct {
	Code      string `json:"mmCode"`
	Year      int    `json:"mmYear"`
	MakeShort string `json:"mmMakeShortCode"`
	Model     string `json:"mvModel"`
	Guide     string `json:"mmGuide"`
}

// NonStandardExtra is the priced value of a user-declared accessory.
type NonStandardExtra struct {
	ExtraCode   string `json:"ExtraCode"`
	RetailValue int64  `json:"RetailValue"`
	TradeValue  int64  `json:"TradeValue"`
}

// envelope is the common response wrapper. Result is a pointer so a missing
// field is distinguishable from result 0.
type envelope struct {
	Result  *int   `json:"result"`
	Message string `json:"message"`
}

type makesResponse struct {
	envelope
	Data []Make `json:"data"`
}

type modelsResponse struct {
	envelope
	Variants []Variant `json:"Variants"`
}

type yearsResponse struct {
	envelope
	Years []Year `json:"Years"`
}

type accessoriesResponse struct {
	envelope
	Optional []Accessory `json:"Optional"`
}

type valuationResponse struct {
	envelope
	Data ValuationData `json:"data"`
}

// nonStandardExtraRow tolerates the upstream's mixed string/number fields.
type nonStandardExtraRow struct {
	ExtraCode   flexible `json:"ExtraCode"`
	RetailValue flexible `json:"RetailValue"`
	TradeValue  flexible `json:"TradeValue"`
}

// flexible is a scalar the upstream serializes as either string or number.
type flexible string

func (f *flexible) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		var out string
		if err := json.Unmarshal(data, &out); err != nil {
			return err
		}
		*f = flexible(out)
		return nil
	}
	if s == "null" {
		*f = ""
		return nil
	}
	*f = flexible(s)
	return nil
}

// Int64 coerces the value to an integer, zero when non-numeric.
func (f flexible) Int64() int64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	if err != nil {
		return 0
	}
	return int64(v)
}

type nonStandardExtraResponse struct {
	envelope
	Data []nonStandardExtraRow `json:"data"`
}
