package reference

// Option is a selectable code with its display label.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Options bundles the valuation adjustment code lists the upstream service
// understands. The sets are fixed by the upstream API and are served from
// here so clients never hard-code them.
type Options struct {
	Conditions []Option `json:"conditions"`
	Mileages   []Option `json:"mileages"`
}

var conditions = []Option{
	{Code: "EX", Label: "Excellent"},
	{Code: "VG", Label: "Very Good"},
	{Code: "GO", Label: "Good"},
	{Code: "PO", Label: "Poor"},
	{Code: "VP", Label: "Very Poor"},
}

var mileages = []Option{
	{Code: "VL", Label: "Very Low"},
	{Code: "LO", Label: "Low"},
	{Code: "AV", Label: "Average"},
	{Code: "HI", Label: "High"},
	{Code: "VH", Label: "Very High"},
}

// ValuationOptions returns fresh copies so callers cannot mutate the
// canonical lists.
func ValuationOptions() Options {
	return Options{
		Conditions: append([]Option(nil), conditions...),
		Mileages:   append([]Option(nil), mileages...),
	}
}

// ValidCondition reports whether code is a known condition code.
func ValidCondition(code string) bool { return contains(conditions, code) }

// ValidMileage reports whether code is a known mileage code.
func ValidMileage(code string) bool { return contains(mileages, code) }

func contains(options []Option, code string) bool {
	for _, opt := range options {
		if opt.Code == code {
			return true
		}
	}
	return false
}
