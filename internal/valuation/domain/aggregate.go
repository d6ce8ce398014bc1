package domain

import "sort"

// MergeAccessories unions server-confirmed standard accessories with
// client-added entries, keyed by option code. The server-confirmed entry
// wins on collision so a code is never double-counted. The result is sorted
// by option code, making the merge order-independent.
func MergeAccessories(standard, extra []Accessory) []Accessory {
	merged := make(map[string]Accessory, len(standard)+len(extra))
	for _, acc := range extra {
		if acc.OptionCode == "" {
			continue
		}
		merged[acc.OptionCode] = acc
	}
	for _, acc := range standard {
		if acc.OptionCode == "" {
			continue
		}
		merged[acc.OptionCode] = acc
	}

	out := make([]Accessory, 0, len(merged))
	for _, acc := range merged {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OptionCode < out[j].OptionCode })
	return out
}

// SumAccessories totals retail and trade across a selection set.
func SumAccessories(accessories []Accessory) (retail, trade int64) {
	for _, acc := range accessories {
		retail += acc.Retail
		trade += acc.Trade
	}
	return retail, trade
}
