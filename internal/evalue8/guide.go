package evalue8

import (
	"strconv"
	"time"
)

// GuideNumber is the month+year composite the catalog uses to version
// accessory and year pricing data. Month is 1-12 with no zero padding, year
// is printed in full: March 2025 -> "32025". It is a function of wall-clock
// time at call time, so it is recomputed per request and never cached.
func GuideNumber(now time.Time) string {
	return strconv.Itoa(int(now.Month())) + strconv.Itoa(now.Year())
}
