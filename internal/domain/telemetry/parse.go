package telemetry

import (
	"math"
	"strconv"
	"strings"
)

// Metric parses a numeric-as-string telemetry field. A reading is valid only
// when it parses to a finite number greater than zero; the platform encodes
// "no reading" as "0", an empty string or arbitrary garbage, and none of
// those may leak into averages or buckets.
func Metric(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v <= 0 {
		return 0, false
	}
	return v, true
}

// Number parses a numeric-as-string field where an unreadable value simply
// contributes zero (charging cycles, capacities, energy totals, working
// hours). Negative values are preserved; some sources report discharge
// energy with a sign.
func Number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Category normalizes a categorical field for histogram purposes. Empty and
// whitespace-only values fold into the NotActive bucket.
func Category(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NotActive
	}
	return s
}
