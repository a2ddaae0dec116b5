package bitrate

import (
	"strconv"
	"strings"
)

// Ceiling returns the upper bound of a bitrate range such as "128-256".
// A single value is its own ceiling; unparsable input yields 0.
func Ceiling(r string) float64 {
	r = strings.TrimSpace(r)
	if r == "" {
		return 0
	}
	parts := strings.Split(r, "-")
	v, err := strconv.ParseFloat(strings.TrimSpace(parts[len(parts)-1]), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// FormatRange renders an average/peak pair the way catalogs report bitrate
// ranges. Zero parts are omitted.
func FormatRange(avg, peak int) string {
	switch {
	case avg > 0 && peak > avg:
		return strconv.Itoa(avg) + "-" + strconv.Itoa(peak)
	case peak > 0:
		return strconv.Itoa(peak)
	case avg > 0:
		return strconv.Itoa(avg)
	default:
		return ""
	}
}

// Kbps converts bits per second to whole kilobits per second.
func Kbps(bps int) int {
	if bps <= 0 {
		return 0
	}
	return (bps + 500) / 1000
}

// Clamp returns v constrained to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
