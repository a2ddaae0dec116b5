package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// HumanizeBytes converts a byte count into a human-readable string using
// 1024-based units (e.g., "1.5 MiB").
func HumanizeBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.IBytes(uint64(b))
}

// Speed renders a throughput such as "2.4 MiB/s". Non-finite or negative
// rates render as an empty string.
func Speed(bytesPerSecond float64) string {
	if math.IsNaN(bytesPerSecond) || math.IsInf(bytesPerSecond, 0) || bytesPerSecond < 0 {
		return ""
	}
	return humanize.IBytes(uint64(bytesPerSecond)) + "/s"
}

// ParseSize reads a size such as "500MB", "1.5GiB" or "700". A bare number
// is taken as megabytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size %q", s)
		}
		return int64(n * humanize.MByte), nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}
