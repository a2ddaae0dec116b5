package encoder

import (
	"strconv"
	"strings"
	"time"
)

// ProgressState accumulates ffmpeg -progress key=value lines. A block ends
// with a "progress=continue" or "progress=end" line.
type ProgressState struct {
	OutTime   time.Duration
	Speed     string
	TotalSize int64
	Done      bool
}

// UpdateFromLine folds one line into the state and reports whether a block
// just ended.
func (ps *ProgressState) UpdateFromLine(line string) bool {
	key, val, ok := strings.Cut(line, "=")
	if !ok {
		return false
	}
	key, val = strings.TrimSpace(key), strings.TrimSpace(val)

	switch key {
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds.
		if v, err := strconv.ParseInt(val, 10, 64); err == nil && v >= 0 {
			ps.OutTime = time.Duration(v) * time.Microsecond
		}
	case "speed":
		if val != "N/A" {
			ps.Speed = val
		}
	case "total_size":
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			ps.TotalSize = v
		}
	case "progress":
		ps.Done = val == "end"
		return true
	}
	return false
}

// Percent is OutTime relative to duration, capped at 100. It is negative
// when duration is unknown.
func (ps ProgressState) Percent(duration time.Duration) float64 {
	if duration <= 0 {
		return -1
	}
	return min(float64(ps.OutTime)/float64(duration)*100, 100)
}
