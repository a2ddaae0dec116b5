// Package progress carries download status from the pipeline to whichever
// front end is watching.
package progress

import (
	"math"
	"time"

	"pully/internal/util/format"
)

// Stage identifies a high-level step in the pipeline.
type Stage string

const (
	StageMetadata    Stage = "metadata"
	StageVerify      Stage = "verify"
	StageDownloading Stage = "downloading"
	StageMerging     Stage = "merging"
	StageCompleted   Stage = "completed"
	StageCancelled   Stage = "cancelled"
	StageError       Stage = "error"
)

// LogStream indicates which stream produced a log line.
type LogStream int

const (
	StreamStdout LogStream = iota
	StreamStderr
)

// Data is one progress snapshot. When Indeterminate is set only Elapsed is
// meaningful; the muxer reports activity but not a byte count.
type Data struct {
	Downloaded     int64
	Total          int64 // 0 if unknown
	Ratio          float64
	Percent        float64 // two decimals, truncated
	BytesPerSecond float64
	Speed          string
	Elapsed        string
	ETA            string // empty when no estimate is available
	Indeterminate  bool
}

// Snapshot builds Data for a transfer that has moved downloaded of total bytes.
func Snapshot(downloaded, total int64, bps float64, elapsed time.Duration, eta time.Duration, etaOK bool) Data {
	d := Data{
		Downloaded:     downloaded,
		Total:          total,
		BytesPerSecond: bps,
		Speed:          format.Speed(bps),
		Elapsed:        format.Clock(elapsed),
		ETA:            format.ClockIf(eta, etaOK),
	}
	if total > 0 {
		d.Ratio = min(max(float64(downloaded)/float64(total), 0), 1)
		d.Percent = math.Floor(d.Ratio*10000) / 100
	}
	return d
}

// Indeterminate is a snapshot that only says work is ongoing.
func Indeterminate(elapsed time.Duration) Data {
	return Data{Indeterminate: true, Elapsed: format.Clock(elapsed)}
}

// Update conveys progress or stage changes for a job.
type Update struct {
	JobID   string
	Stage   Stage
	Data    Data
	Message string // short human-friendly status line
}

// Log is a log line associated with a job.
type Log struct {
	JobID  string
	Stream LogStream
	Line   string
}

// Result is emitted once per job when it completes, is cancelled, or fails.
type Result struct {
	JobID      string
	OutputPath string
	Bytes      int64
	Cancelled  bool
	Reason     string
	Err        error // nil on success
}

// Reporter is implemented by UI or any observer interested in progress events.
type Reporter interface {
	Update(u Update)
	Log(l Log)
	Result(r Result)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Update(Update) {}
func (Nop) Log(Log)       {}
func (Nop) Result(Result) {}
