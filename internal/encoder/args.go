package encoder

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"pully/internal/model"
)

// Input is one stream handed to the muxer: a file on disk, or a live reader
// fed through stdin. A job may carry at most one reader.
type Input struct {
	Path   string
	Reader io.Reader
}

// Tag is one metadata key/value written into the output container.
type Tag struct {
	Key   string
	Value string
}

// Job describes one mux run.
type Job struct {
	Inputs []Input
	// Format forces the output muxer (ffmpeg -f) and lets ffmpeg pick codecs
	// for it. When empty both tracks are stream-copied and the container
	// follows Output's extension.
	Format   string
	Metadata []Tag
	Output   string
	Duration time.Duration // optional; enables percent in ProgressState

	// OnProgress is called on every progress block ffmpeg reports.
	OnProgress func(ProgressState)
}

// Copy reports whether the job stream-copies its codecs.
func (j Job) Copy() bool { return j.Format == "" }

// muxers maps file extensions to ffmpeg muxer names where they differ.
var muxers = map[string]string{
	"mkv": "matroska",
	"mka": "matroska",
	"m4a": "ipod",
	"m4v": "mp4",
	"ts":  "mpegts",
	"aac": "adts",
}

// MuxerName returns the ffmpeg -f value for an output format given either as a
// file extension or as a muxer name.
func MuxerName(format string) string {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if m, ok := muxers[f]; ok {
		return m
	}
	return f
}

// MetadataTags builds the tag set written for a video.
func MetadataTags(info model.MediaInfo) []Tag {
	network := info.Network
	if network == "" {
		network = "YouTube"
	}
	return []Tag{
		{Key: "title", Value: info.Title},
		{Key: "author", Value: info.Author},
		{Key: "artist", Value: info.Author},
		{Key: "description", Value: info.Description},
		{Key: "comment", Value: info.Description},
		{Key: "episode_id", Value: info.ID},
		{Key: "network", Value: network},
	}
}

// BuildArgs constructs ffmpeg arguments for job. With includeProgress the
// machine-readable progress stream is written to stdout.
func BuildArgs(job Job, includeProgress bool) ([]string, error) {
	if len(job.Inputs) == 0 {
		return nil, errors.New("mux job has no inputs")
	}
	if job.Output == "" {
		return nil, errors.New("output path is required")
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	readers := 0
	for _, in := range job.Inputs {
		switch {
		case in.Reader != nil:
			readers++
			args = append(args, "-i", "pipe:0")
		case in.Path != "":
			args = append(args, "-i", in.Path)
		default:
			return nil, errors.New("mux input has neither a path nor a reader")
		}
	}
	if readers > 1 {
		return nil, errors.New("mux job can read at most one input from stdin")
	}

	for i := range job.Inputs {
		args = append(args, "-map", strconv.Itoa(i))
	}

	if job.Copy() {
		args = append(args, "-c", "copy")
	} else {
		args = append(args, "-f", MuxerName(job.Format))
	}

	for _, t := range job.Metadata {
		args = append(args, "-metadata", t.Key+"="+t.Value)
	}

	if includeProgress {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}

	args = append(args, job.Output)
	return args, nil
}

// stdin returns the job's live input, if any.
func (j Job) stdin() io.Reader {
	for _, in := range j.Inputs {
		if in.Reader != nil {
			return in.Reader
		}
	}
	return nil
}
