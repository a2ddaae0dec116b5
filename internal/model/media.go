package model

import (
	"fmt"
	"mime"
	"strconv"
	"strings"
	"time"
)

// MIME prefixes accepted by the selector for each stream kind.
const (
	VideoMIME = "video/mp4"
	AudioMIME = "audio/mp4"
)

// RawFormat is a catalog entry as reported by a provider, before normalization.
type RawFormat struct {
	Itag          string
	MimeType      string // e.g. `video/mp4; codecs="avc1.640028"`
	FPS           int
	Height        int    // 0 if unknown
	Size          string // "WxH", used when Height is 0
	AudioBitrate  int    // kbps
	Bitrate       string // "128-256"
	ContentLength int64  // 0 if unknown
	URL           string
}

// MediaFormat is one candidate stream offered for a video.
type MediaFormat struct {
	Itag          string
	Type          string
	Container     string
	Encoding      string
	FPS           int
	Resolution    int
	Size          string
	AudioEncoding string
	AudioBitrate  int
	Bitrate       string
	DownloadSize  int64 // 0 if unknown
	URL           string
}

// NewMediaFormat normalizes a raw catalog entry.
func NewMediaFormat(raw RawFormat) MediaFormat {
	mt, codecs := parseMime(raw.MimeType)
	f := MediaFormat{
		Itag:         raw.Itag,
		Type:         raw.MimeType,
		FPS:          max(raw.FPS, 0),
		Resolution:   ParseResolution(raw.Height, raw.Size),
		Size:         raw.Size,
		AudioBitrate: max(raw.AudioBitrate, 0),
		Bitrate:      raw.Bitrate,
		DownloadSize: max(raw.ContentLength, 0),
		URL:          raw.URL,
	}
	if i := strings.IndexByte(mt, '/'); i >= 0 {
		f.Container = mt[i+1:]
	}
	switch {
	case strings.HasPrefix(mt, "audio/"):
		if len(codecs) > 0 {
			f.AudioEncoding = codecs[0]
		}
	case len(codecs) > 1:
		f.Encoding, f.AudioEncoding = codecs[0], codecs[1]
	case len(codecs) == 1:
		f.Encoding = codecs[0]
	}
	return f
}

// ParseResolution returns the explicit height when set, else the trailing
// number of a "WxH" size string, else 0.
func ParseResolution(height int, size string) int {
	if height > 0 {
		return height
	}
	parts := strings.Split(size, "x")
	if len(parts) != 2 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseMime(s string) (string, []string) {
	mt, params, err := mime.ParseMediaType(s)
	if err != nil {
		// Fall back to the bare type for strings like "video/mp4" with junk params.
		mt = strings.TrimSpace(strings.SplitN(s, ";", 2)[0])
		return strings.ToLower(mt), nil
	}
	var codecs []string
	for _, c := range strings.Split(params["codecs"], ",") {
		if c = strings.TrimSpace(c); c != "" {
			codecs = append(codecs, c)
		}
	}
	return mt, codecs
}

// IsVideo reports whether the format carries an mp4 video track.
func (f MediaFormat) IsVideo() bool { return strings.Contains(f.Type, VideoMIME) }

// IsAudio reports whether the format is an mp4 audio-only stream.
func (f MediaFormat) IsAudio() bool { return strings.Contains(f.Type, AudioMIME) }

// Extension is the natural file extension for the format's container.
func (f MediaFormat) Extension() string {
	switch {
	case f.Container == "":
		if f.IsAudio() {
			return "m4a"
		}
		return "mp4"
	case f.Container == "mp4" && strings.HasPrefix(f.Type, "audio/"):
		return "m4a"
	default:
		return f.Container
	}
}

// MediaInfo is the catalog for one video: descriptive metadata plus formats.
type MediaInfo struct {
	ID          string
	Title       string
	Author      string
	Description string
	URL         string
	Network     string
	Duration    time.Duration
	Formats     []MediaFormat

	// Raw is the provider's own handle for the video, passed back to its fetcher.
	Raw any
}

// FormatInfo is the outcome of format selection for one download.
type FormatInfo struct {
	Info         MediaInfo
	Video        *MediaFormat // nil for audio-only presets
	Audio        *MediaFormat
	DownloadSize int64
	Path         string
}

// AudioOnly reports whether no video stream was selected.
func (fi FormatInfo) AudioOnly() bool { return fi.Video == nil }

// Results is the terminal outcome of a download.
type Results struct {
	Path      string // empty when cancelled
	Format    *FormatInfo
	Duration  time.Duration
	Cancelled bool
	Reason    string
}

// Mode selects how audio and video streams are retrieved relative to each other.
type Mode string

const (
	ModeMerge      Mode = "merge"
	ModeSequential Mode = "sequential"
	ModeParallel   Mode = "parallel"
	ModeParts      Mode = "parts"
)

// Modes lists every accepted mode, default first.
func Modes() []Mode {
	return []Mode{ModeMerge, ModeSequential, ModeParallel, ModeParts}
}

// ParseMode maps a user string to a Mode. Empty selects ModeMerge.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeMerge, nil
	}
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", &Error{Kind: KindConfiguration, Op: "parse mode", Err: fmt.Errorf("unknown mode %q (valid: merge|sequential|parallel|parts)", s)}
}
