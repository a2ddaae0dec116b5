package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"pully/internal/model"
	"pully/internal/preset"
	"pully/internal/progress"
	"pully/internal/util"
	"pully/internal/util/format"
	"pully/internal/util/media"
)

// VerifyFunc inspects the selection before any byte is transferred. Calling
// cancel (before returning) abandons the download with the given reason.
// The hook may block, for example while asking the user.
type VerifyFunc func(fi model.FormatInfo, cancel func(reason string))

// Config is the fully resolved input of one download. It is not modified
// by Run.
type Config struct {
	URL      string
	Preset   preset.Preset
	Dir      string // empty writes the output to a fresh temp path
	Template media.Template
	Mode     model.Mode
	Verify   VerifyFunc
	Progress func(progress.Data)
}

// Validate reports configuration errors that can be detected before any
// network work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return &model.Error{Kind: model.KindConfiguration, Op: "download", Err: model.ErrMissingURL}
	}
	if err := c.Preset.Validate(); err != nil {
		return err
	}
	mode := c.Mode
	if mode == "" {
		mode = model.ModeMerge
	}
	if _, err := model.ParseMode(string(mode)); err != nil {
		return err
	}
	if mode == model.ModeParts {
		return &model.Error{Kind: model.KindConfiguration, Op: "download", Err: fmt.Errorf("mode %q: %w", mode, model.ErrNotImplemented)}
	}
	return nil
}

// Extension picks the output file extension: the preset's output format,
// else the container of the video stream, else that of the audio stream.
func Extension(p preset.Preset, fi model.FormatInfo) string {
	switch {
	case p.OutputFormat != "":
		return p.OutputFormat
	case fi.Video != nil:
		return fi.Video.Extension()
	case fi.Audio != nil:
		return fi.Audio.Extension()
	default:
		return "mp4"
	}
}

// OutputPath resolves where the muxed file is written.
func OutputPath(c Config, fi model.FormatInfo, tempDir string) string {
	ext := Extension(c.Preset, fi)
	if c.Dir == "" {
		return util.TempPath(tempDir, fi.Info.ID, c.Preset.Name, ext)
	}
	return filepath.Join(c.Dir, c.Template.Expand(fi.Info)+"."+ext)
}

// Describe summarizes a selection on one line.
func Describe(fi model.FormatInfo) string {
	var parts []string
	if v := fi.Video; v != nil {
		parts = append(parts, fmt.Sprintf("video %s %dp%d", v.Itag, v.Resolution, v.FPS))
	}
	if a := fi.Audio; a != nil {
		parts = append(parts, fmt.Sprintf("audio %s %dkbps", a.Itag, a.AudioBitrate))
	}
	s := strings.Join(parts, ", ")
	if fi.DownloadSize > 0 {
		s += " (" + format.HumanizeBytes(fi.DownloadSize) + ")"
	}
	return s
}
