// Package downloader serves catalogs and streams through a yt-dlp (or
// youtube-dl) binary, for hosts the native YouTube client cannot handle.
package downloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"pully/internal/model"
	"pully/internal/util"
)

// Client runs yt-dlp for catalog queries and stream transfers.
type Client struct {
	Path    string // Path to yt-dlp or youtube-dl
	Verbose bool
	Runner  util.StreamRunner
}

// New returns a client using the default subprocess runner.
func New(path string, verbose bool) *Client {
	return &Client{Path: path, Verbose: verbose, Runner: util.NewDefaultRunner()}
}

func (c *Client) runner() util.StreamRunner {
	if c.Runner == nil {
		return util.NewDefaultRunner()
	}
	return c.Runner
}

// Query fetches metadata and the format list for url.
func (c *Client) Query(ctx context.Context, url string) (model.MediaInfo, error) {
	if c.Path == "" {
		return model.MediaInfo{}, errors.New("downloader path is required")
	}
	info, err := c.fetchMetadata(ctx, url)
	if err != nil {
		return model.MediaInfo{}, err
	}
	return info.MediaInfo(url), nil
}

// Open streams one format to the caller through the downloader's stdout.
func (c *Client) Open(ctx context.Context, info model.MediaInfo, f model.MediaFormat) (io.ReadCloser, error) {
	if c.Path == "" {
		return nil, errors.New("downloader path is required")
	}
	url := info.URL
	if url == "" {
		return nil, errors.New("media has no source url")
	}
	rc, err := c.runner().Stream(ctx, util.CmdSpec{
		Path:    c.Path,
		Args:    []string{"-f", f.Itag, "-o", "-", "--no-playlist", "--no-part", "--quiet", "--no-warnings", url},
		Verbose: c.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("start downloader: %w", err)
	}
	return rc, nil
}

func (c *Client) fetchMetadata(ctx context.Context, url string) (YTDLPInfo, error) {
	args := []string{
		"--dump-json",
		"--no-playlist",
		url,
	}
	res, runErr := c.runner().Run(ctx, util.CmdSpec{
		Path:          c.Path,
		Args:          args,
		Verbose:       c.Verbose,
		CaptureStdout: true,
	})
	if runErr != nil && len(res.Stdout) == 0 {
		return YTDLPInfo{}, fmt.Errorf("metadata fetch failed: %w", runErr)
	}
	return parseInfo(res.Stdout)
}

// parseInfo decodes --dump-json output. When stdout holds extra lines the
// last line that decodes with an id is used.
func parseInfo(stdout []byte) (YTDLPInfo, error) {
	data := strings.TrimSpace(string(stdout))
	var info YTDLPInfo
	err := json.NewDecoder(strings.NewReader(data)).Decode(&info)
	if err == nil && info.ID != "" {
		return info, nil
	}
	if err == nil {
		err = errors.New("metadata has no id")
	}
	lines := strings.Split(data, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		var tmp YTDLPInfo
		if json.Unmarshal([]byte(line), &tmp) == nil && tmp.ID != "" {
			return tmp, nil
		}
	}
	return YTDLPInfo{}, fmt.Errorf("parse metadata JSON: %w", err)
}

// MediaInfo converts the dump into the catalog model.
func (info YTDLPInfo) MediaInfo(url string) model.MediaInfo {
	author := info.Uploader
	if author == "" {
		author = info.Channel
	}
	if info.WebpageURL != "" {
		url = info.WebpageURL
	}
	out := model.MediaInfo{
		ID:          info.ID,
		Title:       info.Title,
		Author:      author,
		Description: info.Description,
		URL:         url,
		Network:     network(info.ExtractorKey),
		Duration:    time.Duration(info.Duration * float64(time.Second)),
	}
	for _, f := range info.Formats {
		if !f.hasVideo() && !f.hasAudio() {
			// storyboards and other image tracks
			continue
		}
		out.Formats = append(out.Formats, model.NewMediaFormat(f.raw()))
	}
	return out
}

func network(extractor string) string {
	switch strings.ToLower(extractor) {
	case "":
		return ""
	case "youtube":
		return "YouTube"
	default:
		return extractor
	}
}

func (f YTDLPFormat) raw() model.RawFormat {
	raw := model.RawFormat{
		Itag:          f.FormatID,
		MimeType:      f.mimeType(),
		FPS:           int(math.Round(f.FPS)),
		Height:        f.Height,
		ContentLength: f.Filesize,
		URL:           f.URL,
	}
	if raw.ContentLength == 0 {
		raw.ContentLength = f.FilesizeApprox
	}
	if f.Width > 0 && f.Height > 0 {
		raw.Size = fmt.Sprintf("%dx%d", f.Width, f.Height)
	}
	if f.hasAudio() {
		raw.AudioBitrate = int(math.Round(f.ABR))
	}
	if f.TBR > 0 {
		raw.Bitrate = fmt.Sprintf("%d", int(math.Round(f.TBR)))
	}
	return raw
}

// mimeType synthesizes the MIME string the selector filters on. yt-dlp names
// the mp4 audio container m4a.
func (f YTDLPFormat) mimeType() string {
	ext := f.Ext
	if ext == "m4a" {
		ext = "mp4"
	}
	var codecs []string
	kind := "audio"
	if f.hasVideo() {
		kind = "video"
		codecs = append(codecs, f.VCodec)
	}
	if f.hasAudio() {
		codecs = append(codecs, f.ACodec)
	}
	return fmt.Sprintf("%s/%s; codecs=%q", kind, ext, strings.Join(codecs, ", "))
}
