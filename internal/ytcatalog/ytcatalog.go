// Package ytcatalog reads YouTube catalogs and streams with the native
// kkdai/youtube client, without any external binary.
package ytcatalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"

	"pully/internal/model"
	"pully/internal/util/bitrate"
)

// Network tags media served by this provider.
const Network = "YouTube"

// Nominal audio bitrates (kbps) of the well-known itags. The measured
// bitrate drifts per video, which would make presets flap between streams.
var nominalAudioKbps = map[int]int{
	18:  96,
	22:  192,
	139: 48,
	140: 128,
	141: 256,
	171: 128,
	172: 256,
	249: 50,
	250: 70,
	251: 160,
}

// Client is a catalog provider and stream fetcher for YouTube.
type Client struct {
	yt *youtube.Client
}

// New returns a client. A nil httpClient uses http.DefaultClient.
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{yt: &youtube.Client{HTTPClient: httpClient}}
}

// Query fetches the video's metadata and format list.
func (c *Client) Query(ctx context.Context, url string) (model.MediaInfo, error) {
	v, err := c.yt.GetVideoContext(ctx, url)
	if err != nil {
		return model.MediaInfo{}, describe(err)
	}
	return FromVideo(v, url), nil
}

// Open starts the transfer of one format of a video returned by Query.
func (c *Client) Open(ctx context.Context, info model.MediaInfo, f model.MediaFormat) (io.ReadCloser, error) {
	v, ok := info.Raw.(*youtube.Video)
	if !ok || v == nil {
		ref := info.URL
		if ref == "" {
			ref = info.ID
		}
		var err error
		if v, err = c.yt.GetVideoContext(ctx, ref); err != nil {
			return nil, describe(err)
		}
	}
	yf := findFormat(v, f.Itag)
	if yf == nil {
		return nil, fmt.Errorf("format %s not offered for video %s", f.Itag, v.ID)
	}
	rc, _, err := c.yt.GetStreamContext(ctx, v, yf)
	if err != nil {
		return nil, fmt.Errorf("open stream %s: %w", f.Itag, err)
	}
	return rc, nil
}

func findFormat(v *youtube.Video, itag string) *youtube.Format {
	n, err := strconv.Atoi(itag)
	if err != nil {
		return nil
	}
	for i := range v.Formats {
		if v.Formats[i].ItagNo == n {
			return &v.Formats[i]
		}
	}
	return nil
}

func describe(err error) error {
	switch {
	case errors.Is(err, youtube.ErrLoginRequired),
		errors.Is(err, youtube.ErrVideoPrivate),
		errors.Is(err, youtube.ErrNotPlayableInEmbed):
		return fmt.Errorf("restricted content (login/age/private): %w", err)
	case errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return fmt.Errorf("not a YouTube video URL: %w", err)
	}
	return fmt.Errorf("fetch video: %w", err)
}

// FromVideo converts a client video into the catalog model. The video is kept
// as MediaInfo.Raw so Open can reuse the resolved stream URLs.
func FromVideo(v *youtube.Video, url string) model.MediaInfo {
	info := model.MediaInfo{
		ID:          v.ID,
		Title:       v.Title,
		Author:      v.Author,
		Description: v.Description,
		URL:         url,
		Network:     Network,
		Duration:    v.Duration,
		Raw:         v,
	}
	for _, f := range v.Formats {
		info.Formats = append(info.Formats, model.NewMediaFormat(rawFormat(f)))
	}
	return info
}

func rawFormat(f youtube.Format) model.RawFormat {
	raw := model.RawFormat{
		Itag:          strconv.Itoa(f.ItagNo),
		MimeType:      f.MimeType,
		FPS:           f.FPS,
		Height:        f.Height,
		Bitrate:       bitrate.FormatRange(bitrate.Kbps(f.AverageBitrate), bitrate.Kbps(f.Bitrate)),
		ContentLength: f.ContentLength,
		URL:           f.URL,
	}
	if f.Width > 0 && f.Height > 0 {
		raw.Size = fmt.Sprintf("%dx%d", f.Width, f.Height)
	}
	if hasAudio(f) {
		raw.AudioBitrate = audioKbps(f)
	}
	return raw
}

func hasAudio(f youtube.Format) bool {
	return f.AudioChannels > 0 || strings.HasPrefix(f.MimeType, "audio/")
}

func audioKbps(f youtube.Format) int {
	if k, ok := nominalAudioKbps[f.ItagNo]; ok {
		return k
	}
	if f.AverageBitrate > 0 {
		return bitrate.Kbps(f.AverageBitrate)
	}
	return bitrate.Kbps(f.Bitrate)
}
