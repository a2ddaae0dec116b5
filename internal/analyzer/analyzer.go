// Package analyzer picks the best audio and video formats from a catalog
// according to a preset.
package analyzer

import (
	"context"
	"slices"

	"pully/internal/model"
	"pully/internal/preset"
)

// Provider fetches the catalog for a URL.
type Provider interface {
	Query(ctx context.Context, url string) (model.MediaInfo, error)
}

// SelectBestFormats queries the provider and selects formats from the result.
func SelectBestFormats(ctx context.Context, provider Provider, url string, p preset.Preset) (model.FormatInfo, error) {
	info, err := provider.Query(ctx, url)
	if err != nil {
		return model.FormatInfo{}, model.Wrap(model.KindCatalogFetch, "query catalog", err)
	}
	return Select(info, p)
}

// Select picks one video format (when the preset sorts video) and one audio
// format (when it sorts audio). It does not modify info.
func Select(info model.MediaInfo, p preset.Preset) (model.FormatInfo, error) {
	fi := model.FormatInfo{Info: info}

	if p.WantsVideo() {
		candidates := filter(info.Formats, model.MediaFormat.IsVideo, p.VideoFilters, p)
		if len(candidates) == 0 {
			return model.FormatInfo{}, &model.Error{Kind: model.KindFormatSelection, Op: "select video", Err: model.ErrNoVideoStream}
		}
		chain := append(slices.Clone(p.VideoSort), p.AudioSort...)
		best := first(candidates, chain)
		fi.Video = &best
		fi.DownloadSize += best.DownloadSize
	}

	if p.WantsAudio() {
		candidates := filter(info.Formats, model.MediaFormat.IsAudio, p.AudioFilters, p)
		if len(candidates) == 0 {
			return model.FormatInfo{}, &model.Error{Kind: model.KindFormatSelection, Op: "select audio", Err: model.ErrNoAudioStream}
		}
		best := first(candidates, p.AudioSort)
		fi.Audio = &best
		fi.DownloadSize += best.DownloadSize
	}

	return fi, nil
}

func filter(formats []model.MediaFormat, kind func(model.MediaFormat) bool, rules []preset.Filter, p preset.Preset) []model.MediaFormat {
	var out []model.MediaFormat
next:
	for _, f := range formats {
		if !kind(f) {
			continue
		}
		for _, rule := range rules {
			if !rule(f, p) {
				continue next
			}
		}
		out = append(out, f)
	}
	return out
}

// first sorts a copy of candidates by the comparator chain and returns the head.
func first(candidates []model.MediaFormat, chain []preset.Comparator) model.MediaFormat {
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b model.MediaFormat) int {
		return Compare(chain, a, b)
	})
	return sorted[0]
}

// Compare applies a comparator chain, stopping at the first non-zero result.
func Compare(chain []preset.Comparator, a, b model.MediaFormat) int {
	for _, c := range chain {
		if r := c(a, b); r != 0 {
			return r
		}
	}
	return 0
}

// Rank returns the formats that pass the preset's rules for one stream kind,
// best first. It backs format listings; Select uses the same rules.
func Rank(info model.MediaInfo, p preset.Preset, video bool) []model.MediaFormat {
	if video {
		c := filter(info.Formats, model.MediaFormat.IsVideo, p.VideoFilters, p)
		chain := append(slices.Clone(p.VideoSort), p.AudioSort...)
		slices.SortStableFunc(c, func(a, b model.MediaFormat) int { return Compare(chain, a, b) })
		return c
	}
	c := filter(info.Formats, model.MediaFormat.IsAudio, p.AudioFilters, p)
	slices.SortStableFunc(c, func(a, b model.MediaFormat) int { return Compare(p.AudioSort, a, b) })
	return c
}
