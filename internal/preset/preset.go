// Package preset defines quality presets: ceilings plus the filter and sort
// rules the analyzer applies to a format catalog.
package preset

import (
	"math"
	"slices"

	"pully/internal/model"
)

// Unbounded marks a ceiling with no limit.
const Unbounded = math.MaxInt32

// Filter reports whether a format is acceptable under p.
type Filter func(f model.MediaFormat, p Preset) bool

// Comparator orders two formats; negative sorts a first.
type Comparator func(a, b model.MediaFormat) int

// Preset is a named selection policy. A zero ceiling means "unset" and every
// filter passes it.
type Preset struct {
	Name         string
	OutputFormat string // empty copies codecs

	MaxFPS          int
	MaxResolution   int
	MaxAudioBitrate int

	VideoFilters []Filter
	AudioFilters []Filter
	VideoSort    []Comparator
	AudioSort    []Comparator
}

// WantsVideo reports whether a video stream must be selected.
func (p Preset) WantsVideo() bool { return len(p.VideoSort) > 0 }

// WantsAudio reports whether an audio stream must be selected.
func (p Preset) WantsAudio() bool { return len(p.AudioSort) > 0 }

// Validate checks the registration invariant for caller-supplied presets.
func (p Preset) Validate() error {
	if p.Name == "" {
		return &model.Error{Kind: model.KindConfiguration, Op: "validate preset", Err: model.ErrInvalidPreset}
	}
	if p.MaxResolution == 0 && p.MaxAudioBitrate == 0 {
		return &model.Error{Kind: model.KindConfiguration, Op: "validate preset " + p.Name, Err: model.ErrInvalidPreset}
	}
	return nil
}

// Extend returns base with every non-zero field of o applied on top.
// Rule lists replace rather than merge.
func Extend(base Preset, o Preset) Preset {
	p := base
	if o.Name != "" {
		p.Name = o.Name
	}
	if o.OutputFormat != "" {
		p.OutputFormat = o.OutputFormat
	}
	if o.MaxFPS != 0 {
		p.MaxFPS = o.MaxFPS
	}
	if o.MaxResolution != 0 {
		p.MaxResolution = o.MaxResolution
	}
	if o.MaxAudioBitrate != 0 {
		p.MaxAudioBitrate = o.MaxAudioBitrate
	}
	if o.VideoFilters != nil {
		p.VideoFilters = o.VideoFilters
	}
	if o.AudioFilters != nil {
		p.AudioFilters = o.AudioFilters
	}
	if o.VideoSort != nil {
		p.VideoSort = o.VideoSort
	}
	if o.AudioSort != nil {
		p.AudioSort = o.AudioSort
	}
	p.VideoFilters = slices.Clone(p.VideoFilters)
	p.AudioFilters = slices.Clone(p.AudioFilters)
	p.VideoSort = slices.Clone(p.VideoSort)
	p.AudioSort = slices.Clone(p.AudioSort)
	return p
}

// Prepare composes a custom preset over the base its ceilings call for.
func Prepare(p Preset) (Preset, error) {
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	if p.MaxResolution == 0 {
		return Extend(BaseAudio, p), nil
	}
	return Extend(BaseVideo, p), nil
}
