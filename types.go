package pully

import (
	"pully/internal/encoder"
	"pully/internal/model"
	"pully/internal/pipeline"
	"pully/internal/preset"
	"pully/internal/progress"
)

// Catalog and result types.
type (
	MediaFormat  = model.MediaFormat
	MediaInfo    = model.MediaInfo
	FormatInfo   = model.FormatInfo
	Results      = model.Results
	Mode         = model.Mode
	Preset       = preset.Preset
	ProgressData = progress.Data
	MuxJob       = encoder.Job
)

// Collaborator interfaces a caller may replace.
type (
	Provider = pipeline.Provider
	Fetcher  = pipeline.Fetcher
	Muxer    = pipeline.Muxer
)

// VerifyFunc inspects the chosen formats before any transfer starts and may
// cancel the download with a reason.
type VerifyFunc = pipeline.VerifyFunc

// Retrieval modes.
const (
	ModeMerge      = model.ModeMerge
	ModeSequential = model.ModeSequential
	ModeParallel   = model.ModeParallel
	ModeParts      = model.ModeParts
)

// Built-in preset names.
const (
	PresetMax     = preset.Max
	Preset4K      = preset.FourK
	Preset2K      = preset.TwoK
	PresetHD      = preset.HD
	PresetSD      = preset.SD
	PresetLD      = preset.LD
	PresetHFR     = preset.HFR
	PresetMP3     = preset.MP3
	PresetDefault = preset.Default
)

// Unbounded disables a preset ceiling.
const Unbounded = preset.Unbounded

// Error taxonomy.
type (
	Error     = model.Error
	ErrorKind = model.Kind
	MuxError  = model.MuxError
)

const (
	KindConfiguration   = model.KindConfiguration
	KindCatalogFetch    = model.KindCatalogFetch
	KindFormatSelection = model.KindFormatSelection
	KindStreamIO        = model.KindStreamIO
	KindMux             = model.KindMux
)

var (
	ErrMissingURL     = model.ErrMissingURL
	ErrUnknownPreset  = model.ErrUnknownPreset
	ErrInvalidPreset  = model.ErrInvalidPreset
	ErrNotImplemented = model.ErrNotImplemented
	ErrNoVideoStream  = model.ErrNoVideoStream
	ErrNoAudioStream  = model.ErrNoAudioStream
)

// KindOf returns the classification of err, or KindUnknown.
func KindOf(err error) ErrorKind { return model.KindOf(err) }
