package preset

// Built-in preset names.
const (
	Max   = "max"
	FourK = "4k"
	TwoK  = "2k"
	HD    = "hd"
	SD    = "sd"
	LD    = "ld"
	HFR   = "hfr"
	MP3   = "mp3"

	Default = HD
)

// BaseVideo is the template every video preset extends.
var BaseVideo = Preset{
	MaxResolution:   Unbounded,
	MaxFPS:          60,
	MaxAudioBitrate: 128,
	VideoFilters:    []Filter{ResolutionCeiling, FPSCeiling},
	AudioFilters:    []Filter{AudioBitrateCeiling},
	VideoSort:       []Comparator{ResolutionDesc, FPSDesc},
	AudioSort:       []Comparator{AudioBitrateAsc},
}

// BaseAudio is the template every audio-only preset extends.
var BaseAudio = Preset{
	MaxAudioBitrate: 128,
	AudioFilters:    []Filter{AudioBitrateCeiling},
	AudioSort:       []Comparator{AudioBitrateAsc},
}

// Builtin returns the built-in presets in display order. Each tier lists
// only its deltas over the tier it extends.
func Builtin() []Preset {
	top := Extend(BaseVideo, Preset{Name: Max, MaxFPS: Unbounded, MaxResolution: Unbounded, MaxAudioBitrate: Unbounded})
	fourK := Extend(BaseVideo, Preset{Name: FourK, MaxResolution: 2160})
	twoK := Extend(fourK, Preset{Name: TwoK, MaxResolution: 1440})
	hd := Extend(twoK, Preset{Name: HD, MaxResolution: 1080})
	sd := Extend(hd, Preset{Name: SD, MaxResolution: 720})
	ld := Extend(sd, Preset{Name: LD, MaxResolution: 480})
	hfr := Extend(BaseVideo, Preset{
		Name:          HFR,
		MaxFPS:        Unbounded,
		MaxResolution: Unbounded,
		VideoSort:     []Comparator{FPSDesc, ResolutionDesc},
	})
	mp3 := Extend(BaseAudio, Preset{Name: MP3, OutputFormat: "mp3", MaxAudioBitrate: Unbounded})
	return []Preset{top, fourK, twoK, hd, sd, ld, hfr, mp3}
}
