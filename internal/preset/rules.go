package preset

import (
	"cmp"
	"fmt"
	"sort"
	"strings"

	"pully/internal/model"
	"pully/internal/util/bitrate"
)

// ResolutionCeiling keeps formats at or below MaxResolution.
func ResolutionCeiling(f model.MediaFormat, p Preset) bool {
	return p.MaxResolution == 0 || f.Resolution <= p.MaxResolution
}

// FPSCeiling keeps formats at or below MaxFPS.
func FPSCeiling(f model.MediaFormat, p Preset) bool {
	return p.MaxFPS == 0 || f.FPS <= p.MaxFPS
}

// AudioBitrateCeiling keeps formats at or below MaxAudioBitrate.
func AudioBitrateCeiling(f model.MediaFormat, p Preset) bool {
	return p.MaxAudioBitrate == 0 || f.AudioBitrate <= p.MaxAudioBitrate
}

func ResolutionDesc(a, b model.MediaFormat) int { return cmp.Compare(b.Resolution, a.Resolution) }

func FPSDesc(a, b model.MediaFormat) int { return cmp.Compare(b.FPS, a.FPS) }

func AudioBitrateAsc(a, b model.MediaFormat) int { return cmp.Compare(a.AudioBitrate, b.AudioBitrate) }

func AudioBitrateDesc(a, b model.MediaFormat) int { return cmp.Compare(b.AudioBitrate, a.AudioBitrate) }

// BitrateDesc prefers the higher ceiling of the reported bitrate range.
func BitrateDesc(a, b model.MediaFormat) int {
	return cmp.Compare(bitrate.Ceiling(b.Bitrate), bitrate.Ceiling(a.Bitrate))
}

// SizeAsc prefers the smaller download; unknown sizes sort last.
func SizeAsc(a, b model.MediaFormat) int {
	as, bs := a.DownloadSize, b.DownloadSize
	switch {
	case as == bs:
		return 0
	case as == 0:
		return 1
	case bs == 0:
		return -1
	}
	return cmp.Compare(as, bs)
}

var filters = map[string]Filter{
	"resolution":    ResolutionCeiling,
	"fps":           FPSCeiling,
	"audio-bitrate": AudioBitrateCeiling,
}

var comparators = map[string]Comparator{
	"resolution-desc":    ResolutionDesc,
	"fps-desc":           FPSDesc,
	"audio-bitrate-asc":  AudioBitrateAsc,
	"audio-bitrate-desc": AudioBitrateDesc,
	"bitrate-desc":       BitrateDesc,
	"size-asc":           SizeAsc,
}

// FilterNames lists the rule names accepted by ParseFilters.
func FilterNames() []string { return sortedKeys(filters) }

// ComparatorNames lists the rule names accepted by ParseSort.
func ComparatorNames() []string { return sortedKeys(comparators) }

// ParseFilters resolves filter rule names in order. Nil in, nil out.
func ParseFilters(names []string) ([]Filter, error) {
	if names == nil {
		return nil, nil
	}
	out := make([]Filter, 0, len(names))
	for _, n := range names {
		f, ok := filters[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("unknown filter %q (valid: %s)", n, strings.Join(FilterNames(), "|"))
		}
		out = append(out, f)
	}
	return out, nil
}

// ParseSort resolves comparator rule names in order. Nil in, nil out.
func ParseSort(names []string) ([]Comparator, error) {
	if names == nil {
		return nil, nil
	}
	out := make([]Comparator, 0, len(names))
	for _, n := range names {
		c, ok := comparators[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("unknown sort %q (valid: %s)", n, strings.Join(ComparatorNames(), "|"))
		}
		out = append(out, c)
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
