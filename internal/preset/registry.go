package preset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"pully/internal/model"
)

// Registry holds presets by name. Built-ins are loaded on construction;
// custom presets are validated and composed on Register.
type Registry struct {
	mu      sync.RWMutex
	presets map[string]Preset
	order   []string
}

// NewRegistry returns a registry primed with Builtin presets.
func NewRegistry() *Registry {
	r := &Registry{presets: make(map[string]Preset)}
	for _, p := range Builtin() {
		r.put(p)
	}
	return r
}

func (r *Registry) put(p Preset) {
	key := strings.ToLower(p.Name)
	if _, exists := r.presets[key]; !exists {
		r.order = append(r.order, key)
	}
	r.presets[key] = p
}

// Register adds or replaces custom presets. Nothing is registered if any of
// them is invalid.
func (r *Registry) Register(ps ...Preset) error {
	prepared := make([]Preset, 0, len(ps))
	for _, p := range ps {
		pp, err := Prepare(p)
		if err != nil {
			return err
		}
		prepared = append(prepared, pp)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range prepared {
		r.put(p)
	}
	return nil
}

// Get looks a preset up by case-insensitive name.
func (r *Registry) Get(name string) (Preset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Preset{}, &model.Error{Kind: model.KindConfiguration, Op: "get preset", Err: model.ErrUnknownPreset}
	}
	r.mu.RLock()
	p, ok := r.presets[key]
	r.mu.RUnlock()
	if !ok {
		return Preset{}, &model.Error{Kind: model.KindConfiguration, Op: "get preset", Err: fmt.Errorf("%w: %q", model.ErrUnknownPreset, name)}
	}
	return p, nil
}

// Names returns registered names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.presets))
	for k := range r.presets {
		names = append(names, k)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// All returns presets in registration order, built-ins first.
func (r *Registry) All() []Preset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Preset, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.presets[k])
	}
	return out
}

// Spec is the declarative form of a custom preset, as found in config files.
// Ceilings accept a number or "max".
type Spec struct {
	Name            string   `mapstructure:"name"`
	OutputFormat    string   `mapstructure:"output_format"`
	MaxFPS          string   `mapstructure:"max_fps"`
	MaxResolution   string   `mapstructure:"max_resolution"`
	MaxAudioBitrate string   `mapstructure:"max_audio_bitrate"`
	VideoFilters    []string `mapstructure:"video_filters"`
	AudioFilters    []string `mapstructure:"audio_filters"`
	VideoSort       []string `mapstructure:"video_sort"`
	AudioSort       []string `mapstructure:"audio_sort"`
}

// Preset converts the spec. The result still needs Prepare (Register does it).
func (s Spec) Preset() (Preset, error) {
	p := Preset{Name: s.Name, OutputFormat: s.OutputFormat}
	var err error
	if p.MaxFPS, err = ParseCeiling(s.MaxFPS); err != nil {
		return Preset{}, fmt.Errorf("preset %q max_fps: %w", s.Name, err)
	}
	if p.MaxResolution, err = ParseCeiling(s.MaxResolution); err != nil {
		return Preset{}, fmt.Errorf("preset %q max_resolution: %w", s.Name, err)
	}
	if p.MaxAudioBitrate, err = ParseCeiling(s.MaxAudioBitrate); err != nil {
		return Preset{}, fmt.Errorf("preset %q max_audio_bitrate: %w", s.Name, err)
	}
	if p.VideoFilters, err = ParseFilters(s.VideoFilters); err != nil {
		return Preset{}, fmt.Errorf("preset %q: %w", s.Name, err)
	}
	if p.AudioFilters, err = ParseFilters(s.AudioFilters); err != nil {
		return Preset{}, fmt.Errorf("preset %q: %w", s.Name, err)
	}
	if p.VideoSort, err = ParseSort(s.VideoSort); err != nil {
		return Preset{}, fmt.Errorf("preset %q: %w", s.Name, err)
	}
	if p.AudioSort, err = ParseSort(s.AudioSort); err != nil {
		return Preset{}, fmt.Errorf("preset %q: %w", s.Name, err)
	}
	return p, nil
}

// ParseCeiling reads "", a non-negative integer or "max".
func ParseCeiling(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "0":
		return 0, nil
	case "max", "unbounded":
		return Unbounded, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid ceiling %q", s)
	}
	return n, nil
}

// FormatCeiling is the display form of a ceiling.
func FormatCeiling(v int) string {
	switch {
	case v == 0:
		return "-"
	case v >= Unbounded:
		return "max"
	default:
		return strconv.Itoa(v)
	}
}
