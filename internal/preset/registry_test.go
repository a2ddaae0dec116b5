package preset

import (
	"errors"
	"strings"
	"testing"

	"pully/internal/model"
)

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{name: "builtin", key: "hd"},
		{name: "case insensitive", key: "HFR"},
		{name: "unknown", key: "8k", wantErr: model.ErrUnknownPreset},
		{name: "empty", key: "", wantErr: model.ErrUnknownPreset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Get(tt.key)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Get(%q) err = %v, want %v", tt.key, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get(%q) error: %v", tt.key, err)
			}
			if !strings.EqualFold(p.Name, tt.key) {
				t.Errorf("Get(%q).Name = %q", tt.key, p.Name)
			}
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Preset{Name: "podcast", MaxAudioBitrate: 64}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	p, err := r.Get("podcast")
	if err != nil {
		t.Fatalf("Get(podcast) error: %v", err)
	}
	if p.WantsVideo() {
		t.Errorf("podcast preset should be audio-only")
	}

	// A batch with one bad preset registers nothing.
	err = r.Register(Preset{Name: "ok", MaxResolution: 240}, Preset{Name: "bad"})
	if !errors.Is(err, model.ErrInvalidPreset) {
		t.Fatalf("Register(bad) err = %v, want ErrInvalidPreset", err)
	}
	if _, err := r.Get("ok"); err == nil {
		t.Errorf("partial batch should not be registered")
	}

	// Replacing keeps a single entry and the original position.
	before := len(r.All())
	if err := r.Register(Preset{Name: "hd", MaxResolution: 1080, MaxFPS: 30}); err != nil {
		t.Fatalf("Register(hd override) error: %v", err)
	}
	if len(r.All()) != before {
		t.Errorf("override changed preset count: %d -> %d", before, len(r.All()))
	}
	hd, _ := r.Get("hd")
	if hd.MaxFPS != 30 {
		t.Errorf("override not applied, MaxFPS = %d", hd.MaxFPS)
	}
}

func TestRegistry_NamesAndOrder(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names() not sorted: %v", names)
		}
	}
	all := r.All()
	if all[0].Name != Max || all[len(all)-1].Name != MP3 {
		t.Errorf("All() order = %s..%s, want max..mp3", all[0].Name, all[len(all)-1].Name)
	}
}

func TestSpec_Preset(t *testing.T) {
	s := Spec{
		Name:          "smooth",
		MaxResolution: "720",
		MaxFPS:        "max",
		VideoSort:     []string{"fps-desc", "resolution-desc"},
	}
	p, err := s.Preset()
	if err != nil {
		t.Fatalf("Spec.Preset() error: %v", err)
	}
	if p.MaxResolution != 720 || p.MaxFPS != Unbounded || len(p.VideoSort) != 2 {
		t.Errorf("Spec.Preset() = %+v", p)
	}
	if p.AudioSort != nil {
		t.Errorf("unset rule lists should stay nil")
	}

	r := NewRegistry()
	if err := r.Register(p); err != nil {
		t.Fatalf("Register(spec preset) error: %v", err)
	}
	got, _ := r.Get("smooth")
	if !got.WantsAudio() || got.MaxAudioBitrate != 128 {
		t.Errorf("registered spec preset should inherit audio rules: %+v", got)
	}

	if _, err := (Spec{Name: "x", MaxResolution: "tall"}).Preset(); err == nil {
		t.Errorf("invalid ceiling should fail")
	}
}

func TestCeilingRoundTrip(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		display string
	}{
		{in: "", want: 0, display: "-"},
		{in: "MAX", want: Unbounded, display: "max"},
		{in: "1080", want: 1080, display: "1080"},
	}
	for _, tt := range tests {
		got, err := ParseCeiling(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseCeiling(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
		if d := FormatCeiling(got); d != tt.display {
			t.Errorf("FormatCeiling(%d) = %q, want %q", got, d, tt.display)
		}
	}
	if _, err := ParseCeiling("-5"); err == nil {
		t.Errorf("negative ceiling should fail")
	}
}
