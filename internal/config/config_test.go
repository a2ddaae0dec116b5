package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRoot(t *testing.T, cfgFile string) *cobra.Command {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := &cobra.Command{Use: "pully"}
	pf := root.PersistentFlags()
	pf.String("config", cfgFile, "")
	pf.StringP("dir", "d", ".", "")
	pf.StringP("template", "t", "", "")
	pf.StringP("preset", "p", "hd", "")
	pf.StringP("mode", "m", "merge", "")
	pf.BoolP("verbose", "v", false, "")
	pf.BoolP("silent", "s", false, "")
	pf.String("provider", "youtube", "")
	pf.String("dl-binary", "", "")
	pf.String("ffmpeg", "", "")
	return root
}

const sample = `
dir: /videos
preset: podcast
presets:
  - name: podcast
    max_audio_bitrate: 64
  - name: smooth
    max_resolution: 720
    max_fps: max
    video_sort: [fps-desc, resolution-desc]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Precedence(t *testing.T) {
	root := newRoot(t, writeConfig(t, sample))
	t.Setenv("PULLY_MODE", "parallel")
	if err := root.PersistentFlags().Set("template", "${title}"); err != nil {
		t.Fatal(err)
	}
	if err := Init(root); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "file over flag default", got: s.Dir, want: "/videos"},
		{name: "file preset", got: s.Preset, want: "podcast"},
		{name: "env over file", got: s.Mode, want: "parallel"},
		{name: "explicit flag", got: s.Template, want: "${title}"},
		{name: "flag default", got: s.Provider, want: "youtube"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
	if File() == "" {
		t.Errorf("File() should report the config in use")
	}
}

func TestCustomPresets(t *testing.T) {
	root := newRoot(t, writeConfig(t, sample))
	if err := Init(root); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	ps, err := s.CustomPresets()
	if err != nil {
		t.Fatalf("CustomPresets() error: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("CustomPresets() = %d presets, want 2", len(ps))
	}
	if ps[0].Name != "podcast" || ps[0].MaxAudioBitrate != 64 || ps[0].MaxResolution != 0 {
		t.Errorf("podcast = %+v", ps[0])
	}
	if ps[1].MaxResolution != 720 || len(ps[1].VideoSort) != 2 {
		t.Errorf("smooth = %+v", ps[1])
	}
}

func TestInit_NoConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := newRoot(t, "")
	if err := Init(root); err != nil {
		t.Fatalf("Init() without a config file: %v", err)
	}
	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.Preset != "hd" || s.Dir != "." || len(s.Presets) != 0 {
		t.Errorf("defaults = %+v", s)
	}
}

func TestInit_MalformedConfig(t *testing.T) {
	root := newRoot(t, writeConfig(t, "dir: [unclosed"))
	if err := Init(root); err == nil {
		t.Errorf("Init() should fail on a malformed config file")
	}
}
