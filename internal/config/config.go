// Package config layers flags, PULLY_* environment variables and the config
// file through viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pully/internal/dirs"
	"pully/internal/preset"
)

// EnvPrefix is prepended to environment variable names, e.g. PULLY_PRESET.
const EnvPrefix = "PULLY"

// Keys bound to root persistent flags, mapped to their flag names.
var flagKeys = map[string]string{
	"dir":       "dir",
	"template":  "template",
	"preset":    "preset",
	"mode":      "mode",
	"verbose":   "verbose",
	"silent":    "silent",
	"provider":  "provider",
	"dl_binary": "dl-binary",
	"ffmpeg":    "ffmpeg",
}

// Settings is the resolved configuration of one invocation.
type Settings struct {
	Dir      string
	Template string
	Preset   string
	Mode     string
	Verbose  bool
	Silent   bool
	Provider string
	DLBinary string
	FFmpeg   string
	Presets  []preset.Spec
}

// Init wires viper with config paths, env, defaults and flag bindings. A
// missing config file is not an error; a malformed one is.
func Init(root *cobra.Command) error {
	if f := root.PersistentFlags().Lookup("config"); f != nil && f.Value.String() != "" {
		viper.SetConfigFile(f.Value.String())
	} else {
		if cfgDir, err := dirs.ConfigDir(); err == nil {
			_ = dirs.Ensure(cfgDir)
			viper.AddConfigPath(cfgDir)
		}
		viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("dir", ".")
	viper.SetDefault("preset", preset.Default)
	viper.SetDefault("mode", "merge")
	viper.SetDefault("provider", "youtube")

	for key, name := range flagKeys {
		if f := root.PersistentFlags().Lookup(name); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Load returns the settings after Init.
func Load() (Settings, error) {
	s := Settings{
		Dir:      viper.GetString("dir"),
		Template: viper.GetString("template"),
		Preset:   viper.GetString("preset"),
		Mode:     viper.GetString("mode"),
		Verbose:  viper.GetBool("verbose"),
		Silent:   viper.GetBool("silent"),
		Provider: strings.ToLower(viper.GetString("provider")),
		DLBinary: viper.GetString("dl_binary"),
		FFmpeg:   viper.GetString("ffmpeg"),
	}
	if err := viper.UnmarshalKey("presets", &s.Presets); err != nil {
		return Settings{}, fmt.Errorf("decode presets: %w", err)
	}
	return s, nil
}

// CustomPresets converts the presets declared in the config file.
func (s Settings) CustomPresets() ([]preset.Preset, error) {
	out := make([]preset.Preset, 0, len(s.Presets))
	for _, spec := range s.Presets {
		p, err := spec.Preset()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// File is the config file in use, or "".
func File() string {
	return viper.ConfigFileUsed()
}
