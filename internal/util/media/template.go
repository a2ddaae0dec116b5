// Package media turns video metadata into output file names.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"pully/internal/model"
	"pully/internal/util"
)

// DefaultTemplate files downloads under a folder per author.
const DefaultTemplate = "${author}/${title}"

// Fields lists the placeholders a template may use.
var Fields = []string{"id", "title", "author", "description", "network"}

// Template is a compiled filename pattern such as "${author}/${title}".
// Each "/" in the pattern starts a subdirectory; placeholder values are
// sanitized so they can never add one.
type Template struct {
	pattern string
}

// Compile checks that every placeholder in pattern is known.
func Compile(pattern string) (Template, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultTemplate
	}
	var unknown []string
	os.Expand(pattern, func(name string) string {
		if !slices.Contains(Fields, name) {
			unknown = append(unknown, name)
		}
		return ""
	})
	if len(unknown) > 0 {
		return Template{}, fmt.Errorf("unknown template field(s) %s (valid: %s)", strings.Join(unknown, ", "), strings.Join(Fields, ", "))
	}
	return Template{pattern: pattern}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(pattern string) Template {
	t, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the source pattern.
func (t Template) String() string { return t.pattern }

// Expand renders the relative path (without extension) for info.
func (t Template) Expand(info model.MediaInfo) string {
	pattern := t.pattern
	if pattern == "" {
		pattern = DefaultTemplate
	}
	values := map[string]string{
		"id":          info.ID,
		"title":       info.Title,
		"author":      info.Author,
		"description": info.Description,
		"network":     info.Network,
	}
	expanded := os.Expand(pattern, func(name string) string {
		return util.SanitizeFilename(values[name])
	})
	var parts []string
	for _, p := range strings.Split(expanded, "/") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		parts = append(parts, util.SanitizeFilename(p))
	}
	if len(parts) == 0 {
		return util.SanitizeFilename("")
	}
	return filepath.Join(parts...)
}
