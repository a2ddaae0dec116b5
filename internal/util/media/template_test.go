package media

import (
	"path/filepath"
	"testing"

	"pully/internal/model"
)

func TestTemplate_Expand(t *testing.T) {
	info := model.MediaInfo{
		ID:      "dQw4w9WgXcQ",
		Title:   "Never Gonna Give You Up (Official Video)",
		Author:  "Rick Astley",
		Network: "YouTube",
	}
	tests := []struct {
		name    string
		pattern string
		info    model.MediaInfo
		want    string
	}{
		{name: "default", pattern: "", info: info, want: filepath.Join("Rick Astley", "Never Gonna Give You Up (Official Video)")},
		{name: "flat", pattern: "${id}", info: info, want: "dQw4w9WgXcQ"},
		{name: "mixed literal", pattern: "${network}/${author} - ${title}", info: info, want: filepath.Join("YouTube", "Rick Astley - Never Gonna Give You Up (Official Video)")},
		{name: "separators in values stay inside one element", pattern: "${author}/${title}", info: model.MediaInfo{Author: "AC/DC", Title: "T.N.T."}, want: filepath.Join("ACDC", "T.N.T")},
		{name: "traversal neutralized", pattern: "${title}", info: model.MediaInfo{Title: "../../etc"}, want: "....etc"},
		{name: "leading slash", pattern: "/${title}", info: info, want: "Never Gonna Give You Up (Official Video)"},
		{name: "empty segments dropped", pattern: "${author}//${id}/", info: info, want: filepath.Join("Rick Astley", "dQw4w9WgXcQ")},
		{name: "missing author", pattern: "${author}/${title}", info: model.MediaInfo{Title: "x"}, want: filepath.Join("untitled", "x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, err := Compile(tt.pattern)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.pattern, err)
			}
			if got := tpl.Expand(tt.info); got != tt.want {
				t.Errorf("Expand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_UnknownField(t *testing.T) {
	if _, err := Compile("${author}/${views}"); err == nil {
		t.Errorf("Compile with unknown field should fail")
	}
}
