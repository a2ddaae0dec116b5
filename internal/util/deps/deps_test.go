package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindFFmpeg_CustomPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg-custom")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := FindFFmpeg(bin)
	if err != nil || got != bin {
		t.Errorf("FindFFmpeg(%q) = %q, %v", bin, got, err)
	}
	if _, err := FindFFmpeg(dir); err == nil {
		t.Errorf("a directory should not be accepted as ffmpeg")
	}
	if _, err := FindDownloader(filepath.Join(dir, "missing")); err == nil {
		t.Errorf("missing downloader should fail")
	}
}
