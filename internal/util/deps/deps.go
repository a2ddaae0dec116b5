// Package deps locates the external binaries pully shells out to.
package deps

import (
	"fmt"
	"os"
	"os/exec"
)

// FindDownloader returns the path to yt-dlp or youtube-dl.
// If customPath is non-empty, it tries that path or looks it up in PATH.
func FindDownloader(customPath string) (string, error) {
	if customPath != "" {
		return lookup(customPath, "downloader")
	}
	if p, err := exec.LookPath("yt-dlp"); err == nil {
		return p, nil
	}
	if p, err := exec.LookPath("youtube-dl"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("could not find yt-dlp or youtube-dl in PATH. Please install yt-dlp.")
}

// FindFFmpeg returns the path to ffmpeg, honoring customPath when set.
func FindFFmpeg(customPath string) (string, error) {
	if customPath != "" {
		return lookup(customPath, "ffmpeg")
	}
	if p, err := exec.LookPath("ffmpeg"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("could not find ffmpeg in PATH. Please install ffmpeg.")
}

func lookup(path, what string) (string, error) {
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		return path, nil
	}
	if p, err := exec.LookPath(path); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("could not find %s at %q", what, path)
}
