package util

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseURL accepts a URL with or without a scheme and returns it normalized
// to https when the scheme was missing.
func ParseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err == nil && (u.Scheme == "" || u.Host == "") {
		if u2, e2 := url.Parse("https://" + raw); e2 == nil {
			u = u2
		}
	}
	if err != nil || u.Scheme == "" || u.Host == "" || !strings.Contains(u.Host, ".") {
		return nil, fmt.Errorf("invalid URL %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
	}
	return u, nil
}

// IsYouTube reports whether u points at a YouTube host.
func IsYouTube(u *url.URL) bool {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be", "youtube-nocookie.com":
		return true
	}
	return false
}
