package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TempPrefix starts the name of every temporary file pully creates.
const TempPrefix = "pully-"

// TempPath returns a fresh path in dir for an intermediate stream of the given
// video. The file itself is not created.
func TempPath(dir, videoID, preset, ext string) string {
	name := fmt.Sprintf("%s%s-%s-%s", TempPrefix, SanitizeFilename(videoID), SanitizeFilename(preset), uuid.NewString())
	if ext != "" {
		name += "." + strings.TrimPrefix(ext, ".")
	}
	return filepath.Join(dir, name)
}

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// RemoveIfExists deletes the file if present.
func RemoveIfExists(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return os.Remove(path)
	} else if os.IsNotExist(err) {
		return nil
	} else {
		return err
	}
}

// SanitizeFilename makes s safe to use as a single path element:
// - Drop path separators, characters Windows forbids and control characters
// - Trim trailing dots and spaces
// - Avoid reserved names (".", "..", CON, NUL, ...)
// - Truncate to 200 runes
func SanitizeFilename(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\?<>:*|"`, r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimRight(strings.TrimSpace(s), ". ")

	const maxRunes = 200
	if utf8.RuneCountInString(s) > maxRunes {
		s = string([]rune(s)[:maxRunes])
	}

	if s == "" || reserved(s) {
		return "untitled"
	}
	return s
}

func reserved(s string) bool {
	base := strings.ToUpper(strings.SplitN(s, ".", 2)[0])
	switch base {
	case "CON", "PRN", "AUX", "NUL":
		return true
	}
	if len(base) == 4 && (strings.HasPrefix(base, "COM") || strings.HasPrefix(base, "LPT")) {
		return base[3] >= '1' && base[3] <= '9'
	}
	return false
}
