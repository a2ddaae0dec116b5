package model

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure so callers can branch without matching messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindCatalogFetch
	KindFormatSelection
	KindStreamIO
	KindMux
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindCatalogFetch:
		return "catalog fetch"
	case KindFormatSelection:
		return "format selection"
	case KindStreamIO:
		return "stream io"
	case KindMux:
		return "mux"
	default:
		return "unknown"
	}
}

var (
	ErrMissingURL     = errors.New("missing url")
	ErrUnknownPreset  = errors.New("unknown preset")
	ErrInvalidPreset  = errors.New("preset must set a max resolution or a max audio bitrate")
	ErrNotImplemented = errors.New("not implemented")
	ErrNoVideoStream  = errors.New("no video stream matches the preset")
	ErrNoAudioStream  = errors.New("no audio stream matches the preset")
)

// Error is a classified failure from any stage of a download.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a bare kind template, so errors.Is(err, &Error{Kind: KindMux})
// holds for any mux failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Wrap classifies err under kind. A nil err stays nil and an already
// classified err keeps its kind.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MuxError reports a failed muxer run with the output it produced.
type MuxError struct {
	Code   int
	Stdout []byte
	Stderr []byte
	Err    error
}

func (e *MuxError) Error() string {
	msg := fmt.Sprintf("muxer exited with code %d", e.Code)
	if tail := lastLines(string(e.Stderr), 3); tail != "" {
		msg += ": " + tail
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MuxError) Unwrap() error { return e.Err }

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, " | "))
}
