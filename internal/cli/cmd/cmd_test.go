package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"pully"
	"pully/internal/model"
	"pully/internal/preset"
	"pully/internal/progress"
)

func TestExitFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "configuration", err: &model.Error{Kind: model.KindConfiguration, Err: model.ErrMissingURL}, want: ExitCLIError},
		{name: "catalog", err: &model.Error{Kind: model.KindCatalogFetch, Err: errors.New("404")}, want: ExitDownloadError},
		{name: "selection", err: &model.Error{Kind: model.KindFormatSelection, Err: model.ErrNoVideoStream}, want: ExitDownloadError},
		{name: "stream", err: &model.Error{Kind: model.KindStreamIO, Err: errors.New("reset")}, want: ExitDownloadError},
		{name: "mux", err: &model.Error{Kind: model.KindMux, Err: &model.MuxError{Code: 1}}, want: ExitMuxError},
		{name: "unclassified", err: errors.New("?"), want: ExitCLIError},
		{name: "already mapped", err: &ExitError{Code: ExitMissingDep, Err: errors.New("no ffmpeg")}, want: ExitMissingDep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ee *ExitError
			if !errors.As(exitFor(tt.err), &ee) {
				t.Fatalf("exitFor() did not return *ExitError")
			}
			if ee.Code != tt.want {
				t.Errorf("exitFor() code = %d, want %d", ee.Code, tt.want)
			}
		})
	}
	if exitFor(nil) != nil {
		t.Errorf("exitFor(nil) should be nil")
	}
}

func TestSizeGuard(t *testing.T) {
	tests := []struct {
		name   string
		limit  int64
		size   int64
		cancel bool
	}{
		{name: "no limit", limit: 0, size: 1 << 40},
		{name: "under", limit: 100, size: 99},
		{name: "equal", limit: 100, size: 100},
		{name: "over", limit: 100, size: 101, cancel: true},
		{name: "unknown size", limit: 100, size: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reason string
			sizeGuard(tt.limit)(pully.FormatInfo{DownloadSize: tt.size}, func(r string) { reason = r })
			if (reason != "") != tt.cancel {
				t.Errorf("cancelled = %v (%q), want %v", reason != "", reason, tt.cancel)
			}
		})
	}
}

func TestMaxSizeFlag(t *testing.T) {
	cmd := newDownloadCmd()
	if n, err := maxSizeFlag(cmd); err != nil || n != 0 {
		t.Errorf("unset --max-size = %d, %v", n, err)
	}
	_ = cmd.Flags().Set("max-size", "2")
	if n, err := maxSizeFlag(cmd); err != nil || n != 2_000_000 {
		t.Errorf("--max-size 2 = %d, %v; want 2000000", n, err)
	}
	_ = cmd.Flags().Set("max-size", "huge")
	if _, err := maxSizeFlag(cmd); err == nil {
		t.Errorf("--max-size huge should fail")
	}
}

func TestPrinter(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPrinter(&out, &errOut, false, false)
	p.Update(progress.Update{Stage: progress.StageMetadata, Message: "Fetching catalog"})
	p.Update(progress.Update{Stage: progress.StageDownloading, Data: progress.Snapshot(50, 100, 0, 0, 0, false)})
	p.Update(progress.Update{Stage: progress.StageMerging, Data: progress.Indeterminate(0)})
	p.Update(progress.Update{Stage: progress.StageCompleted, Message: "Saved: x"})
	p.Log(progress.Log{Stream: progress.StreamStdout, Line: "ffmpeg chatter"})
	p.Log(progress.Log{Stream: progress.StreamStderr, Line: "remove temp: busy"})
	p.saved(pully.Results{Path: "/out/a.mp4"})

	got := out.String()
	for _, want := range []string{"[metadata] Fetching catalog", " 50.00%  50 B / 100 B", "merging… 0:00 elapsed", "Saved: /out/a.mp4"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Saved: x") {
		t.Errorf("completed stage should be left to the command")
	}
	if e := errOut.String(); !strings.Contains(e, "remove temp: busy") || strings.Contains(e, "chatter") {
		t.Errorf("stderr = %q", e)
	}

	out.Reset()
	quiet := newPrinter(&out, &errOut, true, false)
	quiet.Update(progress.Update{Stage: progress.StageMetadata, Message: "Fetching catalog"})
	quiet.cancelled("too big")
	if out.Len() != 0 {
		t.Errorf("silent printer wrote %q", out.String())
	}
}

func TestPrintFormatsAndPresets(t *testing.T) {
	var b bytes.Buffer
	printFormats(&b, []pully.MediaFormat{
		{Itag: "137", Type: `video/mp4; codecs="avc1"`, Resolution: 1080, FPS: 30, DownloadSize: 2048},
		{Itag: "140", Type: `audio/mp4; codecs="mp4a"`, AudioBitrate: 128, Bitrate: "129-131"},
	})
	got := b.String()
	for _, want := range []string{"ITAG", "137", "video/mp4", "1080p", "2.0 KiB", "128k", "129-131", "?"} {
		if !strings.Contains(got, want) {
			t.Errorf("printFormats missing %q:\n%s", want, got)
		}
	}

	b.Reset()
	printPresets(&b, preset.NewRegistry().All(), "hd")
	if got := b.String(); !strings.Contains(got, "hd *") || !strings.Contains(got, "mp3") {
		t.Errorf("printPresets:\n%s", got)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPresetsCommand(t *testing.T) {
	got, err := runCLI(t, "presets", "--preset", "mp3")
	if err != nil {
		t.Fatalf("presets error: %v", err)
	}
	for _, name := range []string{"max", "4k", "hfr", "mp3 *"} {
		if !strings.Contains(got, name) {
			t.Errorf("presets output missing %q:\n%s", name, got)
		}
	}
}

func TestInvalidProvider(t *testing.T) {
	_, err := runCLI(t, "presets", "--provider", "vimeo")
	var ee *ExitError
	if !errors.As(err, &ee) || ee.Code != ExitCLIError {
		t.Errorf("err = %v, want CLI exit error", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	got, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(got, "pully") {
		t.Errorf("bash completion does not mention pully")
	}
}
