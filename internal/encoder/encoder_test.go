package encoder

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"pully/internal/model"
	"pully/internal/util"
)

type fakeRunner struct {
	specs  []util.CmdSpec
	stdin  string
	lines  []string
	result util.CmdResult
	err    error
	// write creates the output file before failing, like a half-finished ffmpeg.
	write bool
}

func (f *fakeRunner) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	f.specs = append(f.specs, spec)
	if spec.Stdin != nil {
		b, _ := io.ReadAll(spec.Stdin)
		f.stdin = string(b)
	}
	for _, l := range f.lines {
		if spec.StdoutLine != nil {
			spec.StdoutLine(l)
		}
	}
	if f.write {
		_ = os.WriteFile(spec.Args[len(spec.Args)-1], []byte("partial"), 0o644)
	}
	return f.result, f.err
}

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name            string
		job             Job
		wantContains    []string
		wantNotContains []string
		wantErr         bool
	}{
		{
			name: "copy two files",
			job: Job{
				Inputs:   []Input{{Path: "/tmp/a.m4a"}, {Path: "/tmp/v.mp4"}},
				Output:   "/out/x.mp4",
				Metadata: []Tag{{Key: "title", Value: "T"}},
			},
			wantContains:    []string{"-i /tmp/a.m4a -i /tmp/v.mp4", "-map 0 -map 1", "-c copy", "-metadata title=T", "-progress pipe:1"},
			wantNotContains: []string{"-f ", "pipe:0"},
		},
		{
			name: "live video on stdin",
			job: Job{
				Inputs: []Input{{Path: "/tmp/a.m4a"}, {Reader: strings.NewReader("")}},
				Output: "/out/x.mp4",
			},
			wantContains: []string{"-i /tmp/a.m4a -i pipe:0"},
		},
		{
			name: "forced format",
			job: Job{
				Inputs: []Input{{Path: "/tmp/a.m4a"}},
				Format: "mp3",
				Output: "/out/x.mp3",
			},
			wantContains:    []string{"-f mp3"},
			wantNotContains: []string{"-c copy"},
		},
		{
			name: "extension mapped to muxer",
			job: Job{
				Inputs: []Input{{Path: "/tmp/v.mp4"}},
				Format: "mkv",
				Output: "/out/x.mkv",
			},
			wantContains:    []string{"-f matroska"},
			wantNotContains: []string{"-f mkv"},
		},
		{name: "no inputs", job: Job{Output: "/x"}, wantErr: true},
		{name: "no output", job: Job{Inputs: []Input{{Path: "a"}}}, wantErr: true},
		{name: "empty input", job: Job{Inputs: []Input{{}}, Output: "/x"}, wantErr: true},
		{
			name:    "two readers",
			job:     Job{Inputs: []Input{{Reader: strings.NewReader("")}, {Reader: strings.NewReader("")}}, Output: "/x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := BuildArgs(tt.job, true)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BuildArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			joined := strings.Join(args, " ")
			for _, want := range tt.wantContains {
				if !strings.Contains(joined, want) {
					t.Errorf("BuildArgs() = %q, missing %q", joined, want)
				}
			}
			for _, not := range tt.wantNotContains {
				if strings.Contains(joined, not) {
					t.Errorf("BuildArgs() = %q, should not contain %q", joined, not)
				}
			}
			if args[len(args)-1] != tt.job.Output {
				t.Errorf("output must be the last argument, got %q", args[len(args)-1])
			}
		})
	}
}

func TestMetadataTags(t *testing.T) {
	tags := MetadataTags(model.MediaInfo{ID: "id1", Title: "T", Author: "A", Description: "D"})
	var keys []string
	got := map[string]string{}
	for _, tag := range tags {
		keys = append(keys, tag.Key)
		got[tag.Key] = tag.Value
	}
	want := []string{"title", "author", "artist", "description", "comment", "episode_id", "network"}
	if !slices.Equal(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
	if got["artist"] != "A" || got["comment"] != "D" || got["episode_id"] != "id1" || got["network"] != "YouTube" {
		t.Errorf("tags = %v", got)
	}
}

func TestFFmpeg_Mux(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "dir", "x.mp4")
	fr := &fakeRunner{lines: []string{"out_time_us=1000000", "progress=continue", "out_time_us=2000000", "progress=end"}}
	ff := &FFmpeg{Path: "ffmpeg", Runner: fr}

	var ticks []ProgressState
	err := ff.Mux(context.Background(), Job{
		Inputs:     []Input{{Path: "a.m4a"}, {Reader: strings.NewReader("video-bytes")}},
		Output:     out,
		OnProgress: func(ps ProgressState) { ticks = append(ticks, ps) },
	})
	if err != nil {
		t.Fatalf("Mux() error: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(out)); err != nil {
		t.Errorf("output dir not created: %v", err)
	}
	if fr.stdin != "video-bytes" {
		t.Errorf("stdin = %q, want the live reader", fr.stdin)
	}
	if len(ticks) != 2 || !ticks[1].Done || ticks[1].OutTime.Seconds() != 2 {
		t.Errorf("progress ticks = %+v", ticks)
	}
}

func TestFFmpeg_MuxFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "x.mp4")
	fr := &fakeRunner{
		write:  true,
		result: util.CmdResult{Code: 1, Stderr: []byte("Invalid data found when processing input\n")},
		err:    errors.New("command failed (exit 1)"),
	}
	ff := &FFmpeg{Path: "ffmpeg", Runner: fr}
	err := ff.Mux(context.Background(), Job{Inputs: []Input{{Path: "a.m4a"}}, Output: out})
	if model.KindOf(err) != model.KindMux {
		t.Fatalf("KindOf(err) = %v, want mux", model.KindOf(err))
	}
	var me *model.MuxError
	if !errors.As(err, &me) || me.Code != 1 || !strings.Contains(me.Error(), "Invalid data") {
		t.Errorf("err = %v, want MuxError with stderr tail", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("partial output should be removed")
	}
}

func TestFFmpeg_MissingPath(t *testing.T) {
	err := (&FFmpeg{}).Mux(context.Background(), Job{Inputs: []Input{{Path: "a"}}, Output: "x"})
	if model.KindOf(err) != model.KindConfiguration {
		t.Errorf("KindOf(err) = %v, want configuration", model.KindOf(err))
	}
}

func TestMuxerName(t *testing.T) {
	tests := map[string]string{
		"mkv":      "matroska",
		".MKV":     "matroska",
		"m4a":      "ipod",
		"mp3":      "mp3",
		"matroska": "matroska",
		"webm":     "webm",
	}
	for in, want := range tests {
		if got := MuxerName(in); got != want {
			t.Errorf("MuxerName(%q) = %q, want %q", in, got, want)
		}
	}
}
