// Package encoder muxes downloaded streams into the final file with ffmpeg.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"pully/internal/model"
	"pully/internal/util"
)

// FFmpeg runs mux jobs through an ffmpeg binary.
type FFmpeg struct {
	Path    string
	Verbose bool
	Runner  util.CmdRunner
}

// New returns an FFmpeg muxer using the default subprocess runner.
func New(path string, verbose bool) *FFmpeg {
	return &FFmpeg{Path: path, Verbose: verbose, Runner: util.NewDefaultRunner()}
}

// Mux runs job to completion. The output directory is created first; a
// partially written output is removed when ffmpeg fails.
func (f *FFmpeg) Mux(ctx context.Context, job Job) error {
	if f.Path == "" {
		return model.Wrap(model.KindConfiguration, "mux", errors.New("ffmpeg path is required"))
	}
	args, err := BuildArgs(job, true)
	if err != nil {
		return model.Wrap(model.KindMux, "mux", err)
	}
	if err := util.EnsureDir(filepath.Dir(job.Output)); err != nil {
		return model.Wrap(model.KindMux, "mux", fmt.Errorf("ensure output dir: %w", err))
	}

	runner := f.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	var state ProgressState
	res, runErr := runner.Run(ctx, util.CmdSpec{
		Path:    f.Path,
		Args:    args,
		Verbose: f.Verbose,
		Stdin:   job.stdin(),
		StdoutLine: func(line string) {
			if state.UpdateFromLine(line) && job.OnProgress != nil {
				job.OnProgress(state)
			}
		},
	})
	if runErr != nil {
		// Delete incomplete file
		_ = util.RemoveIfExists(job.Output)
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = fmt.Errorf("%w: %w", ctxErr, runErr)
		}
		return model.Wrap(model.KindMux, "mux", &model.MuxError{
			Code:   res.Code,
			Stdout: res.Stdout,
			Stderr: res.Stderr,
			Err:    runErr,
		})
	}
	return nil
}
