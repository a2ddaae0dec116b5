package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"pully/internal/encoder"
	"pully/internal/model"
	"pully/internal/util"
)

// retrieval holds the state of one RETRIEVE + MERGE pass.
type retrieval struct {
	svc   *Service
	cfg   Config
	fi    model.FormatInfo
	tr    *tracker
	temps []string
}

func (r *retrieval) run(ctx context.Context, mode model.Mode) error {
	switch mode {
	case model.ModeMerge:
		return r.merge(ctx)
	case model.ModeSequential:
		return r.sequential(ctx)
	case model.ModeParallel:
		return r.parallel(ctx)
	default:
		return &model.Error{Kind: model.KindConfiguration, Op: "download", Err: fmt.Errorf("mode %q: %w", mode, model.ErrNotImplemented)}
	}
}

// merge downloads audio to a temp file, then pipes the live video stream
// straight into the muxer.
func (r *retrieval) merge(ctx context.Context) error {
	var inputs []encoder.Input
	if r.fi.Audio != nil {
		p, err := r.download(ctx, *r.fi.Audio)
		if err != nil {
			return err
		}
		inputs = append(inputs, encoder.Input{Path: p})
	}
	if r.fi.Video == nil {
		return r.mux(ctx, inputs, nil)
	}

	rc, err := r.svc.fetcher.Open(ctx, r.fi.Info, *r.fi.Video)
	if err != nil {
		return model.Wrap(model.KindStreamIO, "open video", err)
	}
	live := r.tr.reader(ctx, rc)
	inputs = append([]encoder.Input{{Reader: live}}, inputs...)
	muxErr := r.mux(ctx, inputs, live)
	closeErr := rc.Close()
	if muxErr != nil {
		return muxErr
	}
	if closeErr != nil {
		_ = util.RemoveIfExists(r.fi.Path)
		return model.Wrap(model.KindStreamIO, "read video", closeErr)
	}
	return nil
}

// sequential finishes the audio download before the video one starts. The
// muxer still gets video first.
func (r *retrieval) sequential(ctx context.Context) error {
	var audio, video string
	var err error
	if r.fi.Audio != nil {
		if audio, err = r.download(ctx, *r.fi.Audio); err != nil {
			return err
		}
	}
	if r.fi.Video != nil {
		if video, err = r.download(ctx, *r.fi.Video); err != nil {
			return err
		}
	}
	var inputs []encoder.Input
	for _, p := range []string{video, audio} {
		if p != "" {
			inputs = append(inputs, encoder.Input{Path: p})
		}
	}
	return r.mux(ctx, inputs, nil)
}

func (r *retrieval) parallel(ctx context.Context) error {
	streams := r.streams()
	paths := make([]string, len(streams))
	for i, f := range streams {
		paths[i] = r.reserve(f)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range streams {
		g.Go(func() error {
			return r.downloadTo(gctx, f, paths[i])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	inputs := make([]encoder.Input, len(paths))
	for i, p := range paths {
		inputs[i] = encoder.Input{Path: p}
	}
	return r.mux(ctx, inputs, nil)
}

// streams lists the selected formats, video first.
func (r *retrieval) streams() []model.MediaFormat {
	var out []model.MediaFormat
	if r.fi.Video != nil {
		out = append(out, *r.fi.Video)
	}
	if r.fi.Audio != nil {
		out = append(out, *r.fi.Audio)
	}
	return out
}

// reserve allocates a temp path for f and registers it for cleanup.
func (r *retrieval) reserve(f model.MediaFormat) string {
	p := util.TempPath(r.svc.tempDir, r.fi.Info.ID, r.cfg.Preset.Name, f.Extension())
	r.temps = append(r.temps, p)
	return p
}

func (r *retrieval) download(ctx context.Context, f model.MediaFormat) (string, error) {
	p := r.reserve(f)
	return p, r.downloadTo(ctx, f, p)
}

func (r *retrieval) downloadTo(ctx context.Context, f model.MediaFormat, path string) error {
	if err := r.svc.ensureTempDir(); err != nil {
		return err
	}
	rc, err := r.svc.fetcher.Open(ctx, r.fi.Info, f)
	if err != nil {
		return model.Wrap(model.KindStreamIO, "open stream "+f.Itag, err)
	}
	out, err := os.Create(path)
	if err != nil {
		_ = rc.Close()
		return model.Wrap(model.KindStreamIO, "create temp file", err)
	}
	_, copyErr := io.Copy(out, r.tr.reader(ctx, rc))
	closeErr := rc.Close()
	fileErr := out.Close()
	for _, err := range []error{copyErr, closeErr, fileErr} {
		if err != nil {
			return model.Wrap(model.KindStreamIO, "download stream "+f.Itag, err)
		}
	}
	return nil
}

// mux runs the muxer. When live is set its read error, if any, takes
// precedence: the muxer saw a truncated stream.
func (r *retrieval) mux(ctx context.Context, inputs []encoder.Input, live *countingReader) error {
	if err := ensureParent(r.fi.Path); err != nil {
		return err
	}
	err := r.svc.muxer.Mux(ctx, encoder.Job{
		Inputs:     inputs,
		Format:     r.cfg.Preset.OutputFormat,
		Metadata:   encoder.MetadataTags(r.fi.Info),
		Output:     r.fi.Path,
		Duration:   r.fi.Info.Duration,
		OnProgress: func(encoder.ProgressState) { r.tr.tick() },
	})
	if live != nil {
		if readErr := live.Err(); readErr != nil {
			_ = util.RemoveIfExists(r.fi.Path)
			return model.Wrap(model.KindStreamIO, "read video", readErr)
		}
	}
	if err != nil {
		_ = util.RemoveIfExists(r.fi.Path)
		return model.Wrap(model.KindMux, "mux", err)
	}
	return nil
}

func (r *retrieval) cleanup() {
	for _, p := range r.temps {
		if err := util.RemoveIfExists(p); err != nil {
			r.svc.warn("warning: failed to remove temp file %s: %v", p, err)
		}
	}
}
