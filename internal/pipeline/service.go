// Package pipeline orchestrates one download: catalog query, format
// selection, output path resolution, the verify hook, stream retrieval and
// the final mux.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pully/internal/analyzer"
	"pully/internal/encoder"
	"pully/internal/model"
	"pully/internal/progress"
	"pully/internal/util"
)

// Provider fetches the catalog for a URL.
type Provider = analyzer.Provider

// Fetcher opens the byte stream of one catalog format.
type Fetcher interface {
	Open(ctx context.Context, info model.MediaInfo, f model.MediaFormat) (io.ReadCloser, error)
}

// Muxer assembles the final output file.
type Muxer interface {
	Mux(ctx context.Context, job encoder.Job) error
}

// Service runs downloads against a provider, fetcher and muxer.
type Service struct {
	provider Provider
	fetcher  Fetcher
	muxer    Muxer
	reporter progress.Reporter
	tempDir  string
	now      func() time.Time
	window   time.Duration
	jobID    string
}

// Option configures a Service.
type Option func(*Service)

// WithProvider sets the catalog provider.
func WithProvider(p Provider) Option {
	return func(s *Service) {
		s.provider = p
	}
}

// WithFetcher sets the stream fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithMuxer sets the muxer.
func WithMuxer(m Muxer) Option {
	return func(s *Service) {
		s.muxer = m
	}
}

// WithReporter attaches a progress reporter (used by TUI).
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithTempDir sets where intermediate streams (and outputs without a
// directory) are written.
func WithTempDir(dir string) Option {
	return func(s *Service) {
		s.tempDir = dir
	}
}

// WithClock injects the time source used for rates and durations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithThrottleWindow sets the minimum spacing of progress emissions.
func WithThrottleWindow(d time.Duration) Option {
	return func(s *Service) {
		s.window = d
	}
}

// WithJobID sets the job ID associated with reporter events.
func WithJobID(id string) Option {
	return func(s *Service) {
		s.jobID = id
	}
}

// NewService constructs a new Service with the provided options.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.reporter == nil {
		s.reporter = progress.Nop{}
	}
	if s.tempDir == "" {
		s.tempDir = os.TempDir()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.window <= 0 {
		s.window = progress.DefaultWindow
	}
	return s
}

// Run executes the full pipeline for one URL. A verify-hook cancellation is
// a successful Results with Cancelled set; every other early exit is an
// error. Temp files are removed on every path.
func (s *Service) Run(ctx context.Context, cfg Config) (model.Results, error) {
	start := s.now()

	if err := cfg.Validate(); err != nil {
		return model.Results{}, s.fail(err)
	}
	if s.provider == nil || s.fetcher == nil || s.muxer == nil {
		return model.Results{}, s.fail(&model.Error{Kind: model.KindConfiguration, Op: "download", Err: errors.New("provider, fetcher and muxer are required")})
	}
	mode := cfg.Mode
	if mode == "" {
		mode = model.ModeMerge
	}

	s.update(progress.StageMetadata, "Fetching catalog")
	fi, err := analyzer.SelectBestFormats(ctx, s.provider, cfg.URL, cfg.Preset)
	if err != nil {
		return model.Results{}, s.fail(err)
	}
	fi.Path = OutputPath(cfg, fi, s.tempDir)

	s.update(progress.StageVerify, "Selected "+Describe(fi))
	if cancelled, reason := verify(cfg.Verify, fi); cancelled {
		s.reporter.Update(progress.Update{JobID: s.jobID, Stage: progress.StageCancelled, Message: reason})
		s.reporter.Result(progress.Result{JobID: s.jobID, Cancelled: true, Reason: reason})
		return model.Results{Format: &fi, Duration: s.now().Sub(start), Cancelled: true, Reason: reason}, nil
	}

	tr := newTracker(fi.DownloadSize, s.window, s.now, func(d progress.Data) {
		if cfg.Progress != nil {
			cfg.Progress(d)
		}
		stage := progress.StageDownloading
		if d.Indeterminate {
			stage = progress.StageMerging
		}
		s.reporter.Update(progress.Update{JobID: s.jobID, Stage: stage, Data: d})
	})

	r := &retrieval{svc: s, cfg: cfg, fi: fi, tr: tr}
	defer r.cleanup()

	s.update(progress.StageDownloading, "Downloading")
	if err := r.run(ctx, mode); err != nil {
		tr.stop()
		return model.Results{}, s.fail(err)
	}
	tr.final()

	s.reporter.Update(progress.Update{JobID: s.jobID, Stage: progress.StageCompleted, Message: "Saved: " + fi.Path})
	s.reporter.Result(progress.Result{JobID: s.jobID, OutputPath: fi.Path, Bytes: tr.bytes()})
	return model.Results{Path: fi.Path, Format: &fi, Duration: s.now().Sub(start)}, nil
}

// Query returns the catalog for url without downloading anything.
func (s *Service) Query(ctx context.Context, url string) (model.MediaInfo, error) {
	if s.provider == nil {
		return model.MediaInfo{}, &model.Error{Kind: model.KindConfiguration, Op: "query", Err: errors.New("provider is required")}
	}
	info, err := s.provider.Query(ctx, url)
	return info, model.Wrap(model.KindCatalogFetch, "query catalog", err)
}

func verify(fn VerifyFunc, fi model.FormatInfo) (bool, string) {
	if fn == nil {
		return false, ""
	}
	var (
		mu        sync.Mutex
		cancelled bool
		reason    string
	)
	fn(fi, func(r string) {
		mu.Lock()
		defer mu.Unlock()
		if !cancelled {
			cancelled, reason = true, r
		}
	})
	mu.Lock()
	defer mu.Unlock()
	return cancelled, reason
}

func (s *Service) update(stage progress.Stage, msg string) {
	s.reporter.Update(progress.Update{JobID: s.jobID, Stage: stage, Message: msg})
}

func (s *Service) fail(err error) error {
	s.reporter.Update(progress.Update{JobID: s.jobID, Stage: progress.StageError, Message: err.Error()})
	s.reporter.Result(progress.Result{JobID: s.jobID, Err: err})
	return err
}

func (s *Service) warn(format string, args ...any) {
	s.reporter.Log(progress.Log{JobID: s.jobID, Stream: progress.StreamStderr, Line: fmt.Sprintf(format, args...)})
}

func (s *Service) ensureTempDir() error {
	if err := util.EnsureDir(s.tempDir); err != nil {
		return model.Wrap(model.KindStreamIO, "create temp dir", err)
	}
	return nil
}

func ensureParent(path string) error {
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return model.Wrap(model.KindMux, "create output dir", err)
	}
	return nil
}
