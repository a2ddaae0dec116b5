// Package pully downloads a video at the best quality a named preset allows
// and muxes the chosen streams into one file.
//
//	p, err := pully.New(pully.WithDir("."))
//	res, err := p.Download(ctx, "https://youtu.be/dQw4w9WgXcQ")
package pully

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pully/internal/dirs"
	"pully/internal/encoder"
	"pully/internal/model"
	"pully/internal/pipeline"
	"pully/internal/preset"
	"pully/internal/progress"
	"pully/internal/util"
	"pully/internal/util/deps"
	"pully/internal/util/media"
	"pully/internal/ytcatalog"
)

// Request describes one download. Zero fields fall back to the instance
// configuration, then to library defaults.
type Request struct {
	ID       string
	URL      string
	Preset   string
	Dir      string
	Template string
	Mode     Mode
	Verify   VerifyFunc
	Progress func(ProgressData)
}

// Pully holds the preset registry, default configuration and collaborators
// shared by its downloads. It is safe for concurrent use.
type Pully struct {
	opts     options
	registry *preset.Registry
	provider Provider
	fetcher  Fetcher
	muxer    Muxer
	obs      observers
}

// New builds an instance. Custom presets given through WithPresets are
// validated here.
func New(opts ...Option) (*Pully, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.tempDir == "" {
		o.tempDir = dirs.TempBaseDir()
	}
	if o.reporter == nil {
		o.reporter = progress.Nop{}
	}

	p := &Pully{opts: o, registry: preset.NewRegistry()}
	if err := p.registry.Register(o.presets...); err != nil {
		return nil, err
	}
	if o.template != "" {
		if _, err := media.Compile(o.template); err != nil {
			return nil, &model.Error{Kind: model.KindConfiguration, Op: "template", Err: err}
		}
	}

	p.provider = o.provider
	if p.provider == nil {
		p.provider = ytcatalog.New(o.httpClient)
	}
	p.fetcher = o.fetcher
	if p.fetcher == nil {
		f, ok := p.provider.(Fetcher)
		if !ok {
			return nil, &model.Error{Kind: model.KindConfiguration, Op: "new", Err: errors.New("provider cannot open streams and no fetcher was given")}
		}
		p.fetcher = f
	}
	p.muxer = o.muxer
	if p.muxer == nil {
		p.muxer = &lazyFFmpeg{path: o.ffmpeg, verbose: o.verbose}
	}
	return p, nil
}

// Register adds or replaces custom presets. Nothing is registered if any is
// invalid.
func (p *Pully) Register(ps ...Preset) error {
	return p.registry.Register(ps...)
}

// Presets returns every registered preset, built-ins first.
func (p *Pully) Presets() []Preset {
	return p.registry.All()
}

// Preset looks a registered preset up by name.
func (p *Pully) Preset(name string) (Preset, error) {
	return p.registry.Get(name)
}

// Subscribe registers fn for lifecycle events and returns a function that
// removes it.
func (p *Pully) Subscribe(fn Observer) func() {
	return p.obs.add(fn)
}

// Download fetches url with the instance defaults.
func (p *Pully) Download(ctx context.Context, url string) (Results, error) {
	return p.DownloadWith(ctx, Request{URL: url})
}

// DownloadWith runs one download. A verify-hook cancellation returns
// Results with Cancelled set and a nil error.
func (p *Pully) DownloadWith(ctx context.Context, req Request) (Results, error) {
	req = p.resolve(req)
	cfg, err := p.config(req)
	if err != nil {
		p.obs.emit(Event{Kind: EventFailed, Request: req, Err: err})
		return Results{}, err
	}

	svc := pipeline.NewService(
		pipeline.WithProvider(p.provider),
		pipeline.WithFetcher(p.fetcher),
		pipeline.WithMuxer(p.muxer),
		pipeline.WithReporter(p.opts.reporter),
		pipeline.WithTempDir(p.opts.tempDir),
		pipeline.WithThrottleWindow(p.opts.window),
		pipeline.WithJobID(req.ID),
	)

	p.obs.emit(Event{Kind: EventStarted, Request: req})
	res, err := svc.Run(ctx, cfg)
	switch {
	case err != nil:
		p.obs.emit(Event{Kind: EventFailed, Request: req, Err: err})
	case res.Cancelled:
		p.obs.emit(Event{Kind: EventCancelled, Request: req, Results: &res})
	default:
		p.obs.emit(Event{Kind: EventCompleted, Request: req, Results: &res})
	}
	return res, err
}

// Query returns the catalog for url without downloading.
func (p *Pully) Query(ctx context.Context, url string) (MediaInfo, error) {
	u, err := normalize(url)
	if err == nil {
		var info MediaInfo
		info, err = pipeline.NewService(pipeline.WithProvider(p.provider)).Query(ctx, u)
		if err == nil {
			p.obs.emit(Event{Kind: EventQuery, Info: &info})
			return info, nil
		}
	}
	p.obs.emit(Event{Kind: EventFailed, Request: Request{URL: url}, Err: err})
	return MediaInfo{}, err
}

// resolve layers req over the instance configuration and the defaults.
func (p *Pully) resolve(req Request) Request {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Preset = firstNonEmpty(req.Preset, p.opts.preset, preset.Default)
	req.Dir = firstNonEmpty(req.Dir, p.opts.dir)
	req.Template = firstNonEmpty(req.Template, p.opts.template, media.DefaultTemplate)
	req.Mode = Mode(firstNonEmpty(string(req.Mode), string(p.opts.mode), string(model.ModeMerge)))
	if req.Verify == nil {
		req.Verify = p.opts.verify
	}
	if req.Progress == nil {
		req.Progress = p.opts.progress
	}
	return req
}

func (p *Pully) config(req Request) (pipeline.Config, error) {
	url, err := normalize(req.URL)
	if err != nil {
		return pipeline.Config{}, err
	}
	pr, err := p.registry.Get(req.Preset)
	if err != nil {
		return pipeline.Config{}, err
	}
	tmpl, err := media.Compile(req.Template)
	if err != nil {
		return pipeline.Config{}, &model.Error{Kind: model.KindConfiguration, Op: "template", Err: err}
	}
	mode, err := model.ParseMode(string(req.Mode))
	if err != nil {
		return pipeline.Config{}, err
	}
	progressFn := func(d ProgressData) {
		if req.Progress != nil {
			req.Progress(d)
		}
		p.obs.emit(Event{Kind: EventProgress, Request: req, Progress: d})
	}
	return pipeline.Config{
		URL:      url,
		Preset:   pr,
		Dir:      req.Dir,
		Template: tmpl,
		Mode:     mode,
		Verify:   req.Verify,
		Progress: progressFn,
	}, nil
}

func normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", &model.Error{Kind: model.KindConfiguration, Op: "download", Err: model.ErrMissingURL}
	}
	u, err := util.ParseURL(raw)
	if err != nil {
		return "", &model.Error{Kind: model.KindConfiguration, Op: "parse url", Err: err}
	}
	return u.String(), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// lazyFFmpeg locates ffmpeg on first use so instances that only query never
// need it installed.
type lazyFFmpeg struct {
	path    string
	verbose bool

	once sync.Once
	ff   *encoder.FFmpeg
	err  error
}

func (l *lazyFFmpeg) Mux(ctx context.Context, job encoder.Job) error {
	l.once.Do(func() {
		path, err := deps.FindFFmpeg(l.path)
		if err != nil {
			l.err = &model.Error{Kind: model.KindConfiguration, Op: "find ffmpeg", Err: err}
			return
		}
		l.ff = encoder.New(path, l.verbose)
	})
	if l.err != nil {
		return l.err
	}
	return l.ff.Mux(ctx, job)
}
