package pully

import (
	"net/http"
	"time"

	"pully/internal/progress"
)

type options struct {
	dir        string
	template   string
	preset     string
	mode       Mode
	verify     VerifyFunc
	progress   func(ProgressData)
	presets    []Preset
	provider   Provider
	fetcher    Fetcher
	muxer      Muxer
	ffmpeg     string
	tempDir    string
	verbose    bool
	reporter   progress.Reporter
	httpClient *http.Client
	window     time.Duration
}

// Option configures a Pully instance.
type Option func(*options)

// WithDir sets the default output directory. Without one, outputs are
// written to a unique path in the temp directory.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithTemplate sets the default filename template, e.g. "${author}/${title}".
func WithTemplate(tmpl string) Option {
	return func(o *options) { o.template = tmpl }
}

// WithPreset sets the default preset name.
func WithPreset(name string) Option {
	return func(o *options) { o.preset = name }
}

// WithMode sets the default retrieval mode.
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithVerify installs a default verify hook.
func WithVerify(fn VerifyFunc) Option {
	return func(o *options) { o.verify = fn }
}

// WithProgress installs a default progress callback.
func WithProgress(fn func(ProgressData)) Option {
	return func(o *options) { o.progress = fn }
}

// WithPresets registers custom presets at construction.
func WithPresets(ps ...Preset) Option {
	return func(o *options) { o.presets = append(o.presets, ps...) }
}

// WithProvider replaces the catalog provider. A provider that can also open
// streams is used as the fetcher unless WithFetcher is given.
func WithProvider(p Provider) Option {
	return func(o *options) { o.provider = p }
}

func WithFetcher(f Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

func WithMuxer(m Muxer) Option {
	return func(o *options) { o.muxer = m }
}

// WithFFmpeg sets the ffmpeg binary used by the default muxer.
func WithFFmpeg(path string) Option {
	return func(o *options) { o.ffmpeg = path }
}

func WithTempDir(dir string) Option {
	return func(o *options) { o.tempDir = dir }
}

// WithVerbose echoes subprocess command lines and output to stderr.
func WithVerbose(v bool) Option {
	return func(o *options) { o.verbose = v }
}

// WithReporter forwards stage updates, logs and results to rp.
func WithReporter(rp progress.Reporter) Option {
	return func(o *options) { o.reporter = rp }
}

// WithHTTPClient sets the client of the default YouTube provider.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithThrottleWindow sets the minimum spacing of progress events.
func WithThrottleWindow(d time.Duration) Option {
	return func(o *options) { o.window = d }
}
