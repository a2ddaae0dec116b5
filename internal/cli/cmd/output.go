package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"pully"
	"pully/internal/progress"
	"pully/internal/util/format"
)

var (
	stageColor   = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	faintColor   = color.New(color.Faint)
)

// printer is the plain-text progress reporter used without the TUI.
type printer struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	silent  bool
	verbose bool
}

func newPrinter(out, errOut io.Writer, silent, verbose bool) *printer {
	return &printer{out: out, errOut: errOut, silent: silent, verbose: verbose}
}

func (p *printer) Update(u progress.Update) {
	if p.silent {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	switch u.Stage {
	case progress.StageDownloading, progress.StageMerging:
		if u.Message != "" {
			p.header(u.Stage, u.Message)
			return
		}
		fmt.Fprintln(p.out, progressLine(u.Data))
	case progress.StageCompleted, progress.StageCancelled, progress.StageError:
		// Reported once by the command after Download returns.
	default:
		p.header(u.Stage, u.Message)
	}
}

func (p *printer) header(stage progress.Stage, msg string) {
	if msg == "" {
		return
	}
	stageColor.Fprintf(p.out, "[%s] ", stage)
	fmt.Fprintln(p.out, msg)
}

func (p *printer) Log(l progress.Log) {
	if l.Stream == progress.StreamStdout && !p.verbose {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	warnColor.Fprintln(p.errOut, "warning: "+l.Line)
}

func (p *printer) Result(progress.Result) {}

func (p *printer) saved(res pully.Results) {
	if p.silent {
		return
	}
	var size string
	if res.Format != nil && res.Format.DownloadSize > 0 {
		size = " (" + format.HumanizeBytes(res.Format.DownloadSize) + ")"
	}
	successColor.Fprint(p.out, "Saved: ")
	fmt.Fprintf(p.out, "%s%s in %s\n", res.Path, size, format.Clock(res.Duration))
}

func (p *printer) cancelled(reason string) {
	if p.silent {
		return
	}
	warnColor.Fprintln(p.out, "Cancelled: "+reason)
}

// progressLine renders one plain progress tick.
func progressLine(d progress.Data) string {
	if d.Indeterminate {
		return faintColor.Sprintf("  merging… %s elapsed", d.Elapsed)
	}
	line := "  " + format.HumanizeBytes(d.Downloaded)
	if d.Total > 0 {
		line = fmt.Sprintf("  %6.2f%%  %s / %s", d.Percent, format.HumanizeBytes(d.Downloaded), format.HumanizeBytes(d.Total))
	}
	if d.Speed != "" {
		line += "  " + d.Speed
	}
	if d.ETA != "" {
		line += "  ETA " + d.ETA
	}
	return line
}
