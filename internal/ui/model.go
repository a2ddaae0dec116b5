package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"pully/internal/model"
	"pully/internal/progress"
	"pully/internal/util/bitrate"
)

// Job runs the download the view is attached to.
type Job func(ctx context.Context) (model.Results, error)

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	run        Job
	job        *jobState
	events     <-chan tea.Msg
	cancelling bool

	results model.Results
	err     error

	width  int
	styles Styles
}

func NewModel(ctx context.Context, rep *Reporter, url string, run Job) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()
	return Model{
		ctx:    c,
		cancel: cancel,
		run:    run,
		job:    newJobState("job-0", url, sty),
		events: rep.ch,
		styles: sty,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.job.spinner.Tick, m.listenEventsCmd(), m.runJobCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	js := m.job
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancelling {
				return m, tea.Quit
			}
			// Wait for the job to unwind so temp files are removed.
			m.cancelling = true
			js.status = "Cancelling…"
			m.cancel()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		js.bar.Width = int(bitrate.Clamp(float64(msg.Width-16), 20, 60))
		return m, nil

	case jobUpdateMsg:
		u := msg.U
		js.stage = u.Stage
		if u.Message != "" {
			js.status = u.Message
		}
		if u.Stage == progress.StageDownloading || u.Stage == progress.StageMerging {
			js.data = u.Data
		}
		return m, m.listenEventsCmd()

	case jobLogMsg:
		js.log(strings.TrimRight(msg.L.Line, "\r\n"))
		return m, m.listenEventsCmd()

	case jobResultMsg:
		r := msg.R
		js.outputPath = r.OutputPath
		js.bytes = r.Bytes
		js.cancelled = r.Cancelled
		js.reason = r.Reason
		js.err = r.Err
		return m, m.listenEventsCmd()

	case jobDoneMsg:
		js.done = true
		m.results, m.err = msg.Results, msg.Err
		switch {
		case msg.Err != nil:
			js.err = msg.Err
			js.stage = progress.StageError
		case msg.Results.Cancelled:
			js.cancelled, js.reason = true, msg.Results.Reason
			js.stage = progress.StageCancelled
		default:
			js.outputPath = msg.Results.Path
			js.stage = progress.StageCompleted
		}
		m.cancel()
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		js.spinner, cmd = js.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	return m.viewHeader() + "\n\n" + m.viewJob(m.job) + "\n"
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m Model) runJobCmd() tea.Cmd {
	return func() tea.Msg {
		res, err := m.run(m.ctx)
		return jobDoneMsg{Results: res, Err: err}
	}
}

// Reporter feeds pipeline events into the running program. Terminal stage
// changes and results are never dropped; progress ticks are dropped when the
// view falls behind.
type Reporter struct {
	ch   chan tea.Msg
	done chan struct{}
}

func NewReporter() *Reporter {
	return &Reporter{ch: make(chan tea.Msg, 256), done: make(chan struct{})}
}

func (r *Reporter) Update(u progress.Update) {
	switch u.Stage {
	case progress.StageCompleted, progress.StageCancelled, progress.StageError:
		r.send(jobUpdateMsg{U: u}, true)
	default:
		r.send(jobUpdateMsg{U: u}, false)
	}
}

func (r *Reporter) Log(l progress.Log) {
	r.send(jobLogMsg{L: l}, false)
}

func (r *Reporter) Result(res progress.Result) {
	r.send(jobResultMsg{R: res}, true)
}

func (r *Reporter) send(msg tea.Msg, block bool) {
	if block {
		select {
		case r.ch <- msg:
		case <-r.done:
		}
		return
	}
	select {
	case r.ch <- msg:
	default:
	}
}

// close releases senders blocked after the program has exited.
func (r *Reporter) close() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}
