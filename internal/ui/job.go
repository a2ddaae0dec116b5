package ui

import (
	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"pully/internal/progress"
)

const maxLogLines = 6

type jobState struct {
	id     string
	url    string
	stage  progress.Stage
	status string
	data   progress.Data
	err    error
	done   bool

	outputPath string
	bytes      int64
	cancelled  bool
	reason     string

	spinner spinner.Model
	bar     bubblesprogress.Model

	logsRing []string
}

func newJobState(id, url string, styles Styles) *jobState {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(40),
	)
	return &jobState{
		id:      id,
		url:     url,
		stage:   progress.StageMetadata,
		status:  "Fetching catalog",
		spinner: sp,
		bar:     bar,
	}
}

func (js *jobState) log(line string) {
	if len(js.logsRing) >= maxLogLines {
		js.logsRing = js.logsRing[1:]
	}
	js.logsRing = append(js.logsRing, line)
}

// determinate reports whether a byte ratio is available to draw.
func (js *jobState) determinate() bool {
	return js.stage == progress.StageDownloading && !js.data.Indeterminate && js.data.Total > 0
}
