package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"pully/internal/model"
)

// Run shows the progress view while job runs and returns its outcome. rep
// must be the reporter job's pipeline reports to.
func Run(ctx context.Context, rep *Reporter, url string, job Job) (model.Results, error) {
	defer rep.close()
	m := NewModel(ctx, rep, url, job)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		m.cancel()
		return model.Results{}, err
	}
	fm, ok := final.(Model)
	if !ok {
		return model.Results{}, nil
	}
	if !fm.job.done {
		return model.Results{}, context.Canceled
	}
	return fm.results, fm.err
}
