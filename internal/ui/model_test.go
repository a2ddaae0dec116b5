package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pully/internal/model"
	"pully/internal/progress"
)

func newTestModel() (Model, *Reporter) {
	rep := NewReporter()
	m := NewModel(context.Background(), rep, "https://youtu.be/x", func(context.Context) (model.Results, error) {
		return model.Results{}, nil
	})
	return m, rep
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

func TestModel_ProgressFlow(t *testing.T) {
	m, _ := newTestModel()
	m = step(t, m, jobUpdateMsg{U: progress.Update{
		Stage: progress.StageDownloading,
		Data:  progress.Snapshot(512, 1024, 256, 0, 0, false),
	}})
	if !m.job.determinate() {
		t.Fatalf("downloading with a total should be determinate")
	}
	if got := m.View(); !strings.Contains(got, "50.00%") || !strings.Contains(got, "512 B / 1.0 KiB") {
		t.Errorf("View() = %q", got)
	}

	m = step(t, m, jobUpdateMsg{U: progress.Update{Stage: progress.StageMerging, Data: progress.Indeterminate(0)}})
	if m.job.determinate() {
		t.Errorf("merging should be indeterminate")
	}
	if got := m.View(); !strings.Contains(got, "elapsed 0:00") {
		t.Errorf("View() while merging = %q", got)
	}

	m = step(t, m, jobDoneMsg{Results: model.Results{Path: "/out/Clip.mp4"}})
	if m.job.stage != progress.StageCompleted || !m.job.done {
		t.Errorf("stage = %s, done = %v", m.job.stage, m.job.done)
	}
	if got := m.View(); !strings.Contains(got, "Saved: Clip.mp4") {
		t.Errorf("final View() = %q", got)
	}
}

func TestModel_Outcomes(t *testing.T) {
	tests := []struct {
		name  string
		msg   jobDoneMsg
		stage progress.Stage
		text  string
	}{
		{name: "cancelled", msg: jobDoneMsg{Results: model.Results{Cancelled: true, Reason: "too big"}}, stage: progress.StageCancelled, text: "Cancelled: too big"},
		{name: "failed", msg: jobDoneMsg{Err: errors.New("boom")}, stage: progress.StageError, text: "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel()
			m = step(t, m, tt.msg)
			if m.job.stage != tt.stage {
				t.Errorf("stage = %s, want %s", m.job.stage, tt.stage)
			}
			if got := m.View(); !strings.Contains(got, tt.text) {
				t.Errorf("View() = %q, want it to contain %q", got, tt.text)
			}
		})
	}
}

func TestModel_QuitCancelsFirst(t *testing.T) {
	m, _ := newTestModel()
	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !m.cancelling {
		t.Fatalf("first ctrl+c should start cancelling")
	}
	if m.ctx.Err() == nil {
		t.Errorf("job context not cancelled")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Errorf("second ctrl+c should quit")
	}
}

func TestModel_LogRing(t *testing.T) {
	m, _ := newTestModel()
	for i := 0; i < maxLogLines+3; i++ {
		m = step(t, m, jobLogMsg{L: progress.Log{Line: "line\n"}})
	}
	if len(m.job.logsRing) != maxLogLines {
		t.Errorf("len(logsRing) = %d, want %d", len(m.job.logsRing), maxLogLines)
	}
	if m.job.logsRing[0] != "line" {
		t.Errorf("log line not trimmed: %q", m.job.logsRing[0])
	}
}

func TestReporter(t *testing.T) {
	rep := NewReporter()
	rep.Update(progress.Update{Stage: progress.StageDownloading})
	rep.Result(progress.Result{OutputPath: "x"})
	if msg := <-rep.ch; msg.(jobUpdateMsg).U.Stage != progress.StageDownloading {
		t.Errorf("first message = %#v", msg)
	}
	if msg := <-rep.ch; msg.(jobResultMsg).R.OutputPath != "x" {
		t.Errorf("second message = %#v", msg)
	}

	// Blocking sends return once the program is gone.
	full := &Reporter{ch: make(chan tea.Msg), done: make(chan struct{})}
	full.close()
	full.close()
	full.Result(progress.Result{})
	full.Log(progress.Log{Line: "dropped"})
}
