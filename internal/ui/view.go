package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"pully/internal/progress"
	"pully/internal/util/format"
)

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("pully")
	hint := "q: cancel"
	if m.cancelling {
		hint = "q: quit now"
	}
	return title + "  " + m.styles.Subtitle.Render(hint)
}

func (m Model) viewJob(js *jobState) string {
	stageStyle := m.styles.JobInfo
	switch js.stage {
	case progress.StageMetadata, progress.StageVerify:
		stageStyle = m.styles.StageMeta
	case progress.StageDownloading:
		stageStyle = m.styles.StageDL
	case progress.StageMerging:
		stageStyle = m.styles.StageMerge
	case progress.StageCompleted:
		stageStyle = m.styles.Success
	case progress.StageCancelled:
		stageStyle = m.styles.Warning
	case progress.StageError:
		stageStyle = m.styles.Error
	}

	line1 := fmt.Sprintf("%s  %s", m.styles.JobTitle.Render(truncate(js.url, 48)), stageStyle.Render(string(js.stage)))

	var line2 string
	switch {
	case js.err != nil:
		line2 = m.styles.Error.Render("✗ " + js.err.Error())
	case js.cancelled:
		line2 = m.styles.Warning.Render("Cancelled: " + js.reason)
	case js.done:
		line2 = m.styles.Success.Render(fmt.Sprintf("✓ Saved: %s (%s)", filepath.Base(js.outputPath), format.HumanizeBytes(js.bytes)))
	case js.determinate():
		line2 = fmt.Sprintf("%s %6.2f%%", js.bar.ViewAs(js.data.Ratio), js.data.Percent)
	default:
		line2 = m.styles.Spinner.Render(js.spinner.View()) + " " + m.styles.Faint.Render(js.status)
	}

	parts := []string{line1, line2}
	if js.determinate() {
		parts = append(parts, m.styles.JobInfo.Render(transferLine(js.data)))
	} else if js.stage == progress.StageMerging && !js.done {
		parts = append(parts, m.styles.JobInfo.Render("elapsed "+js.data.Elapsed))
	}
	if js.done && js.outputPath != "" {
		parts = append(parts, m.styles.Faint.Render(js.outputPath))
	}
	for _, l := range js.logsRing {
		parts = append(parts, m.styles.Faint.Render(truncate(l, 100)))
	}
	return m.styles.Box.Render(strings.Join(parts, "\n"))
}

// transferLine renders "12 MiB / 30 MiB • 2.4 MiB/s • ETA 0:08".
func transferLine(d progress.Data) string {
	fields := []string{format.HumanizeBytes(d.Downloaded) + " / " + format.HumanizeBytes(d.Total)}
	if d.Speed != "" {
		fields = append(fields, d.Speed)
	}
	if d.ETA != "" {
		fields = append(fields, "ETA "+d.ETA)
	}
	return strings.Join(fields, " • ")
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
