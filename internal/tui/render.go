package tui

import (
	"fmt"
	"strings"

	"github.com/alkime/scribe/internal/recorder"
	"github.com/alkime/scribe/internal/tui/style"
	"github.com/alkime/scribe/internal/ui"
	"github.com/charmbracelet/bubbles/key"
)

// View renders the current UI.
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render("scribe"))
	if m.target != "" {
		sb.WriteString(" ")
		sb.WriteString(style.Subtitle.Render(m.target))
	}
	sb.WriteString("\n\n")

	sb.WriteString(m.renderTabs())
	sb.WriteString("\n\n")

	if m.tab == ui.TabUpload {
		sb.WriteString(m.renderUploadPanel())
	} else {
		sb.WriteString(m.renderRecordPanel())
	}
	sb.WriteString("\n\n")

	if m.preview != nil {
		sb.WriteString(m.renderPreview())
		sb.WriteString("\n\n")
	}

	switch {
	case m.loading:
		sb.WriteString(m.loader.View())
		sb.WriteString("\n\n")
	case m.results != nil:
		sb.WriteString(m.renderResults(*m.results))
		sb.WriteString("\n\n")
	}

	if m.toast != "" {
		sb.WriteString(style.Toast.Render(m.toast))
		sb.WriteString("\n\n")
	}

	sb.WriteString(m.renderHelp())

	return sb.String()
}

func (m *Model) renderTabs() string {
	render := func(tab ui.Tab, label string) string {
		if m.tab == tab {
			return style.ActiveTab.Render(label)
		}

		return style.InactiveTab.Render(label)
	}

	return render(ui.TabRecord, "Record") + "   " + render(ui.TabUpload, "Upload")
}

func (m *Model) renderRecordPanel() string {
	var sb strings.Builder

	switch {
	case m.recording:
		sb.WriteString(style.Warning.Render("● Recording"))
		sb.WriteString(" ")
		sb.WriteString(style.Subtitle.Render(m.timer))
		sb.WriteString("\n")
		sb.WriteString(m.meter.View())
	case m.recordBusy:
		sb.WriteString(style.Muted.Render("Waiting for microphone..."))
	default:
		sb.WriteString(style.Muted.Render("Ready to record"))
	}

	return sb.String()
}

func (m *Model) renderUploadPanel() string {
	return style.Label.Render("Audio file:") + " " + m.input.View() + "\n" +
		style.Muted.Render("Accepted: .wav, .mp3, .ogg up to 10MB and 2 minutes")
}

func (m *Model) renderPreview() string {
	p := m.preview

	var sb strings.Builder

	sb.WriteString(style.Label.Render("Preview:"))
	sb.WriteString(" ")
	sb.WriteString(p.Name)
	sb.WriteString("  ")
	sb.WriteString(style.Subtitle.Render(formatBytes(p.Size)))

	if p.Duration > 0 {
		sb.WriteString("  ")
		sb.WriteString(style.Subtitle.Render(recorder.FormatElapsed(p.Duration)))
	}

	if p.Path != "" {
		sb.WriteString("\n")
		sb.WriteString(style.Muted.Render(p.Path))
	}

	sb.WriteString("\n")

	if m.submitEnabled {
		sb.WriteString(renderKeyHelp(m.keys.Submit))
	} else {
		sb.WriteString(style.Muted.Render("Processing..."))
	}

	return sb.String()
}

func (m *Model) renderResults(r ui.Results) string {
	card := style.Card
	if m.width > 4 {
		card = card.Width(m.width - 4)
	}

	transcription := r.Transcription
	if r.Failed() {
		transcription = style.Error.Render(r.Err)
	}

	cards := []string{
		card.Render(style.Title.Render("Transcription") + "\n" + transcription),
		card.Render(style.Title.Render("Detected Language") + "\n" + m.renderLanguage(r)),
		card.Render(style.Title.Render("English Translation") + "\n" + r.Translation),
	}

	return strings.Join(cards, "\n")
}

func (m *Model) renderLanguage(r ui.Results) string {
	if r.Failed() {
		return style.Muted.Render(r.Language)
	}

	var sb strings.Builder

	sb.WriteString(style.Success.Render(r.Language))
	sb.WriteString("\n")
	sb.WriteString(r.Confidence)

	width := 0
	for _, p := range r.Probabilities {
		width = max(width, len(p.Language))
	}

	for _, p := range r.Probabilities {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%-*s ", width, p.Language))
		sb.WriteString(m.bar.ViewAs(p.Value))
		sb.WriteString(" ")
		sb.WriteString(p.Percent)
	}

	return sb.String()
}

func (m *Model) renderHelp() string {
	var sb strings.Builder

	sb.WriteString(renderKeyHelp(m.keys.NextTab, " "))

	if m.tab == ui.TabRecord {
		sb.WriteString(renderKeyHelp(m.keys.Record, " "))
	} else if m.input.Focused() {
		sb.WriteString(renderKeyHelp(m.keys.Load, " "))
		sb.WriteString(renderKeyHelp(m.keys.Blur, " "))
	} else {
		sb.WriteString(renderKeyHelp(m.keys.Browse, " "))
	}

	sb.WriteString(renderKeyHelp(m.keys.Quit, " "))
	sb.WriteString(renderKeyHelp(m.keys.ForceQuit))

	return sb.String()
}

func renderKeyHelp(keyBinding key.Binding, suffix ...string) string {
	s := style.Help.Render("[") + style.Key.Render(keyBinding.Help().Key) +
		style.Help.Render("] ") +
		style.Help.Render(keyBinding.Help().Desc)

	return s + strings.Join(suffix, "")
}

// formatBytes formats a size as a human-readable string.
func formatBytes(n int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)

	switch {
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
