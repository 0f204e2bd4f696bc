package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.state == stateQuit {
		return ""
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	var body string
	switch m.state {
	case stateLoading:
		body = m.viewLoading()
	case stateError:
		body = m.viewError()
	case statePreview:
		body = m.previewPort.View()
	case stateBrowse:
		body = m.browser.View()
	}
	parts := []string{header, body}
	if n := m.notices.view(m.width); n != "" {
		parts = append(parts, n)
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	var b strings.Builder
	title := "gindex"
	if m.providerName != "" {
		title += " · " + m.providerName
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(10, m.width-2))))
	return b.String()
}

func (m Model) viewLoading() string {
	return loaderBoxStyle.Render(m.spinner.View() + " " + loadingText)
}

func (m Model) viewError() string {
	msg := "unknown error"
	if m.loadErr != nil {
		msg = m.loadErr.Error()
	}
	return errorStyle.Render("Could not load "+m.location) + "\n" + subtleStyle.Render(msg) + "\n\n" +
		helpStyle.Render("r: retry  q: quit")
}

func (m Model) renderFooter() string {
	var status string
	if m.metrics != nil {
		status = m.metrics.Snapshot().Summary()
	}
	switch m.state {
	case statePreview:
		return renderFooter(status, "esc/⌫: back to list  ↑/↓: scroll  q: quit")
	case stateBrowse:
		return renderFooter(status, m.help.View(m.keys))
	default:
		return renderFooter(status)
	}
}
