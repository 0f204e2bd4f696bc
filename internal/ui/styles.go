package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gindex-tui/internal/core/listing"
)

// --- UI Styles ---
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#8942E1"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3AC4BA")).Italic(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	warnStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	dividerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	focusStyle    = lipgloss.NewStyle().Bold(true)

	loaderBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8942E1")).
			Padding(1, 2).
			Margin(1, 0)
	previewBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3AC4BA")).
			Padding(1, 2).
			Align(lipgloss.Center)

	cursorLineStyle = lipgloss.NewStyle().Background(lipgloss.Color("#2A2B3D"))
	cursorBarStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#FFAB78"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	cardSelectedStyle = cardStyle.BorderForeground(lipgloss.Color("#FFAB78"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#8942E1")).
			Padding(0, 2)
	buttonDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("237")).
				Padding(0, 2)

	// markers for entry kinds
	symbolFolder   = fgSymbol("#3AC4BA", "▸")
	symbolFile     = fgSymbol("252", "•")
	symbolMarkdown = fgSymbol("#8942E1", "M")
)

var noticeStyles = map[NoticeLevel]lipgloss.Style{
	NoticeInfo:  okStyle,
	NoticeWarn:  warnStyle,
	NoticeError: errorStyle,
}

// fgSymbol colors ch and resets only the foreground, so a surrounding line
// style keeps its background. Uncolored output is returned as is.
func fgSymbol(col, ch string) string {
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(col)).Render(ch)
	if s == ch {
		return ch
	}
	const reset = "\x1b[0m"
	return strings.TrimSuffix(s, reset) + "\x1b[39m"
}

// entrySymbol picks the marker for an entry.
func entrySymbol(e listing.FileEntry) string {
	switch {
	case e.IsFolder():
		return symbolFolder
	case e.IsMarkdown():
		return symbolMarkdown
	default:
		return symbolFile
	}
}

// formatSize formats a byte count in binary units.
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// truncate shortens s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// renderFooter creates a consistent footer across all views
// statusLine: optional status information (shown in subtleStyle)
// helpLines: help text lines (shown in helpStyle)
func renderFooter(statusLine string, helpLines ...string) string {
	var b strings.Builder

	if statusLine != "" {
		b.WriteString(subtleStyle.Render(statusLine) + "\n")
	}

	for _, line := range helpLines {
		b.WriteString(helpStyle.Render(line) + "\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}
