package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gindex-tui/internal/core/listing"
)

// MarkdownPreview renders the placeholder preview of a markdown file. It is
// a pure function of its inputs; the file content is never fetched.
func MarkdownPreview(e listing.FileEntry, width int) string {
	w := max(20, width-4)
	body := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Markdown Preview"),
		"",
		focusStyle.Render(e.Name),
		subtleStyle.Render(e.Path),
	)
	return previewBoxStyle.Width(w).Render(body)
}

// FilePreview renders the metadata of a non-markdown file.
func FilePreview(e listing.FileEntry, width int) string {
	w := max(20, width-4)
	var b strings.Builder
	b.WriteString(titleStyle.Render(e.Name) + "\n\n")
	row := func(k, v string) {
		if v == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", subtleStyle.Render(fmt.Sprintf("%-10s", k)), v)
	}
	row("path", e.Path)
	row("kind", e.Kind.String())
	row("type", e.MimeType)
	if !e.IsFolder() {
		row("size", formatSize(e.Size))
	}
	if !e.ModifiedTime.IsZero() {
		row("modified", e.ModifiedTime.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	row("id", e.ID)
	return previewBoxStyle.Align(lipgloss.Left).Width(w).Render(strings.TrimSuffix(b.String(), "\n"))
}

// renderPreview picks the preview for e.
func renderPreview(e listing.FileEntry, width int) string {
	if e.IsMarkdown() {
		return MarkdownPreview(e, width)
	}
	return FilePreview(e, width)
}
