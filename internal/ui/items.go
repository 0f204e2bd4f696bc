package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gindex-tui/internal/core/listing"
)

// ItemRenderer draws one entry into a cell of the given width.
type ItemRenderer func(e listing.FileEntry, selected bool, width int) string

// cardHeight is the rendered height of a grid card including its border.
const cardHeight = 4

func entryMeta(e listing.FileEntry) string {
	var parts []string
	if e.IsFolder() {
		parts = append(parts, "folder")
	} else {
		parts = append(parts, formatSize(e.Size))
	}
	if !e.ModifiedTime.IsZero() {
		parts = append(parts, e.ModifiedTime.Local().Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, "  ")
}

// ItemList renders a single list row.
func ItemList(e listing.FileEntry, selected bool, width int) string {
	cursorCell := " "
	if selected {
		cursorCell = cursorBarStyle.Render(" ")
	}
	meta := entryMeta(e)
	avail := max(4, width-lipgloss.Width(meta)-6)
	label := fmt.Sprintf("%s %s", entrySymbol(e), truncate(e.Name, avail))
	gap := max(1, width-2-lipgloss.Width(label)-lipgloss.Width(meta))
	content := label + strings.Repeat(" ", gap) + subtleStyle.Render(meta)
	if selected {
		content = cursorLineStyle.Render(content)
	}
	return cursorCell + " " + content
}

// ItemGrid renders a single grid card.
func ItemGrid(e listing.FileEntry, selected bool, width int) string {
	inner := max(6, width-4)
	title := entrySymbol(e) + " " + truncate(e.Name, inner-2)
	sub := subtleStyle.Render(truncate(entryMeta(e), inner))
	style := cardStyle
	if selected {
		style = cardSelectedStyle
	}
	return style.Width(max(8, width-2)).Render(title + "\n" + sub)
}
