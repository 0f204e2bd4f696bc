package ui

import "gindex-tui/internal/config"

// Layout selects how a browser renders its entries.
type Layout string

const (
	LayoutList Layout = config.LayoutList
	LayoutGrid Layout = config.LayoutGrid
)

// LayoutContext is the layout preference shared by every mounted browser.
// The app owns and writes it; browsers only read it.
type LayoutContext struct {
	layout Layout
}

// NewLayoutContext starts with l, falling back to the list layout.
func NewLayoutContext(l string) *LayoutContext {
	if Layout(l) == LayoutGrid {
		return &LayoutContext{layout: LayoutGrid}
	}
	return &LayoutContext{layout: LayoutList}
}

// Layout returns the current preference.
func (c *LayoutContext) Layout() Layout {
	if c == nil {
		return LayoutList
	}
	return c.layout
}

// Set replaces the preference.
func (c *LayoutContext) Set(l Layout) { c.layout = l }

// Toggle switches between grid and list and returns the new value.
func (c *LayoutContext) Toggle() Layout {
	if c.layout == LayoutGrid {
		c.layout = LayoutList
	} else {
		c.layout = LayoutGrid
	}
	return c.layout
}

// gridColumns maps a terminal width to the responsive column count.
func gridColumns(width int) int {
	switch {
	case width < 60:
		return 1
	case width < 90:
		return 2
	case width < 120:
		return 3
	default:
		return 4
	}
}
