package ui

import "github.com/charmbracelet/bubbles/viewport"

// ensureCursorInViewport adjusts the viewport Y offset so that the given
// absolute cursorLine is within the visible window with a scroll margin.
func ensureCursorInViewport(vp *viewport.Model, cursorLine int) {
	topLine := vp.YOffset
	bottomLine := topLine + vp.Height - 1

	scrollMargin := 3
	if vp.Height < 8 {
		scrollMargin = 1
	}

	if cursorLine < topLine+scrollMargin {
		vp.SetYOffset(max(0, cursorLine-scrollMargin))
		return
	}
	if cursorLine > bottomLine-scrollMargin {
		vp.SetYOffset(max(0, cursorLine-vp.Height+scrollMargin+1))
	}
}
