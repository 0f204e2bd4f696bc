package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestFgSymbolWithoutColorIsPlain(t *testing.T) {
	prev := lipgloss.ColorProfile()
	defer lipgloss.SetColorProfile(prev)

	lipgloss.SetColorProfile(termenv.Ascii)
	if got := fgSymbol("252", "•"); got != "•" {
		t.Fatalf("expected bare symbol, got %q", got)
	}
}

func TestFgSymbolResetsOnlyForeground(t *testing.T) {
	prev := lipgloss.ColorProfile()
	defer lipgloss.SetColorProfile(prev)

	lipgloss.SetColorProfile(termenv.TrueColor)
	got := fgSymbol("#8942E1", "M")
	if !strings.Contains(got, "M") || !strings.HasSuffix(got, "\x1b[39m") {
		t.Fatalf("expected foreground reset suffix, got %q", got)
	}
	if strings.Contains(got, "\x1b[0m") {
		t.Fatalf("full reset would clear the line style: %q", got)
	}
}
