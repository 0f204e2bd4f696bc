// Package ui is the bubbletea front end: an app model that fetches the first
// page of a location and mounts a DirectoryBrowser on it.
package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"

	"gindex-tui/internal/config"
	"gindex-tui/internal/core/listing"
	"gindex-tui/internal/infra/httpx"
)

const loadingText = "Wait a moment while we load your files..."

// --- Model / State ---
type state int

const (
	stateLoading state = iota
	stateBrowse
	statePreview
	stateError
	stateQuit
)

// Model is the root tea.Model.
type Model struct {
	state state
	cfg   config.Config

	lister   listing.Lister
	metrics  *httpx.Metrics
	layout   *LayoutContext
	notifier Notifier

	// navigation
	location string
	navSeq   int
	loadErr  error

	browser DirectoryBrowser
	mounted bool

	preview      listing.FileEntry
	previewPort  viewport.Model
	notices      noticeBoard
	spinner      spinner.Model
	help         help.Model
	keys         keyMap
	width        int
	height       int
	providerName string

	now func() time.Time
}

// Options wires the app to its provider.
type Options struct {
	Config       config.Config
	Lister       listing.Lister
	Metrics      *httpx.Metrics
	ProviderName string
	// StartPath overrides the configured root as the first location.
	StartPath string
}

// NewModel builds the app; Init fetches the first page.
func NewModel(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	start := opts.Config.RootPath
	if opts.StartPath != "" {
		start = opts.StartPath
	}

	return Model{
		state:        stateLoading,
		cfg:          opts.Config,
		lister:       opts.Lister,
		metrics:      opts.Metrics,
		layout:       NewLayoutContext(opts.Config.Layout),
		notifier:     msgNotifier{},
		location:     listing.CleanLocation(start),
		navSeq:       1,
		previewPort:  viewport.New(80, 20),
		notices:      newNoticeBoard(opts.Config.NotifyTTL),
		spinner:      sp,
		help:         help.New(),
		keys:         defaultKeyMap(),
		width:        80,
		height:       24,
		providerName: opts.ProviderName,
		now:          time.Now,
	}
}

// Layout exposes the shared layout preference.
func (m Model) Layout() *LayoutContext { return m.layout }

// isRoot reports whether path is the configured root folder.
func (m Model) isRoot(path string) bool {
	return listing.IsRootLocation(path, m.cfg.RootPath)
}

func (m Model) browserDeps(path string) BrowserDeps {
	return BrowserDeps{
		Lister:   m.lister,
		Layout:   m.layout,
		Notifier: m.notifier,
		Location: Location{Path: path, BasePath: m.cfg.BasePath},
		PageSize: m.cfg.PageSize,
		Timeout:  m.cfg.RequestTimeout,
	}
}
