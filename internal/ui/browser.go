package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"gindex-tui/internal/core/listing"
	"gindex-tui/internal/infra/logx"
)

const (
	emptyFolderText = "There are no files in this folder"
	backLabel       = "Back"
	loadMoreLabel   = "Load More"
	loadingLabel    = "Loading..."
	noMoreFilesText = "No more files to load"
)

// Location is the navigation context of a browser.
type Location struct {
	Path     string // current folder
	BasePath string // base the "navigate up" target resolves against
}

// BrowserDeps are the collaborators a DirectoryBrowser reads from.
type BrowserDeps struct {
	Lister   listing.Lister
	Layout   *LayoutContext
	Notifier Notifier
	Location Location
	PageSize int
	Timeout  time.Duration
}

type searchState struct {
	active bool
	input  textinput.Model
	query  string
}

// DirectoryBrowser shows one folder listing and pages through it on request.
// A fresh browser is mounted for every location.
type DirectoryBrowser struct {
	id    string
	state *listing.BrowserState
	deps  BrowserDeps
	keys  keyMap

	cursor  int
	visible []int // indices into the accumulated entries
	search  searchState

	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int

	renderList ItemRenderer
	renderGrid ItemRenderer
}

// NewDirectoryBrowser mounts a browser on the first page supplied by the
// parent.
func NewDirectoryBrowser(files []listing.FileEntry, nextPageToken string, root bool, deps BrowserDeps) DirectoryBrowser {
	if deps.Notifier == nil {
		deps.Notifier = msgNotifier{}
	}
	if deps.Layout == nil {
		deps.Layout = NewLayoutContext("")
	}
	deps.Location.Path = listing.CleanLocation(deps.Location.Path)

	si := textinput.New()
	si.Placeholder = "Filter files…"
	si.CharLimit = 200
	si.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	b := DirectoryBrowser{
		id:         uuid.NewString(),
		state:      listing.NewBrowserState(files, nextPageToken, root),
		deps:       deps,
		keys:       defaultKeyMap(),
		search:     searchState{input: si},
		spinner:    sp,
		viewport:   viewport.New(80, 20),
		width:      80,
		height:     24,
		renderList: ItemList,
		renderGrid: ItemGrid,
	}
	b.refresh()
	return b
}

// ID identifies this browser instance in async messages.
func (b DirectoryBrowser) ID() string { return b.id }

// State exposes the pagination state.
func (b DirectoryBrowser) State() *listing.BrowserState { return b.state }

// Location returns the folder this browser shows.
func (b DirectoryBrowser) Location() Location { return b.deps.Location }

// Filtering reports whether the filter input has focus.
func (b DirectoryBrowser) Filtering() bool { return b.search.active }

// SetSize resizes the browser area.
func (b *DirectoryBrowser) SetSize(width, height int) {
	b.width, b.height = width, height
	b.refresh()
}

// chromeHeight counts the lines rendered around the item viewport.
func (b DirectoryBrowser) chromeHeight() int {
	h := 2 // header + blank
	if !b.state.Root() {
		h++
	}
	if b.search.active || b.search.query != "" {
		h++
	}
	if b.state.HasMore() {
		h += 2
	}
	return h
}

// Refresh re-renders after a change of shared context such as the layout.
func (b *DirectoryBrowser) Refresh() { b.refresh() }

func (b *DirectoryBrowser) refresh() {
	b.visible = filterEntries(b.search.query, b.state.Files().Entries(), DefaultFilterConfig)
	if b.cursor >= len(b.visible) {
		b.cursor = max(0, len(b.visible)-1)
	}
	b.viewport.Width = max(10, b.width)
	b.viewport.Height = max(3, b.height-b.chromeHeight())
	content, cursorLine := b.renderItems()
	b.viewport.SetContent(content)
	ensureCursorInViewport(&b.viewport, cursorLine)
}

// selected returns the entry under the cursor.
func (b DirectoryBrowser) selected() (listing.FileEntry, bool) {
	if b.cursor < 0 || b.cursor >= len(b.visible) {
		return listing.FileEntry{}, false
	}
	return b.state.Files().At(b.visible[b.cursor]), true
}

// ---------- load more ----------

// LoadMore issues at most one fetch for the next page. Without a token it
// notifies once and leaves the state alone; while a fetch is in flight the
// request is ignored.
func (b DirectoryBrowser) LoadMore() (DirectoryBrowser, tea.Cmd) {
	token, err := b.state.BeginLoadMore()
	if err != nil {
		if errors.Is(err, listing.ErrLoadInProgress) {
			logx.Debugf("load more ignored for %s: fetch in flight", b.deps.Location.Path)
			return b, nil
		}
		logx.Warnf("load more %s: %v", b.deps.Location.Path, err)
		return b, b.deps.Notifier.Notify(NoticeError, noticeText(err))
	}
	b.refresh()
	return b, tea.Batch(b.spinner.Tick, b.fetchMoreCmd(token))
}

// noticeText maps listing sentinels to the text shown to the user.
func noticeText(err error) string {
	if errors.Is(err, listing.ErrNoMoreFiles) {
		return noMoreFilesText
	}
	return err.Error()
}

func (b DirectoryBrowser) fetchMoreCmd(token string) tea.Cmd {
	id := b.id
	lister := b.deps.Lister
	timeout := b.deps.Timeout
	req := listing.ListRequest{Path: b.deps.Location.Path, PageToken: token, PageSize: b.deps.PageSize}
	return func() tea.Msg {
		page, rc, err := fetchPage(lister, timeout, req)
		return loadMoreMsg{browserID: id, page: page, err: err, retries: rc.Total}
	}
}

func (b DirectoryBrowser) handleLoadMoreMsg(msg loadMoreMsg) (DirectoryBrowser, tea.Cmd) {
	if msg.err != nil {
		b.state.FailLoadMore()
		logx.Errorf("load more %s: %v", b.deps.Location.Path, msg.err)
		b.refresh()
		return b, b.deps.Notifier.Notify(NoticeError, msg.err.Error())
	}
	added := b.state.CompleteLoadMore(msg.page)
	logx.Fields(logx.LevelDebug, "page merged", map[string]any{
		"path":    b.deps.Location.Path,
		"added":   added,
		"total":   b.state.Len(),
		"more":    b.state.HasMore(),
		"retries": msg.retries,
	})
	b.refresh()
	return b, nil
}

// ---------- update ----------

// Update handles messages addressed to this browser.
func (b DirectoryBrowser) Update(msg tea.Msg) (DirectoryBrowser, tea.Cmd) {
	switch msg := msg.(type) {
	case loadMoreMsg:
		if msg.browserID != b.id {
			logx.Warnf("dropping load-more result for unmounted browser %s", msg.browserID)
			return b, nil
		}
		return b.handleLoadMoreMsg(msg)
	case spinner.TickMsg:
		if !b.state.InFlight() {
			return b, nil
		}
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd
	case tea.KeyMsg:
		if b.search.active {
			return b.handleSearchInput(msg)
		}
		return b.handleKey(msg)
	}
	return b, nil
}

func (b DirectoryBrowser) handleKey(msg tea.KeyMsg) (DirectoryBrowser, tea.Cmd) {
	cols := 1
	if b.deps.Layout.Layout() == LayoutGrid {
		cols = gridColumns(b.width)
	}
	switch {
	case key.Matches(msg, b.keys.Up):
		b.moveCursor(-cols)
	case key.Matches(msg, b.keys.Down):
		b.moveCursor(cols)
	case key.Matches(msg, b.keys.Left):
		if cols > 1 {
			b.moveCursor(-1)
		}
	case key.Matches(msg, b.keys.Right):
		if cols > 1 {
			b.moveCursor(1)
		}
	case key.Matches(msg, b.keys.Open):
		e, ok := b.selected()
		if !ok {
			return b, nil
		}
		if e.IsFolder() {
			return b, navigateCmd(listing.ChildPath(b.deps.Location.Path, e.Name))
		}
		return b, openEntryCmd(e)
	case key.Matches(msg, b.keys.Back):
		return b, b.navigateUp()
	case key.Matches(msg, b.keys.LoadMore):
		return b.LoadMore()
	case key.Matches(msg, b.keys.Filter):
		b.search.active = true
		b.search.input.SetValue(b.search.query)
		b.search.input.Focus()
		b.refresh()
		return b, textinput.Blink
	}
	return b, nil
}

func (b *DirectoryBrowser) moveCursor(delta int) {
	if len(b.visible) == 0 {
		return
	}
	next := b.cursor + delta
	if next < 0 || next >= len(b.visible) {
		return
	}
	b.cursor = next
	b.refresh()
}

// BackTarget is the "navigate up" destination of the current location.
func (b DirectoryBrowser) BackTarget() (string, error) {
	return listing.ParentPath(b.deps.Location.Path, b.deps.Location.BasePath)
}

func (b DirectoryBrowser) navigateUp() tea.Cmd {
	if b.state.Root() {
		return nil
	}
	target, err := b.BackTarget()
	if err != nil {
		logx.Errorf("navigate up from %s: %v", b.deps.Location.Path, err)
		return b.deps.Notifier.Notify(NoticeError, err.Error())
	}
	return navigateCmd(target)
}

// handleSearchInput handles filter input mode
func (b DirectoryBrowser) handleSearchInput(msg tea.KeyMsg) (DirectoryBrowser, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// empty input closes the filter, otherwise it is only cleared
		if strings.TrimSpace(b.search.input.Value()) == "" {
			b.search.active = false
			b.search.input.Blur()
		} else {
			b.search.input.SetValue("")
		}
		b.search.query = ""
		b.cursor = 0
		b.refresh()
		return b, nil
	case "enter":
		b.search.query = strings.TrimSpace(b.search.input.Value())
		b.search.active = false
		b.search.input.Blur()
		b.cursor = 0
		b.refresh()
		return b, nil
	}
	var cmd tea.Cmd
	b.search.input, cmd = b.search.input.Update(msg)
	b.search.query = b.search.input.Value()
	b.cursor = 0
	b.refresh()
	return b, cmd
}

// ---------- view ----------

func (b DirectoryBrowser) renderItems() (string, int) {
	if b.state.Len() == 0 {
		return warnStyle.Render(emptyFolderText), 0
	}
	if len(b.visible) == 0 {
		return subtleStyle.Render("No files match the filter."), 0
	}
	entries := b.state.Files()
	width := max(10, b.width-1)

	if b.deps.Layout.Layout() == LayoutGrid {
		cols := gridColumns(b.width)
		cellWidth := width / cols
		var rows []string
		for start := 0; start < len(b.visible); start += cols {
			end := min(start+cols, len(b.visible))
			cells := make([]string, 0, cols)
			for i := start; i < end; i++ {
				cells = append(cells, b.renderGrid(entries.At(b.visible[i]), i == b.cursor, cellWidth))
			}
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		}
		return strings.Join(rows, "\n"), (b.cursor / cols) * cardHeight
	}

	separator := dividerStyle.Render(strings.Repeat("─", width))
	lines := make([]string, 0, 2*len(b.visible))
	for i, idx := range b.visible {
		if i > 0 {
			lines = append(lines, separator)
		}
		lines = append(lines, b.renderList(entries.At(idx), i == b.cursor, width))
	}
	return strings.Join(lines, "\n"), b.cursor * 2
}

// View renders the browser.
func (b DirectoryBrowser) View() string {
	var s strings.Builder

	count := fmt.Sprintf("%d items", b.state.Len())
	if b.search.query != "" {
		count = fmt.Sprintf("%d of %d items", len(b.visible), b.state.Len())
	}
	s.WriteString(subtitleStyle.Render(b.deps.Location.Path) + "  " + subtleStyle.Render(count) + "\n")

	if !b.state.Root() {
		target, err := b.BackTarget()
		if err != nil {
			target = "?"
		}
		s.WriteString(buttonStyle.Render("← "+backLabel) + " " + subtleStyle.Render(target) + "\n")
	}
	if b.search.active {
		s.WriteString("Filter: " + b.search.input.View() + "\n")
	} else if b.search.query != "" {
		s.WriteString("Filter: " + b.search.query + "\n")
	}
	s.WriteString("\n")
	s.WriteString(b.viewport.View())

	if b.state.HasMore() {
		s.WriteString("\n\n")
		if b.state.InFlight() {
			s.WriteString(buttonDisabledStyle.Render(b.spinner.View() + " " + loadingLabel))
		} else {
			s.WriteString(buttonStyle.Render(loadMoreLabel))
		}
	}
	return s.String()
}
