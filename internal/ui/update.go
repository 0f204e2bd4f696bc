package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"gindex-tui/internal/infra/logx"
)

// Init starts the spinner and fetches the first location.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchFirstPage(m.navSeq, m.location))
}

func (m Model) fetchFirstPage(seq int, path string) tea.Cmd {
	return fetchFirstPageCmd(m.lister, m.cfg.RequestTimeout, seq, path, m.cfg.PageSize)
}

// navigate starts loading path; the mounted browser is replaced once the
// first page arrives.
func (m Model) navigate(path string) (Model, tea.Cmd) {
	m.navSeq++
	m.location = path
	m.state = stateLoading
	m.loadErr = nil
	logx.Infof("navigate to %s", path)
	return m, tea.Batch(m.spinner.Tick, m.fetchFirstPage(m.navSeq, path))
}

// ---------- Update ----------
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case firstPageMsg:
		return m.handleFirstPage(msg)

	case loadMoreMsg:
		if !m.mounted || msg.browserID != m.browser.ID() {
			logx.Warnf("dropping load-more result for unmounted browser %s", msg.browserID)
			return m, nil
		}
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd

	case navigateMsg:
		return m.navigate(msg.path)

	case openEntryMsg:
		m.preview = msg.entry
		m.state = statePreview
		m.previewPort.SetContent(renderPreview(msg.entry, m.width))
		m.previewPort.GotoTop()
		return m, nil

	case notifyMsg:
		cmd := m.notices.push(msg.level, msg.text, m.now())
		m.resize()
		return m, cmd

	case noticeExpiredMsg:
		m.notices.expire(msg.id)
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmds []tea.Cmd
		if m.state == stateLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		if m.mounted {
			var cmd tea.Cmd
			m.browser, cmd = m.browser.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	if m.mounted && m.state == stateBrowse {
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleFirstPage(msg firstPageMsg) (Model, tea.Cmd) {
	if msg.seq != m.navSeq {
		logx.Debugf("dropping stale first page for %s (seq %d, current %d)", msg.path, msg.seq, m.navSeq)
		return m, nil
	}
	if msg.err != nil {
		logx.Errorf("list %s: %v", msg.path, msg.err)
		if m.mounted {
			// keep the previous folder on screen
			m.state = stateBrowse
			m.location = m.browser.Location().Path
			return m, m.notifier.Notify(NoticeError, msg.err.Error())
		}
		m.state = stateError
		m.loadErr = msg.err
		return m, m.notifier.Notify(NoticeError, msg.err.Error())
	}
	m.browser = NewDirectoryBrowser(msg.page.Files, msg.page.NextPageToken, m.isRoot(msg.path), m.browserDeps(msg.path))
	m.mounted = true
	m.state = stateBrowse
	m.resize()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.state = stateQuit
		return m, tea.Quit
	}
	// text input owns the keyboard while filtering
	if m.state == stateBrowse && m.mounted && m.browser.Filtering() {
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.state = stateQuit
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	}

	switch m.state {
	case statePreview:
		return m.handlePreviewKey(msg)
	case stateError:
		if key.Matches(msg, m.keys.Reload) {
			return m.navigate(m.location)
		}
		return m, nil
	case stateBrowse:
		switch {
		case key.Matches(msg, m.keys.Layout):
			l := m.layout.Toggle()
			logx.Debugf("layout -> %s", l)
			m.browser.Refresh()
			return m, nil
		case key.Matches(msg, m.keys.Reload):
			return m.navigate(m.browser.Location().Path)
		}
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handlePreviewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Open):
		m.state = stateBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.previewPort, cmd = m.previewPort.Update(msg)
	return m, cmd
}

// resize distributes the window between chrome and content.
func (m *Model) resize() {
	headerHeight := 2
	footerHeight := 2 + len(m.notices.items)
	if m.help.ShowAll {
		footerHeight += 3
	}
	body := max(5, m.height-headerHeight-footerHeight)
	m.previewPort.Width = m.width
	m.previewPort.Height = body
	if m.state == statePreview {
		m.previewPort.SetContent(renderPreview(m.preview, m.width))
	}
	if m.mounted {
		m.browser.SetSize(m.width, body)
	}
}
