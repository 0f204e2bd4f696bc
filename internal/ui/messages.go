package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gindex-tui/internal/core/listing"
	"gindex-tui/internal/infra/httpx"
)

// ---------- Messages / Cmds ----------

// firstPageMsg carries the first page of a location. seq identifies the
// navigation that asked for it; stale sequences are dropped.
type firstPageMsg struct {
	seq  int
	path string
	page listing.Page
	err  error
}

// loadMoreMsg carries a load-more result addressed to one browser instance.
type loadMoreMsg struct {
	browserID string
	page      listing.Page
	err       error
	retries   int64
}

// navigateMsg asks the app to mount a browser for path.
type navigateMsg struct{ path string }

// openEntryMsg asks the app to preview a file.
type openEntryMsg struct{ entry listing.FileEntry }

// fetchPage runs one ListPage call with a timeout and per-call retry
// attribution. The context is never cancelled by the UI.
func fetchPage(lister listing.Lister, timeout time.Duration, req listing.ListRequest) (listing.Page, *httpx.RetryCounters, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	rc := &httpx.RetryCounters{}
	page, err := lister.ListPage(httpx.WithRetryCounters(ctx, rc), req)
	return page, rc, err
}

func fetchFirstPageCmd(lister listing.Lister, timeout time.Duration, seq int, path string, pageSize int) tea.Cmd {
	return func() tea.Msg {
		page, _, err := fetchPage(lister, timeout, listing.ListRequest{Path: path, PageSize: pageSize})
		return firstPageMsg{seq: seq, path: path, page: page, err: err}
	}
}

func navigateCmd(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

func openEntryCmd(e listing.FileEntry) tea.Cmd {
	return func() tea.Msg { return openEntryMsg{entry: e} }
}
