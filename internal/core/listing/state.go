package listing

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoMoreFiles is returned by load-more when no continuation token is held.
	ErrNoMoreFiles = errors.New("no more files to load")
	// ErrLoadInProgress is returned when a load-more is already in flight.
	ErrLoadInProgress = errors.New("already loading more files")
)

// BrowserState is the view state of one mounted directory browser: the
// accumulated entries, the continuation token and the in-flight flag.
// It is only mutated by a successful load-more.
type BrowserState struct {
	files    *Collection
	token    string
	inFlight bool
	root     bool
}

// NewBrowserState initializes the state from the first page the parent
// supplied.
func NewBrowserState(files []FileEntry, nextPageToken string, root bool) *BrowserState {
	return &BrowserState{
		files: NewCollection(files...),
		token: nextPageToken,
		root:  root,
	}
}

// Files returns the accumulated entries in first-seen order.
func (s *BrowserState) Files() *Collection { return s.files }

// Len returns the number of accumulated entries.
func (s *BrowserState) Len() int { return s.files.Len() }

// Token returns the current continuation token ("" when exhausted).
func (s *BrowserState) Token() string { return s.token }

// HasMore reports whether a continuation token is held.
func (s *BrowserState) HasMore() bool { return s.token != "" }

// InFlight reports whether a load-more fetch is running.
func (s *BrowserState) InFlight() bool { return s.inFlight }

// Root reports whether this is the root folder.
func (s *BrowserState) Root() bool { return s.root }

// BeginLoadMore checks the preconditions of a load-more and marks it in
// flight. It returns the token to fetch with.
func (s *BrowserState) BeginLoadMore() (string, error) {
	if s.inFlight {
		return "", ErrLoadInProgress
	}
	if s.token == "" {
		return "", ErrNoMoreFiles
	}
	s.inFlight = true
	return s.token, nil
}

// CompleteLoadMore merges a fetched page, replaces the token and clears the
// in-flight flag. It returns how many new entries were added.
func (s *BrowserState) CompleteLoadMore(p Page) int {
	added := s.files.Merge(p.Files)
	s.token = p.NextPageToken
	s.inFlight = false
	return added
}

// FailLoadMore clears the in-flight flag and leaves entries and token as they
// were before the call.
func (s *BrowserState) FailLoadMore() {
	s.inFlight = false
}

// LoadMore runs a full load-more against l synchronously.
func (s *BrowserState) LoadMore(ctx context.Context, l Lister, path string, pageSize int) (int, error) {
	token, err := s.BeginLoadMore()
	if err != nil {
		return 0, err
	}
	page, err := l.ListPage(ctx, ListRequest{Path: path, PageToken: token, PageSize: pageSize})
	if err != nil {
		s.FailLoadMore()
		return 0, fmt.Errorf("list page: %w", err)
	}
	return s.CompleteLoadMore(page), nil
}
