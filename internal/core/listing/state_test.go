package listing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(c *Collection) []string {
	out := make([]string, 0, c.Len())
	for _, e := range c.Entries() {
		out = append(out, e.ID)
	}
	return out
}

func entries(idList ...string) []FileEntry {
	out := make([]FileEntry, len(idList))
	for i, id := range idList {
		out[i] = FileEntry{ID: id, Name: id}
	}
	return out
}

func TestLoadMoreMergesAndExhausts(t *testing.T) {
	s := NewBrowserState(entries("a", "b"), "T1", false)
	var gotReq ListRequest
	l := ListerFunc(func(_ context.Context, req ListRequest) (Page, error) {
		gotReq = req
		return Page{Files: entries("b", "c")}, nil
	})

	added, err := s.LoadMore(context.Background(), l, "/docs", 50)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, "T1", gotReq.PageToken)
	assert.Equal(t, "/docs", gotReq.Path)
	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Files()))
	assert.False(t, s.HasMore())
	assert.False(t, s.InFlight())

	_, err = s.LoadMore(context.Background(), l, "/docs", 50)
	assert.ErrorIs(t, err, ErrNoMoreFiles)
	assert.Equal(t, "no more files to load", err.Error())
}

func TestLoadMoreWithoutTokenLeavesStateUnchanged(t *testing.T) {
	s := NewBrowserState(entries("a"), "", true)
	calls := 0
	l := ListerFunc(func(context.Context, ListRequest) (Page, error) {
		calls++
		return Page{}, nil
	})

	_, err := s.LoadMore(context.Background(), l, "/", 0)
	require.ErrorIs(t, err, ErrNoMoreFiles)
	assert.Zero(t, calls)
	assert.Equal(t, []string{"a"}, ids(s.Files()))
	assert.Equal(t, "", s.Token())
	assert.False(t, s.InFlight())
}

func TestLoadMoreFailureRestoresState(t *testing.T) {
	s := NewBrowserState(entries("a", "b"), "T1", false)
	boom := errors.New("boom")
	l := ListerFunc(func(context.Context, ListRequest) (Page, error) {
		return Page{}, boom
	})

	_, err := s.LoadMore(context.Background(), l, "/", 0)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, ids(s.Files()))
	assert.Equal(t, "T1", s.Token())
	assert.False(t, s.InFlight())
}

func TestBeginLoadMoreRejectsConcurrentCall(t *testing.T) {
	s := NewBrowserState(nil, "T1", false)
	tok, err := s.BeginLoadMore()
	require.NoError(t, err)
	assert.Equal(t, "T1", tok)
	assert.True(t, s.InFlight())

	_, err = s.BeginLoadMore()
	assert.ErrorIs(t, err, ErrLoadInProgress)

	s.CompleteLoadMore(Page{Files: entries("x"), NextPageToken: "T2"})
	assert.False(t, s.InFlight())
	assert.Equal(t, "T2", s.Token())
}

func TestLengthEqualsUniqueIDsAcrossPages(t *testing.T) {
	pages := [][]string{
		{"a", "b", "c"},
		{"c", "d"},
		{"a", "e", "f"},
		{"f"},
	}
	s := NewBrowserState(entries(pages[0]...), "t1", false)
	unique := map[string]struct{}{"a": {}, "b": {}, "c": {}}
	for i, p := range pages[1:] {
		next := fmt.Sprintf("t%d", i+2)
		if i == len(pages)-2 {
			next = ""
		}
		_, err := s.BeginLoadMore()
		require.NoError(t, err)
		s.CompleteLoadMore(Page{Files: entries(p...), NextPageToken: next})
		for _, id := range p {
			unique[id] = struct{}{}
		}
		assert.Equal(t, len(unique), s.Len())
		assert.False(t, s.InFlight())
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, ids(s.Files()))
}

func TestCollectionFirstOccurrenceWins(t *testing.T) {
	c := NewCollection(FileEntry{ID: "a", Name: "first"}, FileEntry{ID: "a", Name: "second"})
	require.Equal(t, 1, c.Len())
	e, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first", e.Name)

	clone := c.Clone()
	clone.Add(FileEntry{ID: "b"})
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, clone.Len())
	assert.True(t, clone.Contains("b"))
	assert.False(t, c.Contains("b"))
}

func TestFileEntryHelpers(t *testing.T) {
	assert.True(t, FileEntry{Name: "README.MD"}.IsMarkdown())
	assert.True(t, FileEntry{Name: "notes", MimeType: "text/markdown"}.IsMarkdown())
	assert.False(t, FileEntry{Name: "docs.md", Kind: KindFolder}.IsMarkdown())
	assert.Equal(t, "png", FileEntry{Name: "x", Extension: ".PNG"}.Ext())
	assert.Equal(t, "folder", KindFolder.String())
}
