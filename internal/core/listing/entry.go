// Package listing holds the provider-independent model of a paginated folder
// listing: entries, pages, the ordered de-duplicating collection a browser
// accumulates, and the load-more state machine around it.
package listing

import (
	"context"
	"path"
	"strings"
	"time"
)

// Kind discriminates files from folders.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// FolderMimeType marks folders in the HTTP index API.
const FolderMimeType = "application/vnd.google-apps.folder"

// FileEntry is one listed file or folder.
type FileEntry struct {
	ID           string // opaque, unique within one page; dedup key
	Name         string
	Kind         Kind
	MimeType     string
	Size         int64
	ModifiedTime time.Time
	Path         string // location of the entry, "/docs/readme.md"
	Extension    string
}

// IsFolder reports whether the entry is a folder.
func (e FileEntry) IsFolder() bool { return e.Kind == KindFolder }

// Ext returns the lower-case extension without the dot.
func (e FileEntry) Ext() string {
	if e.Extension != "" {
		return strings.ToLower(strings.TrimPrefix(e.Extension, "."))
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(e.Name), "."))
}

// IsMarkdown reports whether the entry should open in the markdown preview.
func (e FileEntry) IsMarkdown() bool {
	if e.IsFolder() {
		return false
	}
	switch e.Ext() {
	case "md", "markdown", "mdx":
		return true
	}
	mt := strings.ToLower(e.MimeType)
	return mt == "text/markdown" || mt == "text/x-markdown"
}

// Page is one batch of entries. An empty NextPageToken means the listing is
// exhausted.
type Page struct {
	Files         []FileEntry
	NextPageToken string
}

// HasMore reports whether another page can be requested.
func (p Page) HasMore() bool { return p.NextPageToken != "" }

// ListRequest addresses one page of a folder listing.
type ListRequest struct {
	Path      string // folder location, "/" for the root
	PageToken string // empty for the first page
	PageSize  int    // 0 lets the provider choose
}

// Lister is the file-listing service. Implementations must be safe for
// concurrent use.
type Lister interface {
	ListPage(ctx context.Context, req ListRequest) (Page, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func(ctx context.Context, req ListRequest) (Page, error)

// ListPage calls f.
func (f ListerFunc) ListPage(ctx context.Context, req ListRequest) (Page, error) {
	return f(ctx, req)
}
