package azure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gindex-tui/internal/core/listing"
)

func strPtr(s string) *string { return &s }

type fakeAPI struct {
	delimiter string
	opts      *container.ListBlobsHierarchyOptions
	resp      container.ListBlobsHierarchyResponse
	err       error
	fetches   int
}

func (f *fakeAPI) NewListBlobsHierarchyPager(delimiter string, o *container.ListBlobsHierarchyOptions) *runtime.Pager[container.ListBlobsHierarchyResponse] {
	f.delimiter = delimiter
	f.opts = o
	return runtime.NewPager(runtime.PagingHandler[container.ListBlobsHierarchyResponse]{
		More: func(container.ListBlobsHierarchyResponse) bool { return false },
		Fetcher: func(context.Context, *container.ListBlobsHierarchyResponse) (container.ListBlobsHierarchyResponse, error) {
			f.fetches++
			return f.resp, f.err
		},
	})
}

func TestListPageMapsSegment(t *testing.T) {
	mod := time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC)
	size := int64(77)
	api := &fakeAPI{}
	api.resp.Segment = &container.BlobHierarchyListSegment{
		BlobPrefixes: []*container.BlobPrefix{{Name: strPtr("files/docs/img/")}},
		BlobItems: []*container.BlobItem{{
			Name: strPtr("files/docs/notes.md"),
			Properties: &container.BlobProperties{
				ContentLength: &size,
				LastModified:  &mod,
				ContentType:   strPtr("text/markdown"),
			},
		}},
	}
	api.resp.NextMarker = strPtr("m2")

	l := NewWithAPI(api, Options{Prefix: "/files/", PageSize: 10})
	page, err := l.ListPage(context.Background(), listing.ListRequest{Path: "/docs/", PageToken: "m1"})
	require.NoError(t, err)

	assert.Equal(t, "/", api.delimiter)
	assert.Equal(t, 1, api.fetches)
	assert.Equal(t, "files/docs/", *api.opts.Prefix)
	assert.Equal(t, "m1", *api.opts.Marker)
	assert.EqualValues(t, 10, *api.opts.MaxResults)

	require.Len(t, page.Files, 2)
	assert.Equal(t, listing.FileEntry{
		ID: "files/docs/img/", Name: "img", Kind: listing.KindFolder,
		MimeType: listing.FolderMimeType, Path: "/docs/img",
	}, page.Files[0])
	f := page.Files[1]
	assert.Equal(t, "notes.md", f.Name)
	assert.Equal(t, size, f.Size)
	assert.Equal(t, mod, f.ModifiedTime)
	assert.Equal(t, "text/markdown", f.MimeType)
	assert.Equal(t, "m2", page.NextPageToken)
}

func TestListPageRootNoMarker(t *testing.T) {
	api := &fakeAPI{}
	l := NewWithAPI(api, Options{})
	page, err := l.ListPage(context.Background(), listing.ListRequest{Path: "/"})
	require.NoError(t, err)
	assert.Nil(t, api.opts.Prefix)
	assert.Nil(t, api.opts.Marker)
	assert.Nil(t, api.opts.MaxResults)
	assert.Empty(t, page.Files)
	assert.False(t, page.HasMore())
}

func TestListPageError(t *testing.T) {
	boom := errors.New("AuthenticationFailed")
	l := NewWithAPI(&fakeAPI{err: boom}, Options{})
	_, err := l.ListPage(context.Background(), listing.ListRequest{Path: "/a"})
	require.ErrorIs(t, err, boom)
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{Container: "c"})
	assert.Error(t, err)
	l, err := New(Options{ServiceURL: "https://acct.blob.core.windows.net/?sv=2022&sig=x", Container: "files"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}
