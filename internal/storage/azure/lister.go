// Package azure lists virtual folders of an Azure Blob Storage container.
package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"gindex-tui/internal/core/listing"
	"gindex-tui/internal/infra/logx"
)

// API is the container client surface the lister needs.
type API interface {
	NewListBlobsHierarchyPager(delimiter string, o *container.ListBlobsHierarchyOptions) *runtime.Pager[container.ListBlobsHierarchyResponse]
}

// Options configures New.
type Options struct {
	ServiceURL string // account URL, optionally with a SAS query
	Container  string
	Prefix     string
	PageSize   int

	// HTTPClient carries the shared rate limiting transport.
	HTTPClient *http.Client
}

// Lister implements listing.Lister with hierarchy listings; markers are the
// continuation tokens.
type Lister struct {
	api      API
	prefix   string
	pageSize int
}

// New builds a container client authenticated by the SAS in ServiceURL.
func New(opts Options) (*Lister, error) {
	if opts.ServiceURL == "" || opts.Container == "" {
		return nil, errors.New("azure: service url and container are required")
	}
	var clientOpts *azblob.ClientOptions
	if opts.HTTPClient != nil {
		clientOpts = &azblob.ClientOptions{
			ClientOptions: azcore.ClientOptions{Transport: opts.HTTPClient},
		}
	}
	client, err := azblob.NewClientWithNoCredential(opts.ServiceURL, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("azure: create client: %w", err)
	}
	cc := client.ServiceClient().NewContainerClient(opts.Container)
	return NewWithAPI(cc, opts), nil
}

// NewWithAPI builds a lister over an existing container client.
func NewWithAPI(api API, opts Options) *Lister {
	p := strings.Trim(opts.Prefix, "/")
	if p != "" {
		p += "/"
	}
	return &Lister{api: api, prefix: p, pageSize: opts.PageSize}
}

func (l *Lister) blobPrefix(location string) string {
	loc := strings.Trim(location, "/")
	if loc == "" {
		return l.prefix
	}
	return l.prefix + loc + "/"
}

// ListPage fetches one hierarchy segment of req.Path.
func (l *Lister) ListPage(ctx context.Context, req listing.ListRequest) (listing.Page, error) {
	prefix := l.blobPrefix(req.Path)
	opts := &container.ListBlobsHierarchyOptions{}
	if prefix != "" {
		opts.Prefix = &prefix
	}
	if req.PageToken != "" {
		marker := req.PageToken
		opts.Marker = &marker
	}
	size := req.PageSize
	if size <= 0 {
		size = l.pageSize
	}
	if size > 0 {
		n := int32(size)
		opts.MaxResults = &n
	}

	// one NextPage call per ListPage; the marker carries pagination
	pager := l.api.NewListBlobsHierarchyPager("/", opts)
	resp, err := pager.NextPage(ctx)
	if err != nil {
		return listing.Page{}, fmt.Errorf("azure list %q: %w", prefix, err)
	}

	folder := listing.CleanLocation(req.Path)
	var page listing.Page
	if resp.Segment != nil {
		for _, bp := range resp.Segment.BlobPrefixes {
			if bp == nil || bp.Name == nil {
				continue
			}
			name := path.Base(strings.TrimSuffix(*bp.Name, "/"))
			page.Files = append(page.Files, listing.FileEntry{
				ID:       *bp.Name,
				Name:     name,
				Kind:     listing.KindFolder,
				MimeType: listing.FolderMimeType,
				Path:     listing.ChildPath(folder, name),
			})
		}
		for _, bi := range resp.Segment.BlobItems {
			if bi == nil || bi.Name == nil {
				continue
			}
			name := strings.TrimPrefix(*bi.Name, prefix)
			if name == "" {
				continue
			}
			e := listing.FileEntry{
				ID:        *bi.Name,
				Name:      name,
				Kind:      listing.KindFile,
				Path:      listing.ChildPath(folder, name),
				Extension: strings.TrimPrefix(path.Ext(name), "."),
			}
			if p := bi.Properties; p != nil {
				if p.ContentLength != nil {
					e.Size = *p.ContentLength
				}
				if p.LastModified != nil {
					e.ModifiedTime = *p.LastModified
				}
				if p.ContentType != nil {
					e.MimeType = *p.ContentType
				}
			}
			page.Files = append(page.Files, e)
		}
	}
	if resp.NextMarker != nil {
		page.NextPageToken = *resp.NextMarker
	}
	logx.Debugf("azure: %q -> %d entries, more=%t", prefix, len(page.Files), page.HasMore())
	return page, nil
}
