// Package s3 lists folders of an S3 or S3-compatible bucket, treating "/" in
// object keys as the folder separator.
package s3

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"gindex-tui/internal/core/listing"
	"gindex-tui/internal/infra/logx"
)

const defaultRegion = "us-east-1"

// API is the part of the S3 client the lister needs.
type API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Options configures New.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string // custom endpoint for MinIO and friends
	Prefix    string // key prefix treated as the root folder
	PathStyle bool
	PageSize  int

	AccessKeyID     string
	SecretAccessKey string

	// HTTPClient carries the shared rate limiting transport.
	HTTPClient *http.Client
}

// Lister implements listing.Lister over ListObjectsV2.
type Lister struct {
	api      API
	bucket   string
	prefix   string
	pageSize int
}

// New loads the AWS configuration and builds a lister.
func New(ctx context.Context, opts Options) (*Lister, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3: bucket is empty")
	}
	region := opts.Region
	if region == "" {
		region = defaultRegion
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if opts.HTTPClient != nil {
		loadOpts = append(loadOpts, awsconfig.WithHTTPClient(opts.HTTPClient))
	}
	if opts.AccessKeyID != "" {
		logx.RegisterSecret(opts.SecretAccessKey)
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})
	return NewWithAPI(client, opts), nil
}

// NewWithAPI builds a lister over an existing client.
func NewWithAPI(api API, opts Options) *Lister {
	return &Lister{
		api:      api,
		bucket:   opts.Bucket,
		prefix:   normalizePrefix(opts.Prefix),
		pageSize: opts.PageSize,
	}
}

// normalizePrefix turns "a/b" or "/a/b/" into "a/b/"; "" stays "".
func normalizePrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

// keyPrefix maps a folder location to the S3 key prefix listing it.
func (l *Lister) keyPrefix(location string) string {
	return l.prefix + normalizePrefix(location)
}

// ListPage lists one page of direct children of req.Path.
func (l *Lister) ListPage(ctx context.Context, req listing.ListRequest) (listing.Page, error) {
	prefix := l.keyPrefix(req.Path)
	in := &s3.ListObjectsV2Input{
		Bucket:    aws.String(l.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}
	if req.PageToken != "" {
		in.ContinuationToken = aws.String(req.PageToken)
	}
	size := req.PageSize
	if size <= 0 {
		size = l.pageSize
	}
	if size > 0 {
		in.MaxKeys = aws.Int32(int32(size))
	}

	out, err := l.api.ListObjectsV2(ctx, in)
	if err != nil {
		return listing.Page{}, fmt.Errorf("s3 list %s/%s: %w", l.bucket, prefix, err)
	}

	folder := listing.CleanLocation(req.Path)
	page := listing.Page{Files: make([]listing.FileEntry, 0, len(out.CommonPrefixes)+len(out.Contents))}
	for _, cp := range out.CommonPrefixes {
		p := aws.ToString(cp.Prefix)
		name := path.Base(strings.TrimSuffix(p, "/"))
		if name == "" || name == "." {
			continue
		}
		page.Files = append(page.Files, listing.FileEntry{
			ID:       p,
			Name:     name,
			Kind:     listing.KindFolder,
			MimeType: listing.FolderMimeType,
			Path:     listing.ChildPath(folder, name),
		})
	}
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		name := strings.TrimPrefix(key, prefix)
		// zero-byte folder markers list as the prefix itself
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		ext := path.Ext(name)
		page.Files = append(page.Files, listing.FileEntry{
			ID:           key,
			Name:         name,
			Kind:         listing.KindFile,
			MimeType:     mime.TypeByExtension(ext),
			Size:         aws.ToInt64(obj.Size),
			ModifiedTime: aws.ToTime(obj.LastModified),
			Path:         listing.ChildPath(folder, name),
			Extension:    strings.TrimPrefix(ext, "."),
		})
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextPageToken = aws.ToString(out.NextContinuationToken)
	}
	logx.Debugf("s3: %s -> %d entries, more=%t", prefix, len(page.Files), page.HasMore())
	return page, nil
}
