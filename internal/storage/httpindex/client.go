// Package httpindex lists folders from a gIndex-style HTTP index service.
package httpindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"gindex-tui/internal/core/listing"
	"gindex-tui/internal/infra/httpx"
	"gindex-tui/internal/infra/logx"
)

const filesEndpoint = "/api/files"

// Options configures New.
type Options struct {
	BaseURL  string
	Token    string
	PageSize int

	Timeout  time.Duration
	RetryMax int
	RPS      float64

	// RetryWaitMin and RetryWaitMax bound the backoff between attempts.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	Metrics *httpx.Metrics
	// Base replaces http.DefaultTransport under the limiter.
	Base http.RoundTripper
}

// Client implements listing.Lister against the index API.
type Client struct {
	base     *url.URL
	token    string
	pageSize int
	http     *retryablehttp.Client
	metrics  *httpx.Metrics
}

// New validates opts and builds a client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("httpindex: base url is empty")
	}
	u, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("httpindex: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpindex: unsupported scheme %q", u.Scheme)
	}
	if opts.Metrics == nil {
		opts.Metrics = httpx.NewMetrics()
	}
	limit := httpx.DefaultLimit
	if opts.RPS > 0 {
		limit = httpx.Limit{RPS: opts.RPS, Burst: max(1, int(opts.RPS))}
	}
	tr := httpx.NewLimiterTransport(opts.Base, httpx.TransportOptions{
		Default: limit,
		Metrics: opts.Metrics,
	})
	if opts.Token != "" {
		logx.RegisterSecret(opts.Token)
	}
	return &Client{
		base:     u,
		token:    opts.Token,
		pageSize: opts.PageSize,
		metrics:  opts.Metrics,
		http: httpx.NewRetryClient(httpx.RetryOptions{
			RetryMax:     opts.RetryMax,
			RetryWaitMin: opts.RetryWaitMin,
			RetryWaitMax: opts.RetryWaitMax,
			Timeout:      opts.Timeout,
			Transport:    tr,
			Metrics:      opts.Metrics,
		}),
	}, nil
}

// Metrics exposes the request counters of this client.
func (c *Client) Metrics() *httpx.Metrics { return c.metrics }

// StatusError reports a non-2xx response from the index service.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("index status %s", e.Status)
	}
	return fmt.Sprintf("index status %s: %s", e.Status, e.Body)
}

// ---------- wire format ----------

type filesResp struct {
	Files         []wireFile `json:"files"`
	NextPageToken string     `json:"nextPageToken"`
}

type wireFile struct {
	ID            string    `json:"id"`
	EncryptedID   string    `json:"encryptedId"`
	Name          string    `json:"name"`
	MimeType      string    `json:"mimeType"`
	Size          flexInt64 `json:"size"`
	ModifiedTime  string    `json:"modifiedTime"`
	FileExtension string    `json:"fileExtension"`
}

// flexInt64 accepts sizes sent as numbers or as decimal strings.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("size %q: %w", s, err)
	}
	*f = flexInt64(n)
	return nil
}

func (w wireFile) entry(folder string) listing.FileEntry {
	id := w.EncryptedID
	if id == "" {
		id = w.ID
	}
	kind := listing.KindFile
	if w.MimeType == listing.FolderMimeType {
		kind = listing.KindFolder
	}
	var mod time.Time
	if w.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, w.ModifiedTime); err == nil {
			mod = t
		} else {
			logx.Debugf("httpindex: bad modifiedTime %q for %s", w.ModifiedTime, w.Name)
		}
	}
	return listing.FileEntry{
		ID:           id,
		Name:         w.Name,
		Kind:         kind,
		MimeType:     w.MimeType,
		Size:         int64(w.Size),
		ModifiedTime: mod,
		Path:         listing.ChildPath(folder, w.Name),
		Extension:    w.FileExtension,
	}
}

// ---------- listing ----------

func (c *Client) filesURL(req listing.ListRequest) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + filesEndpoint
	q := url.Values{}
	q.Set("path", listing.CleanLocation(req.Path))
	if req.PageToken != "" {
		q.Set("pageToken", req.PageToken)
	}
	size := req.PageSize
	if size <= 0 {
		size = c.pageSize
	}
	if size > 0 {
		q.Set("pageSize", strconv.Itoa(size))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ListPage fetches one page of req.Path.
func (c *Client) ListPage(ctx context.Context, req listing.ListRequest) (listing.Page, error) {
	rreq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.filesURL(req), nil)
	if err != nil {
		return listing.Page{}, err
	}
	rreq.Header.Set("Accept", "application/json")
	if c.token != "" {
		rreq.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(rreq)
	if err != nil {
		return listing.Page{}, fmt.Errorf("files.list: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return listing.Page{}, &StatusError{
			Code:   res.StatusCode,
			Status: res.Status,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	var payload filesResp
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return listing.Page{}, fmt.Errorf("files.list decode: %w", err)
	}
	page := listing.Page{
		Files:         make([]listing.FileEntry, 0, len(payload.Files)),
		NextPageToken: payload.NextPageToken,
	}
	for _, f := range payload.Files {
		page.Files = append(page.Files, f.entry(req.Path))
	}
	logx.Debugf("httpindex: %s -> %d entries, more=%t", listing.CleanLocation(req.Path), len(page.Files), page.HasMore())
	return page, nil
}
