// Package storage picks the listing provider named by the configuration.
package storage

import (
	"context"
	"fmt"

	"gindex-tui/internal/config"
	"gindex-tui/internal/core/listing"
	"gindex-tui/internal/infra/httpx"
	"gindex-tui/internal/storage/azure"
	"gindex-tui/internal/storage/httpindex"
	"gindex-tui/internal/storage/s3"
)

// Provider is a configured Lister plus the metrics of its HTTP traffic.
type Provider struct {
	Name    string
	Lister  listing.Lister
	Metrics *httpx.Metrics
}

// Open validates cfg and builds its provider.
func Open(ctx context.Context, cfg config.Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	metrics := httpx.NewMetrics()
	limiter := httpx.NewLimiterTransport(nil, httpx.TransportOptions{
		Default: limitFor(cfg.RPS),
		Metrics: metrics,
	})

	p := &Provider{Name: cfg.Provider, Metrics: metrics}
	switch cfg.Provider {
	case config.ProviderHTTP:
		c, err := httpindex.New(httpindex.Options{
			BaseURL:  cfg.BaseURL,
			Token:    cfg.Token,
			PageSize: cfg.PageSize,
			Timeout:  cfg.RequestTimeout,
			RetryMax: cfg.RetryMax,
			RPS:      cfg.RPS,
			Metrics:  metrics,
		})
		if err != nil {
			return nil, err
		}
		p.Lister = c
	case config.ProviderS3:
		l, err := s3.New(ctx, s3.Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
			PathStyle:       cfg.S3PathStyle,
			PageSize:        cfg.PageSize,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			HTTPClient:      limiter.Client(cfg.RequestTimeout),
		})
		if err != nil {
			return nil, err
		}
		p.Lister = l
	case config.ProviderAzure:
		l, err := azure.New(azure.Options{
			ServiceURL: cfg.AzureServiceURL,
			Container:  cfg.AzureContainer,
			Prefix:     cfg.AzurePrefix,
			PageSize:   cfg.PageSize,
			HTTPClient: limiter.Client(cfg.RequestTimeout),
		})
		if err != nil {
			return nil, err
		}
		p.Lister = l
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	return p, nil
}

func limitFor(rps float64) httpx.Limit {
	if rps <= 0 {
		return httpx.DefaultLimit
	}
	return httpx.Limit{RPS: rps, Burst: max(1, int(rps))}
}
