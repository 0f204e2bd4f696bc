package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gindex-tui/internal/config"
	"gindex-tui/internal/storage/azure"
	"gindex-tui/internal/storage/httpindex"
	"gindex-tui/internal/storage/s3"
)

func TestOpenHTTP(t *testing.T) {
	cfg := config.Default()
	cfg.BaseURL = "https://index.example.com"
	p, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderHTTP, p.Name)
	assert.IsType(t, &httpindex.Client{}, p.Lister)
	assert.NotNil(t, p.Metrics)
}

func TestOpenS3(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderS3
	cfg.S3Bucket = "media"
	cfg.S3Endpoint = "http://localhost:9000"
	cfg.S3PathStyle = true
	cfg.S3AccessKeyID = "minio"
	cfg.S3SecretAccessKey = "minio123"
	p, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &s3.Lister{}, p.Lister)
}

func TestOpenAzure(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderAzure
	cfg.AzureServiceURL = "https://acct.blob.core.windows.net/?sv=2022&sig=x"
	cfg.AzureContainer = "files"
	p, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &azure.Lister{}, p.Lister)
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestLimitFor(t *testing.T) {
	assert.Equal(t, 10.0, limitFor(0).RPS)
	assert.Equal(t, 1, limitFor(0.5).Burst)
	assert.Equal(t, 4, limitFor(4).Burst)
}
