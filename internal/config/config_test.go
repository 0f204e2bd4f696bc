package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg")
	content := []byte("# comment\nGINDEX_PROVIDER=http\nGINDEX_BASE_URL=https://index.example.com\nGINDEX_PAGE_SIZE=25\nGINDEX_LAYOUT=grid\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Provider != ProviderHTTP || cfg.BaseURL != "https://index.example.com" || cfg.PageSize != 25 || cfg.Layout != LayoutGrid {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.BasePath != "/" || cfg.NotifyTTL != 4*time.Second {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GINDEX_TOKEN", "envtoken")
	t.Setenv("GINDEX_RPS", "2.5")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Token != "envtoken" {
		t.Fatalf("expected token from env, got %q", cfg.Token)
	}
	if cfg.RPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.RPS)
	}
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg")
	if err := os.WriteFile(path, []byte("GINDEX_PROVIDER\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gindex.yaml")
	content := []byte(`provider: s3
page_size: 100
layout: list
notify_ttl: 2s
retry_max: 0
s3:
  bucket: media
  region: eu-central-1
  path_style: true
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Provider != ProviderS3 || cfg.S3Bucket != "media" || cfg.S3Region != "eu-central-1" || !cfg.S3PathStyle {
		t.Fatalf("unexpected s3 cfg: %+v", cfg)
	}
	if cfg.PageSize != 100 || cfg.NotifyTTL != 2*time.Second || cfg.RetryMax != 0 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSaveWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg")
	cfg := Config{Provider: ProviderHTTP, BaseURL: "https://x", Token: "abc", PageSize: 10}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	expected := "GINDEX_PROVIDER=http\nGINDEX_BASE_URL=https://x\nGINDEX_TOKEN=abc\nGINDEX_PAGE_SIZE=10\n"
	if string(data) != expected {
		t.Fatalf("file content = %q, want %q", string(data), expected)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if back.Token != "abc" || back.PageSize != 10 {
		t.Fatalf("round trip lost values: %+v", back)
	}
}

func TestSaveRequiresProvider(t *testing.T) {
	if err := Save("ignored", Config{}); err == nil {
		t.Fatal("expected error for empty provider")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"http ok", func(c *Config) { c.BaseURL = "https://x" }, false},
		{"http missing url", func(c *Config) {}, true},
		{"s3 missing bucket", func(c *Config) { c.Provider = ProviderS3 }, true},
		{"azure ok", func(c *Config) {
			c.Provider = ProviderAzure
			c.AzureServiceURL = "https://acct.blob.core.windows.net/?sv=x"
			c.AzureContainer = "files"
		}, false},
		{"unknown provider", func(c *Config) { c.Provider = "ftp" }, true},
		{"bad layout", func(c *Config) { c.BaseURL = "https://x"; c.Layout = "table" }, true},
		{"bad page size", func(c *Config) { c.BaseURL = "https://x"; c.PageSize = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultPathUsesHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	want := filepath.Join(dir, ".gindexrc")
	if got := DefaultPath(); got != want {
		t.Fatalf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestSecrets(t *testing.T) {
	cfg := Config{Token: "tok", S3SecretAccessKey: "s3s", AzureServiceURL: "https://a.blob.core.windows.net/?sv=1&sig=abc"}
	got := cfg.Secrets()
	want := []string{"tok", "s3s", "sv=1&sig=abc"}
	if len(got) != len(want) {
		t.Fatalf("Secrets() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Secrets()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if len((Config{}).Secrets()) != 0 {
		t.Fatal("empty config should have no secrets")
	}
}
