package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names accepted in the configuration.
const (
	ProviderHTTP  = "http"
	ProviderS3    = "s3"
	ProviderAzure = "azure"
)

// Layout names accepted in the configuration.
const (
	LayoutList = "list"
	LayoutGrid = "grid"
)

// Config is the runtime configuration of the browser.
type Config struct {
	Provider string
	BaseURL  string // http index service
	BasePath string // base against which "navigate up" targets resolve
	RootPath string // location treated as the root folder
	Token    string
	PageSize int
	Layout   string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3Prefix    string
	S3PathStyle bool
	// static keys; empty falls back to the AWS default credential chain
	S3AccessKeyID     string
	S3SecretAccessKey string

	AzureServiceURL string // may carry a SAS query
	AzureContainer  string
	AzurePrefix     string

	NotifyTTL      time.Duration
	RequestTimeout time.Duration
	RetryMax       int
	RPS            float64
	LogLevel       string
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Provider:       ProviderHTTP,
		BasePath:       "/",
		RootPath:       "/",
		PageSize:       50,
		Layout:         LayoutList,
		NotifyTTL:      4 * time.Second,
		RequestTimeout: 30 * time.Second,
		RetryMax:       4,
		RPS:            10,
		LogLevel:       "warn",
	}
}

// DefaultPath returns ~/.gindexrc, falling back to the working directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".gindexrc"
	}
	return filepath.Join(home, ".gindexrc")
}

// Load reads the rc (KEY=VALUE) or YAML file at path and applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if isYAML(path) {
				if err := applyYAML(&cfg, data); err != nil {
					return cfg, fmt.Errorf("parse %s: %w", path, err)
				}
			} else if err := applyRC(&cfg, string(data)); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
	}
	for _, k := range rcKeys {
		if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
			if err := set(&cfg, k, v); err != nil {
				return cfg, fmt.Errorf("env %s: %w", k, err)
			}
		}
	}
	return cfg, nil
}

// Save writes cfg in rc format. Empty values are omitted.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(cfg.Provider) == "" {
		return errors.New("provider required")
	}
	var b strings.Builder
	for _, k := range rcKeys {
		v := get(cfg, k)
		if v == "" {
			continue
		}
		b.WriteString(k + "=" + v + "\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderHTTP:
		if c.BaseURL == "" {
			return errors.New("http provider requires GINDEX_BASE_URL")
		}
	case ProviderS3:
		if c.S3Bucket == "" {
			return errors.New("s3 provider requires S3_BUCKET")
		}
	case ProviderAzure:
		if c.AzureServiceURL == "" || c.AzureContainer == "" {
			return errors.New("azure provider requires AZURE_SERVICE_URL and AZURE_CONTAINER")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.Layout != LayoutList && c.Layout != LayoutGrid {
		return fmt.Errorf("layout must be %q or %q, got %q", LayoutList, LayoutGrid, c.Layout)
	}
	return nil
}

var rcKeys = []string{
	"GINDEX_PROVIDER",
	"GINDEX_BASE_URL",
	"GINDEX_BASE_PATH",
	"GINDEX_ROOT_PATH",
	"GINDEX_TOKEN",
	"GINDEX_PAGE_SIZE",
	"GINDEX_LAYOUT",
	"S3_BUCKET",
	"S3_REGION",
	"S3_ENDPOINT",
	"S3_PREFIX",
	"S3_PATH_STYLE",
	"S3_ACCESS_KEY_ID",
	"S3_SECRET_ACCESS_KEY",
	"AZURE_SERVICE_URL",
	"AZURE_CONTAINER",
	"AZURE_PREFIX",
	"GINDEX_NOTIFY_TTL",
	"GINDEX_TIMEOUT",
	"GINDEX_RETRY_MAX",
	"GINDEX_RPS",
	"GINDEX_LOG_LEVEL",
}

func applyRC(cfg *Config, content string) error {
	sc := bufio.NewScanner(strings.NewReader(content))
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		k, v, ok := strings.Cut(raw, "=")
		if !ok {
			return fmt.Errorf("line %d: expected KEY=VALUE", line)
		}
		if err := set(cfg, strings.TrimSpace(k), strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}

func set(cfg *Config, key, v string) error {
	v = strings.TrimSpace(v)
	switch key {
	case "GINDEX_PROVIDER":
		cfg.Provider = strings.ToLower(v)
	case "GINDEX_BASE_URL":
		cfg.BaseURL = v
	case "GINDEX_BASE_PATH":
		cfg.BasePath = v
	case "GINDEX_ROOT_PATH":
		cfg.RootPath = v
	case "GINDEX_TOKEN":
		cfg.Token = v
	case "GINDEX_PAGE_SIZE":
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("page size: %w", err)
		}
		cfg.PageSize = n
	case "GINDEX_LAYOUT":
		cfg.Layout = strings.ToLower(v)
	case "S3_BUCKET":
		cfg.S3Bucket = v
	case "S3_REGION":
		cfg.S3Region = v
	case "S3_ENDPOINT":
		cfg.S3Endpoint = v
	case "S3_PREFIX":
		cfg.S3Prefix = v
	case "S3_PATH_STYLE":
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("path style: %w", err)
		}
		cfg.S3PathStyle = b
	case "S3_ACCESS_KEY_ID":
		cfg.S3AccessKeyID = v
	case "S3_SECRET_ACCESS_KEY":
		cfg.S3SecretAccessKey = v
	case "AZURE_SERVICE_URL":
		cfg.AzureServiceURL = v
	case "AZURE_CONTAINER":
		cfg.AzureContainer = v
	case "AZURE_PREFIX":
		cfg.AzurePrefix = v
	case "GINDEX_NOTIFY_TTL":
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("notify ttl: %w", err)
		}
		cfg.NotifyTTL = d
	case "GINDEX_TIMEOUT":
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.RequestTimeout = d
	case "GINDEX_RETRY_MAX":
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("retry max: %w", err)
		}
		cfg.RetryMax = n
	case "GINDEX_RPS":
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("rps: %w", err)
		}
		cfg.RPS = f
	case "GINDEX_LOG_LEVEL":
		cfg.LogLevel = strings.ToLower(v)
	default:
		// unknown keys are ignored so rc files can be shared with other tools
	}
	return nil
}

func get(cfg Config, key string) string {
	switch key {
	case "GINDEX_PROVIDER":
		return cfg.Provider
	case "GINDEX_BASE_URL":
		return cfg.BaseURL
	case "GINDEX_BASE_PATH":
		return cfg.BasePath
	case "GINDEX_ROOT_PATH":
		return cfg.RootPath
	case "GINDEX_TOKEN":
		return cfg.Token
	case "GINDEX_PAGE_SIZE":
		return intOrEmpty(cfg.PageSize)
	case "GINDEX_LAYOUT":
		return cfg.Layout
	case "S3_BUCKET":
		return cfg.S3Bucket
	case "S3_REGION":
		return cfg.S3Region
	case "S3_ENDPOINT":
		return cfg.S3Endpoint
	case "S3_PREFIX":
		return cfg.S3Prefix
	case "S3_PATH_STYLE":
		if cfg.S3PathStyle {
			return "true"
		}
	case "S3_ACCESS_KEY_ID":
		return cfg.S3AccessKeyID
	case "S3_SECRET_ACCESS_KEY":
		return cfg.S3SecretAccessKey
	case "AZURE_SERVICE_URL":
		return cfg.AzureServiceURL
	case "AZURE_CONTAINER":
		return cfg.AzureContainer
	case "AZURE_PREFIX":
		return cfg.AzurePrefix
	case "GINDEX_NOTIFY_TTL":
		return durOrEmpty(cfg.NotifyTTL)
	case "GINDEX_TIMEOUT":
		return durOrEmpty(cfg.RequestTimeout)
	case "GINDEX_RETRY_MAX":
		return intOrEmpty(cfg.RetryMax)
	case "GINDEX_RPS":
		if cfg.RPS > 0 {
			return strconv.FormatFloat(cfg.RPS, 'f', -1, 64)
		}
	case "GINDEX_LOG_LEVEL":
		return cfg.LogLevel
	}
	return ""
}

func intOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func durOrEmpty(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// fileConfig is the YAML shape. Durations are strings ("4s").
type fileConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	BasePath string `yaml:"base_path"`
	RootPath string `yaml:"root_path"`
	Token    string `yaml:"token"`
	PageSize int    `yaml:"page_size"`
	Layout   string `yaml:"layout"`
	S3       struct {
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		Endpoint  string `yaml:"endpoint"`
		Prefix    string `yaml:"prefix"`
		PathStyle bool   `yaml:"path_style"`
		AccessKey string `yaml:"access_key_id"`
		SecretKey string `yaml:"secret_access_key"`
	} `yaml:"s3"`
	Azure struct {
		ServiceURL string `yaml:"service_url"`
		Container  string `yaml:"container"`
		Prefix     string `yaml:"prefix"`
	} `yaml:"azure"`
	NotifyTTL string  `yaml:"notify_ttl"`
	Timeout   string  `yaml:"timeout"`
	RetryMax  *int    `yaml:"retry_max"`
	RPS       float64 `yaml:"rps"`
	LogLevel  string  `yaml:"log_level"`
}

func applyYAML(cfg *Config, data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}
	setIf := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setIf(&cfg.Provider, strings.ToLower(fc.Provider))
	setIf(&cfg.BaseURL, fc.BaseURL)
	setIf(&cfg.BasePath, fc.BasePath)
	setIf(&cfg.RootPath, fc.RootPath)
	setIf(&cfg.Token, fc.Token)
	setIf(&cfg.Layout, strings.ToLower(fc.Layout))
	setIf(&cfg.S3Bucket, fc.S3.Bucket)
	setIf(&cfg.S3Region, fc.S3.Region)
	setIf(&cfg.S3Endpoint, fc.S3.Endpoint)
	setIf(&cfg.S3Prefix, fc.S3.Prefix)
	setIf(&cfg.S3AccessKeyID, fc.S3.AccessKey)
	setIf(&cfg.S3SecretAccessKey, fc.S3.SecretKey)
	setIf(&cfg.AzureServiceURL, fc.Azure.ServiceURL)
	setIf(&cfg.AzureContainer, fc.Azure.Container)
	setIf(&cfg.AzurePrefix, fc.Azure.Prefix)
	setIf(&cfg.LogLevel, strings.ToLower(fc.LogLevel))
	if fc.S3.PathStyle {
		cfg.S3PathStyle = true
	}
	if fc.PageSize != 0 {
		cfg.PageSize = fc.PageSize
	}
	if fc.RetryMax != nil {
		cfg.RetryMax = *fc.RetryMax
	}
	if fc.RPS > 0 {
		cfg.RPS = fc.RPS
	}
	if fc.NotifyTTL != "" {
		d, err := time.ParseDuration(fc.NotifyTTL)
		if err != nil {
			return fmt.Errorf("notify_ttl: %w", err)
		}
		cfg.NotifyTTL = d
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

// Secrets returns the configured values that must never reach a log.
func (c Config) Secrets() []string {
	var out []string
	for _, s := range []string{c.Token, c.S3SecretAccessKey} {
		if s != "" {
			out = append(out, s)
		}
	}
	if i := strings.Index(c.AzureServiceURL, "?"); i >= 0 && i+1 < len(c.AzureServiceURL) {
		out = append(out, c.AzureServiceURL[i+1:])
	}
	return out
}
