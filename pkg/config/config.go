package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/site-snapshot/pkg/utils"
)

// Compiled-in crawl constants. The binary runs with these when no config file is given.
const (
	DefaultTargetHost        = "hydrogen-therapy.example"
	DefaultMaxDepth          = 3
	DefaultMaxPages          = 150
	DefaultUserAgent         = "site-snapshot/1.0 (+content snapshot crawler)"
	DefaultDelayFloor        = 200 * time.Millisecond
	DefaultDelaySpread       = 200 * time.Millisecond
	DefaultMaxPageSizeBytes  = int64(10 << 20)
	DefaultOutputDir         = "content"
	DefaultSnapshotFilename  = "snapshot.json"
	DefaultProductsFilename  = "products.json"
	DefaultArticlesFilename  = "articles.json"
	DefaultDocumentsFilename = "documents.json"
	DefaultRequestTimeout    = 15 * time.Second
)

// ScopeRuleConfig is one named allow-list shape. Pattern and Except are regular
// expressions; "{host}" in Pattern is replaced with the quoted target host.
type ScopeRuleConfig struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Except  string `yaml:"except,omitempty"` // Matched against the first path segment
}

// AppConfig holds the crawl configuration
type AppConfig struct {
	TargetHost         string            `yaml:"target_host"`
	StartURLs          []string          `yaml:"start_urls"`
	ScopeRules         []ScopeRuleConfig `yaml:"scope_rules,omitempty"` // Empty = built-in rules
	MaxDepth           int               `yaml:"max_depth"`
	MaxPages           int               `yaml:"max_pages"`
	UserAgent          string            `yaml:"user_agent"`
	DelayFloor         time.Duration     `yaml:"delay_floor"`
	DelaySpread        time.Duration     `yaml:"delay_spread"`
	MaxPageSizeBytes   int64             `yaml:"max_page_size_bytes,omitempty"`
	RespectRobots      bool              `yaml:"respect_robots,omitempty"`
	OutputDir          string            `yaml:"output_dir"`
	SnapshotFilename   string            `yaml:"snapshot_filename,omitempty"`
	ProductsFilename   string            `yaml:"products_filename,omitempty"`
	ArticlesFilename   string            `yaml:"articles_filename,omitempty"`
	DocumentsFilename  string            `yaml:"documents_filename,omitempty"`
	HTTPClientSettings HTTPClientConfig  `yaml:"http_client_settings,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxRedirects          int           `yaml:"max_redirects,omitempty"`           // Redirect hops before giving up
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // nil=default, true=force, false=disable
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
}

// Default returns the compiled-in configuration for the target site
func Default() AppConfig {
	return AppConfig{
		TargetHost: DefaultTargetHost,
		StartURLs: []string{
			"https://" + DefaultTargetHost + "/",
			"https://" + DefaultTargetHost + "/catalog",
			"https://" + DefaultTargetHost + "/privacy",
			"https://" + DefaultTargetHost + "/cookie-policy",
		},
		MaxDepth:          DefaultMaxDepth,
		MaxPages:          DefaultMaxPages,
		UserAgent:         DefaultUserAgent,
		DelayFloor:        DefaultDelayFloor,
		DelaySpread:       DefaultDelaySpread,
		MaxPageSizeBytes:  DefaultMaxPageSizeBytes,
		OutputDir:         DefaultOutputDir,
		SnapshotFilename:  DefaultSnapshotFilename,
		ProductsFilename:  DefaultProductsFilename,
		ArticlesFilename:  DefaultArticlesFilename,
		DocumentsFilename: DefaultDocumentsFilename,
		HTTPClientSettings: HTTPClientConfig{
			Timeout: DefaultRequestTimeout,
		},
	}
}

// Load reads a YAML file over the compiled-in defaults. Fields absent from
// the file keep their default values.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: reading config file '%s': %w", utils.ErrConfigValidation, path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parsing config file '%s': %w", utils.ErrConfigValidation, path, err)
	}
	return cfg, nil
}
