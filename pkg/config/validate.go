package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Sriram-PR/site-snapshot/pkg/parse"
	"github.com/Sriram-PR/site-snapshot/pkg/utils"
)

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// Required: TargetHost
	c.TargetHost = strings.ToLower(strings.TrimSpace(c.TargetHost))
	if c.TargetHost == "" {
		return nil, fmt.Errorf("%w: target_host is required", utils.ErrConfigValidation)
	}

	// Required: StartURLs, all https on the target host
	if len(c.StartURLs) == 0 {
		return nil, fmt.Errorf("%w: no start_urls configured", utils.ErrConfigValidation)
	}
	for _, seed := range c.StartURLs {
		u, parseErr := url.Parse(strings.TrimSpace(seed))
		if parseErr != nil || !u.IsAbs() {
			return nil, fmt.Errorf("%w: start URL '%s' is not an absolute URL", utils.ErrConfigValidation, seed)
		}
		if !strings.EqualFold(u.Scheme, "https") {
			return nil, fmt.Errorf("%w: start URL '%s' must use https", utils.ErrConfigValidation, seed)
		}
		if !parse.SameHost(u, c.TargetHost) {
			return nil, fmt.Errorf("%w: start URL '%s' is not on target_host '%s'", utils.ErrConfigValidation, seed, c.TargetHost)
		}
	}

	// ScopeRules: compiled later, but shape is checked here
	for i, rule := range c.ScopeRules {
		if rule.Name == "" || rule.Pattern == "" {
			return nil, fmt.Errorf("%w: scope_rules[%d] needs both name and pattern", utils.ErrConfigValidation, i)
		}
	}

	// MaxDepth
	if c.MaxDepth < 0 {
		warnings = append(warnings, fmt.Sprintf("max_depth cannot be negative, defaulting to %d", DefaultMaxDepth))
		c.MaxDepth = DefaultMaxDepth
	}

	// MaxPages
	if c.MaxPages <= 0 {
		warnings = append(warnings, fmt.Sprintf("max_pages should be > 0, defaulting to %d", DefaultMaxPages))
		c.MaxPages = DefaultMaxPages
	}

	// UserAgent
	if strings.TrimSpace(c.UserAgent) == "" {
		warnings = append(warnings, "user_agent is empty, using the built-in identification string")
		c.UserAgent = DefaultUserAgent
	}

	// Politeness delay
	if c.DelayFloor < 0 {
		warnings = append(warnings, fmt.Sprintf("delay_floor cannot be negative, defaulting to %v", DefaultDelayFloor))
		c.DelayFloor = DefaultDelayFloor
	} else if c.DelayFloor == 0 {
		warnings = append(warnings, "delay_floor is 0, requests to the target host will not be paced")
	}
	if c.DelaySpread < 0 {
		warnings = append(warnings, "delay_spread cannot be negative, setting to 0")
		c.DelaySpread = 0
	}

	// MaxPageSizeBytes
	if c.MaxPageSizeBytes <= 0 {
		c.MaxPageSizeBytes = DefaultMaxPageSizeBytes
	}

	// OutputDir
	if c.OutputDir == "" {
		warnings = append(warnings, fmt.Sprintf("output_dir is empty, defaulting to '%s'", DefaultOutputDir))
		c.OutputDir = DefaultOutputDir
	}

	// Artifact filenames
	if c.SnapshotFilename == "" {
		c.SnapshotFilename = DefaultSnapshotFilename
	}
	if c.ProductsFilename == "" {
		c.ProductsFilename = DefaultProductsFilename
	}
	if c.ArticlesFilename == "" {
		c.ArticlesFilename = DefaultArticlesFilename
	}
	if c.DocumentsFilename == "" {
		c.DocumentsFilename = DefaultDocumentsFilename
	}
	if dup := duplicateFilename(c.SnapshotFilename, c.ProductsFilename, c.ArticlesFilename, c.DocumentsFilename); dup != "" {
		return warnings, fmt.Errorf("%w: output filename '%s' is used for more than one artifact", utils.ErrConfigValidation, dup)
	}

	// HTTPClientSettings defaults
	c.validateHTTPClientSettings()

	return warnings, nil
}

func duplicateFilename(names ...string) string {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return n
		}
		seen[n] = struct{}{}
	}
	return ""
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = DefaultRequestTimeout
	}
	if h.MaxRedirects <= 0 {
		h.MaxRedirects = 10
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 10
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 2
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 10 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}
