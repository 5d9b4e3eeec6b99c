package fetch

import (
	"fmt"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/site-snapshot/pkg/config"
)

// NewClient creates a new HTTP client based on the provided configuration.
// Zero-valued settings should be defaulted by config.Validate beforehand.
func NewClient(cfg config.HTTPClientConfig, log *logrus.Entry) *http.Client {
	log.Debug("Initializing HTTP client...")

	dialer := &net.Dialer{
		Timeout:   cfg.DialerTimeout,
		KeepAlive: cfg.DialerKeepAlive,
	}

	transport := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		DialContext:            dialer.DialContext,
		ForceAttemptHTTP2:      true, // Default to true unless explicitly disabled
		MaxIdleConns:           cfg.MaxIdleConns,
		MaxIdleConnsPerHost:    cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:        cfg.IdleConnTimeout,
		TLSHandshakeTimeout:    cfg.TLSHandshakeTimeout,
		ExpectContinueTimeout:  cfg.ExpectContinueTimeout,
		MaxResponseHeaderBytes: 1 << 20,
	}
	if cfg.ForceAttemptHTTP2 != nil {
		transport.ForceAttemptHTTP2 = *cfg.ForceAttemptHTTP2
	}

	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}

	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			log.Debugf("Redirecting: %s -> %s (hop %d)", via[len(via)-1].URL, req.URL, len(via))
			return nil
		},
	}
	log.WithField("timeout", cfg.Timeout).Debug("HTTP client initialized.")
	return client
}
