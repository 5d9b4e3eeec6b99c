package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"

	"github.com/Sriram-PR/site-snapshot/pkg/parse"
	"github.com/Sriram-PR/site-snapshot/pkg/utils"
)

// Page is a successfully fetched HTML document, decoded to UTF-8
type Page struct {
	URL         string // URL that was requested
	FinalURL    string // URL after redirects
	StatusCode  int
	ContentType string
	HTML        string
}

// HTTPFetcher retrieves one page. Implementations never retry.
type HTTPFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// Fetcher performs single-attempt GET requests against the target host
type Fetcher struct {
	client      *http.Client
	host        string
	userAgent   string
	maxBodySize int64
	log         *logrus.Entry
}

var _ HTTPFetcher = (*Fetcher)(nil)

// NewFetcher creates a Fetcher. The client is copied so that redirects leaving
// host can be refused without touching the caller's client.
func NewFetcher(client *http.Client, host, userAgent string, maxBodySize int64, log *logrus.Entry) *Fetcher {
	scoped := *client
	inner := client.CheckRedirect
	scoped.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if !parse.SameHost(req.URL, host) {
			return fmt.Errorf("%w: redirect to '%s'", utils.ErrScopeViolation, req.URL.Host)
		}
		if inner != nil {
			return inner(req, via)
		}
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}

	return &Fetcher{
		client:      &scoped,
		host:        host,
		userAgent:   userAgent,
		maxBodySize: maxBodySize,
		log:         log,
	}
}

// Fetch performs one GET request for rawURL.
// Any non-2xx status, network failure, oversized or non-HTML body yields an
// error wrapping one of the utils sentinels. Context cancellation is returned
// as the bare context error so callers can tell it apart from a failed page.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	reqLog := f.log.WithField("url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrRequestCreation, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, utils.ErrScopeViolation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", utils.ErrNetwork, err)
	}
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
	}()

	statusCode := resp.StatusCode
	resLog := reqLog.WithFields(logrus.Fields{"status_code": statusCode, "status": resp.Status})

	switch {
	case statusCode >= 200 && statusCode < 300:
		resLog.Debug("Successfully fetched")
	case statusCode >= 500:
		return nil, fmt.Errorf("%w: status %d %s", utils.ErrServerHTTPError, statusCode, http.StatusText(statusCode))
	case statusCode >= 400:
		return nil, fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, statusCode, http.StatusText(statusCode))
	default:
		return nil, fmt.Errorf("%w: status %d %s", utils.ErrOtherHTTPError, statusCode, http.StatusText(statusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTMLContentType(contentType) {
		return nil, fmt.Errorf("%w: unsupported content type '%s'", utils.ErrParsing, contentType)
	}

	body, err := f.readBody(resp.Body, contentType)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	return &Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  statusCode,
		ContentType: contentType,
		HTML:        body,
	}, nil
}

// readBody reads at most maxBodySize bytes and decodes them to UTF-8 using the
// charset declared in the header or sniffed from the document
func (f *Fetcher) readBody(body io.Reader, contentType string) (string, error) {
	limit := f.maxBodySize
	if limit <= 0 {
		limit = 10 << 20
	}

	raw, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return "", fmt.Errorf("%w: %w", utils.ErrResponseBodyRead, err)
	}
	if int64(len(raw)) > limit {
		return "", fmt.Errorf("%w: body exceeds %d bytes", utils.ErrResponseBodyRead, limit)
	}

	decoded, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		f.log.WithError(err).Debug("Charset detection failed, using raw bytes")
		return string(raw), nil
	}
	utf8Body, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("%w: decoding body: %w", utils.ErrResponseBodyRead, err)
	}
	return string(utf8Body), nil
}

// isHTMLContentType accepts HTML media types and a missing header
func isHTMLContentType(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
