package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/site-snapshot/pkg/config"
	"github.com/Sriram-PR/site-snapshot/pkg/fetch"
	"github.com/Sriram-PR/site-snapshot/pkg/models"
	"github.com/Sriram-PR/site-snapshot/pkg/scope"
	"github.com/Sriram-PR/site-snapshot/pkg/storage"
	"github.com/Sriram-PR/site-snapshot/pkg/utils"
)

// testLogger returns a logger that discards output
func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func htmlPage(title, body string) string {
	return fmt.Sprintf("<html><head><title>%s</title></head><body>%s</body></html>", title, body)
}

// sitePages is a small catalog site served over TLS. /broken answers 500 and
// /leak is only linked from the error body. {plain} expands to the site's
// origin with an http scheme.
var sitePages = map[string]string{
	"/": htmlPage("Home", `
		<h1>Welcome</h1><p>Hydrogen water for everyone.</p>
		<a href="/catalog">Catalog</a>
		<a href="/about">About</a>
		<a href="/news">News</a>
		<a href="https://other-domain.example/page">Elsewhere</a>
		<a href="/files/cert.pdf">Certificate</a>`),
	"/catalog": htmlPage("Catalog", `
		<h2>Products</h2>
		<a href="/tproduct/123-widget">Widget</a>
		<a href="/tproduct/456-gadget">Gadget</a>
		<a href="/files/cert.pdf">Quality certificate (copy)</a>
		<a href="/files/manual.docx"></a>`),
	"/tproduct/123-widget": htmlPage("Widget | Shop", `
		<h1>Widget Pro</h1><p>A.</p><p>B.</p><p>C.</p><p>D.</p>
		<img src="/img/widget.png">`),
	"/tproduct/456-gadget": htmlPage("Gadget | Shop", `<h1>Gadget</h1><p>Small &amp; handy.</p>`),
	"/about":               htmlPage("About", `<p>Who we are.</p><a href="/deep1">More</a>`),
	"/deep1":               htmlPage("Deep 1", `<a href="/deep2">Next</a>`),
	"/deep2":               htmlPage("Deep 2", `<a href="/deep3">Next</a>`),
	"/deep3":               htmlPage("Deep 3", `<a href="/deep4">Next</a>`),
	"/deep4":               htmlPage("Deep 4", `<p>Bottom.</p>`),
	"/news": htmlPage("News", `<h1>Company news</h1><p>We opened a shop.</p><p>Second line.</p><p>Third.</p>
		<a href="{plain}/about#team">About us</a>
		<a href="{plain}/files/cert.pdf">Certificate (plain link)</a>
		<img src="{plain}/img/news.png">`),
	"/leak": htmlPage("Leak", `<p>never linked from a good page</p>`),
}

// testSite serves sitePages and counts hits per path
type testSite struct {
	server *httptest.Server
	mu     sync.Mutex
	hits   map[string]int
	hook   func(path string)
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	site := &testSite{hits: make(map[string]int)}
	site.server = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.hits[r.URL.Path]++
		hook := site.hook
		site.mu.Unlock()
		if hook != nil {
			hook(r.URL.Path)
		}

		if r.URL.Path == "/broken" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, htmlPage("Error", `<a href="/leak">leak</a>`))
			return
		}
		body, ok := sitePages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, strings.ReplaceAll(body, "{plain}", "http://"+r.Host))
	}))
	t.Cleanup(site.server.Close)
	return site
}

func (s *testSite) host(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(s.server.URL)
	require.NoError(t, err)
	return u.Host
}

func (s *testSite) url(path string) string { return s.server.URL + path }

// fetcher builds a fetcher whose client trusts the site's certificate
func (s *testSite) fetcher(cfg *config.AppConfig) fetch.HTTPFetcher {
	client := fetch.NewClient(cfg.HTTPClientSettings, testLogger())
	client.Transport = s.server.Client().Transport
	return fetch.NewFetcher(client, cfg.TargetHost, cfg.UserAgent, cfg.MaxPageSizeBytes, testLogger())
}

func (s *testSite) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *testSite) totalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

// siteConfig returns a validated config pointed at site
func siteConfig(t *testing.T, site *testSite, mutate func(*config.AppConfig)) *config.AppConfig {
	t.Helper()
	cfg := config.Default()
	cfg.TargetHost = site.host(t)
	cfg.StartURLs = []string{site.url("/")}
	cfg.OutputDir = t.TempDir()
	cfg.DelayFloor = 0
	cfg.DelaySpread = 0
	if mutate != nil {
		mutate(&cfg)
	}
	_, err := cfg.Validate()
	require.NoError(t, err)
	return &cfg
}

func newTestSession(t *testing.T, cfg *config.AppConfig, fetcher fetch.HTTPFetcher, opts ...Option) (*Session, *storage.MemoryStore) {
	t.Helper()
	policy, err := scope.NewRuleSet(cfg.TargetHost, cfg.ScopeRules)
	require.NoError(t, err)
	store := storage.NewMemoryStore()
	pacer := fetch.NewPacer(cfg.DelayFloor, cfg.DelaySpread, testLogger())
	session, err := NewSession(cfg, fetcher, pacer, policy, store, testLogger(), opts...)
	require.NoError(t, err)
	return session, store
}

// fetcherFunc adapts a function to fetch.HTTPFetcher
type fetcherFunc func(ctx context.Context, rawURL string) (*fetch.Page, error)

func (f fetcherFunc) Fetch(ctx context.Context, rawURL string) (*fetch.Page, error) {
	return f(ctx, rawURL)
}

// denyRobots disallows every URL whose path is listed
type denyRobots map[string]bool

func (d denyRobots) Allowed(_ context.Context, u *url.URL) bool { return !d[u.Path] }

func pageURLs(result *Result) []string {
	urls := make([]string, 0, len(result.Snapshot.Pages))
	for _, p := range result.Snapshot.Pages {
		urls = append(urls, p.URL)
	}
	return urls
}

func TestRunCrawlsWholeSite(t *testing.T) {
	site := newTestSite(t)
	cfg := siteConfig(t, site, nil)
	session, store := newTestSession(t, cfg, site.fetcher(cfg))

	result, err := session.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	// BFS order: seed, then its links in document order, then depth 2.
	expected := []string{
		site.url("/"),
		site.url("/catalog"),
		site.url("/about"),
		site.url("/news"),
		site.url("/tproduct/123-widget"),
		site.url("/tproduct/456-gadget"),
		site.url("/deep1"),
		site.url("/deep2"),
	}
	assert.Equal(t, expected, pageURLs(result))
	assert.Equal(t, 0, site.hitCount("/deep3"), "depth 4 page must not be fetched with max depth 3")
	assert.Equal(t, 0, site.hitCount("/files/cert.pdf"), "documents are collected, not crawled")
	assert.Equal(t, len(expected), store.GetVisitedCount())

	for _, u := range store.VisitedURLs() {
		assert.NotContains(t, u, "other-domain.example")
	}

	require.Len(t, result.Products, 2)
	widget := result.Products[0]
	assert.Equal(t, site.url("/tproduct/123-widget"), widget.URL)
	assert.Equal(t, "123-widget", widget.Slug)
	assert.Equal(t, "Widget Pro", widget.Title)
	assert.Equal(t, "A. B. C.", widget.Description)
	assert.Equal(t, []string{site.url("/img/widget.png")}, widget.Images)

	require.Len(t, result.Articles, 1)
	assert.Equal(t, site.url("/news"), result.Articles[0].URL)
	assert.Equal(t, "Company news", result.Articles[0].Title)
	assert.Equal(t, "We opened a shop. Second line.", result.Articles[0].Excerpt)

	assert.Equal(t, []models.DocumentLink{
		{URL: site.url("/files/cert.pdf"), Title: "Certificate"},
		{URL: site.url("/files/manual.docx"), Title: "manual.docx"},
	}, result.Documents)

	stats := result.Stats
	assert.Equal(t, len(expected), stats.Visited)
	assert.Equal(t, len(expected), stats.Saved)
	assert.Equal(t, 0, stats.TotalSkipped())
	assert.Equal(t, 2, stats.Products)
	assert.Equal(t, 1, stats.Articles)
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, session.RunID(), stats.RunID)
}

func TestRunStoredURLsAreHTTPSOnTargetHost(t *testing.T) {
	site := newTestSite(t)
	cfg := siteConfig(t, site, nil)
	session, _ := newTestSession(t, cfg, site.fetcher(cfg))

	result, err := session.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.TotalSkipped(), "plain-http links must not be fetched as separate pages")

	var stored []string
	for _, p := range result.Snapshot.Pages {
		stored = append(stored, p.URL)
		stored = append(stored, p.Links...)
		stored = append(stored, p.Images...)
		for _, d := range p.Documents {
			stored = append(stored, d.URL)
		}
	}
	for _, p := range result.Products {
		stored = append(stored, p.URL)
		stored = append(stored, p.Images...)
		for _, d := range p.Documents {
			stored = append(stored, d.URL)
		}
	}
	for _, a := range result.Articles {
		stored = append(stored, a.URL)
	}
	for _, d := range result.Documents {
		stored = append(stored, d.URL)
	}

	require.NotEmpty(t, stored)
	for _, raw := range stored {
		u, err := url.Parse(raw)
		require.NoError(t, err, raw)
		assert.True(t, u.IsAbs(), "%s is not absolute", raw)
		assert.Equal(t, "https", u.Scheme, raw)
		assert.Equal(t, cfg.TargetHost, u.Host, raw)
		assert.Empty(t, u.Fragment, raw)
		assert.NotContains(t, raw, "#", raw)
	}

	var news *models.SnapshotPage
	for i := range result.Snapshot.Pages {
		if result.Snapshot.Pages[i].URL == site.url("/news") {
			news = &result.Snapshot.Pages[i]
		}
	}
	require.NotNil(t, news)
	assert.Contains(t, news.Links, site.url("/about"))
	assert.Equal(t, []string{site.url("/img/news.png")}, news.Images)
	assert.Equal(t, []models.DocumentLink{{URL: site.url("/files/cert.pdf"), Title: "Certificate (plain link)"}}, news.Documents)
	assert.Equal(t, 1, site.hitCount("/about"))
}

func TestRunNoDuplicateVisits(t *testing.T) {
	site := newTestSite(t)
	// Seeds repeat and differ only by trailing slash and fragment.
	cfg := siteConfig(t, site, func(c *config.AppConfig) {
		c.StartURLs = []string{site.url("/"), site.url("/catalog/"), site.url("/catalog#top"), site.url("/")}
	})
	session, store := newTestSession(t, cfg, site.fetcher(cfg))

	result, err := session.Run(context.Background())
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, u := range pageURLs(result) {
		assert.False(t, seen[u], "page %s recorded twice", u)
		seen[u] = true
	}
	visited := store.VisitedURLs()
	seenVisited := make(map[string]bool)
	for _, u := range visited {
		assert.False(t, seenVisited[u], "URL %s visited twice", u)
		seenVisited[u] = true
	}

	site.mu.Lock()
	defer site.mu.Unlock()
	for path, n := range site.hits {
		assert.Equal(t, 1, n, "path %s fetched %d times", path, n)
	}
}

func TestRunDepthBound(t *testing.T) {
	tests := []struct {
		name     string
		maxDepth int
		fetched  []string
		unseen   []string
	}{
		{"seeds only", 0, []string{"/"}, []string{"/catalog", "/about"}},
		{"one hop", 1, []string{"/", "/catalog", "/about", "/news"}, []string{"/deep1", "/tproduct/123-widget"}},
		{"two hops", 2, []string{"/deep1", "/tproduct/123-widget"}, []string{"/deep2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := newTestSite(t)
			cfg := siteConfig(t, site, func(c *config.AppConfig) { c.MaxDepth = tt.maxDepth })
			session, _ := newTestSession(t, cfg, site.fetcher(cfg))

			result, err := session.Run(context.Background())
			require.NoError(t, err)

			for _, p := range tt.fetched {
				assert.Equal(t, 1, site.hitCount(p), "expected %s fetched", p)
			}
			for _, p := range tt.unseen {
				assert.Equal(t, 0, site.hitCount(p), "expected %s not fetched", p)
				assert.NotContains(t, pageURLs(result), site.url(p))
			}
		})
	}
}

func TestRunSkipsTasksBeyondDepthWithoutFetching(t *testing.T) {
	site := newTestSite(t)
	cfg := siteConfig(t, site, nil)
	cfg.MaxDepth = -1 // bypasses Validate so the seed itself is too deep

	session, store := newTestSession(t, cfg, site.fetcher(cfg))
	result, err := session.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, site.totalHits())
	assert.Empty(t, result.Snapshot.Pages)
	assert.Equal(t, 1, result.Stats.Skipped[models.SkipReasonDepth])

	status, reason, ok := store.CheckPageStatus(site.url("/"))
	require.True(t, ok)
	assert.Equal(t, models.TaskStatusSkipped, status)
	assert.Equal(t, models.SkipReasonDepth, reason)
}

func TestRunPageCeiling(t *testing.T) {
	for _, maxPages := range []int{1, 3, 5} {
		t.Run(fmt.Sprintf("max_pages=%d", maxPages), func(t *testing.T) {
			site := newTestSite(t)
			cfg := siteConfig(t, site, func(c *config.AppConfig) { c.MaxPages = maxPages })
			session, store := newTestSession(t, cfg, site.fetcher(cfg))

			result, err := session.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, maxPages, store.GetVisitedCount())
			assert.Len(t, result.Snapshot.Pages, maxPages)
			assert.Equal(t, maxPages, site.totalHits())
		})
	}
}

func TestRunSeedServerErrorIsSkipped(t *testing.T) {
	site := newTestSite(t)
	cfg := siteConfig(t, site, func(c *config.AppConfig) {
		c.StartURLs = []string{site.url("/broken"), site.url("/")}
		c.MaxDepth = 1
	})
	session, store := newTestSession(t, cfg, site.fetcher(cfg))

	result, err := session.Run(context.Background())
	require.NoError(t, err, "a failing seed must not end the run")

	assert.Equal(t, 1, site.hitCount("/broken"), "HTTP errors are not retried")
	assert.Equal(t, 0, site.hitCount("/leak"), "links of a failed page are never queued")
	assert.Equal(t, 1, site.hitCount("/"))
	assert.Equal(t, 1, site.hitCount("/catalog"))

	assert.Equal(t, 1, result.Stats.Skipped[models.SkipReasonHTTPStatus])
	assert.NotContains(t, pageURLs(result), site.url("/broken"))

	status, reason, ok := store.CheckPageStatus(site.url("/broken"))
	require.True(t, ok)
	assert.Equal(t, models.TaskStatusSkipped, status)
	assert.Equal(t, models.SkipReasonHTTPStatus, reason)
}

func TestRunFetchFailuresAreCategorized(t *testing.T) {
	host := "shop.example"
	cfg := config.Default()
	cfg.TargetHost = host
	cfg.StartURLs = []string{"https://shop.example/", "https://shop.example/about", "https://shop.example/away", "https://shop.example/pdf"}
	cfg.DelayFloor, cfg.DelaySpread = 0, 0
	_, err := cfg.Validate()
	require.NoError(t, err)

	fetcher := fetcherFunc(func(_ context.Context, rawURL string) (*fetch.Page, error) {
		switch rawURL {
		case "https://shop.example/about":
			return nil, fmt.Errorf("%w: connection reset", utils.ErrNetwork)
		case "https://shop.example/away":
			return nil, fmt.Errorf("%w: redirect to other.example", utils.ErrScopeViolation)
		case "https://shop.example/pdf":
			return nil, fmt.Errorf("%w: content type application/pdf", utils.ErrParsing)
		}
		return &fetch.Page{URL: rawURL, StatusCode: 200, HTML: htmlPage("Home", "<p>ok</p>")}, nil
	})

	session, _ := newTestSession(t, &cfg, fetcher)
	result, err := session.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Snapshot.Pages, 1)
	assert.Equal(t, map[models.SkipReason]int{
		models.SkipReasonNetwork: 1,
		models.SkipReasonScope:   1,
		models.SkipReasonParse:   1,
	}, result.Stats.Skipped)
}

func TestRunRobotsDisallowed(t *testing.T) {
	site := newTestSite(t)
	cfg := siteConfig(t, site, func(c *config.AppConfig) { c.MaxDepth = 1 })
	session, _ := newTestSession(t, cfg, site.fetcher(cfg), WithRobots(denyRobots{"/about": true}))

	result, err := session.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, site.hitCount("/about"))
	assert.Equal(t, 1, result.Stats.Skipped[models.SkipReasonRobots])
	assert.Equal(t, 1, site.hitCount("/catalog"))
}

func TestRunClassificationIsExclusive(t *testing.T) {
	host := "shop.example"
	cfg := config.Default()
	cfg.TargetHost = host
	cfg.StartURLs = []string{"https://shop.example/"}
	cfg.DelayFloor, cfg.DelaySpread = 0, 0
	cfg.ScopeRules = []config.ScopeRuleConfig{{Name: "anything", Pattern: `^https://{host}/`}}
	_, err := cfg.Validate()
	require.NoError(t, err)

	pages := map[string]string{
		"https://shop.example/":                     htmlPage("Home", `<a href="/blog/tproduct/7-both">x</a><a href="/news/item">y</a>`),
		"https://shop.example/blog/tproduct/7-both": htmlPage("Both", `<h1>Both</h1><p>Body.</p>`),
		"https://shop.example/news/item":            htmlPage("Item", `<h1>Item</h1>`),
	}
	fetcher := fetcherFunc(func(_ context.Context, rawURL string) (*fetch.Page, error) {
		body, ok := pages[rawURL]
		if !ok {
			return nil, fmt.Errorf("%w: status 404 Not Found", utils.ErrClientHTTPError)
		}
		return &fetch.Page{URL: rawURL, StatusCode: 200, HTML: body}, nil
	})

	session, _ := newTestSession(t, &cfg, fetcher)
	result, err := session.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Products, 1)
	assert.Equal(t, "https://shop.example/blog/tproduct/7-both", result.Products[0].URL)
	require.Len(t, result.Articles, 1)
	assert.Equal(t, "https://shop.example/news/item", result.Articles[0].URL)

	productURLs := make(map[string]bool)
	for _, p := range result.Products {
		productURLs[p.URL] = true
	}
	for _, a := range result.Articles {
		assert.False(t, productURLs[a.URL], "%s is both product and article", a.URL)
	}
}

func TestRunDocumentDedupKeepsFirstTitle(t *testing.T) {
	site := newTestSite(t)
	// /catalog is processed before / here, so its anchor text wins.
	cfg := siteConfig(t, site, func(c *config.AppConfig) {
		c.StartURLs = []string{site.url("/catalog"), site.url("/")}
		c.MaxDepth = 0
	})
	session, _ := newTestSession(t, cfg, site.fetcher(cfg))

	result, err := session.Run(context.Background())
	require.NoError(t, err)

	count := 0
	for _, d := range result.Documents {
		if d.URL == site.url("/files/cert.pdf") {
			count++
			assert.Equal(t, "Quality certificate (copy)", d.Title)
		}
	}
	assert.Equal(t, 1, count)

	seen := make(map[string]bool)
	for _, d := range result.Documents {
		assert.False(t, seen[d.URL], "document %s listed twice", d.URL)
		seen[d.URL] = true
	}
}

func TestRunRespectsDelayFloor(t *testing.T) {
	const floor = 30 * time.Millisecond
	site := newTestSite(t)
	cfg := siteConfig(t, site, func(c *config.AppConfig) {
		c.StartURLs = []string{site.url("/broken"), site.url("/")}
		c.MaxPages = 4
		c.DelayFloor = floor
		c.DelaySpread = 10 * time.Millisecond
	})
	session, store := newTestSession(t, cfg, site.fetcher(cfg))

	start := time.Now()
	_, err := session.Run(context.Background())
	require.NoError(t, err)
	elapsed := time.Since(start)

	processed := store.GetVisitedCount()
	require.Equal(t, 4, processed)
	assert.GreaterOrEqual(t, elapsed, time.Duration(processed)*floor,
		"%d tasks finished in %v", processed, elapsed)
}

func TestRunCancelledBeforeStart(t *testing.T) {
	site := newTestSite(t)
	cfg := siteConfig(t, site, nil)
	session, _ := newTestSession(t, cfg, site.fetcher(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := session.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.Zero(t, site.totalHits())
}

func TestRunCancelledMidCrawl(t *testing.T) {
	site := newTestSite(t)
	cfg := siteConfig(t, site, nil)
	session, _ := newTestSession(t, cfg, site.fetcher(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	site.mu.Lock()
	site.hook = func(path string) {
		if path == "/about" {
			cancel()
		}
	}
	site.mu.Unlock()

	result, err := session.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.Equal(t, 0, site.hitCount("/news"), "no task starts after cancellation")
}

func TestRunOnlyOnce(t *testing.T) {
	site := newTestSite(t)
	cfg := siteConfig(t, site, func(c *config.AppConfig) { c.MaxPages = 1 })
	session, _ := newTestSession(t, cfg, site.fetcher(cfg))

	_, err := session.Run(context.Background())
	require.NoError(t, err)
	_, err = session.Run(context.Background())
	assert.ErrorIs(t, err, ErrSessionUsed)
}

func TestRunDropsInvalidSeeds(t *testing.T) {
	site := newTestSite(t)
	cfg := siteConfig(t, site, func(c *config.AppConfig) { c.MaxDepth = 0 })
	// Set after validation, which would reject them.
	cfg.StartURLs = []string{"https://other-domain.example/page", "::not a url", site.url("/")}
	session, _ := newTestSession(t, cfg, site.fetcher(cfg))

	result, err := session.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{site.url("/")}, pageURLs(result))
}

func TestRunGeneratedAtIsUTCMillis(t *testing.T) {
	site := newTestSite(t)
	cfg := siteConfig(t, site, func(c *config.AppConfig) { c.MaxPages = 1 })
	fixed := time.Date(2024, 5, 1, 12, 30, 45, 123456789, time.FixedZone("CEST", 2*60*60))
	session, _ := newTestSession(t, cfg, site.fetcher(cfg), WithClock(func() time.Time { return fixed }), WithRunID("run-1"))

	result, err := session.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T10:30:45.123Z", result.Snapshot.GeneratedAt)
	assert.Equal(t, "run-1", result.Stats.RunID)
	assert.Equal(t, fixed, result.Stats.StartedAt)
}

func TestNewSessionRequiresComponents(t *testing.T) {
	cfg := config.Default()
	_, _ = cfg.Validate()
	policy, err := scope.NewRuleSet(cfg.TargetHost, nil)
	require.NoError(t, err)
	fetcher := fetcherFunc(func(context.Context, string) (*fetch.Page, error) {
		return nil, errors.New("unused")
	})

	_, err = NewSession(&cfg, nil, nil, policy, storage.NewMemoryStore(), testLogger())
	assert.Error(t, err)

	bad := cfg
	bad.MaxPages = 0
	_, err = NewSession(&bad, fetcher, nil, policy, storage.NewMemoryStore(), testLogger())
	assert.ErrorIs(t, err, utils.ErrConfigValidation)

	session, err := NewSession(&cfg, fetcher, nil, policy, storage.NewMemoryStore(), nil)
	require.NoError(t, err, "a nil logger falls back to a discarding one")
	assert.NotEmpty(t, session.RunID())
	assert.Equal(t, 4, strings.Count(session.RunID(), "-"), "run id is a UUID")
}
