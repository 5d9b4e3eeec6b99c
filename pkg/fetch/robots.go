package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

// maxRobotsSize caps how much of robots.txt is read
const maxRobotsSize = 512 << 10

// RobotsHandler manages fetching, parsing, caching, and checking robots.txt data
type RobotsHandler struct {
	client        *http.Client
	userAgent     string
	robotsCache   map[string]*robotstxt.RobotsData // host -> parsed data (or nil)
	robotsCacheMu sync.Mutex
	log           *logrus.Entry
}

// NewRobotsHandler creates a RobotsHandler
func NewRobotsHandler(client *http.Client, userAgent string, log *logrus.Entry) *RobotsHandler {
	return &RobotsHandler{
		client:      client,
		userAgent:   userAgent,
		robotsCache: make(map[string]*robotstxt.RobotsData),
		log:         log,
	}
}

// GetRobotsData retrieves robots.txt data for the targetURL's host, using cache or fetching
// Returns parsed data or nil on any error/non-2xx/missing file
func (rh *RobotsHandler) GetRobotsData(ctx context.Context, targetURL *url.URL) *robotstxt.RobotsData {
	host := targetURL.Host
	hostLog := rh.log.WithField("host", host)

	rh.robotsCacheMu.Lock()
	robotsData, found := rh.robotsCache[host]
	rh.robotsCacheMu.Unlock()
	if found {
		return robotsData // Could be nil
	}

	scheme := targetURL.Scheme
	if scheme != "http" && scheme != "https" {
		scheme = "https"
	}
	robotsURLStr := (&url.URL{Scheme: scheme, Host: host, Path: "/robots.txt"}).String()
	robotsLog := hostLog.WithField("robots_url", robotsURLStr)
	robotsLog.Info("Fetching robots.txt...")

	data := rh.fetchRobots(ctx, robotsURLStr, robotsLog)
	if data == nil && ctx.Err() != nil {
		return nil // Do not cache a cancelled lookup
	}

	rh.robotsCacheMu.Lock()
	rh.robotsCache[host] = data
	rh.robotsCacheMu.Unlock()
	return data
}

func (rh *RobotsHandler) fetchRobots(ctx context.Context, robotsURL string, robotsLog *logrus.Entry) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		robotsLog.Errorf("Error creating request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", rh.userAgent)

	resp, err := rh.client.Do(req)
	if err != nil {
		robotsLog.Warnf("Fetching robots.txt failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		robotsLog.WithField("status_code", resp.StatusCode).Info("No usable robots.txt, all paths allowed")
		return nil
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		robotsLog.Errorf("Error reading body: %v", err)
		return nil
	}

	data, err := robotstxt.FromBytes(bodyBytes)
	if err != nil {
		robotsLog.Errorf("Error parsing content: %v", err)
		return nil
	}
	robotsLog.Info("Successfully fetched and parsed robots.txt")
	return data
}

// Allowed checks if the user agent may fetch targetURL.
// Returns true if allowed or if robots data could not be obtained.
func (rh *RobotsHandler) Allowed(ctx context.Context, targetURL *url.URL) bool {
	robotsData := rh.GetRobotsData(ctx, targetURL)
	if robotsData == nil {
		return true
	}
	return robotsData.TestAgent(targetURL.RequestURI(), rh.userAgent)
}
