package models

import "time"

// CrawlTask represents a URL and the depth it was discovered at
type CrawlTask struct {
	URL   string
	Depth int
}

// DocumentLink is a hyperlink to a downloadable document (pdf/doc/docx)
type DocumentLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// SnapshotPage is the extracted content of one successfully fetched page.
// Slices are always non-nil so they serialize as [] rather than null.
type SnapshotPage struct {
	URL        string         `json:"url"`
	Title      string         `json:"title"`
	Headings   []string       `json:"headings"`
	Paragraphs []string       `json:"paragraphs"`
	Lists      []string       `json:"lists"`
	Images     []string       `json:"images"`
	Documents  []DocumentLink `json:"documents"`
	Links      []string       `json:"links"` // In-scope outbound URLs only
}

// NewSnapshotPage returns a page record with all collections initialized.
func NewSnapshotPage(url string) SnapshotPage {
	return SnapshotPage{
		URL:        url,
		Headings:   []string{},
		Paragraphs: []string{},
		Lists:      []string{},
		Images:     []string{},
		Documents:  []DocumentLink{},
		Links:      []string{},
	}
}

// Product is derived from a page whose URL has the product-detail shape
type Product struct {
	URL         string         `json:"url"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Images      []string       `json:"images"`
	Documents   []DocumentLink `json:"documents"`
}

// Article is derived from a page whose URL has a blog/news/article segment
type Article struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt,omitempty"`
}

// SnapshotDocument is the top-level shape of the snapshot artifact
type SnapshotDocument struct {
	GeneratedAt string         `json:"generatedAt"` // ISO-8601, UTC
	Pages       []SnapshotPage `json:"pages"`
}

// CrawlStats summarizes one crawl run. Skip counts are keyed by reason.
type CrawlStats struct {
	RunID     string             `yaml:"run_id"`
	StartedAt time.Time          `yaml:"started_at"`
	Duration  time.Duration      `yaml:"duration"`
	Visited   int                `yaml:"visited"`
	Saved     int                `yaml:"saved"`
	Products  int                `yaml:"products"`
	Articles  int                `yaml:"articles"`
	Documents int                `yaml:"documents"`
	Skipped   map[SkipReason]int `yaml:"skipped"`
}

// NewCrawlStats returns stats with an initialized skip map.
func NewCrawlStats(runID string) *CrawlStats {
	return &CrawlStats{
		RunID:   runID,
		Skipped: make(map[SkipReason]int),
	}
}

// RecordSkip increments the counter for reason.
func (s *CrawlStats) RecordSkip(reason SkipReason) {
	s.Skipped[reason]++
}

// TotalSkipped returns the sum of all skip counters.
func (s *CrawlStats) TotalSkipped() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}
