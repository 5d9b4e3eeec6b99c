package models

// TaskStatus represents the outcome of a dequeued crawl task
type TaskStatus string

const (
	TaskStatusUnset   TaskStatus = ""        // Zero value = unset/unknown
	TaskStatusSuccess TaskStatus = "success" // Page fetched, parsed and recorded
	TaskStatusSkipped TaskStatus = "skipped" // Page visited but abandoned (depth, HTTP, network, parse)
)

// String implements fmt.Stringer for logging
func (s TaskStatus) String() string {
	if s == "" {
		return "unset"
	}
	return string(s)
}

// IsValid returns true if the status is a known operational value
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusSuccess, TaskStatusSkipped:
		return true
	}
	return false
}

// SkipReason buckets skipped tasks for the end-of-run summary
type SkipReason string

const (
	SkipReasonDepth      SkipReason = "depth"       // Discovered beyond max depth
	SkipReasonHTTPStatus SkipReason = "http_status" // Non-2xx response
	SkipReasonNetwork    SkipReason = "network"     // DNS, reset, timeout, body read
	SkipReasonParse      SkipReason = "parse"       // HTML could not be parsed/extracted
	SkipReasonRobots     SkipReason = "robots"      // Disallowed by robots.txt
	SkipReasonScope      SkipReason = "scope"       // Redirected off the target host
)

// String implements fmt.Stringer for logging
func (r SkipReason) String() string {
	if r == "" {
		return "unset"
	}
	return string(r)
}

// PageKind is the classification of a page by URL shape
type PageKind string

const (
	PageKindPage    PageKind = "page"
	PageKindProduct PageKind = "product"
	PageKindArticle PageKind = "article"
)
