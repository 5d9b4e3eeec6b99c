package storage

import "github.com/Sriram-PR/site-snapshot/pkg/models"

// VisitedStore tracks which URLs a crawl run has dequeued and how each one ended.
// Visited state lives for one run only.
type VisitedStore interface {
	// MarkPageVisited records a URL as visited
	// Returns true if the URL was newly added, false if it already existed
	MarkPageVisited(normalizedPageURL string) (bool, error)

	// UpdatePageStatus records the outcome for an already visited URL
	UpdatePageStatus(normalizedPageURL string, status models.TaskStatus, reason models.SkipReason) error

	// CheckPageStatus returns the recorded outcome and whether the URL was visited at all
	CheckPageStatus(normalizedPageURL string) (models.TaskStatus, models.SkipReason, bool)

	// GetVisitedCount returns the number of visited URLs
	GetVisitedCount() int

	// VisitedURLs returns visited URLs in the order they were marked
	VisitedURLs() []string
}
