package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Sriram-PR/site-snapshot/pkg/models"
)

// ErrNotVisited is returned when updating a URL that was never marked
var ErrNotVisited = errors.New("URL not marked visited")

type pageEntry struct {
	status models.TaskStatus
	reason models.SkipReason
}

// MemoryStore is an in-process VisitedStore. The set only grows.
type MemoryStore struct {
	mu    sync.RWMutex
	pages map[string]*pageEntry
	order []string
}

var _ VisitedStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: make(map[string]*pageEntry)}
}

// MarkPageVisited implements VisitedStore
func (s *MemoryStore) MarkPageVisited(normalizedPageURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pages[normalizedPageURL]; exists {
		return false, nil
	}
	s.pages[normalizedPageURL] = &pageEntry{}
	s.order = append(s.order, normalizedPageURL)
	return true, nil
}

// UpdatePageStatus implements VisitedStore
func (s *MemoryStore) UpdatePageStatus(normalizedPageURL string, status models.TaskStatus, reason models.SkipReason) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid task status %q for '%s'", status, normalizedPageURL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.pages[normalizedPageURL]
	if !exists {
		return fmt.Errorf("%w: '%s'", ErrNotVisited, normalizedPageURL)
	}
	entry.status = status
	entry.reason = reason
	return nil
}

// CheckPageStatus implements VisitedStore
func (s *MemoryStore) CheckPageStatus(normalizedPageURL string) (models.TaskStatus, models.SkipReason, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.pages[normalizedPageURL]
	if !exists {
		return models.TaskStatusUnset, "", false
	}
	return entry.status, entry.reason, true
}

// GetVisitedCount implements VisitedStore
func (s *MemoryStore) GetVisitedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// VisitedURLs implements VisitedStore
func (s *MemoryStore) VisitedURLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
