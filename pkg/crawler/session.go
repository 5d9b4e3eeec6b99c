package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/site-snapshot/pkg/config"
	"github.com/Sriram-PR/site-snapshot/pkg/fetch"
	sslog "github.com/Sriram-PR/site-snapshot/pkg/log"
	"github.com/Sriram-PR/site-snapshot/pkg/models"
	"github.com/Sriram-PR/site-snapshot/pkg/parse"
	"github.com/Sriram-PR/site-snapshot/pkg/process"
	"github.com/Sriram-PR/site-snapshot/pkg/queue"
	"github.com/Sriram-PR/site-snapshot/pkg/scope"
	"github.com/Sriram-PR/site-snapshot/pkg/storage"
	"github.com/Sriram-PR/site-snapshot/pkg/utils"
)

// generatedAtLayout is ISO-8601 in UTC with millisecond precision
const generatedAtLayout = "2006-01-02T15:04:05.000Z"

// ErrSessionUsed is returned when Run is called more than once on a Session
var ErrSessionUsed = errors.New("crawl session already ran")

// RobotsChecker decides whether robots.txt permits fetching a URL
type RobotsChecker interface {
	Allowed(ctx context.Context, targetURL *url.URL) bool
}

// Result holds everything one crawl run produced
type Result struct {
	Snapshot  models.SnapshotDocument
	Products  []models.Product
	Articles  []models.Article
	Documents []models.DocumentLink
	Stats     *models.CrawlStats
}

// Session owns all state for one crawl run. It is not reusable.
type Session struct {
	log     *logrus.Entry
	cfg     *config.AppConfig
	runID   string
	now     func() time.Time
	started bool

	// Core components
	fetcher  fetch.HTTPFetcher
	pacer    *fetch.Pacer
	policy   scope.Policy
	store    storage.VisitedStore
	robots   RobotsChecker // nil = robots.txt not consulted
	frontier *queue.Frontier

	// Accumulated output
	pages     []models.SnapshotPage
	products  []models.Product
	articles  []models.Article
	documents []models.DocumentLink
	docIndex  map[string]struct{}
	stats     *models.CrawlStats
}

// Option customizes a Session
type Option func(*Session)

// WithRobots makes the session skip URLs the checker disallows
func WithRobots(r RobotsChecker) Option {
	return func(s *Session) { s.robots = r }
}

// WithClock overrides the time source used for timestamps and durations
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithRunID sets the run identifier instead of generating one
func WithRunID(id string) Option {
	return func(s *Session) { s.runID = id }
}

// NewSession creates a crawl session. cfg must already be validated.
// A nil pacer disables the politeness delay and a nil log discards output.
func NewSession(
	cfg *config.AppConfig,
	fetcher fetch.HTTPFetcher,
	pacer *fetch.Pacer,
	policy scope.Policy,
	store storage.VisitedStore,
	log *logrus.Entry,
	opts ...Option,
) (*Session, error) {
	if cfg == nil || fetcher == nil || policy == nil || store == nil {
		return nil, errors.New("crawl session needs config, fetcher, policy and store")
	}
	if log == nil {
		log = sslog.Discard()
	}
	if cfg.MaxPages <= 0 {
		return nil, fmt.Errorf("%w: max_pages must be > 0", utils.ErrConfigValidation)
	}

	s := &Session{
		cfg:       cfg,
		now:       time.Now,
		fetcher:   fetcher,
		pacer:     pacer,
		policy:    policy,
		store:     store,
		frontier:  queue.NewFrontier(),
		pages:     []models.SnapshotPage{},
		products:  []models.Product{},
		articles:  []models.Article{},
		documents: []models.DocumentLink{},
		docIndex:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	s.log = log.WithField("run_id", s.runID)
	s.stats = models.NewCrawlStats(s.runID)
	return s, nil
}

// RunID returns the identifier attached to this session's log lines
func (s *Session) RunID() string { return s.runID }

// Run performs the breadth-first crawl. Per-page failures are counted and
// skipped; only context cancellation aborts the run, in which case no
// result is returned.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	if s.started {
		return nil, ErrSessionUsed
	}
	s.started = true

	s.stats.StartedAt = s.now()
	s.log.WithFields(logrus.Fields{
		"target_host": s.cfg.TargetHost,
		"seeds":       len(s.cfg.StartURLs),
		"max_depth":   s.cfg.MaxDepth,
		"max_pages":   s.cfg.MaxPages,
	}).Info("Starting crawl")

	s.seed()

	for s.frontier.Len() > 0 && s.store.GetVisitedCount() < s.cfg.MaxPages {
		if err := ctx.Err(); err != nil {
			return nil, s.aborted(err)
		}

		task, ok := s.frontier.Pop()
		if !ok {
			break
		}
		added, err := s.store.MarkPageVisited(task.URL)
		if err != nil {
			s.log.WithField("url", task.URL).Errorf("Cannot mark URL visited: %v", err)
			continue
		}
		if !added {
			s.log.WithField("url", task.URL).Debug("Already visited, dropping duplicate task")
			continue
		}

		if err := s.processTask(ctx, task); err != nil {
			return nil, s.aborted(err)
		}
	}

	if s.frontier.Len() > 0 {
		s.log.WithField("queued", s.frontier.Len()).Info("Page ceiling reached, leaving remaining tasks unvisited")
	}
	return s.result(), nil
}

// seed enqueues every start URL at depth 0. Invalid seeds are dropped with a warning.
func (s *Session) seed() {
	for _, raw := range s.cfg.StartURLs {
		normalized, _, err := parse.ParseAndNormalize(raw, s.cfg.TargetHost)
		if err != nil {
			s.log.WithField("seed", raw).Warnf("Dropping start URL: %v", err)
			continue
		}
		s.frontier.PushSeed(models.CrawlTask{URL: normalized, Depth: 0})
	}
}

// processTask handles one freshly visited task. The returned error is non-nil
// only when ctx was cancelled; every other failure is recorded as a skip.
func (s *Session) processTask(ctx context.Context, task models.CrawlTask) (err error) {
	taskLog := s.log.WithFields(logrus.Fields{"url": task.URL, "depth": task.Depth})
	startTime := s.now()
	fetched := false

	defer func() {
		if r := recover(); r != nil {
			taskLog.WithFields(logrus.Fields{
				"panic_info":  r,
				"stack_trace": string(debug.Stack()),
			}).Error("PANIC recovered while processing page")
			s.recordSkip(task, fmt.Errorf("%w: panic: %v", utils.ErrParsing, r), taskLog)
			err = nil
		}
		if fetched && err == nil {
			err = s.pause(ctx)
		}
		taskLog.WithField("duration", s.now().Sub(startTime).String()).Debug("Task finished")
	}()

	if task.Depth > s.cfg.MaxDepth {
		s.recordSkip(task, fmt.Errorf("%w: depth %d > %d", utils.ErrMaxDepthExceeded, task.Depth, s.cfg.MaxDepth), taskLog)
		return nil
	}

	pageURL, parseErr := url.Parse(task.URL)
	if parseErr != nil {
		s.recordSkip(task, fmt.Errorf("%w: task URL: %w", utils.ErrParsing, parseErr), taskLog)
		return nil
	}

	if s.robots != nil && !s.robots.Allowed(ctx, pageURL) {
		s.recordSkip(task, utils.ErrRobotsDisallowed, taskLog)
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if s.pacer != nil {
		if waitErr := s.pacer.Wait(ctx); waitErr != nil {
			return waitErr
		}
	}

	fetched = true
	page, fetchErr := s.fetcher.Fetch(ctx, task.URL)
	if fetchErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			fetched = false
			return ctxErr
		}
		s.recordSkip(task, fetchErr, taskLog)
		return nil
	}

	ext, extractErr := process.SafeExtractPage(page.HTML, pageURL, s.cfg.TargetHost, s.policy)
	if extractErr != nil {
		s.recordSkip(task, extractErr, taskLog)
		return nil
	}

	s.pages = append(s.pages, ext.Page)
	s.stats.Saved++
	if updateErr := s.store.UpdatePageStatus(task.URL, models.TaskStatusSuccess, ""); updateErr != nil {
		taskLog.Errorf("Failed to record page status: %v", updateErr)
	}

	kind, product, article := process.Classify(ext.Page)
	switch kind {
	case models.PageKindProduct:
		s.products = append(s.products, *product)
	case models.PageKindArticle:
		s.articles = append(s.articles, *article)
	}
	newDocs := s.mergeDocuments(ext.Documents)

	queued := 0
	if task.Depth < s.cfg.MaxDepth {
		queued = s.enqueueLinks(ext.Page.Links, task.Depth+1, taskLog)
	}

	taskLog.WithFields(logrus.Fields{
		"kind":       string(kind),
		"page_title": ext.Page.Title,
		"links":      len(ext.Page.Links),
		"queued":     queued,
		"new_docs":   newDocs,
	}).Info("Page captured")
	return nil
}

// enqueueLinks queues unseen links at depth while visited plus queued stays
// within the page ceiling. Returns how many were queued.
func (s *Session) enqueueLinks(links []string, depth int, taskLog *logrus.Entry) int {
	queued := 0
	for _, link := range links {
		if s.store.GetVisitedCount()+s.frontier.Len() >= s.cfg.MaxPages {
			taskLog.Debug("Page ceiling reached, not queueing further links")
			break
		}
		if _, _, visited := s.store.CheckPageStatus(link); visited {
			continue
		}
		if s.frontier.Push(models.CrawlTask{URL: link, Depth: depth}) {
			queued++
			taskLog.WithField("link", link).Debug("Queued new link")
		}
	}
	return queued
}

// mergeDocuments adds unseen document links to the run-wide list, keeping the
// first title seen for a URL. Returns how many were new.
func (s *Session) mergeDocuments(docs []models.DocumentLink) int {
	added := 0
	for _, d := range docs {
		if _, seen := s.docIndex[d.URL]; seen {
			continue
		}
		s.docIndex[d.URL] = struct{}{}
		s.documents = append(s.documents, d)
		added++
	}
	return added
}

// recordSkip counts and logs an abandoned task
func (s *Session) recordSkip(task models.CrawlTask, cause error, taskLog *logrus.Entry) {
	reason := utils.SkipReasonFor(cause)
	s.stats.RecordSkip(reason)
	if err := s.store.UpdatePageStatus(task.URL, models.TaskStatusSkipped, reason); err != nil {
		taskLog.Errorf("Failed to record page status: %v", err)
	}

	entry := taskLog.WithFields(logrus.Fields{
		"reason":   reason.String(),
		"category": utils.CategorizeError(cause),
	})
	if reason == models.SkipReasonDepth {
		entry.Debugf("Skipping page: %v", cause)
		return
	}
	entry.Warnf("Skipping page: %v", cause)
}

// pause applies the politeness delay after a fetch attempt
func (s *Session) pause(ctx context.Context) error {
	if s.pacer == nil {
		return nil
	}
	_, err := s.pacer.Pause(ctx)
	return err
}

func (s *Session) aborted(err error) error {
	visited := s.store.GetVisitedCount()
	s.log.WithFields(logrus.Fields{
		"visited":  visited,
		"category": utils.CategorizeError(err),
	}).Warn("Crawl cancelled, discarding collected content")
	return utils.WrapErrorf(err, "crawl cancelled after %d visited pages", visited)
}

// result finalizes stats and packages the collected records
func (s *Session) result() *Result {
	end := s.now()
	s.stats.Duration = end.Sub(s.stats.StartedAt)
	s.stats.Visited = s.store.GetVisitedCount()
	s.stats.Products = len(s.products)
	s.stats.Articles = len(s.articles)
	s.stats.Documents = len(s.documents)

	fields := logrus.Fields{
		"visited":   s.stats.Visited,
		"saved":     s.stats.Saved,
		"skipped":   s.stats.TotalSkipped(),
		"products":  s.stats.Products,
		"articles":  s.stats.Articles,
		"documents": s.stats.Documents,
		"duration":  s.stats.Duration.String(),
	}
	for reason, n := range s.stats.Skipped {
		fields["skipped_"+reason.String()] = n
	}
	s.log.WithFields(fields).Info("Crawl finished")

	return &Result{
		Snapshot: models.SnapshotDocument{
			GeneratedAt: end.UTC().Format(generatedAtLayout),
			Pages:       s.pages,
		},
		Products:  s.products,
		Articles:  s.articles,
		Documents: s.documents,
		Stats:     s.stats,
	}
}
