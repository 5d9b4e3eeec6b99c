package queue

import (
	"container/heap"
	"sync"

	"github.com/Sriram-PR/site-snapshot/pkg/models"
)

// --- Frontier heap ---

// frontierItem represents a queued task with its ordering key
type frontierItem struct {
	task  models.CrawlTask
	seq   uint64 // Insertion order; ties within a depth pop first-in first-out
	index int    // The index of the item in the heap (required by heap interface)
}

// frontierHeap implements heap.Interface ordered by (depth, seq)
type frontierHeap []*frontierItem

func (h frontierHeap) Len() int { return len(h) }

func (h frontierHeap) Less(i, j int) bool {
	if h[i].task.Depth != h[j].task.Depth {
		return h[i].task.Depth < h[j].task.Depth
	}
	return h[i].seq < h[j].seq
}

func (h frontierHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

// Push adds an element to the heap
func (h *frontierHeap) Push(x any) {
	item := x.(*frontierItem)
	item.index = len(*h)
	*h = append(*h, item)
}

// Pop removes and returns the minimum element from the heap
func (h *frontierHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	*h = old[0 : n-1]
	return item
}

// Frontier is the breadth-first crawl queue. Tasks pop shallowest first and in
// insertion order within a depth. Discovered URLs are pending at most once.
type Frontier struct {
	h       frontierHeap
	pending map[string]int // URL -> copies in the heap
	nextSeq uint64
	mu      sync.Mutex
}

// NewFrontier creates an empty Frontier
func NewFrontier() *Frontier {
	f := &Frontier{pending: make(map[string]int)}
	heap.Init(&f.h)
	return f
}

// Push queues task unless its URL is already pending. Reports whether it was added.
func (f *Frontier) Push(task models.CrawlTask) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending[task.URL] > 0 {
		return false
	}
	f.pending[task.URL]++
	heap.Push(&f.h, &frontierItem{task: task, seq: f.nextSeq})
	f.nextSeq++
	return true
}

// PushSeed queues task even when the URL is already pending. Seeds are the
// initial queue contents; duplicates are dropped later by the visited check.
func (f *Frontier) PushSeed(task models.CrawlTask) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending[task.URL]++
	heap.Push(&f.h, &frontierItem{task: task, seq: f.nextSeq})
	f.nextSeq++
}

// Pop removes the next task. Returns false when the frontier is empty; it never blocks.
func (f *Frontier) Pop() (models.CrawlTask, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.h) == 0 {
		return models.CrawlTask{}, false
	}
	item := heap.Pop(&f.h).(*frontierItem)
	url := item.task.URL
	f.pending[url]--
	if f.pending[url] <= 0 {
		delete(f.pending, url)
	}
	return item.task, true
}

// Len returns the number of queued tasks
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.h)
}
