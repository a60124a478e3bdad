// Package store holds the per-consumer page cache: a mapping from page
// index to compressed image blob for one widget/resolution context.
// A store has no background activity of its own; it is written by its
// render worker and evicted by the orchestrator, which serializes those
// phases so the two never race on the same store.
package store

import (
	"sync"
	"sync/atomic"

	"github.com/slidekit/go-slide-cache/model"
)

// Store keeps per-store counters readable with atomics so the orchestrator
// can aggregate usage without taking every store's lock.
type Store struct {
	mu sync.RWMutex

	name       string
	entries    map[int]*model.Blob
	resolution float64
	crop       model.CropMode

	// gen is bumped on every clear. A render job captures the generation
	// at dispatch time; a completion carrying an older generation is a
	// stale insert and is discarded.
	gen uint64

	mem int64 // total payload size in bytes (atomic)
	len int64 // number of entries (atomic)

	dropsStale     atomic.Int64
	dropsDuplicate atomic.Int64
}

func New(name string, resolution float64, crop model.CropMode) *Store {
	return &Store{
		name:       name,
		entries:    make(map[int]*model.Blob),
		resolution: resolution,
		crop:       crop,
	}
}

func (s *Store) Name() string { return s.name }

func (s *Store) Resolution() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolution
}

func (s *Store) Crop() model.CropMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.crop
}

// Generation returns the current clear-generation. Workers capture it when
// a job is dispatched and pass it back to Insert.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Snapshot returns resolution, crop and generation consistently, for
// building a render request that Insert will still accept.
func (s *Store) Snapshot() (resolution float64, crop model.CropMode, gen uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolution, s.crop, s.gen
}

// Insert stores a rendered blob and returns the bytes added. It returns 0
// without storing when the blob is empty, when the store was cleared after
// the job was dispatched (gen mismatch), when the blob was rendered for a
// different resolution or crop, or when a duplicate job already delivered
// an entry for the page. Render jobs may race; the presence re-check keeps
// the first delivered result and drops the rest.
func (s *Store) Insert(blob *model.Blob, gen uint64) int64 {
	if blob.IsEmpty() {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || !blob.Matches(s.resolution, s.crop) {
		s.dropsStale.Add(1)
		return 0
	}
	if old, hit := s.entries[blob.Page()]; hit {
		if !old.IsSamePayload(blob) {
			s.dropsDuplicate.Add(1)
		}
		return 0
	}

	s.entries[blob.Page()] = blob
	atomic.AddInt64(&s.len, 1)
	atomic.AddInt64(&s.mem, blob.Size())
	return blob.Size()
}

// Lookup is a pure read; it never renders.
func (s *Store) Lookup(page int) (*model.Blob, bool) {
	s.mu.RLock()
	blob, hit := s.entries[page]
	s.mu.RUnlock()
	return blob, hit
}

func (s *Store) Contains(page int) bool {
	s.mu.RLock()
	_, hit := s.entries[page]
	s.mu.RUnlock()
	return hit
}

// Evict removes one page and returns its size, 0 if absent.
func (s *Store) Evict(page int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, hit := s.entries[page]
	if !hit {
		return 0
	}
	delete(s.entries, page)
	atomic.AddInt64(&s.len, -1)
	atomic.AddInt64(&s.mem, -blob.Size())
	return blob.Size()
}

// Clear wipes all entries and invalidates in-flight jobs via the
// generation counter. Used on resolution change, document reload and
// cache-disable.
func (s *Store) Clear() (freedBytes, items int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *Store) clearLocked() (freedBytes, items int64) {
	freedBytes = atomic.SwapInt64(&s.mem, 0)
	items = atomic.SwapInt64(&s.len, 0)
	s.entries = make(map[int]*model.Blob)
	s.gen++
	return freedBytes, items
}

// SetResolution clears the store when the resolution actually changes:
// images rendered at the old resolution are useless.
func (s *Store) SetResolution(resolution float64) (changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolution == resolution {
		return false
	}
	s.resolution = resolution
	s.clearLocked()
	return true
}

func (s *Store) Mem() int64 { return atomic.LoadInt64(&s.mem) }
func (s *Store) Len() int64 { return atomic.LoadInt64(&s.len) }

// Pages returns the cached page indices in unspecified order.
func (s *Store) Pages() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pages := make([]int, 0, len(s.entries))
	for page := range s.entries {
		pages = append(pages, page)
	}
	return pages
}

// Drops reports how many completed renders were discarded as stale
// (cleared store, wrong resolution/crop) and as duplicates.
func (s *Store) Drops() (stale, duplicate int64) {
	return s.dropsStale.Load(), s.dropsDuplicate.Load()
}
