// Package memory implements the URL mapping store as an in-memory map.
//
// The store is the single shared mutable resource of the service. Every
// operation takes the store lock, so each call is atomic: no caller observes
// a partially applied mutation. Nothing here touches the network or disk and
// state does not survive a restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vadimbarashkov/shortly/internal/entity"
)

const rankingSize = 5

type record struct {
	originalURL string
	accessCount int64
	createdAt   time.Time
}

// Store holds the authoritative set of URL entries, keyed by short code.
// Iteration order (list, search, stats tie-break) is insertion order.
type Store struct {
	mu    sync.RWMutex
	urls  map[string]*record
	order []string
	now   func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		urls: make(map[string]*record),
		now:  time.Now,
	}
}

// Save inserts a new entry with a zero access count. The existence check and
// the insert happen under one lock acquisition, so of two concurrent saves of
// the same code exactly one succeeds; the loser gets entity.ErrShortCodeExists.
func (s *Store) Save(ctx context.Context, shortCode, originalURL string) (*entity.URL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.urls[shortCode]; ok {
		return nil, entity.ErrShortCodeExists
	}

	rec := &record{
		originalURL: originalURL,
		createdAt:   s.now(),
	}
	s.urls[shortCode] = rec
	s.order = append(s.order, shortCode)

	return s.snapshot(shortCode, rec), nil
}

// Get returns the original URL for a short code. It never changes the access
// count; redirect resolution calls IncrementAccess separately.
func (s *Store) Get(ctx context.Context, shortCode string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.urls[shortCode]
	if !ok {
		return "", false
	}
	return rec.originalURL, true
}

// GetWithDetails returns a snapshot of all attributes of an entry.
func (s *Store) GetWithDetails(ctx context.Context, shortCode string) (*entity.URL, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.urls[shortCode]
	if !ok {
		return nil, false
	}
	return s.snapshot(shortCode, rec), true
}

// IncrementAccess increments the access count for a short code by one.
// Absent codes are a silent no-op.
func (s *Store) IncrementAccess(ctx context.Context, shortCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.urls[shortCode]; ok {
		rec.accessCount++
	}
}

// Update replaces the original URL of an entry in place, leaving the access
// count and creation timestamp untouched. It reports whether the entry existed.
func (s *Store) Update(ctx context.Context, shortCode, newURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.urls[shortCode]
	if !ok {
		return false
	}
	rec.originalURL = newURL
	return true
}

// Exists reports whether a short code is present.
func (s *Store) Exists(ctx context.Context, shortCode string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.urls[shortCode]
	return ok
}

// Delete removes an entry and all its attributes. It reports whether the
// entry existed.
func (s *Store) Delete(ctx context.Context, shortCode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.delete(shortCode)
}

// BulkDelete deletes every code in shortCodes independently. Codes that were
// not present are collected in input order; the operation never aborts
// partway through.
func (s *Store) BulkDelete(ctx context.Context, shortCodes []string) (int, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int
	var failed []string

	for _, code := range shortCodes {
		if s.delete(code) {
			deleted++
		} else {
			failed = append(failed, code)
		}
	}

	return deleted, failed
}

// Count returns the current number of entries.
func (s *Store) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.urls)
}

// ListAllWithStats returns a snapshot of every entry in insertion order.
func (s *Store) ListAllWithStats(ctx context.Context) []*entity.URL {
	s.mu.RLock()
	defer s.mu.RUnlock()

	urls := make([]*entity.URL, 0, len(s.order))
	for _, code := range s.order {
		urls = append(urls, s.snapshot(code, s.urls[code]))
	}
	return urls
}

// Search returns every entry whose short code or original URL contains the
// query, case-insensitively. An empty query matches everything.
func (s *Store) Search(ctx context.Context, query string) []*entity.URL {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)

	var urls []*entity.URL
	for _, code := range s.order {
		rec := s.urls[code]
		if strings.Contains(strings.ToLower(code), q) ||
			strings.Contains(strings.ToLower(rec.originalURL), q) {
			urls = append(urls, s.snapshot(code, rec))
		}
	}
	return urls
}

// Stats returns aggregate statistics. MostAccessed and LeastAccessed are the
// head and tail of the same descending-by-access-count sequence, so with five
// or fewer entries the two rankings overlap.
func (s *Store) Stats(ctx context.Context) *entity.URLStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totalAccesses int64
	ranked := make([]entity.AccessRecord, 0, len(s.order))

	for _, code := range s.order {
		rec := s.urls[code]
		totalAccesses += rec.accessCount
		ranked = append(ranked, entity.AccessRecord{
			ShortCode:   code,
			AccessCount: rec.accessCount,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AccessCount > ranked[j].AccessCount
	})

	most := ranked[:min(rankingSize, len(ranked))]
	least := ranked[max(0, len(ranked)-rankingSize):]

	stats := &entity.URLStats{
		TotalURLs:     len(s.urls),
		TotalAccesses: totalAccesses,
		MostAccessed:  make([]entity.AccessRecord, len(most)),
		LeastAccessed: make([]entity.AccessRecord, len(least)),
	}
	copy(stats.MostAccessed, most)
	copy(stats.LeastAccessed, least)

	return stats
}

// Clear removes all entries. Intended for tests and reset scenarios.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.urls = make(map[string]*record)
	s.order = nil
}

// delete removes an entry without taking the lock. Callers hold the write lock.
func (s *Store) delete(shortCode string) bool {
	if _, ok := s.urls[shortCode]; !ok {
		return false
	}

	delete(s.urls, shortCode)
	for i, code := range s.order {
		if code == shortCode {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// snapshot copies a record so callers cannot mutate store state. Callers hold
// at least the read lock.
func (s *Store) snapshot(shortCode string, rec *record) *entity.URL {
	return &entity.URL{
		ShortCode:   shortCode,
		OriginalURL: rec.originalURL,
		AccessCount: rec.accessCount,
		CreatedAt:   rec.createdAt,
	}
}
