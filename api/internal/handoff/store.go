// Package handoff carries a finished identification from the submit view to the
// results view. Entries live in memory only and vanish on restart.
package handoff

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"species-bot/api/internal/species/types"
)

const DefaultTTL = 30 * time.Minute

type Entry struct {
	ID        string
	Result    *types.Result
	ImageURL  string // data URL of the submitted image
	CreatedAt time.Time
}

type Store struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]Entry
}

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{ttl: ttl, now: time.Now, entries: make(map[string]Entry)}
}

// Put stores the pair and returns its id.
func (s *Store) Put(res *types.Result, imageURL string) string {
	e := Entry{
		ID:        uuid.NewString(),
		Result:    res,
		ImageURL:  imageURL,
		CreatedAt: s.now(),
	}
	s.mu.Lock()
	s.purgeLocked()
	s.entries[e.ID] = e
	s.mu.Unlock()
	return e.ID
}

func (s *Store) Get(id string) (Entry, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return Entry{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	if s.expired(e) {
		delete(s.entries, id)
		return Entry{}, false
	}
	return e, true
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) expired(e Entry) bool { return s.now().Sub(e.CreatedAt) > s.ttl }

func (s *Store) purgeLocked() {
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
		}
	}
}
