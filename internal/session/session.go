// Package session keeps one map page per browser session in memory.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joeblew999/plat-japanmap/internal/page"
)

// CookieName carries the session id.
const CookieName = "japanmap_session"

// Factory builds the page for a new session.
type Factory func() *page.Page

type entry struct {
	mu       sync.Mutex
	page     *page.Page
	lastSeen time.Time
}

// Store maps session ids to pages. Access to a page goes through With, which
// serializes events for that session.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	factory Factory
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore(factory Factory) *Store {
	return &Store{
		entries: make(map[string]*entry),
		factory: factory,
		now:     time.Now,
	}
}

// Valid reports whether id has the form issued by ID.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ID returns the session id from the request cookie, issuing a new one
// (and setting the cookie) when absent or malformed.
func ID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		if Valid(c.Value) {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// With runs fn with the session's page, creating the page on first use.
func (s *Store) With(id string, fn func(p *page.Page)) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		e = &entry{page: s.factory()}
		s.entries[id] = e
	}
	e.lastSeen = s.now()
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.page)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep closes and drops sessions idle for longer than ttl and returns how
// many were removed.
func (s *Store) Sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	var stale []*entry
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e)
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	for _, e := range stale {
		e.mu.Lock()
		e.page.Close()
		e.mu.Unlock()
	}
	return len(stale)
}
