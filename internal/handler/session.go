package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/event-landing/internal/metrics"
	"github.com/Shivanand-hulikatti/event-landing/internal/page"
	"github.com/google/uuid"
)

// SessionCookie names the cookie that carries the page session id.
const SessionCookie = "codezen_session"

// session is one visitor's page. mu serialises that visitor's actions the
// way a browser's event loop would.
type session struct {
	mu       sync.Mutex
	page     *page.Controller
	lastSeen time.Time
}

// Sessions keeps page sessions in memory, keyed by cookie. The table holds
// at most limit sessions; the least recently seen one is evicted first.
type Sessions struct {
	mu      sync.Mutex
	items   map[string]*session
	ttl     time.Duration
	limit   int
	newPage func() *page.Controller
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewSessions constructs a session table. newPage builds a fresh page
// controller for each new visitor.
func NewSessions(ttl time.Duration, limit int, newPage func() *page.Controller, m *metrics.Metrics) *Sessions {
	if m == nil {
		m = metrics.Nop()
	}
	if limit <= 0 {
		limit = 1
	}
	return &Sessions{
		items:   make(map[string]*session),
		ttl:     ttl,
		limit:   limit,
		newPage: newPage,
		metrics: m,
		now:     time.Now,
	}
}

// lookupLocked returns the live session named by the request cookie, or nil.
// Called with s.mu held.
func (s *Sessions) lookupLocked(r *http.Request, now time.Time) *session {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	sess, ok := s.items[c.Value]
	if !ok || now.Sub(sess.lastSeen) >= s.ttl {
		return nil
	}
	return sess
}

// acquire returns the caller's session, creating it (and the cookie) when
// the request carries none or an expired one. The session is returned
// locked; the caller must unlock it.
func (s *Sessions) acquire(w http.ResponseWriter, r *http.Request) *session {
	now := s.now()

	s.mu.Lock()
	sess := s.lookupLocked(r, now)
	if sess == nil {
		s.sweepLocked(now)
		for len(s.items) >= s.limit {
			s.evictOldestLocked()
		}
		id := uuid.New().String()
		sess = &session{page: s.newPage()}
		s.items[id] = sess
		s.metrics.ActiveSessions.Set(float64(len(s.items)))
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(s.ttl.Seconds()),
		})
	}
	sess.lastSeen = now
	s.mu.Unlock()

	sess.mu.Lock()
	return sess
}

// view returns the caller's live session, or an unsaved fresh one when the
// request has none. A visitor without a session sees the page in its
// initial state, so read-only requests never grow the table. The session
// is returned locked.
func (s *Sessions) view(r *http.Request) *session {
	now := s.now()

	s.mu.Lock()
	sess := s.lookupLocked(r, now)
	if sess != nil {
		sess.lastSeen = now
	}
	s.mu.Unlock()

	if sess == nil {
		sess = &session{page: s.newPage()}
	}
	sess.mu.Lock()
	return sess
}

// sweepLocked drops idle sessions. Called with s.mu held.
func (s *Sessions) sweepLocked(now time.Time) {
	for id, sess := range s.items {
		if now.Sub(sess.lastSeen) >= s.ttl {
			delete(s.items, id)
		}
	}
	s.metrics.ActiveSessions.Set(float64(len(s.items)))
}

func (s *Sessions) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.items {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID, oldest = id, sess.lastSeen
		}
	}
	delete(s.items, oldestID)
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
