package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/parcel-portal/internal/metrics"
)

const (
	CookieName = "sid"
	contextKey = "session"
)

type entry struct {
	sess     *Session
	lastSeen time.Time
}

// Store holds sessions in memory and evicts them after ttl of inactivity.
type Store struct {
	ttl  time.Duration
	init func(*Session)
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewStore returns a Store. init wires the controllers of every new session.
func NewStore(ttl time.Duration, init func(*Session)) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		ttl:      ttl,
		init:     init,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Get returns the live session with id and refreshes its idle timer.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(e.lastSeen) > s.ttl {
		s.deleteLocked(id)
		return nil, false
	}
	e.lastSeen = now
	return e.sess, true
}

// Create starts a new session with a random id.
func (s *Store) Create() *Session {
	sess := &Session{
		ID:  uuid.NewString(),
		Nav: &Redirect{},
	}
	if s.init != nil {
		s.init(sess)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = &entry{sess: sess, lastSeen: s.now()}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return sess
}

// Delete removes the session with id and cancels its open form.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(id)
}

// Len returns the number of sessions held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			s.deleteLocked(id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) deleteLocked(id string) {
	e, ok := s.sessions[id]
	if !ok {
		return
	}
	delete(s.sessions, id)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	// Lock order is store, session, form. Nothing below takes the store lock.
	e.sess.CloseRequestForm()
}

// Middleware attaches the browser's session to the echo context, creating it
// and setting the cookie when missing or expired.
func Middleware(store *Store, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var sess *Session
			if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
				sess, _ = store.Get(ck.Value)
			}
			if sess == nil {
				sess = store.Create()
				c.SetCookie(&http.Cookie{
					Name:     CookieName,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(contextKey, sess)
			return next(c)
		}
	}
}

// From returns the session attached by Middleware.
func From(c echo.Context) *Session {
	sess, _ := c.Get(contextKey).(*Session)
	return sess
}
