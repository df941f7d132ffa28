// Session management: one city per session, exclusive mutation per
// session. The engine performs no locking of its own; the per-session
// mutex here is what serializes access to each City instance.
package api

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/tinycity/internal/sim"
)

const sessionCookie = "tinycity_session"

type session struct {
	id string

	mu   sync.Mutex
	city *sim.City
}

// sessionStore maps session IDs to cities.
type sessionStore struct {
	mu       sync.Mutex
	balance  sim.Balance
	sessions map[string]*session
}

func newSessionStore(bal sim.Balance) *sessionStore {
	return &sessionStore{
		balance:  bal,
		sessions: make(map[string]*session),
	}
}

// get returns the session for the request, creating a fresh city and
// setting the session cookie when none exists.
func (s *sessionStore) get(w http.ResponseWriter, r *http.Request) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.sessions[cookie.Value]; ok {
			return sess
		}
	}

	id := uuid.New().String()
	sess := &session{id: id, city: sim.New(s.balance)}
	s.sessions[id] = sess

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// replace swaps the session's city, e.g. after a load or reset. Caller
// holds the session mutex.
func (sess *session) replace(city *sim.City) {
	sess.city = city
}
