// Package web provides the HTTP surface of the player: OAuth plumbing,
// the playlist page and the playback session endpoints. All non-trivial
// logic lives in the resolve and playback packages; this layer only
// routes requests.
package web

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/osa030/playbox/internal/app/playback"
	"github.com/osa030/playbox/internal/app/session"
	"github.com/osa030/playbox/internal/domain/track"
	"github.com/osa030/playbox/internal/infra/spotify"
)

const sessionCookie = "playbox_session"

// Server wires the web routes to the playlist source and the playback
// session registry.
type Server struct {
	auth     *spotify.Authenticator
	sessions *session.Manager

	// Configured refresh token for headless runs; empty means every
	// listener goes through the interactive authorization flow.
	refreshToken string

	mu       sync.RWMutex
	tokens   map[string]*oauth2.Token // web session -> playlist source token
	playback map[string]string        // web session -> playback session ID
}

// NewServer creates the web server.
func NewServer(auth *spotify.Authenticator, sessions *session.Manager, refreshToken string) *Server {
	return &Server{
		auth:         auth,
		sessions:     sessions,
		refreshToken: refreshToken,
		tokens:       make(map[string]*oauth2.Token),
		playback:     make(map[string]string),
	}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /callback", s.handleCallback)
	mux.HandleFunc("POST /api/select", s.handleSelect)
	mux.HandleFunc("POST /api/started", s.playerEvent((*playback.Controller).OnPlaybackStarted))
	mux.HandleFunc("POST /api/ended", s.playerEvent((*playback.Controller).OnPlaybackEnded))
	mux.HandleFunc("POST /api/error", s.playerEvent((*playback.Controller).OnPlaybackError))
	mux.HandleFunc("GET /api/state", s.handleState)
	return mux
}

// webSession returns the web session ID from the cookie, creating one
// if absent.
func (s *Server) webSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
	})
	return sid
}

// token returns the stored playlist source token for a web session.
func (s *Server) token(sid string) (*oauth2.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok, ok := s.tokens[sid]
	return tok, ok
}

// setToken stores the playlist source token for a web session.
func (s *Server) setToken(sid string, tok *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sid] = tok
}

// controller returns the playback controller bound to a web session.
func (s *Server) controller(sid string) (*playback.Controller, bool) {
	s.mu.RLock()
	psid, ok := s.playback[sid]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	ctrl, err := s.sessions.Get(psid)
	if err != nil {
		return nil, false
	}
	return ctrl, true
}

// bindController starts a fresh playback session for a web session,
// destroying any previous traversal.
func (s *Server) bindController(sid string, tracks []track.Track) *playback.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.playback[sid]; ok {
		s.sessions.Remove(old)
	}
	psid, ctrl := s.sessions.Create(tracks)
	s.playback[sid] = psid

	// Drain controller events; the browser polls state instead of
	// consuming the channel.
	go func() {
		for range ctrl.Events() {
		}
	}()
	return ctrl
}

// playerEvent adapts a controller callback into a handler. Invalid
// transitions (duplicate or out-of-order player callbacks) are
// acknowledged without effect.
func (s *Server) playerEvent(fn func(*playback.Controller) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := s.webSession(w, r)
		ctrl, ok := s.controller(sid)
		if !ok {
			writeError(w, http.StatusNotFound, "no active playback session")
			return
		}
		if err := fn(ctrl); err != nil {
			zlog.Debug().Msgf("web: ignored player event: session=%s error=%v", sid, err)
		}
		writeJSON(w, http.StatusOK, map[string]string{"state": ctrl.State().String()})
	}
}
