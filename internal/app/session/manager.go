// Package session provides the per-listener playback session registry.
package session

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playbox/internal/app/playback"
	"github.com/osa030/playbox/internal/domain/track"
)

// ErrNotFound is returned when a session ID is unknown.
var ErrNotFound = errors.New("session not found")

// Manager owns the active playback sessions. Each listener session owns
// its own controller; there is no process-wide playback singleton.
type Manager struct {
	mu       sync.RWMutex
	resolver playback.Resolver
	sessions map[string]*playback.Controller
}

// NewManager creates a session manager.
func NewManager(resolver playback.Resolver) *Manager {
	return &Manager{
		resolver: resolver,
		sessions: make(map[string]*playback.Controller),
	}
}

// Create starts a new playlist traversal and returns its session ID.
func (m *Manager) Create(tracks []track.Track) (string, *playback.Controller) {
	id := uuid.NewString()
	ctrl := playback.NewController(m.resolver, tracks)

	m.mu.Lock()
	m.sessions[id] = ctrl
	m.mu.Unlock()

	zlog.Info().Msgf("session: created: id=%s tracks=%d", id, len(tracks))
	return id, ctrl
}

// Replace destroys the session's current traversal and starts a new
// one over the given tracks, keeping the same session ID. Any in-flight
// resolution of the old traversal is cancelled.
func (m *Manager) Replace(id string, tracks []track.Track) (*playback.Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	old.Close()

	ctrl := playback.NewController(m.resolver, tracks)
	m.sessions[id] = ctrl
	zlog.Info().Msgf("session: replaced: id=%s tracks=%d", id, len(tracks))
	return ctrl, nil
}

// Get returns the controller for a session ID.
func (m *Manager) Get(id string) (*playback.Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ctrl, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ctrl, nil
}

// Remove destroys a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ctrl, ok := m.sessions[id]; ok {
		ctrl.Close()
		delete(m.sessions, id)
		zlog.Info().Msgf("session: removed: id=%s", id)
	}
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close destroys all sessions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, ctrl := range m.sessions {
		ctrl.Close()
		delete(m.sessions, id)
	}
}
