package web

import (
	"encoding/json"
	"net/http"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playbox/internal/infra/spotify"
)

// handleIndex renders the player page for the listener's first
// playlist, starting a fresh playback session over it. Unauthenticated
// listeners are redirected into the authorization flow.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	sid := s.webSession(w, r)
	tok, ok := s.token(sid)
	if !ok {
		if s.refreshToken == "" {
			// State doubles as the web session binding for the callback.
			http.Redirect(w, r, s.auth.AuthURL(sid), http.StatusFound)
			return
		}
		// Headless mode: a configured refresh token stands in for the
		// interactive flow.
		tok = spotify.TokenFromRefreshToken(s.refreshToken)
		s.setToken(sid, tok)
	}

	client := s.auth.NewClient(r.Context(), tok)
	pl, err := client.FirstPlaylist(r.Context())
	if err != nil {
		zlog.Error().Msgf("web: failed to load playlist: session=%s error=%v", sid, err)
		http.Error(w, "failed to load playlist", http.StatusBadGateway)
		return
	}

	s.bindController(sid, pl.Tracks)

	if err := renderPlayer(w, pl); err != nil {
		zlog.Error().Msgf("web: failed to render player: %v", err)
	}
}

// handleCallback completes the authorization-code flow.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	sid := s.webSession(w, r)

	tok, err := s.auth.Exchange(r.Context(), sid, r)
	if err != nil {
		zlog.Warn().Msgf("web: authorization failed: session=%s error=%v", sid, err)
		http.Error(w, "authorization failed", http.StatusForbidden)
		return
	}

	s.setToken(sid, tok)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleSelect starts playback at a playlist index.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sid := s.webSession(w, r)
	ctrl, ok := s.controller(sid)
	if !ok {
		writeError(w, http.StatusNotFound, "no active playback session")
		return
	}

	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ctrl.SelectTrack(req.Index); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"state": ctrl.State().String()})
}

// stateResponse is the UI-facing session view.
type stateResponse struct {
	State      string             `json:"state"`
	TrackIndex int                `json:"trackIndex"`
	MatchIndex int                `json:"matchIndex"`
	Candidate  *candidateResponse `json:"candidate,omitempty"`
}

type candidateResponse struct {
	VideoID   string  `json:"videoId"`
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail"`
	Channel   string  `json:"channel"`
	Score     float64 `json:"score"`
}

// handleState returns the current playback session snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sid := s.webSession(w, r)
	ctrl, ok := s.controller(sid)
	if !ok {
		writeError(w, http.StatusNotFound, "no active playback session")
		return
	}

	snap := ctrl.Snapshot()
	resp := stateResponse{
		State:      snap.State.String(),
		TrackIndex: snap.TrackIndex,
		MatchIndex: snap.MatchIndex,
	}
	if snap.Candidate != nil {
		resp.Candidate = &candidateResponse{
			VideoID:   snap.Candidate.VideoID,
			Title:     snap.Candidate.Title,
			Thumbnail: snap.Candidate.ThumbnailURL,
			Channel:   snap.Candidate.ChannelName,
			Score:     snap.Candidate.Score,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
