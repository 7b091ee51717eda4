package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playbox/internal/app/session"
	"github.com/osa030/playbox/internal/domain/track"
	"github.com/osa030/playbox/internal/domain/video"
	"github.com/osa030/playbox/internal/infra/spotify"
)

type fixedResolver struct{}

func (fixedResolver) Resolve(_ context.Context, t track.Track) (video.MatchSet, error) {
	return video.MatchSet{
		TrackID: t.ID,
		Candidates: []video.Candidate{
			{VideoID: "v1", Score: 10, Title: "First Song (Official Audio)"},
			{VideoID: "v2", Score: 8},
		},
	}, nil
}

var webTracks = []track.Track{
	{ID: "t1", Title: "First Song", Artists: []string{"Artist A"}},
	{ID: "t2", Title: "Second Song", Artists: []string{"Artist B"}},
}

// newBoundServer returns a server with a playback session already bound
// to a web session, bypassing the OAuth flow.
func newBoundServer(t *testing.T) (*Server, *http.Cookie) {
	t.Helper()
	mgr := session.NewManager(fixedResolver{})
	t.Cleanup(mgr.Close)

	s := NewServer(nil, mgr, "")
	s.bindController("web-sid", webTracks)
	return s, &http.Cookie{Name: sessionCookie, Value: "web-sid"}
}

func doJSON(t *testing.T, handler http.Handler, method, target, body string, cookie *http.Cookie) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func waitForSessionState(t *testing.T, handler http.Handler, cookie *http.Cookie, want string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var last map[string]any
	for time.Now().Before(deadline) {
		rec, body := doJSON(t, handler, http.MethodGet, "/api/state", "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		last = body
		if body["state"] == want {
			return body
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %q, last response %v", want, last)
	return nil
}

func TestServer_SelectAndState(t *testing.T) {
	s, cookie := newBoundServer(t)
	handler := s.Handler()

	rec, body := doJSON(t, handler, http.MethodPost, "/api/select", `{"index":0}`, cookie)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	// Resolution runs asynchronously, so the select response may catch
	// the session either mid-resolution or already past it.
	assert.Contains(t, []any{"resolving", "awaiting_candidate"}, body["state"])

	state := waitForSessionState(t, handler, cookie, "awaiting_candidate")
	assert.Equal(t, float64(0), state["trackIndex"])

	candidate, ok := state["candidate"].(map[string]any)
	require.True(t, ok, "candidate missing from state response")
	assert.Equal(t, "v1", candidate["videoId"])
	assert.Equal(t, "First Song (Official Audio)", candidate["title"])
}

func TestServer_PlayerEventFlow(t *testing.T) {
	s, cookie := newBoundServer(t)
	handler := s.Handler()

	rec, _ := doJSON(t, handler, http.MethodPost, "/api/select", `{"index":0}`, cookie)
	require.Equal(t, http.StatusAccepted, rec.Code)
	waitForSessionState(t, handler, cookie, "awaiting_candidate")

	rec, body := doJSON(t, handler, http.MethodPost, "/api/started", "", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "playing", body["state"])

	// An error moves the session to the next ranked candidate.
	rec, body = doJSON(t, handler, http.MethodPost, "/api/error", "", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "awaiting_candidate", body["state"])

	state := waitForSessionState(t, handler, cookie, "awaiting_candidate")
	candidate := state["candidate"].(map[string]any)
	assert.Equal(t, "v2", candidate["videoId"])
}

func TestServer_TrackEndAdvances(t *testing.T) {
	s, cookie := newBoundServer(t)
	handler := s.Handler()

	doJSON(t, handler, http.MethodPost, "/api/select", `{"index":0}`, cookie)
	waitForSessionState(t, handler, cookie, "awaiting_candidate")
	doJSON(t, handler, http.MethodPost, "/api/started", "", cookie)

	rec, _ := doJSON(t, handler, http.MethodPost, "/api/ended", "", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	state := waitForSessionState(t, handler, cookie, "awaiting_candidate")
	assert.Equal(t, float64(1), state["trackIndex"])
}

func TestServer_DuplicateEndedAcknowledged(t *testing.T) {
	s, cookie := newBoundServer(t)
	handler := s.Handler()

	doJSON(t, handler, http.MethodPost, "/api/select", `{"index":1}`, cookie)
	waitForSessionState(t, handler, cookie, "awaiting_candidate")
	doJSON(t, handler, http.MethodPost, "/api/started", "", cookie)

	rec, body := doJSON(t, handler, http.MethodPost, "/api/ended", "", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "exhausted_playlist", body["state"])

	// The player may fire ended again; the session must not move.
	rec, body = doJSON(t, handler, http.MethodPost, "/api/ended", "", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "exhausted_playlist", body["state"])
}

func TestServer_SelectValidation(t *testing.T) {
	s, cookie := newBoundServer(t)
	handler := s.Handler()

	t.Run("bad body", func(t *testing.T) {
		rec, body := doJSON(t, handler, http.MethodPost, "/api/select", "not json", cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, body, "error")
	})

	t.Run("index out of range", func(t *testing.T) {
		rec, _ := doJSON(t, handler, http.MethodPost, "/api/select", `{"index":99}`, cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_IndexRedirectsToAuth(t *testing.T) {
	mgr := session.NewManager(fixedResolver{})
	defer mgr.Close()

	auth, err := spotify.NewAuthenticator("cid", "secret", "http://127.0.0.1:8888/callback")
	require.NoError(t, err)

	// No stored token and no configured refresh token: the listener is
	// sent into the interactive authorization flow.
	handler := NewServer(auth, mgr, "").Handler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "accounts.spotify.com/authorize")
}

func TestServer_NoSessionBound(t *testing.T) {
	mgr := session.NewManager(fixedResolver{})
	defer mgr.Close()
	handler := NewServer(nil, mgr, "").Handler()

	for _, target := range []string{"/api/started", "/api/ended", "/api/error"} {
		rec, _ := doJSON(t, handler, http.MethodPost, target, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}

	rec, _ := doJSON(t, handler, http.MethodGet, "/api/state", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, handler, http.MethodPost, "/api/select", `{"index":0}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
