// Package spotify provides the playlist source client.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/osa030/playbox/internal/domain/playlist"
	"github.com/osa030/playbox/internal/domain/track"
)

// Authenticator wraps the Spotify authorization-code flow. One
// authenticator serves all web sessions; tokens are per listener.
type Authenticator struct {
	auth *spotifyauth.Authenticator
}

// NewAuthenticator creates an authenticator with read-only playlist
// scopes.
func NewAuthenticator(clientID, clientSecret, redirectURI string) (*Authenticator, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("spotify credentials are required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithClientSecret(clientSecret),
		spotifyauth.WithRedirectURL(redirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistReadCollaborative,
		),
	)
	return &Authenticator{auth: auth}, nil
}

// AuthURL returns the authorization URL for the given state.
func (a *Authenticator) AuthURL(state string) string {
	return a.auth.AuthURL(state)
}

// Exchange completes the authorization-code flow from the callback
// request.
func (a *Authenticator) Exchange(ctx context.Context, state string, r *http.Request) (*oauth2.Token, error) {
	token, err := a.auth.Token(ctx, state, r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to exchange authorization code")
	}
	return token, nil
}

// TokenFromRefreshToken builds an already-expired token around a stored
// refresh token (obtained with cmd/auth). The client refreshes it on
// first use, so headless runs never touch the interactive flow.
func TokenFromRefreshToken(refreshToken string) *oauth2.Token {
	return &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}
}

// NewClient creates a playlist source client bound to a listener's
// token. The underlying HTTP client refreshes the token transparently.
func (a *Authenticator) NewClient(ctx context.Context, token *oauth2.Token) *Client {
	httpClient := a.auth.Client(ctx, token)
	return &Client{
		client:     spotify.New(httpClient),
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// Client is a playlist source client for one authenticated listener.
type Client struct {
	client     *spotify.Client
	maxRetries int
	retryDelay time.Duration
}

// FirstPlaylist returns the listener's first playlist with all its
// tracks, following pagination.
func (c *Client) FirstPlaylist(ctx context.Context) (*playlist.Playlist, error) {
	var page *spotify.SimplePlaylistPage
	err := c.retry(func() error {
		p, err := c.client.CurrentUsersPlaylists(ctx, spotify.Limit(1))
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list playlists")
	}
	if len(page.Playlists) == 0 {
		return nil, errors.New("listener has no playlists")
	}

	first := page.Playlists[0]
	tracks, err := c.playlistTracks(ctx, first.ID)
	if err != nil {
		return nil, err
	}

	return &playlist.Playlist{
		ID:     string(first.ID),
		Name:   first.Name,
		Tracks: tracks,
	}, nil
}

// playlistTracks retrieves all tracks of a playlist, page by page.
func (c *Client) playlistTracks(ctx context.Context, playlistID spotify.ID) ([]track.Track, error) {
	var tracks []track.Track
	offset := 0
	limit := 100

	for {
		var page *spotify.PlaylistItemPage
		err := c.retry(func() error {
			p, err := c.client.GetPlaylistItems(ctx, playlistID,
				spotify.Limit(limit),
				spotify.Offset(offset),
			)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get playlist items")
		}

		for _, item := range page.Items {
			// Skip episodes and removed tracks
			if item.Track.Track != nil && item.Track.Track.ID != "" {
				tracks = append(tracks, convertTrack(item.Track.Track))
			}
		}

		if len(page.Items) < limit {
			break
		}
		offset += limit
	}

	return tracks, nil
}

// convertTrack converts a Spotify FullTrack to a domain Track.
func convertTrack(t *spotify.FullTrack) track.Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}
	return track.Track{
		ID:      string(t.ID),
		Title:   t.Name,
		Artists: artists,
	}
}

// retry retries an operation with linear backoff.
func (c *Client) retry(fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit errors and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}
