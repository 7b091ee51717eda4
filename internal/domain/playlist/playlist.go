// Package playlist provides the Playlist domain entity.
package playlist

import "github.com/osa030/playbox/internal/domain/track"

// Playlist represents a playlist loaded from the playlist source.
type Playlist struct {
	ID     string        // Spotify Playlist ID
	Name   string        // Playlist name
	Tracks []track.Track // Tracks in playlist order
}

// TrackAt returns the track at the given index.
func (p *Playlist) TrackAt(i int) (track.Track, bool) {
	if i < 0 || i >= len(p.Tracks) {
		return track.Track{}, false
	}
	return p.Tracks[i], true
}

// Size returns the number of tracks.
func (p *Playlist) Size() int {
	return len(p.Tracks)
}
