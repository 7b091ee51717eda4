// Package track provides the Track domain entity.
package track

import "strings"

// Track represents a track loaded from the playlist source.
// Contains only information retrieved from the Spotify API; it is
// read-only once loaded.
type Track struct {
	ID      string   // Spotify Track ID
	Title   string   // Track title
	Artists []string // Artist names, in playlist order
}

// ArtistLine returns the comma-joined artist names, matching how the
// playlist source displays multi-artist tracks. Value receiver so the
// player template can call it on range-bound tracks.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// SearchQuery returns the raw "title artists" text used as the base of
// video search queries.
func (t Track) SearchQuery() string {
	if len(t.Artists) == 0 {
		return t.Title
	}
	return t.Title + " " + t.ArtistLine()
}
