package playback

import (
	"github.com/osa030/playbox/internal/domain/track"
	"github.com/osa030/playbox/internal/domain/video"
)

// EventType represents a playback session event type.
type EventType int

const (
	EventResolving           EventType = iota // Resolution started for a track
	EventCandidateReady                       // A candidate was chosen and should be loaded by the player
	EventNoMatch                              // Resolution found no suitable match
	EventTrackEnded                           // Track finished playing naturally
	EventCandidatesExhausted                  // All ranked candidates failed
	EventPlaylistExhausted                    // Playlist traversal finished
	EventStateChanged                         // Other state transition
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventResolving:
		return "resolving"
	case EventCandidateReady:
		return "candidate_ready"
	case EventNoMatch:
		return "no_match"
	case EventTrackEnded:
		return "track_ended"
	case EventCandidatesExhausted:
		return "candidates_exhausted"
	case EventPlaylistExhausted:
		return "playlist_exhausted"
	case EventStateChanged:
		return "state_changed"
	default:
		return "unknown"
	}
}

// Event represents a playback session event.
type Event struct {
	Type      EventType
	Track     *track.Track     // Track the event concerns (nil for some events)
	Candidate *video.Candidate // Candidate to load (EventCandidateReady only)
	State     State            // State after the transition
}
