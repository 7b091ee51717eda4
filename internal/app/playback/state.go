// Package playback provides the continuity controller that walks
// ranked candidates on failure and advances through the playlist on
// completion.
package playback

// State represents the playback session state.
type State int

const (
	StateIdle                State = iota // No track selected
	StateResolving                        // Resolution in flight for the selected track
	StateAwaitingCandidate                // A ranked candidate is chosen, waiting for the player to start it
	StatePlaying                          // The player reported playback of the current candidate
	StateCandidateFailed                  // The current candidate failed at play time
	StateTrackEnded                       // The current track reached natural end-of-media
	StateExhaustedCandidates              // Every ranked candidate failed, or resolution found none
	StateExhaustedPlaylist                // No further track exists
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateAwaitingCandidate:
		return "awaiting_candidate"
	case StatePlaying:
		return "playing"
	case StateCandidateFailed:
		return "candidate_failed"
	case StateTrackEnded:
		return "track_ended"
	case StateExhaustedCandidates:
		return "exhausted_candidates"
	case StateExhaustedPlaylist:
		return "exhausted_playlist"
	default:
		return "unknown"
	}
}

// Terminal returns true for states the session cannot leave without an
// external command.
func (s State) Terminal() bool {
	return s == StateExhaustedCandidates || s == StateExhaustedPlaylist
}
