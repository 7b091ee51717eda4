// Package video provides the video candidate domain entities.
package video

import "time"

// MaxRankedCandidates is the maximum size of a MatchSet.
const MaxRankedCandidates = 3

// Metadata represents authoritative video metadata fetched from the
// details resolver. Transient: discarded after scoring.
type Metadata struct {
	VideoID          string
	Title            string
	Description      string
	ChannelName      string
	ThumbnailURL     string
	Duration         time.Duration
	Embeddable       bool
	PrivacyStatus    string // "public", "unlisted", "private"
	RegionRestricted bool
}

// Candidate represents a single scored video considered as a playable
// match for a track.
type Candidate struct {
	VideoID      string
	Score        float64
	Title        string
	Description  string
	ThumbnailURL string
	ChannelName  string
}

// MatchSet is the ranked candidate list for one track, best first,
// capped at MaxRankedCandidates.
type MatchSet struct {
	TrackID    string
	Candidates []Candidate
}

// IsEmpty returns true if no candidate passed validation.
func (m *MatchSet) IsEmpty() bool {
	return len(m.Candidates) == 0
}

// Size returns the number of ranked candidates.
func (m *MatchSet) Size() int {
	return len(m.Candidates)
}

// At returns the candidate at the given rank.
func (m *MatchSet) At(i int) (Candidate, bool) {
	if i < 0 || i >= len(m.Candidates) {
		return Candidate{}, false
	}
	return m.Candidates[i], true
}
