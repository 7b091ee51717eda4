package playback

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playbox/internal/domain/track"
	"github.com/osa030/playbox/internal/domain/video"
)

// Errors
var (
	ErrNoSuchTrack  = errors.New("track index out of range")
	ErrNoTracks     = errors.New("playlist is empty")
	ErrInvalidState = errors.New("command not valid in current state")
)

// Resolver resolves a track into a ranked match set.
type Resolver interface {
	Resolve(ctx context.Context, t track.Track) (video.MatchSet, error)
}

// Controller is the per-session playback state machine. It reacts to
// one external event at a time; all transitions are state-checked so
// duplicate or out-of-order player callbacks are no-ops.
type Controller struct {
	mu sync.Mutex

	resolver Resolver
	tracks   []track.Track

	state    State
	trackIdx int
	matches  video.MatchSet
	matchIdx int

	// Last-writer-wins guard for in-flight resolutions: a result is
	// applied only if its generation is still current.
	resolveGen    uint64
	resolveCancel context.CancelFunc

	eventCh chan Event
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a controller for one playlist traversal.
func NewController(resolver Resolver, tracks []track.Track) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		resolver: resolver,
		tracks:   tracks,
		state:    StateIdle,
		trackIdx: -1,
		matchIdx: -1,
		eventCh:  make(chan Event, 16),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// SelectTrack starts (or restarts) playback at the given playlist
// index. Selecting while a resolution is in flight cancels the stale
// resolution; its result will be discarded.
func (c *Controller) SelectTrack(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.tracks) == 0 {
		return ErrNoTracks
	}
	if index < 0 || index >= len(c.tracks) {
		return ErrNoSuchTrack
	}

	c.selectLocked(index)
	return nil
}

// OnPlaybackStarted records that the player began playback of the
// current candidate. Valid only while awaiting a candidate.
func (c *Controller) OnPlaybackStarted() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAwaitingCandidate {
		return ErrInvalidState
	}

	c.state = StatePlaying
	c.sendEventLocked(Event{
		Type:  EventStateChanged,
		Track: c.currentTrackLocked(),
		State: c.state,
	})
	return nil
}

// OnPlaybackEnded records natural end-of-media for the current track
// and advances to the next track, if any. Duplicate ended events are
// no-ops because the state has already left Playing.
func (c *Controller) OnPlaybackEnded() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying {
		return ErrInvalidState
	}

	endedTrack := c.currentTrackLocked()
	c.state = StateTrackEnded
	c.sendEventLocked(Event{
		Type:  EventTrackEnded,
		Track: endedTrack,
		State: c.state,
	})

	next := c.trackIdx + 1
	if next >= len(c.tracks) {
		c.state = StateExhaustedPlaylist
		zlog.Info().Msgf("playback: playlist exhausted: tracks=%d", len(c.tracks))
		c.sendEventLocked(Event{
			Type:  EventPlaylistExhausted,
			Track: endedTrack,
			State: c.state,
		})
		return nil
	}

	c.selectLocked(next)
	return nil
}

// OnPlaybackError records a play-time failure of the current candidate
// and advances to the next ranked candidate, stopping when the set is
// exhausted.
func (c *Controller) OnPlaybackError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The playback surface can report an error either after starting or
	// while still loading the candidate.
	if c.state != StatePlaying && c.state != StateAwaitingCandidate {
		return ErrInvalidState
	}

	c.state = StateCandidateFailed
	c.matchIdx++

	if c.matchIdx < c.matches.Size() {
		zlog.Info().Msgf("playback: candidate failed, trying next: track=%s rank=%d", c.matches.TrackID, c.matchIdx+1)
		c.awaitCandidateLocked()
		return nil
	}

	zlog.Warn().Msgf("playback: all candidates failed: track=%s tried=%d", c.matches.TrackID, c.matches.Size())
	c.state = StateExhaustedCandidates
	c.sendEventLocked(Event{
		Type:  EventCandidatesExhausted,
		Track: c.currentTrackLocked(),
		State: c.state,
	})
	return nil
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot is a consistent view of the session for UI binding.
type Snapshot struct {
	State      State
	TrackIndex int
	MatchIndex int
	Track      *track.Track
	Candidate  *video.Candidate
}

// Snapshot returns the current session view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:      c.state,
		TrackIndex: c.trackIdx,
		MatchIndex: c.matchIdx,
		Track:      c.currentTrackLocked(),
	}
	if cand, ok := c.matches.At(c.matchIdx); ok && c.state != StateResolving {
		snap.Candidate = &cand
	}
	return snap
}

// Tracks returns the playlist this controller traverses.
func (c *Controller) Tracks() []track.Track {
	return c.tracks
}

// Close cancels any in-flight resolution and releases resources.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true

	// Invalidate the in-flight resolution before the channel closes: a
	// resolver may drain past cancellation with a result in hand, and
	// its apply path must fail the generation check rather than send.
	c.resolveGen++
	if c.resolveCancel != nil {
		c.resolveCancel()
		c.resolveCancel = nil
	}
	if c.state == StateResolving {
		c.state = StateIdle
	}
	c.mu.Unlock()

	c.cancel()
	close(c.eventCh)
}

// selectLocked starts resolution for the given track index.
// Must be called with lock held.
func (c *Controller) selectLocked(index int) {
	// Cancel any stale resolution; its result is discarded by the
	// generation check even if the call drains normally.
	if c.resolveCancel != nil {
		c.resolveCancel()
		c.resolveCancel = nil
	}

	c.trackIdx = index
	c.matches = video.MatchSet{}
	c.matchIdx = -1
	c.state = StateResolving
	c.resolveGen++

	t := c.tracks[index]
	gen := c.resolveGen

	resolveCtx, cancel := context.WithCancel(c.ctx)
	c.resolveCancel = cancel

	zlog.Debug().Msgf("playback: resolving: index=%d track=%s title=%q", index, t.ID, t.Title)
	c.sendEventLocked(Event{
		Type:  EventResolving,
		Track: &t,
		State: c.state,
	})

	go c.resolve(resolveCtx, gen, t)
}

// resolve runs one resolution and applies the result if it is still
// current.
func (c *Controller) resolve(ctx context.Context, gen uint64, t track.Track) {
	set, err := c.resolver.Resolve(ctx, t)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Last-writer-wins: apply only if no newer selection superseded us.
	if gen != c.resolveGen || c.state != StateResolving {
		zlog.Debug().Msgf("playback: discarding stale resolution: track=%s", t.ID)
		return
	}
	c.resolveCancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		// ErrNoMatch and total provider failure both surface as no
		// match; the session stops rather than silently skipping.
		zlog.Info().Msgf("playback: no match: track=%s title=%q error=%v", t.ID, t.Title, err)
		c.state = StateExhaustedCandidates
		c.sendEventLocked(Event{
			Type:  EventNoMatch,
			Track: &t,
			State: c.state,
		})
		return
	}

	c.matches = set
	c.matchIdx = 0
	c.awaitCandidateLocked()
}

// awaitCandidateLocked enters AwaitingCandidate for the candidate at
// matchIdx and announces it to the playback surface.
// Must be called with lock held.
func (c *Controller) awaitCandidateLocked() {
	cand, ok := c.matches.At(c.matchIdx)
	if !ok {
		c.state = StateExhaustedCandidates
		c.sendEventLocked(Event{
			Type:  EventCandidatesExhausted,
			Track: c.currentTrackLocked(),
			State: c.state,
		})
		return
	}

	c.state = StateAwaitingCandidate
	c.sendEventLocked(Event{
		Type:      EventCandidateReady,
		Track:     c.currentTrackLocked(),
		Candidate: &cand,
		State:     c.state,
	})
}

func (c *Controller) currentTrackLocked() *track.Track {
	if c.trackIdx < 0 || c.trackIdx >= len(c.tracks) {
		return nil
	}
	t := c.tracks[c.trackIdx]
	return &t
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(e Event) {
	if c.closed {
		return
	}
	select {
	case c.eventCh <- e:
	case <-c.ctx.Done():
	default:
		// Channel full, drop event
	}
}
