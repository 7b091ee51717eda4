package resolve

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/osa030/playbox/internal/domain/track"
	"github.com/osa030/playbox/internal/domain/video"
)

// ErrNoMatch is returned when no variant produced any accepted
// candidate. A track with no valid playable candidate must not fall
// back to an unfiltered pick.
var ErrNoMatch = errors.New("no suitable match")

// CandidateSource returns raw search hits for a free-text query.
// Each hit is a resolvable video identifier.
type CandidateSource interface {
	Search(ctx context.Context, query string, maxResults int) (videoIDs []string, err error)
}

// VideoDetailsResolver returns authoritative metadata for a video ID.
// found is false when the video does not exist; that is a valid
// outcome, not an error.
type VideoDetailsResolver interface {
	VideoDetails(ctx context.Context, videoID string) (md *video.Metadata, found bool, err error)
}

// Options holds engine tuning knobs.
type Options struct {
	MaxResults        int           // raw hits requested per variant
	DetailConcurrency int64         // concurrent detail lookups per variant
	CallTimeout       time.Duration // per external call
	SearchSuffix      string        // disambiguation terms appended to every query
}

const defaultSearchSuffix = "official audio"

func (o *Options) applyDefaults() {
	if o.MaxResults <= 0 || o.MaxResults > 10 {
		o.MaxResults = 10
	}
	if o.DetailConcurrency <= 0 {
		o.DetailConcurrency = 4
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = 10 * time.Second
	}
	if o.SearchSuffix == "" {
		o.SearchSuffix = defaultSearchSuffix
	}
}

// Engine orchestrates variant generation, candidate search, metadata
// resolution and scoring into a ranked match set per track.
type Engine struct {
	source  CandidateSource
	details VideoDetailsResolver
	builder *VariantBuilder
	scorer  *Scorer
	opts    Options
}

// NewEngine creates a resolution engine.
func NewEngine(source CandidateSource, details VideoDetailsResolver, builder *VariantBuilder, scorer *Scorer, opts Options) *Engine {
	opts.applyDefaults()
	return &Engine{
		source:  source,
		details: details,
		builder: builder,
		scorer:  scorer,
		opts:    opts,
	}
}

// Resolve returns the ranked match set for a track, or ErrNoMatch when
// every variant came up empty. Variants are tried in priority order and
// the first variant producing any accepted candidate is authoritative.
func (e *Engine) Resolve(ctx context.Context, t track.Track) (video.MatchSet, error) {
	q, variants := e.builder.Plan(t)

	for i, variant := range variants {
		searchCtx, cancel := context.WithTimeout(ctx, e.opts.CallTimeout)
		hits, err := e.source.Search(searchCtx, variant.Query+" "+e.opts.SearchSuffix, e.opts.MaxResults)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return video.MatchSet{TrackID: t.ID}, ctx.Err()
			}
			zlog.Warn().Msgf("resolve: search failed, trying next variant: track=%s variant=%d error=%v", t.ID, i+1, err)
			continue
		}

		accepted := e.scoreHits(ctx, q, variant, hits)
		if ctx.Err() != nil {
			return video.MatchSet{TrackID: t.ID}, ctx.Err()
		}
		if len(accepted) == 0 {
			zlog.Debug().Msgf("resolve: variant produced no accepted candidates: track=%s variant=%d hits=%d", t.ID, i+1, len(hits))
			continue
		}

		// Stable sort keeps discovery order among equal scores, so
		// identical inputs always rank identically.
		sort.SliceStable(accepted, func(a, b int) bool {
			return accepted[a].Score > accepted[b].Score
		})
		if len(accepted) > video.MaxRankedCandidates {
			accepted = accepted[:video.MaxRankedCandidates]
		}

		zlog.Info().Msgf("resolve: matched: track=%s variant=%d candidates=%d top_score=%.1f",
			t.ID, i+1, len(accepted), accepted[0].Score)
		return video.MatchSet{TrackID: t.ID, Candidates: accepted}, nil
	}

	zlog.Info().Msgf("resolve: no suitable match: track=%s title=%q", t.ID, t.Title)
	return video.MatchSet{TrackID: t.ID}, ErrNoMatch
}

// scoreHits resolves details for each hit concurrently (bounded) and
// scores them. Results keep discovery order regardless of completion
// order. Per-candidate failures are skipped, never fatal.
func (e *Engine) scoreHits(ctx context.Context, q Query, variant SearchVariant, hits []string) []video.Candidate {
	results := make([]*video.Candidate, len(hits))
	sem := semaphore.NewWeighted(e.opts.DetailConcurrency)

	var wg sync.WaitGroup
	for i, videoID := range hits {
		if videoID == "" {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(i int, videoID string) {
			defer wg.Done()
			defer sem.Release(1)

			detailCtx, cancel := context.WithTimeout(ctx, e.opts.CallTimeout)
			defer cancel()

			md, found, err := e.details.VideoDetails(detailCtx, videoID)
			if err != nil {
				zlog.Warn().Msgf("resolve: details lookup failed, skipping candidate: video=%s error=%v", videoID, err)
				return
			}
			if !found {
				zlog.Debug().Msgf("resolve: video not found: video=%s", videoID)
				return
			}

			result := e.scorer.Score(q, *md, variant.RequireArtistMatch)
			if !result.Accepted {
				zlog.Debug().Msgf("resolve: candidate rejected: video=%s code=%s", videoID, result.Code)
				return
			}

			results[i] = &video.Candidate{
				VideoID:      md.VideoID,
				Score:        result.Score,
				Title:        md.Title,
				Description:  md.Description,
				ThumbnailURL: md.ThumbnailURL,
				ChannelName:  md.ChannelName,
			}
		}(i, videoID)
	}
	wg.Wait()

	accepted := make([]video.Candidate, 0, len(hits))
	for _, c := range results {
		if c != nil {
			accepted = append(accepted, *c)
		}
	}
	return accepted
}
