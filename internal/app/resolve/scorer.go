package resolve

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/osa030/playbox/internal/domain/video"
)

// Rejection codes returned by the scorer.
const (
	CodeNotPublic        = "not_public"
	CodeTooShort         = "too_short"
	CodeRegionRestricted = "region_restricted"
	CodeNotEmbeddable    = "not_embeddable"
	CodeArtistMismatch   = "artist_mismatch"
)

// Result represents the outcome of scoring one candidate.
type Result struct {
	Accepted bool
	Score    float64
	Code     string // rejection code, empty when accepted
}

// Accept returns an accepted result with the given score.
func Accept(score float64) Result {
	return Result{Accepted: true, Score: score}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// ScoringConfig represents the scorer weights. The defaults reproduce
// the canonical heuristic; they are exposed as settings so deployments
// can tune them without a rebuild.
type ScoringConfig struct {
	ArtistMatchBonus       float64 `yaml:"artist_match_bonus" mapstructure:"artist_match_bonus" default:"5"`
	OfficialBonus          float64 `yaml:"official_bonus" mapstructure:"official_bonus" default:"3"`
	AudioBonus             float64 `yaml:"audio_bonus" mapstructure:"audio_bonus" default:"2"`
	LyricsBonus            float64 `yaml:"lyrics_bonus" mapstructure:"lyrics_bonus" default:"1"`
	RemixPenalty           float64 `yaml:"remix_penalty" mapstructure:"remix_penalty" default:"2" validate:"gte=0"`
	LivePenalty            float64 `yaml:"live_penalty" mapstructure:"live_penalty" default:"1" validate:"gte=0"`
	TitleSimilarityDivisor float64 `yaml:"title_similarity_divisor" mapstructure:"title_similarity_divisor" default:"20" validate:"gte=1"`
	ChannelMatchThreshold  int     `yaml:"channel_match_threshold" mapstructure:"channel_match_threshold" default:"70" validate:"gte=0,lte=100"`
	MinDurationSec         int     `yaml:"min_duration_sec" mapstructure:"min_duration_sec" default:"60" validate:"gte=0"`
}

// Scorer validates candidate metadata against a query context and
// assigns a heuristic score. It is a pure function of its inputs.
type Scorer struct {
	config *ScoringConfig
}

// NewScorer creates a scorer from settings. Missing keys fall back to
// the canonical weights; out-of-range values fail validation.
func NewScorer(settings map[string]any) (*Scorer, error) {
	var config ScoringConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &config,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, errors.Wrap(err, "failed to decode scoring settings")
	}

	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(err, "scoring validation failed")
	}

	return &Scorer{config: &config}, nil
}

// Score evaluates one candidate's metadata in the context of the query
// that produced it. requireArtist comes from the originating variant.
func (s *Scorer) Score(q Query, md video.Metadata, requireArtist bool) Result {
	cfg := s.config

	// Hard rejections: these candidates must never be played no matter
	// how well their text matches.
	if md.PrivacyStatus != "public" {
		return Reject(CodeNotPublic)
	}
	if int(md.Duration.Seconds()) < cfg.MinDurationSec {
		return Reject(CodeTooShort)
	}
	if md.RegionRestricted {
		return Reject(CodeRegionRestricted)
	}
	if !md.Embeddable {
		return Reject(CodeNotEmbeddable)
	}

	title := strings.ToLower(md.Title)
	description := strings.ToLower(md.Description)
	channel := strings.ToLower(md.ChannelName)

	var score float64

	if s.artistPresent(q.ArtistToken, title, description, channel) {
		score += cfg.ArtistMatchBonus
	} else if requireArtist {
		return Reject(CodeArtistMismatch)
	}

	if strings.Contains(title, "official") || strings.Contains(description, "official") {
		score += cfg.OfficialBonus
	}
	if strings.Contains(title, "audio") {
		score += cfg.AudioBonus
	}
	if strings.Contains(title, "lyric") {
		score += cfg.LyricsBonus
	}
	if strings.Contains(title, "remix") || strings.Contains(title, "cover") {
		score -= cfg.RemixPenalty
	}
	if strings.Contains(title, "live") || strings.Contains(title, "performance") {
		score -= cfg.LivePenalty
	}

	// Closeness of the whole query to the candidate title, contributing
	// 0-5 with the canonical divisor. Token-sort tolerates titles that
	// put the artist first ("Artist - Title").
	similarity := fuzzy.TokenSortRatio(strings.ToLower(q.Raw), title)
	score += float64(similarity) / cfg.TitleSimilarityDivisor

	return Accept(score)
}

// artistPresent reports whether the artist token appears in the title
// or description, or fuzzily matches the channel name above the
// configured threshold.
func (s *Scorer) artistPresent(token, title, description, channel string) bool {
	if token == "" {
		return false
	}
	if strings.Contains(title, token) || strings.Contains(description, token) {
		return true
	}
	return fuzzy.PartialRatio(token, channel) > s.config.ChannelMatchThreshold
}
