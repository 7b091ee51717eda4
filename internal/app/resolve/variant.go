// Package resolve provides the track resolution engine: it turns a
// playlist track into a ranked set of playable video candidates.
package resolve

import (
	"strings"

	"github.com/osa030/playbox/internal/domain/track"
)

// SearchVariant is one candidate search-query string derived from a
// track, paired with whether an artist match is mandatory for results
// found through it.
type SearchVariant struct {
	Query              string
	RequireArtistMatch bool
}

// Overrides maps a lowercase alias fragment to the canonical performing
// name. Lookup is substring-based against the lowercased artist field,
// so a fragment like "sassyde" also matches "SassyDee".
type Overrides map[string]string

// DefaultOverrides returns the built-in alias table for known
// mis-transcribed artist names.
func DefaultOverrides() Overrides {
	return Overrides{
		"sassyde": "Lenka",
		"cassedy": "Lenka",
	}
}

// Canonical returns the canonical artist name when the artist field
// contains a known alias fragment.
func (o Overrides) Canonical(artists string) (string, bool) {
	norm := strings.ToLower(strings.TrimSpace(artists))
	for alias, name := range o {
		if strings.Contains(norm, alias) {
			return name, true
		}
	}
	return "", false
}

// ArtistToken extracts the token used for override lookup and fuzzy
// comparison from a (possibly multi-artist, comma-joined) artist string.
// For multi-word designations the trailing word is taken as the token.
// This mirrors the upstream heuristic and is deliberately not a real
// name parser; keep replacements behind this function.
func ArtistToken(artists string) string {
	fields := strings.Fields(strings.TrimSpace(artists))
	if len(fields) == 0 {
		return ""
	}
	token := fields[len(fields)-1]
	token = strings.Trim(token, ",")
	return strings.ToLower(token)
}

// Query carries the per-track context the scorer evaluates candidates
// against.
type Query struct {
	Raw         string // original "title artists" text
	ArtistToken string // normalized artist token, after overrides
}

// VariantBuilder derives prioritized search variants from a track.
type VariantBuilder struct {
	overrides Overrides
}

// NewVariantBuilder creates a variant builder with the given override
// table. A nil table disables overrides.
func NewVariantBuilder(overrides Overrides) *VariantBuilder {
	return &VariantBuilder{overrides: overrides}
}

// Plan returns the query context and the search variants for a track,
// in priority order. The first variant that yields any accepted
// candidate is authoritative; later variants exist only as fallbacks.
func (b *VariantBuilder) Plan(t track.Track) (Query, []SearchVariant) {
	artists := t.ArtistLine()
	if canonical, ok := b.overrides.Canonical(artists); ok {
		artists = canonical
	}

	q := Query{
		Raw:         t.SearchQuery(),
		ArtistToken: ArtistToken(artists),
	}

	variants := []SearchVariant{
		{Query: t.Title + " " + artists, RequireArtistMatch: true},
		{Query: t.Title, RequireArtistMatch: false},
	}
	if strings.TrimSpace(artists) == "" {
		// No artist to match against; the title-only variant is all we have.
		variants = variants[1:]
	}
	return q, variants
}
