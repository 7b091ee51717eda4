package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrack_ArtistLine(t *testing.T) {
	tests := []struct {
		name     string
		artists  []string
		expected string
	}{
		{
			name:     "single artist",
			artists:  []string{"Ed Sheeran"},
			expected: "Ed Sheeran",
		},
		{
			name:     "multiple artists",
			artists:  []string{"Calvin Harris", "Dua Lipa"},
			expected: "Calvin Harris, Dua Lipa",
		},
		{
			name:     "no artists",
			artists:  nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trk := Track{ID: "id", Title: "Title", Artists: tt.artists}
			assert.Equal(t, tt.expected, trk.ArtistLine())
		})
	}
}

func TestTrack_SearchQuery(t *testing.T) {
	trk := Track{Title: "Shape of You", Artists: []string{"Ed Sheeran"}}
	assert.Equal(t, "Shape of You Ed Sheeran", trk.SearchQuery())

	noArtist := Track{Title: "Shape of You"}
	assert.Equal(t, "Shape of You", noArtist.SearchQuery())
}
