package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchSet_At(t *testing.T) {
	set := MatchSet{
		TrackID: "t1",
		Candidates: []Candidate{
			{VideoID: "v1", Score: 10},
			{VideoID: "v2", Score: 8},
		},
	}

	c, ok := set.At(0)
	assert.True(t, ok)
	assert.Equal(t, "v1", c.VideoID)

	c, ok = set.At(1)
	assert.True(t, ok)
	assert.Equal(t, "v2", c.VideoID)

	_, ok = set.At(-1)
	assert.False(t, ok)
	_, ok = set.At(2)
	assert.False(t, ok)

	assert.False(t, set.IsEmpty())
	assert.Equal(t, 2, set.Size())

	empty := MatchSet{TrackID: "t2"}
	assert.True(t, empty.IsEmpty())
	_, ok = empty.At(0)
	assert.False(t, ok)
}
