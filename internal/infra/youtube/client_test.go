package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(context.Background(), Config{APIKey: "test-key"},
		option.WithEndpoint(srv.URL))
	require.NoError(t, err)
	return client
}

func writeSearchResponse(t *testing.T, w http.ResponseWriter, ids ...string) {
	t.Helper()
	resp := &yt.SearchListResponse{}
	for _, id := range ids {
		resp.Items = append(resp.Items, &yt.SearchResult{
			Id: &yt.ResourceId{Kind: "youtube#video", VideoId: id},
		})
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/search"))
		assert.Equal(t, "shape of you official audio", r.URL.Query().Get("q"))
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		writeSearchResponse(t, w, "v1", "v2")
	}))

	ids, err := client.Search(context.Background(), "shape of you official audio", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, ids)
}

func TestClient_Search_ClampsMaxResults(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
		writeSearchResponse(t, w)
	}))

	ids, err := client.Search(context.Background(), "anything", 50)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestClient_Search_EmptyQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.Search(context.Background(), "", 5)
	assert.Error(t, err)
}

func TestClient_Search_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"quotaExceeded"}}`, http.StatusForbidden)
	}))

	_, err := client.Search(context.Background(), "anything", 5)
	assert.Error(t, err)
}

func TestClient_VideoDetails(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/videos"))
		assert.Equal(t, "v1", r.URL.Query().Get("id"))
		assert.ElementsMatch(t,
			[]string{"snippet", "contentDetails", "status"},
			r.URL.Query()["part"])

		resp := &yt.VideoListResponse{Items: []*yt.Video{{
			Id: "v1",
			Snippet: &yt.VideoSnippet{
				Title:        "Ed Sheeran - Shape of You",
				Description:  "Official music video",
				ChannelTitle: "Ed Sheeran",
				Thumbnails: &yt.ThumbnailDetails{
					Default: &yt.Thumbnail{Url: "https://example.com/default.jpg"},
					Medium:  &yt.Thumbnail{Url: "https://example.com/medium.jpg"},
				},
			},
			ContentDetails: &yt.VideoContentDetails{Duration: "PT4M23S"},
			Status:         &yt.VideoStatus{PrivacyStatus: "public", Embeddable: true},
		}}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))

	md, found, err := client.VideoDetails(context.Background(), "v1")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "v1", md.VideoID)
	assert.Equal(t, "Ed Sheeran - Shape of You", md.Title)
	assert.Equal(t, "Official music video", md.Description)
	assert.Equal(t, "Ed Sheeran", md.ChannelName)
	assert.Equal(t, "https://example.com/medium.jpg", md.ThumbnailURL)
	assert.Equal(t, 4*time.Minute+23*time.Second, md.Duration)
	assert.Equal(t, "public", md.PrivacyStatus)
	assert.True(t, md.Embeddable)
	assert.False(t, md.RegionRestricted)
}

func TestClient_VideoDetails_RegionRestricted(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := &yt.VideoListResponse{Items: []*yt.Video{{
			Id: "v1",
			ContentDetails: &yt.VideoContentDetails{
				Duration:          "PT4M",
				RegionRestriction: &yt.VideoContentDetailsRegionRestriction{Blocked: []string{"US"}},
			},
			Status: &yt.VideoStatus{PrivacyStatus: "public", Embeddable: true},
		}}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))

	md, found, err := client.VideoDetails(context.Background(), "v1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, md.RegionRestricted)
}

func TestClient_VideoDetails_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(&yt.VideoListResponse{}))
	}))

	md, found, err := client.VideoDetails(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, md)
}

func TestClient_VideoDetails_MalformedDuration(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := &yt.VideoListResponse{Items: []*yt.Video{{
			Id:             "v1",
			ContentDetails: &yt.VideoContentDetails{Duration: "four minutes"},
			Status:         &yt.VideoStatus{PrivacyStatus: "public", Embeddable: true},
		}}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))

	_, found, err := client.VideoDetails(context.Background(), "v1")
	assert.Error(t, err)
	assert.False(t, found)
}
