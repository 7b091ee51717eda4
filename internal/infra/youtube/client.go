// Package youtube provides the video search service client. It
// implements the resolution engine's candidate source and details
// resolver contracts against the YouTube Data API v3.
package youtube

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/osa030/playbox/internal/domain/video"
)

// Client is a YouTube Data API client.
type Client struct {
	svc *yt.Service
}

// Config represents YouTube client configuration.
type Config struct {
	APIKey string
}

// New creates a new YouTube client. Extra options are accepted for
// tests (endpoint and HTTP client overrides).
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("youtube API key is required")
	}

	all := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	svc, err := yt.NewService(ctx, all...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create youtube service")
	}
	return &Client{svc: svc}, nil
}

// Search returns up to maxResults video IDs for a free-text query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	if query == "" {
		return nil, errors.New("search query is required")
	}
	if maxResults <= 0 || maxResults > 10 {
		maxResults = 10
	}

	resp, err := c.svc.Search.List([]string{"id"}).
		Q(query).
		Type("video").
		MaxResults(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "search request failed")
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}

	zlog.Debug().Msgf("youtube: search: query=%q hits=%d", query, len(ids))
	return ids, nil
}

// VideoDetails returns authoritative metadata for a video ID. An absent
// video is a valid not-found outcome, not an error.
func (c *Client) VideoDetails(ctx context.Context, videoID string) (*video.Metadata, bool, error) {
	if videoID == "" {
		return nil, false, errors.New("video ID is required")
	}

	resp, err := c.svc.Videos.List([]string{"snippet", "contentDetails", "status"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, false, errors.Wrap(err, "video details request failed")
	}
	if len(resp.Items) == 0 {
		return nil, false, nil
	}

	v := resp.Items[0]
	md := &video.Metadata{VideoID: v.Id}

	if v.Snippet != nil {
		md.Title = v.Snippet.Title
		md.Description = v.Snippet.Description
		md.ChannelName = v.Snippet.ChannelTitle
		md.ThumbnailURL = thumbnailURL(v.Snippet.Thumbnails)
	}
	if v.Status != nil {
		md.PrivacyStatus = v.Status.PrivacyStatus
		md.Embeddable = v.Status.Embeddable
	}
	if v.ContentDetails != nil {
		md.RegionRestricted = v.ContentDetails.RegionRestriction != nil

		d, err := parseDuration(v.ContentDetails.Duration)
		if err != nil {
			// A malformed duration makes the <60s filter meaningless;
			// treat the item as malformed and let the engine skip it.
			return nil, false, errors.Wrapf(err, "video %s", videoID)
		}
		md.Duration = d
	}

	return md, true, nil
}

// thumbnailURL picks the medium thumbnail, falling back to default.
func thumbnailURL(t *yt.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	if t.Medium != nil {
		return t.Medium.Url
	}
	if t.Default != nil {
		return t.Default.Url
	}
	return ""
}
