package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"youtube-etl/domain/errs"
	"youtube-etl/domain/model"
	"youtube-etl/domain/repository"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	// MaxPageSize is the largest page search.list accepts.
	MaxPageSize = 50
	// MaxBatchSize is the largest id list videos.list accepts.
	MaxBatchSize = 50
)

// Client represents YouTube Data API client
type Client struct {
	service        *youtube.Service
	limiter        *rate.Limiter
	requestTimeout time.Duration
}

// Config represents YouTube API configuration
type Config struct {
	APIKey            string
	Endpoint          string
	RequestsPerSecond float64
	Burst             int
	RequestTimeout    time.Duration
	// HTTPClient replaces the API-key transport, used against test servers.
	HTTPClient *http.Client
}

// NewYouTubeClient creates a read-only client authenticated by API key.
// A missing key fails here, before any network call.
func NewYouTubeClient(ctx context.Context, config *Config) (repository.IYouTube, error) {
	if config == nil || strings.TrimSpace(config.APIKey) == "" {
		return nil, errs.Configuration("create youtube client", errors.New("api key is required"))
	}

	opts := []option.ClientOption{option.WithAPIKey(config.APIKey)}
	if config.HTTPClient != nil {
		opts = []option.ClientOption{option.WithHTTPClient(config.HTTPClient)}
	}
	if config.Endpoint != "" {
		endpoint := config.Endpoint
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, errs.Configuration("create youtube client", fmt.Errorf("failed to create YouTube service with API key: %w", err))
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	return &Client{
		service:        service,
		limiter:        limiter,
		requestTimeout: config.RequestTimeout,
	}, nil
}

// SearchVideos returns one page of video IDs for query
func (c *Client) SearchVideos(ctx context.Context, query, pageToken string, maxResults int64) (*model.SearchPage, error) {
	if maxResults <= 0 || maxResults > MaxPageSize {
		maxResults = MaxPageSize
	}

	ctx, cancel, err := c.prepare(ctx)
	if err != nil {
		return nil, errs.ExternalAPI("search videos", err)
	}
	defer cancel()

	call := c.service.Search.List([]string{"id", "snippet"}).
		Q(query).
		Type("video").
		MaxResults(maxResults)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, errs.ExternalAPI("search videos", fmt.Errorf("failed to search videos: %w", err))
	}

	page := &model.SearchPage{NextPageToken: response.NextPageToken}
	for _, item := range response.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			page.VideoIDs = append(page.VideoIDs, item.Id.VideoId)
		}
	}
	return page, nil
}

// GetVideoDetails retrieves snippet and statistics for a batch of videos
func (c *Client) GetVideoDetails(ctx context.Context, videoIDs []string) ([]model.VideoRecord, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	if len(videoIDs) > MaxBatchSize {
		return nil, errs.ExternalAPI("get video details", fmt.Errorf("batch of %d ids exceeds limit of %d", len(videoIDs), MaxBatchSize))
	}

	ctx, cancel, err := c.prepare(ctx)
	if err != nil {
		return nil, errs.ExternalAPI("get video details", err)
	}
	defer cancel()

	response, err := c.service.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(strings.Join(videoIDs, ",")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errs.ExternalAPI("get video details", fmt.Errorf("failed to get video details: %w", err))
	}

	records := make([]model.VideoRecord, 0, len(response.Items))
	for _, video := range response.Items {
		records = append(records, convertToVideoRecord(video))
	}
	return records, nil
}

// prepare waits for the rate limiter and applies the per-request timeout.
func (c *Client) prepare(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}
	if c.requestTimeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
		return ctx, cancel, nil
	}
	return ctx, func() {}, nil
}

// convertToVideoRecord converts a YouTube API video to our record.
// Statistics missing from the response stay zero.
func convertToVideoRecord(video *youtube.Video) model.VideoRecord {
	record := model.VideoRecord{
		VideoID: video.Id,
		URL:     model.WatchURL(video.Id),
	}
	if video.Snippet != nil {
		record.Title = video.Snippet.Title
		record.Description = video.Snippet.Description
		record.UploadDate = video.Snippet.PublishedAt
	}
	if video.Statistics != nil {
		record.Views = int64(video.Statistics.ViewCount)
		record.Likes = int64(video.Statistics.LikeCount)
		record.Comments = int64(video.Statistics.CommentCount)
	}
	return record
}
