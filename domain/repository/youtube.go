package repository

import (
	"context"

	"youtube-etl/domain/model"
)

// IYouTube is the subset of the video platform API the fetcher needs.
type IYouTube interface {
	// SearchVideos returns one page of video IDs matching query.
	SearchVideos(ctx context.Context, query, pageToken string, maxResults int64) (*model.SearchPage, error)
	// GetVideoDetails looks up snippet and statistics for at most 50 IDs.
	GetVideoDetails(ctx context.Context, videoIDs []string) ([]model.VideoRecord, error)
}

// IArtifactFetcher produces the intermediate artifact for a topic and returns its path.
type IArtifactFetcher interface {
	FetchToArtifact(ctx context.Context, topic string) (string, error)
}

// ITopicSource yields the topic for the current run.
type ITopicSource interface {
	Topic(ctx context.Context) (string, error)
}
