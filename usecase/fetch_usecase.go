package usecase

import (
	"context"

	"youtube-etl/domain/model"
	"youtube-etl/domain/repository"
	"youtube-etl/infrastructure/logger"
)

const (
	// DefaultMaxResults is the number of videos fetched per topic.
	DefaultMaxResults = 100
	// searchPageSize and detailBatchSize are the API's per-call maximums.
	searchPageSize  = 50
	detailBatchSize = 50
)

// IFetchUsecase defines the fetch stage of the pipeline
type IFetchUsecase interface {
	repository.IArtifactFetcher
	// FetchVideos returns up to target records, each with a distinct video ID.
	FetchVideos(ctx context.Context, topic string, target int64) ([]model.VideoRecord, error)
}

// FetchUsecase implements the fetch stage
type FetchUsecase struct {
	youtube    repository.IYouTube
	artifacts  repository.IArtifactStore
	maxResults int64
}

// NewFetchUsecase creates a fetch use case; maxResults <= 0 uses DefaultMaxResults
func NewFetchUsecase(youtube repository.IYouTube, artifacts repository.IArtifactStore, maxResults int64) *FetchUsecase {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &FetchUsecase{youtube: youtube, artifacts: artifacts, maxResults: maxResults}
}

// FetchVideos searches topic page by page until target IDs are collected or
// the results run out, then looks up details in batches.
func (f *FetchUsecase) FetchVideos(ctx context.Context, topic string, target int64) ([]model.VideoRecord, error) {
	if target <= 0 {
		target = DefaultMaxResults
	}

	videoIDs, err := f.searchVideoIDs(ctx, topic, target)
	if err != nil {
		return nil, err
	}

	records := make([]model.VideoRecord, 0, len(videoIDs))
	for start := 0; start < len(videoIDs); start += detailBatchSize {
		end := start + detailBatchSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		batch, err := f.youtube.GetVideoDetails(ctx, videoIDs[start:end])
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"topic":     topic,
		"requested": target,
		"ids":       len(videoIDs),
		"videos":    len(records),
	}).Info("Fetched videos for topic")
	return records, nil
}

func (f *FetchUsecase) searchVideoIDs(ctx context.Context, topic string, target int64) ([]string, error) {
	videoIDs := make([]string, 0, target)
	seen := make(map[string]struct{}, target)
	pageToken := ""
	pages := 0

	for int64(len(videoIDs)) < target {
		page, err := f.youtube.SearchVideos(ctx, topic, pageToken, searchPageSize)
		if err != nil {
			return nil, err
		}
		pages++
		added := 0
		for _, id := range page.VideoIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			videoIDs = append(videoIDs, id)
			added++
		}
		// A page with nothing new ends the search even if the API hands out
		// another token.
		if page.NextPageToken == "" || page.NextPageToken == pageToken || added == 0 {
			break
		}
		pageToken = page.NextPageToken
	}

	if int64(len(videoIDs)) > target {
		videoIDs = videoIDs[:target]
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"topic": topic,
		"pages": pages,
		"ids":   len(videoIDs),
	}).Debug("Search finished")
	return videoIDs, nil
}

// FetchToArtifact fetches the configured number of videos for topic and
// writes them to the topic's artifact file, returning its path.
func (f *FetchUsecase) FetchToArtifact(ctx context.Context, topic string) (string, error) {
	records, err := f.FetchVideos(ctx, topic, f.maxResults)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"topic": topic, "error": err}).Error("Error while fetching videos")
		return "", err
	}
	path, err := f.artifacts.Write(topic, records)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"topic": topic, "error": err}).Error("Error while saving videos data")
		return "", err
	}
	return path, nil
}
