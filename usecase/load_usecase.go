package usecase

import (
	"context"

	"youtube-etl/domain/repository"
	"youtube-etl/infrastructure/logger"
)

// ILoadUsecase defines the load stage of the pipeline
type ILoadUsecase interface {
	// Load replaces the topic collection with the artifact at path and removes
	// the artifact. An empty path means the topic's default artifact path.
	Load(ctx context.Context, topic, path string) (int, error)
}

// LoadUsecase implements the load stage
type LoadUsecase struct {
	artifacts repository.IArtifactStore
	store     repository.IVideoStore
	fetcher   repository.IArtifactFetcher
}

// NewLoadUsecase creates a load use case. fetcher recreates a missing artifact.
func NewLoadUsecase(artifacts repository.IArtifactStore, store repository.IVideoStore, fetcher repository.IArtifactFetcher) *LoadUsecase {
	return &LoadUsecase{artifacts: artifacts, store: store, fetcher: fetcher}
}

func (l *LoadUsecase) Load(ctx context.Context, topic, path string) (int, error) {
	if path == "" {
		path = l.artifacts.Path(topic)
	}

	exists, err := l.artifacts.Exists(path)
	if err != nil {
		return 0, err
	}
	if !exists {
		logger.GetLogger().WithFields(map[string]interface{}{"topic": topic, "path": path}).Warn("Artifact not found, fetching videos first")
		path, err = l.fetcher.FetchToArtifact(ctx, topic)
		if err != nil {
			return 0, err
		}
	}

	records, err := l.artifacts.Read(path)
	if err != nil {
		return 0, err
	}

	// TODO: decide whether an empty fetch should clear the collection; today it keeps stale data.
	if len(records) > 0 {
		if err := l.store.ReplaceAll(ctx, topic, records); err != nil {
			logger.GetLogger().WithFields(map[string]interface{}{"topic": topic, "error": err}).Error("Error while loading videos into collection")
			return 0, err
		}
		fields := map[string]interface{}{"collection": topic, "count": len(records)}
		if total, err := l.store.Count(ctx, topic); err == nil {
			fields["total"] = total
		}
		logger.GetLogger().WithFields(fields).Info("Inserted documents into collection")
	} else {
		logger.GetLogger().WithField("collection", topic).Warn("Artifact is empty, collection left untouched")
	}

	if err := l.artifacts.Remove(path); err != nil {
		return 0, err
	}
	return len(records), nil
}
