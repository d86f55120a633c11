package repository

import (
	"context"

	"youtube-etl/domain/model"
)

// IVideoStore persists video records into a topic-named collection.
type IVideoStore interface {
	// ReplaceAll deletes every document in collection, then inserts records.
	ReplaceAll(ctx context.Context, collection string, records []model.VideoRecord) error
	// Count returns the number of documents in collection.
	Count(ctx context.Context, collection string) (int64, error)
}

// IArtifactStore reads and writes the intermediate file handed between tasks.
type IArtifactStore interface {
	Path(topic string) string
	Exists(path string) (bool, error)
	Write(topic string, records []model.VideoRecord) (string, error)
	Read(path string) ([]model.VideoRecord, error)
	Remove(path string) error
}
