package usecase_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"youtube-etl/domain/model"

	"github.com/stretchr/testify/mock"
)

// Mock implementations
type MockYouTube struct {
	mock.Mock
}

func (m *MockYouTube) SearchVideos(ctx context.Context, query, pageToken string, maxResults int64) (*model.SearchPage, error) {
	args := m.Called(ctx, query, pageToken, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchPage), args.Error(1)
}

func (m *MockYouTube) GetVideoDetails(ctx context.Context, ids []string) ([]model.VideoRecord, error) {
	args := m.Called(ctx, ids)
	if fn, ok := args.Get(0).(func(context.Context, []string) []model.VideoRecord); ok {
		return fn(ctx, ids), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VideoRecord), args.Error(1)
}

type MockArtifactFetcher struct {
	mock.Mock
}

func (m *MockArtifactFetcher) FetchToArtifact(ctx context.Context, topic string) (string, error) {
	args := m.Called(ctx, topic)
	return args.String(0), args.Error(1)
}

type MockLoadUsecase struct {
	mock.Mock
}

func (m *MockLoadUsecase) Load(ctx context.Context, topic, path string) (int, error) {
	args := m.Called(ctx, topic, path)
	return args.Int(0), args.Error(1)
}

type staticTopic string

func (s staticTopic) Topic(context.Context) (string, error) { return string(s), nil }

// memoryVideoStore is an in-memory document store keyed by collection.
type memoryVideoStore struct {
	mu          sync.Mutex
	collections map[string][]model.VideoRecord
	replaceErr  error
	replaces    int
}

func newMemoryVideoStore() *memoryVideoStore {
	return &memoryVideoStore{collections: map[string][]model.VideoRecord{}}
}

func (s *memoryVideoStore) ReplaceAll(_ context.Context, collection string, records []model.VideoRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaces++
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.collections[collection] = append([]model.VideoRecord(nil), records...)
	return nil
}

func (s *memoryVideoStore) Count(_ context.Context, collection string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.collections[collection])), nil
}

func (s *memoryVideoStore) docs(collection string) []model.VideoRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collections[collection]
}

func videoIDs(prefix string, from, to int) []string {
	ids := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		ids = append(ids, fmt.Sprintf("%s%03d", prefix, i))
	}
	return ids
}

func recordsFor(ids []string) []model.VideoRecord {
	records := make([]model.VideoRecord, 0, len(ids))
	for i, id := range ids {
		records = append(records, model.VideoRecord{
			VideoID:    id,
			Title:      "Video " + id,
			UploadDate: time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC).Format(time.RFC3339),
			Views:      int64(i * 10),
			URL:        model.WatchURL(id),
		})
	}
	return records
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
