package usecase_test

import (
	"context"
	"errors"
	"testing"

	"youtube-etl/domain/errs"
	"youtube-etl/infrastructure/filejson"
	"youtube-etl/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoad_ReplacesCollection(t *testing.T) {
	artifacts := filejson.NewArtifactStore(t.TempDir())
	store := newMemoryVideoStore()
	store.collections["cats"] = recordsFor(videoIDs("old", 0, 7))

	fresh := recordsFor(videoIDs("new", 0, 3))
	path, err := artifacts.Write("cats", fresh)
	require.NoError(t, err)

	fetcher := new(MockArtifactFetcher)
	count, err := usecase.NewLoadUsecase(artifacts, store, fetcher).Load(context.Background(), "cats", path)

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, fresh, store.docs("cats"))
	exists, _ := artifacts.Exists(path)
	assert.False(t, exists)
	fetcher.AssertNotCalled(t, "FetchToArtifact", mock.Anything, mock.Anything)
}

func TestLoad_EmptyArtifactLeavesCollection(t *testing.T) {
	artifacts := filejson.NewArtifactStore(t.TempDir())
	store := newMemoryVideoStore()
	existing := recordsFor(videoIDs("old", 0, 4))
	store.collections["cats"] = existing

	path, err := artifacts.Write("cats", nil)
	require.NoError(t, err)

	count, err := usecase.NewLoadUsecase(artifacts, store, new(MockArtifactFetcher)).Load(context.Background(), "cats", path)

	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, existing, store.docs("cats"))
	assert.Zero(t, store.replaces)
	exists, _ := artifacts.Exists(path)
	assert.False(t, exists)
}

func TestLoad_MissingArtifactFetchesFirst(t *testing.T) {
	artifacts := filejson.NewArtifactStore(t.TempDir())
	store := newMemoryVideoStore()
	fresh := recordsFor(videoIDs("f", 0, 5))

	fetcher := new(MockArtifactFetcher)
	fetcher.On("FetchToArtifact", mock.Anything, "cats").
		Run(func(mock.Arguments) {
			_, err := artifacts.Write("cats", fresh)
			require.NoError(t, err)
		}).
		Return(artifacts.Path("cats"), nil).Once()

	count, err := usecase.NewLoadUsecase(artifacts, store, fetcher).Load(context.Background(), "cats", "")

	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Equal(t, fresh, store.docs("cats"))
	exists, _ := artifacts.Exists(artifacts.Path("cats"))
	assert.False(t, exists)
	fetcher.AssertExpectations(t)
}

func TestLoad_FetchFailurePropagates(t *testing.T) {
	artifacts := filejson.NewArtifactStore(t.TempDir())
	fetcher := new(MockArtifactFetcher)
	fetcher.On("FetchToArtifact", mock.Anything, "cats").
		Return("", errs.ExternalAPI("search videos", errors.New("forbidden")))

	_, err := usecase.NewLoadUsecase(artifacts, newMemoryVideoStore(), fetcher).Load(context.Background(), "cats", "")

	assert.ErrorIs(t, err, errs.ErrExternalAPI)
}

func TestLoad_StoreFailureKeepsArtifact(t *testing.T) {
	artifacts := filejson.NewArtifactStore(t.TempDir())
	store := newMemoryVideoStore()
	store.replaceErr = errs.Store("insert videos", errors.New("connection refused"))

	path, err := artifacts.Write("cats", recordsFor(videoIDs("a", 0, 2)))
	require.NoError(t, err)

	_, err = usecase.NewLoadUsecase(artifacts, store, new(MockArtifactFetcher)).Load(context.Background(), "cats", path)

	assert.ErrorIs(t, err, errs.ErrStore)
	exists, _ := artifacts.Exists(path)
	assert.True(t, exists)
}

func TestLoad_MalformedArtifact(t *testing.T) {
	dir := t.TempDir()
	artifacts := filejson.NewArtifactStore(dir)
	require.NoError(t, writeFile(artifacts.Path("cats"), "{not json"))

	store := newMemoryVideoStore()
	_, err := usecase.NewLoadUsecase(artifacts, store, new(MockArtifactFetcher)).Load(context.Background(), "cats", "")

	assert.ErrorIs(t, err, errs.ErrFileSystem)
	assert.Zero(t, store.replaces)
}
