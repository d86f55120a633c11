package bootstrap

import (
	"context"
	"errors"
	"os"
	"testing"

	"youtube-etl/domain/errs"
	"youtube-etl/infrastructure/configuration"
	"youtube-etl/infrastructure/filejson"
	"youtube-etl/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfig(t *testing.T, mutate func(c *configuration.Config)) {
	t.Helper()
	saved := configuration.C
	t.Cleanup(func() { configuration.C = saved })
	mutate(&configuration.C)
}

func TestNewFetcher_RequiresAPIKey(t *testing.T) {
	for _, key := range []string{"", "YOUR_YOUTUBE_API_KEY"} {
		withConfig(t, func(c *configuration.Config) { c.YouTube.APIKey = key })

		components, err := NewFetcher(context.Background())

		assert.Nil(t, components)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrConfiguration))
	}
}

func TestNewFetcher(t *testing.T) {
	dir := t.TempDir()
	withConfig(t, func(c *configuration.Config) {
		c.YouTube.APIKey = "test-key"
		c.Pipeline.DataDir = dir
		c.Pipeline.TopicFile = dir + "/topic.txt"
	})

	components, err := NewFetcher(context.Background())
	require.NoError(t, err)
	defer components.Close()

	assert.NotNil(t, components.Fetcher)
	assert.NotNil(t, components.Topics)
	assert.Nil(t, components.Loader)
}

func TestComponents_CloseRunsInReverse(t *testing.T) {
	var order []int
	c := &Components{closers: []func(){
		func() { order = append(order, 1) },
		func() { order = append(order, 2) },
	}}

	c.Close()
	c.Close()

	assert.Equal(t, []int{2, 1}, order)
}

func TestRunHistoryAndLocker_FallBackToMemory(t *testing.T) {
	withConfig(t, func(c *configuration.Config) {
		c.Database.Psql.URL = ""
		c.RedisClient.Host = ""
	})

	c := &Components{}
	assert.NotNil(t, c.runHistory())
	assert.NotNil(t, c.locker(context.Background()))
	assert.Empty(t, c.closers)
}

func TestNewPipeline_RequiresAPIKey(t *testing.T) {
	withConfig(t, func(c *configuration.Config) { c.YouTube.APIKey = "" })

	components, err := NewPipeline(context.Background())

	assert.Nil(t, components)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestUnavailableFetcher_FailsOnlyTheMissingArtifactFallback(t *testing.T) {
	cause := errs.Configuration("create youtube client", errors.New("api key is required"))
	artifacts := filejson.NewArtifactStore(t.TempDir())
	loader := usecase.NewLoadUsecase(artifacts, nil, unavailableFetcher{err: cause})

	_, err := loader.Load(context.Background(), "cats", "")

	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

// Runs against a real MongoDB only when MONGO_URI_TEST is set.
func TestNewLoader_WithoutAPIKey(t *testing.T) {
	uri := os.Getenv("MONGO_URI_TEST")
	if uri == "" {
		t.Skip("MONGO_URI_TEST not set")
	}
	dir := t.TempDir()
	withConfig(t, func(c *configuration.Config) {
		c.YouTube.APIKey = ""
		c.Database.Mongo.URI = uri
		c.Database.Mongo.Name = "youtube_etl_bootstrap_test"
		c.Pipeline.DataDir = dir
		c.Pipeline.TopicFile = dir + "/topic.txt"
	})

	components, err := NewLoader(context.Background())
	require.NoError(t, err)
	defer components.Close()

	assert.Nil(t, components.Fetcher)
	assert.NotNil(t, components.Loader)
	assert.NotNil(t, components.Topics)
}
