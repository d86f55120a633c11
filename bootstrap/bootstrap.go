// Package bootstrap builds the pipeline components from configuration.C.
// The scheduler process and the one-shot task commands share it.
package bootstrap

import (
	"context"
	"errors"

	"youtube-etl/domain/errs"
	"youtube-etl/domain/repository"
	"youtube-etl/infrastructure/cache"
	youtubeclient "youtube-etl/infrastructure/clients/youtube"
	"youtube-etl/infrastructure/configuration"
	"youtube-etl/infrastructure/filejson"
	"youtube-etl/infrastructure/logger"
	"youtube-etl/infrastructure/persistence"
	"youtube-etl/infrastructure/realtime"
	"youtube-etl/usecase"
)

// Components holds the wired pipeline and the resources it owns.
type Components struct {
	Topics   repository.ITopicSource
	Fetcher  *usecase.FetchUsecase
	Loader   *usecase.LoadUsecase
	Pipeline *usecase.PipelineUsecase
	RunHub   *realtime.Hub

	closers []func()
}

// Close releases every connection opened by the builders, in reverse order.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// NewFetcher wires the fetch stage only. It does not touch the document store.
func NewFetcher(ctx context.Context) (*Components, error) {
	ytCfg, err := configuration.GetYouTubeConfig()
	if err != nil {
		return nil, err
	}
	client, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		APIKey:            ytCfg.APIKey,
		Endpoint:          ytCfg.Endpoint,
		RequestsPerSecond: ytCfg.RequestsPerSecond,
		Burst:             ytCfg.Burst,
		RequestTimeout:    ytCfg.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}

	artifacts := filejson.NewArtifactStore(configuration.C.Pipeline.DataDir)
	return &Components{
		Topics:  configuration.NewTopicFile(configuration.C.Pipeline.TopicFile),
		Fetcher: usecase.NewFetchUsecase(client, artifacts, configuration.C.Pipeline.MaxResults),
	}, nil
}

// NewLoader wires the load stage and connects to MongoDB. The fetch stage is
// only needed to recreate a missing artifact, so a YouTube client that is not
// configured fails that fallback instead of the loader.
func NewLoader(ctx context.Context) (*Components, error) {
	c, err := NewFetcher(ctx)
	var fetcher repository.IArtifactFetcher
	switch {
	case err == nil:
		fetcher = c.Fetcher
	case errors.Is(err, errs.ErrConfiguration):
		logger.GetLogger().WithField("error", err).Warn("YouTube client not configured, a missing artifact cannot be fetched")
		c = &Components{Topics: configuration.NewTopicFile(configuration.C.Pipeline.TopicFile)}
		fetcher = unavailableFetcher{err: err}
	default:
		return nil, err
	}
	if err := c.connectLoader(ctx, fetcher); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Components) connectLoader(ctx context.Context, fetcher repository.IArtifactFetcher) error {
	mongoDb, err := persistence.NewMongoDb(ctx, configuration.C.Database.Mongo.URI)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to MongoDB")
		return err
	}
	c.closers = append(c.closers, func() { persistence.CloseMongoDb(mongoDb) })

	store := persistence.NewVideoRepository(mongoDb, configuration.C.Database.Mongo.Name)
	artifacts := filejson.NewArtifactStore(configuration.C.Pipeline.DataDir)
	c.Loader = usecase.NewLoadUsecase(artifacts, store, fetcher)
	return nil
}

// unavailableFetcher reports why the fetch stage could not be built.
type unavailableFetcher struct {
	err error
}

func (f unavailableFetcher) FetchToArtifact(context.Context, string) (string, error) {
	return "", f.err
}

// NewPipeline wires the full task graph with run history and the run lock.
// PostgreSQL and Redis are optional: when unset or unreachable the pipeline
// falls back to in-memory history and an in-process lock.
func NewPipeline(ctx context.Context) (*Components, error) {
	c, err := NewFetcher(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.connectLoader(ctx, c.Fetcher); err != nil {
		return nil, err
	}

	pipelineCfg := configuration.C.Pipeline
	tasks := usecase.NewDefaultTasks(c.Topics, c.Fetcher, c.Loader)
	c.RunHub = realtime.NewRunHub()
	c.Pipeline = usecase.NewPipelineUsecase(usecase.PipelineConfig{
		DagID:      pipelineCfg.DagID,
		Retries:    pipelineCfg.Retries,
		RetryDelay: pipelineCfg.RetryDelay,
		LockTTL:    pipelineCfg.LockTTL,
	}, tasks, c.runHistory(), c.locker(ctx)).WithEvents(c.RunHub)
	return c, nil
}

func (c *Components) runHistory() repository.IRunHistory {
	url := configuration.C.Database.Psql.URL
	if url == "" {
		logger.GetLogger().Info("DATABASE_URL not set, keeping run history in memory")
		return persistence.NewMemoryRunRepository()
	}

	db, err := persistence.NewPostgreSQLDB(url)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PostgreSQL not available - keeping run history in memory")
		return persistence.NewMemoryRunRepository()
	}
	if err := persistence.EnsureRunSchema(db); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Cannot create run history tables - keeping run history in memory")
		_ = db.Close()
		return persistence.NewMemoryRunRepository()
	}
	c.closers = append(c.closers, func() { _ = db.Close() })
	logger.GetLogger().Info("Run history stored in PostgreSQL")
	return persistence.NewRunRepository(db)
}

func (c *Components) locker(ctx context.Context) repository.ILocker {
	redisCfg := configuration.C.RedisClient
	if redisCfg.Host == "" {
		return cache.NewLocalLocker()
	}

	client, err := cache.NewCache(ctx, redisCfg.Addr(), redisCfg.Username, redisCfg.Password)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - using in-process run lock")
		return cache.NewLocalLocker()
	}
	c.closers = append(c.closers, func() { _ = client.Close() })
	return cache.NewRedisLocker(client)
}
