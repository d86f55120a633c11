package repository

import (
	"context"
	"time"

	"youtube-etl/domain/model"
)

// IRunHistory stores pipeline runs and their task instances.
type IRunHistory interface {
	SaveRun(ctx context.Context, run *model.DagRun) error
	SaveTask(ctx context.Context, task *model.TaskInstance) error
	ListRuns(ctx context.Context, limit int) ([]model.DagRun, error)
	// LatestRun returns nil when no run has been recorded.
	LatestRun(ctx context.Context) (*model.DagRun, error)
}

// ILocker guards a pipeline run against overlapping executions.
type ILocker interface {
	// TryLock returns ok=false without error when key is already held.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// IRunEvents receives run and task state changes as they happen.
type IRunEvents interface {
	PublishRun(run *model.DagRun)
	PublishTask(task *model.TaskInstance)
}
