package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"youtube-etl/domain/errs"
	"youtube-etl/domain/model"
	"youtube-etl/domain/repository"
	"youtube-etl/infrastructure/logger"

	"github.com/google/uuid"
)

// Task IDs of the pipeline graph.
const (
	TaskStart = "start"
	TaskFetch = "fetch_youtube_data"
	TaskLoad  = "load_data_to_mongodb"
	TaskEnd   = "end"
)

// Run triggers.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// Handoff carries each finished task's return value to the tasks after it, keyed by task ID.
type Handoff map[string]string

// Task is one node of the linear pipeline graph.
type Task struct {
	ID  string
	Run func(ctx context.Context, handoff Handoff) (string, error)
}

// PipelineConfig holds the per-graph scheduling policy
type PipelineConfig struct {
	DagID      string
	Retries    int
	RetryDelay time.Duration
	LockTTL    time.Duration
}

// IPipelineUsecase runs the pipeline graph
type IPipelineUsecase interface {
	DagID() string
	// Run executes one full run synchronously.
	Run(ctx context.Context, trigger string) (*model.DagRun, error)
	// Start acquires the run lock, then executes the run in the background.
	Start(ctx context.Context, trigger string) (*model.DagRun, error)
	ListRuns(ctx context.Context, limit int) ([]model.DagRun, error)
	LatestRun(ctx context.Context) (*model.DagRun, error)
}

// PipelineUsecase executes tasks strictly in order, retrying each failed task
// up to Retries times after a fixed delay.
type PipelineUsecase struct {
	cfg     PipelineConfig
	tasks   []Task
	history repository.IRunHistory
	locker  repository.ILocker
	events  repository.IRunEvents
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
	running sync.WaitGroup
}

// NewPipelineUsecase creates a pipeline over tasks, in execution order
func NewPipelineUsecase(cfg PipelineConfig, tasks []Task, history repository.IRunHistory, locker repository.ILocker) *PipelineUsecase {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Hour
	}
	return &PipelineUsecase{
		cfg:     cfg,
		tasks:   tasks,
		history: history,
		locker:  locker,
		now:     func() time.Time { return time.Now().UTC() },
		sleep:   sleepContext,
	}
}

// NewDefaultTasks builds start -> fetch_youtube_data -> load_data_to_mongodb -> end.
// The fetch task hands its artifact path to the load task.
func NewDefaultTasks(topics repository.ITopicSource, fetcher repository.IArtifactFetcher, loader ILoadUsecase) []Task {
	return []Task{
		NoopTask(TaskStart),
		NewFetchTask(topics, fetcher),
		NewLoadTask(topics, loader),
		NoopTask(TaskEnd),
	}
}

// NoopTask marks a boundary of the graph.
func NoopTask(id string) Task {
	return Task{ID: id, Run: func(context.Context, Handoff) (string, error) { return "", nil }}
}

// NewFetchTask reads the topic and writes the topic artifact, returning its path.
func NewFetchTask(topics repository.ITopicSource, fetcher repository.IArtifactFetcher) Task {
	return Task{ID: TaskFetch, Run: func(ctx context.Context, _ Handoff) (string, error) {
		topic, err := topics.Topic(ctx)
		if err != nil {
			logger.GetLogger().WithFields(map[string]interface{}{"task": TaskFetch, "error": err}).Error("Error while reading topic")
			return "", err
		}
		logger.GetLogger().WithFields(map[string]interface{}{"task": TaskFetch, "topic": topic}).Info("Successfully read topic")

		path, err := fetcher.FetchToArtifact(ctx, topic)
		if err != nil {
			logger.GetLogger().WithFields(map[string]interface{}{"task": TaskFetch, "topic": topic, "error": err}).Error("Error in fetch task")
			return "", err
		}
		return path, nil
	}}
}

// NewLoadTask reads the topic and loads the artifact handed over by the fetch
// task, falling back to the topic's default artifact path.
func NewLoadTask(topics repository.ITopicSource, loader ILoadUsecase) Task {
	return Task{ID: TaskLoad, Run: func(ctx context.Context, handoff Handoff) (string, error) {
		topic, err := topics.Topic(ctx)
		if err != nil {
			logger.GetLogger().WithFields(map[string]interface{}{"task": TaskLoad, "error": err}).Error("Error while reading topic")
			return "", err
		}

		if _, err := loader.Load(ctx, topic, handoff[TaskFetch]); err != nil {
			logger.GetLogger().WithFields(map[string]interface{}{"task": TaskLoad, "topic": topic, "error": err}).Error("Error in load task")
			return "", err
		}
		return "", nil
	}}
}

// WithEvents publishes every run and task state change to events.
func (p *PipelineUsecase) WithEvents(events repository.IRunEvents) *PipelineUsecase {
	p.events = events
	return p
}

func (p *PipelineUsecase) DagID() string { return p.cfg.DagID }

func (p *PipelineUsecase) Run(ctx context.Context, trigger string) (*model.DagRun, error) {
	release, err := p.acquire(ctx, trigger)
	if err != nil {
		return nil, err
	}
	defer release()

	run := p.newRun(trigger)
	return run, p.execute(ctx, run)
}

func (p *PipelineUsecase) Start(ctx context.Context, trigger string) (*model.DagRun, error) {
	release, err := p.acquire(ctx, trigger)
	if err != nil {
		return nil, err
	}

	run := p.newRun(trigger)
	snapshot := *run
	p.running.Add(1)
	go func() {
		defer p.running.Done()
		defer release()
		_ = p.execute(ctx, run)
	}()
	return &snapshot, nil
}

// Wait blocks until every run launched by Start has finished.
func (p *PipelineUsecase) Wait() {
	p.running.Wait()
}

func (p *PipelineUsecase) ListRuns(ctx context.Context, limit int) ([]model.DagRun, error) {
	return p.history.ListRuns(ctx, limit)
}

func (p *PipelineUsecase) LatestRun(ctx context.Context) (*model.DagRun, error) {
	return p.history.LatestRun(ctx)
}

// acquire takes the graph lock; a busy lock is recorded as a skipped run.
func (p *PipelineUsecase) acquire(ctx context.Context, trigger string) (func(), error) {
	release, ok, err := p.locker.TryLock(ctx, p.cfg.DagID, p.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		skipped := p.newRun(trigger)
		skipped.State = model.StateSkipped
		skipped.EndedAt = &skipped.StartedAt
		p.saveRun(ctx, skipped)
		logger.GetLogger().WithFields(map[string]interface{}{"dagId": p.cfg.DagID, "trigger": trigger}).Warn("Pipeline run skipped, another run is in progress")
		return nil, errs.ErrRunInProgress
	}
	return release, nil
}

func (p *PipelineUsecase) newRun(trigger string) *model.DagRun {
	return &model.DagRun{
		ID:        uuid.NewString(),
		DagID:     p.cfg.DagID,
		Trigger:   trigger,
		State:     model.StateRunning,
		StartedAt: p.now(),
	}
}

func (p *PipelineUsecase) execute(ctx context.Context, run *model.DagRun) error {
	log := logger.GetLogger().WithFields(map[string]interface{}{"dagId": run.DagID, "runId": run.ID, "trigger": run.Trigger})
	log.Info("Pipeline run started")
	p.saveRun(ctx, run)

	handoff := Handoff{}
	for i, task := range p.tasks {
		if err := p.runTask(ctx, run, task, handoff); err != nil {
			for _, downstream := range p.tasks[i+1:] {
				p.saveTask(ctx, &model.TaskInstance{RunID: run.ID, TaskID: downstream.ID, State: model.StateUpstreamFailed, TryNumber: 0, StartedAt: p.now()})
			}
			p.finish(ctx, run, model.StateFailed)
			log.WithFields(map[string]interface{}{"task": task.ID, "error": err}).Error("Pipeline run failed")
			return err
		}
	}

	p.finish(ctx, run, model.StateSuccess)
	log.Info("Pipeline run succeeded")
	return nil
}

func (p *PipelineUsecase) runTask(ctx context.Context, run *model.DagRun, task Task, handoff Handoff) error {
	attempts := p.cfg.Retries + 1
	for try := 1; ; try++ {
		instance := &model.TaskInstance{RunID: run.ID, TaskID: task.ID, State: model.StateRunning, TryNumber: try, StartedAt: p.now()}
		p.saveTask(ctx, instance)

		out, err := task.Run(ctx, handoff)
		ended := p.now()
		instance.EndedAt = &ended
		if err == nil {
			handoff[task.ID] = out
			instance.State = model.StateSuccess
			p.saveTask(ctx, instance)
			return nil
		}

		msg := err.Error()
		instance.Error = &msg
		retry := try < attempts && retryable(err)
		instance.State = model.StateFailed
		if retry {
			instance.State = model.StateUpForRetry
		}
		p.saveTask(ctx, instance)
		if !retry {
			return err
		}

		logger.GetLogger().WithFields(map[string]interface{}{
			"runId":      run.ID,
			"task":       task.ID,
			"try":        try,
			"retryDelay": p.cfg.RetryDelay.String(),
			"error":      err,
		}).Warn("Task failed, retrying")
		if sleepErr := p.sleep(ctx, p.cfg.RetryDelay); sleepErr != nil {
			return err
		}
	}
}

// retryable reports whether another attempt could succeed. Configuration
// errors and cancellation fail the task immediately.
func retryable(err error) bool {
	if errors.Is(err, errs.ErrConfiguration) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (p *PipelineUsecase) finish(ctx context.Context, run *model.DagRun, state string) {
	ended := p.now()
	run.State = state
	run.EndedAt = &ended
	p.saveRun(ctx, run)
}

// History writes are best effort; a history outage must not fail the run.
func (p *PipelineUsecase) saveRun(ctx context.Context, run *model.DagRun) {
	if p.events != nil {
		p.events.PublishRun(run)
	}
	if err := p.history.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"runId": run.ID, "error": err}).Warn("Failed to record run")
	}
}

func (p *PipelineUsecase) saveTask(ctx context.Context, task *model.TaskInstance) {
	if p.events != nil {
		p.events.PublishTask(task)
	}
	if err := p.history.SaveTask(context.WithoutCancel(ctx), task); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"runId": task.RunID, "task": task.TaskID, "error": err}).Warn("Failed to record task")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
