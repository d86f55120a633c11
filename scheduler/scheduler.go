package scheduler

import (
	"context"
	"errors"
	"fmt"

	"youtube-etl/domain/errs"
	"youtube-etl/infrastructure/logger"
	"youtube-etl/usecase"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Config controls when the pipeline is triggered.
type Config struct {
	// Schedule is a standard cron expression or descriptor such as "@every 24h".
	Schedule string
	// RunOnStart triggers one run as soon as the scheduler starts.
	RunOnStart bool
}

// Scheduler triggers pipeline runs on a cron schedule. Missed intervals are
// never replayed and a tick that fires while a run is active is skipped.
type Scheduler struct {
	cron       *cron.Cron
	pipeline   usecase.IPipelineUsecase
	runOnStart bool
	ctx        context.Context
}

func NewScheduler(pipeline usecase.IPipelineUsecase, config Config) (*Scheduler, error) {
	if _, err := cron.ParseStandard(config.Schedule); err != nil {
		return nil, errs.Configuration("parse schedule", fmt.Errorf("invalid schedule %q: %w", config.Schedule, err))
	}

	cl := cronLogger{entry: logger.GetLogger().WithField("dagId", pipeline.DagID())}
	s := &Scheduler{
		pipeline:   pipeline,
		runOnStart: config.RunOnStart,
		ctx:        context.Background(),
	}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(config.Schedule, s.trigger); err != nil {
		return nil, errs.Configuration("parse schedule", err)
	}
	return s, nil
}

// Start runs the schedule until ctx is cancelled, then waits for an active
// run to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	logger.GetLogger().WithFields(map[string]interface{}{
		"dagId":      s.pipeline.DagID(),
		"nextRun":    s.cron.Entries()[0].Next,
		"runOnStart": s.runOnStart,
	}).Info("Scheduler started")

	if s.runOnStart {
		go s.trigger()
	}

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	logger.GetLogger().WithField("dagId", s.pipeline.DagID()).Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) trigger() {
	run, err := s.pipeline.Run(s.ctx, usecase.TriggerScheduled)
	switch {
	case errors.Is(err, errs.ErrRunInProgress):
		logger.GetLogger().WithField("dagId", s.pipeline.DagID()).Info("Scheduled run skipped, previous run still active")
	case err != nil:
		logger.GetLogger().WithFields(map[string]interface{}{"dagId": s.pipeline.DagID(), "error": err}).Error("Scheduled run failed")
	default:
		logger.GetLogger().WithFields(map[string]interface{}{"dagId": s.pipeline.DagID(), "runId": run.ID}).Info("Scheduled run finished")
	}
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	entry *log.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).WithField("error", err).Error("cron: " + msg)
}

func fields(keysAndValues []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
