package model

import "time"

// Run and task states, named after the scheduler states they mirror.
const (
	StateRunning        = "running"
	StateSuccess        = "success"
	StateFailed         = "failed"
	StateSkipped        = "skipped"
	StateUpForRetry     = "up_for_retry"
	StateUpstreamFailed = "upstream_failed"
)

// DagRun is one execution of the pipeline task graph.
type DagRun struct {
	ID        string         `json:"id"`
	DagID     string         `json:"dag_id"`
	Trigger   string         `json:"trigger"`
	State     string         `json:"state"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   *time.Time     `json:"ended_at,omitempty"`
	Tasks     []TaskInstance `json:"tasks,omitempty"`
}

// TaskInstance records one task's outcome inside a run.
type TaskInstance struct {
	RunID     string     `json:"run_id"`
	TaskID    string     `json:"task_id"`
	State     string     `json:"state"`
	TryNumber int        `json:"try_number"`
	Error     *string    `json:"error,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}
