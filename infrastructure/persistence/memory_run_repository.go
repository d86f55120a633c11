package persistence

import (
	"context"
	"sort"
	"sync"

	"youtube-etl/domain/model"
	"youtube-etl/domain/repository"
)

const memoryRunLimit = 100

// MemoryRunRepository keeps the most recent runs in process memory. It is
// used when no run-history database is configured.
type MemoryRunRepository struct {
	mu    sync.RWMutex
	runs  map[string]*model.DagRun
	order []string
}

func NewMemoryRunRepository() repository.IRunHistory {
	return &MemoryRunRepository{runs: make(map[string]*model.DagRun)}
}

func (r *MemoryRunRepository) SaveRun(_ context.Context, run *model.DagRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.runs[run.ID]; ok {
		existing.State = run.State
		existing.EndedAt = run.EndedAt
		return nil
	}
	stored := *run
	stored.Tasks = nil
	r.runs[run.ID] = &stored
	r.order = append(r.order, run.ID)
	if len(r.order) > memoryRunLimit {
		delete(r.runs, r.order[0])
		r.order = r.order[1:]
	}
	return nil
}

func (r *MemoryRunRepository) SaveTask(_ context.Context, task *model.TaskInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[task.RunID]
	if !ok {
		return nil
	}
	for i := range run.Tasks {
		if run.Tasks[i].TaskID == task.TaskID && run.Tasks[i].TryNumber == task.TryNumber {
			run.Tasks[i] = *task
			return nil
		}
	}
	run.Tasks = append(run.Tasks, *task)
	return nil
}

func (r *MemoryRunRepository) ListRuns(_ context.Context, limit int) ([]model.DagRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]model.DagRun, 0, len(r.runs))
	for _, id := range r.order {
		run := *r.runs[id]
		run.Tasks = nil
		runs = append(runs, run)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (r *MemoryRunRepository) LatestRun(ctx context.Context) (*model.DagRun, error) {
	runs, err := r.ListRuns(ctx, 1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.runs[runs[0].ID]
	if !ok {
		return nil, nil
	}
	latest := *stored
	latest.Tasks = append([]model.TaskInstance(nil), latest.Tasks...)
	return &latest, nil
}
