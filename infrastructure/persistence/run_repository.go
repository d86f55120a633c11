package persistence

import (
	"context"
	"database/sql"
	"time"

	"youtube-etl/domain/errs"
	"youtube-etl/domain/model"
	"youtube-etl/domain/repository"
)

// RunRepository implements run history persistence using PostgreSQL (native sql.DB)
type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) repository.IRunHistory { return &RunRepository{db: db} }

func (r *RunRepository) SaveRun(ctx context.Context, run *model.DagRun) error {
	q := `INSERT INTO pipeline_runs (id, dag_id, run_trigger, state, started_at, ended_at)
          VALUES ($1,$2,$3,$4,$5,$6)
          ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, ended_at = EXCLUDED.ended_at`
	if _, err := r.db.ExecContext(ctx, q, run.ID, run.DagID, run.Trigger, run.State, run.StartedAt, nullTime(run.EndedAt)); err != nil {
		return errs.Store("save run "+run.ID, err)
	}
	return nil
}

func (r *RunRepository) SaveTask(ctx context.Context, task *model.TaskInstance) error {
	q := `INSERT INTO pipeline_task_runs (run_id, task_id, state, try_number, error_message, started_at, ended_at)
          VALUES ($1,$2,$3,$4,$5,$6,$7)
          ON CONFLICT (run_id, task_id, try_number) DO UPDATE SET
            state = EXCLUDED.state, error_message = EXCLUDED.error_message, ended_at = EXCLUDED.ended_at`
	if _, err := r.db.ExecContext(ctx, q, task.RunID, task.TaskID, task.State, task.TryNumber, nullString(task.Error), task.StartedAt, nullTime(task.EndedAt)); err != nil {
		return errs.Store("save task "+task.TaskID, err)
	}
	return nil
}

func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]model.DagRun, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, dag_id, run_trigger, state, started_at, ended_at FROM pipeline_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errs.Store("list runs", err)
	}
	defer rows.Close()

	runs := make([]model.DagRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errs.Store("list runs", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Store("list runs", err)
	}
	return runs, nil
}

func (r *RunRepository) LatestRun(ctx context.Context) (*model.DagRun, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, dag_id, run_trigger, state, started_at, ended_at FROM pipeline_runs ORDER BY started_at DESC LIMIT 1`)
	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errs.Store("latest run", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT run_id, task_id, state, try_number, error_message, started_at, ended_at FROM pipeline_task_runs WHERE run_id=$1 ORDER BY started_at ASC, try_number ASC`, run.ID)
	if err != nil {
		return nil, errs.Store("latest run tasks", err)
	}
	defer rows.Close()
	for rows.Next() {
		task := model.TaskInstance{}
		var errMsg sql.NullString
		var endedAt sql.NullTime
		if err := rows.Scan(&task.RunID, &task.TaskID, &task.State, &task.TryNumber, &errMsg, &task.StartedAt, &endedAt); err != nil {
			return nil, errs.Store("latest run tasks", err)
		}
		if errMsg.Valid {
			task.Error = &errMsg.String
		}
		if endedAt.Valid {
			task.EndedAt = &endedAt.Time
		}
		run.Tasks = append(run.Tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Store("latest run tasks", err)
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*model.DagRun, error) {
	run := &model.DagRun{}
	var endedAt sql.NullTime
	if err := s.Scan(&run.ID, &run.DagID, &run.Trigger, &run.State, &run.StartedAt, &endedAt); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		run.EndedAt = &endedAt.Time
	}
	return run, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
