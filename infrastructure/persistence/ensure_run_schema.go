package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"youtube-etl/infrastructure/logger"
)

// EnsureRunSchema creates the run history tables if they do not exist.
// Safe to call at startup.
func EnsureRunSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ddls := []struct {
		name string
		ddl  string
	}{
		{"pipeline_runs", `CREATE TABLE IF NOT EXISTS pipeline_runs (
        id TEXT PRIMARY KEY,
        dag_id TEXT NOT NULL,
        run_trigger TEXT NOT NULL,
        state TEXT NOT NULL,
        started_at TIMESTAMPTZ NOT NULL,
        ended_at TIMESTAMPTZ
    )`},
		{"pipeline_task_runs", `CREATE TABLE IF NOT EXISTS pipeline_task_runs (
        run_id TEXT NOT NULL REFERENCES pipeline_runs(id) ON DELETE CASCADE,
        task_id TEXT NOT NULL,
        state TEXT NOT NULL,
        try_number INT NOT NULL,
        error_message TEXT,
        started_at TIMESTAMPTZ NOT NULL,
        ended_at TIMESTAMPTZ,
        PRIMARY KEY (run_id, task_id, try_number)
    )`},
	}
	for _, d := range ddls {
		if _, err := db.ExecContext(ctx, d.ddl); err != nil {
			return fmt.Errorf("create %s table: %w", d.name, err)
		}
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs(started_at DESC)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_pipeline_runs_started_at")
	}
	return nil
}
