package persistence

import (
	"context"
	"database/sql"
	"time"

	"youtube-etl/domain/errs"

	_ "github.com/lib/pq"
)

// NewPostgreSQLDB opens the run-history database at url (a lib/pq DSN or URL).
func NewPostgreSQLDB(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, errs.Store("open postgres", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errs.Store("ping postgres", err)
	}
	return db, nil
}
