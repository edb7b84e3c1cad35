package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"github.com/hazyhaar/easyapply/internal/dbopen"
	"github.com/hazyhaar/easyapply/internal/jobs"
)

const schema = `
CREATE TABLE IF NOT EXISTS applied_jobs (
  job_link     TEXT PRIMARY KEY,
  job_title    TEXT NOT NULL DEFAULT '',
  company      TEXT NOT NULL DEFAULT '',
  date_applied TEXT NOT NULL,
  created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_applied_jobs_created ON applied_jobs(created_at);
`

// SQLite is the database ledger. The job link is the primary key, so a
// duplicate Append is ignored.
type SQLite struct {
	db   *sql.DB
	lock *flock.Flock
	own  bool
}

// OpenSQLite opens or creates the SQLite ledger at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	fl, err := acquireLock(ctx, path)
	if err != nil {
		return nil, err
	}
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(schema))
	if err != nil {
		fl.Unlock()
		return nil, fmt.Errorf("ledger: %w", err)
	}
	return &SQLite{db: db, lock: fl, own: true}, nil
}

// NewSQLite wraps an open database, creating the table if needed. Close
// does not close db.
func NewSQLite(db *sql.DB) (*SQLite, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ledger: schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (l *SQLite) Contains(ctx context.Context, link string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx, `SELECT 1 FROM applied_jobs WHERE job_link = ? LIMIT 1`, link).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: lookup: %w", err)
	}
	return true, nil
}

func (l *SQLite) Append(ctx context.Context, r jobs.Record) error {
	_, err := dbopen.Exec(ctx, l.db, `
INSERT OR IGNORE INTO applied_jobs (job_link, job_title, company, date_applied, created_at)
VALUES (?, ?, ?, ?, ?)`,
		r.JobLink, r.JobTitle, r.Company, r.DateApplied, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("ledger: insert: %w", err)
	}
	return nil
}

func (l *SQLite) Records(ctx context.Context) ([]jobs.Record, error) {
	rows, err := l.db.QueryContext(ctx, `
SELECT job_title, company, job_link, date_applied
FROM applied_jobs
ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("ledger: list: %w", err)
	}
	defer rows.Close()

	var out []jobs.Record
	for rows.Next() {
		var r jobs.Record
		if err := rows.Scan(&r.JobTitle, &r.Company, &r.JobLink, &r.DateApplied); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (l *SQLite) Close() error {
	var errs []error
	if l.own && l.db != nil {
		errs = append(errs, l.db.Close())
		l.db = nil
	}
	if l.lock != nil {
		errs = append(errs, l.lock.Unlock())
		l.lock = nil
	}
	return errors.Join(errs...)
}
