// Package ledger records the jobs already applied to. It is append-only
// and used solely for deduplication by job link.
//
// Two backends share the Ledger interface: an .xlsx spreadsheet with the
// columns JobTitle, Company, JobLink, DateApplied (rewritten in full on
// every append) and an SQLite table with the same columns. Both hold an
// exclusive lock file next to the ledger for their lifetime so two runs
// cannot interleave writes.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/hazyhaar/easyapply/internal/jobs"
)

// Columns is the ledger schema, in order.
var Columns = []string{"JobTitle", "Company", "JobLink", "DateApplied"}

// ErrLocked is returned when another process holds the ledger.
var ErrLocked = errors.New("ledger: locked by another process")

// Ledger is an append-only record of applied jobs.
type Ledger interface {
	Contains(ctx context.Context, link string) (bool, error)
	Append(ctx context.Context, r jobs.Record) error
	Records(ctx context.Context) ([]jobs.Record, error)
	Close() error
}

// Open opens the ledger at path, choosing the backend by extension:
// .xlsx for the spreadsheet, .db/.sqlite/.sqlite3 for SQLite.
func Open(ctx context.Context, path string) (Ledger, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return OpenXLSX(ctx, path)
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("ledger: unsupported file type %q", filepath.Ext(path))
	}
}

// lockWait is how often a blocked lock is retried until ctx ends.
const lockWait = 250 * time.Millisecond

func acquireLock(ctx context.Context, path string) (*flock.Flock, error) {
	fl := flock.New(path + ".lock")
	ok, err := fl.TryLockContext(ctx, lockWait)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("ledger: lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return fl, nil
}
