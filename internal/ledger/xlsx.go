package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"

	"github.com/hazyhaar/easyapply/internal/jobs"
)

// SheetName is the worksheet holding the ledger rows.
const SheetName = "AppliedJobs"

var columnWidths = []float64{30, 30, 50, 20}

// XLSX is the spreadsheet ledger. Rows are read once on open and kept in
// memory; each Append rewrites the whole workbook.
type XLSX struct {
	path string
	lock *flock.Flock

	mu      sync.Mutex
	file    *excelize.File
	records []jobs.Record
}

// OpenXLSX opens or creates the spreadsheet ledger at path.
func OpenXLSX(ctx context.Context, path string) (*XLSX, error) {
	fl, err := acquireLock(ctx, path)
	if err != nil {
		return nil, err
	}

	l := &XLSX{path: path, lock: fl}
	if err := l.load(); err != nil {
		if l.file != nil {
			l.file.Close()
		}
		fl.Unlock()
		return nil, err
	}
	return l, nil
}

func (l *XLSX) load() error {
	_, err := os.Stat(l.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		f := excelize.NewFile()
		l.file = f
		if err := initSheet(f); err != nil {
			return err
		}
		// A fresh workbook only carries the empty default sheet.
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("ledger: drop default sheet: %w", err)
		}
		return l.save()
	case err != nil:
		return fmt.Errorf("ledger: stat %s: %w", l.path, err)
	}

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return fmt.Errorf("ledger: open %s: %w", l.path, err)
	}
	l.file = f

	idx, err := f.GetSheetIndex(SheetName)
	if err != nil {
		return fmt.Errorf("ledger: sheet index: %w", err)
	}
	if idx == -1 {
		if err := initSheet(f); err != nil {
			return err
		}
		return l.save()
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return fmt.Errorf("ledger: read rows: %w", err)
	}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		l.records = append(l.records, recordFromRow(row))
	}
	return nil
}

func initSheet(f *excelize.File) error {
	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("ledger: new sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("ledger: header: %w", err)
	}
	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return fmt.Errorf("ledger: column width: %w", err)
		}
	}
	return nil
}

func recordFromRow(row []string) jobs.Record {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return jobs.Record{
		JobTitle:    cell(0),
		Company:     cell(1),
		JobLink:     cell(2),
		DateApplied: cell(3),
	}
}

// Contains scans the rows for link.
func (l *XLSX) Contains(_ context.Context, link string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if r.JobLink == link {
			return true, nil
		}
	}
	return false, nil
}

// Append adds a row and rewrites the workbook. Callers check Contains first;
// Append itself does not reject duplicates. A failed save leaves the ledger
// as it was.
func (l *XLSX) Append(_ context.Context, r jobs.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rowNum := len(l.records) + 2
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := []any{r.JobTitle, r.Company, r.JobLink, r.DateApplied}
	if err := l.file.SetSheetRow(SheetName, cell, &row); err != nil {
		return fmt.Errorf("ledger: write row: %w", err)
	}
	if err := l.save(); err != nil {
		if rerr := l.file.RemoveRow(SheetName, rowNum); rerr != nil {
			return errors.Join(err, fmt.Errorf("ledger: undo row: %w", rerr))
		}
		return err
	}
	l.records = append(l.records, r)
	return nil
}

// Records returns a copy of every row.
func (l *XLSX) Records(_ context.Context) ([]jobs.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]jobs.Record(nil), l.records...), nil
}

// save writes the workbook to a temp file and renames it over the ledger.
func (l *XLSX) save() error {
	buf, err := l.file.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("ledger: encode: %w", err)
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("ledger: write: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("ledger: rename: %w", err)
	}
	return nil
}

// Close releases the workbook and the lock.
func (l *XLSX) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var errs []error
	if l.file != nil {
		errs = append(errs, l.file.Close())
		l.file = nil
	}
	if l.lock != nil {
		errs = append(errs, l.lock.Unlock())
		l.lock = nil
	}
	return errors.Join(errs...)
}
