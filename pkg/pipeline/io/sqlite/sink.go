// Package sqliteio persists run outcomes into a SQLite database.
package sqliteio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/core"
	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/schema"
)

// Driver is the database/sql driver name registered by go-sqlite3.
const Driver = "sqlite3"

const statisticsTable = `
CREATE TABLE IF NOT EXISTS run_statistics (
	run_id TEXT PRIMARY KEY,
	total INTEGER,
	found INTEGER,
	not_found INTEGER,
	errors INTEGER,
	created_at DATETIME
);
`

var _ core.Sink = (*Sink)(nil)

// Sink writes each stored batch in one transaction. Outcome rows are keyed by
// run ID and input position, so re-running into the same file appends.
type Sink struct {
	db     *sql.DB
	runID  string
	next   int
	insert string
	owned  bool
}

// Open opens (or creates) the database at path and prepares its tables.
func Open(ctx context.Context, path, runID string) (*Sink, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open(Driver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)
	s, err := New(ctx, db, runID)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New wraps an open database. Close does not close db.
func New(ctx context.Context, db *sql.DB, runID string) (*Sink, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	if _, err := db.ExecContext(ctx, outcomesTable()); err != nil {
		return nil, fmt.Errorf("create outcomes table: %w", err)
	}
	if _, err := db.ExecContext(ctx, statisticsTable); err != nil {
		return nil, fmt.Errorf("create run_statistics table: %w", err)
	}
	return &Sink{db: db, runID: runID, insert: insertOutcome()}, nil
}

// outcomesTable derives the outcomes DDL from schema.Fields. record_type is
// implied by the table and is not stored.
func outcomesTable() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS outcomes (\n\trun_id TEXT NOT NULL,\n\tposition INTEGER NOT NULL,\n")
	for _, f := range schema.Fields[1:] {
		b.WriteString("\t")
		b.WriteString(f.Name)
		b.WriteString(" ")
		b.WriteString(columnType(f.Type))
		if !f.Nullable {
			b.WriteString(" NOT NULL")
		}
		b.WriteString(",\n")
	}
	b.WriteString("\tPRIMARY KEY (run_id, position)\n);")
	return b.String()
}

func insertOutcome() string {
	cols := []string{"run_id", "position"}
	for _, f := range schema.Fields[1:] {
		cols = append(cols, f.Name)
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return "INSERT INTO outcomes (" + strings.Join(cols, ", ") + ") VALUES (" + marks + ")"
}

func columnType(t string) string {
	switch t {
	case schema.TypeDouble:
		return "REAL"
	case schema.TypeTimestamp:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

func (s *Sink) Store(ctx context.Context, records []outcome.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for i, r := range records {
		args, err := s.rowArgs(s.next+i, r)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, s.insert, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert outcome %d: %w", s.next+i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.next += len(records)
	return nil
}

func (s *Sink) rowArgs(position int, r outcome.Record) ([]any, error) {
	row := schema.RecordRow(r)
	args := []any{s.runID, position}
	for i, f := range schema.Fields {
		if i == 0 {
			continue
		}
		v := row[i]
		switch {
		case f.Nullable && v == "":
			args = append(args, nil)
		case f.Type == schema.TypeDouble:
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			args = append(args, n)
		default:
			args = append(args, v)
		}
	}
	return args, nil
}

func (s *Sink) StoreStatistics(ctx context.Context, stats outcome.Statistics) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO run_statistics (run_id, total, found, not_found, errors, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		s.runID, stats.Total, stats.Found, stats.NotFound, stats.Errors, stats.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert statistics: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
