package experiment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/vast-sim/sps-sim/sim/trace"
)

// ErrDuplicateRun is returned when a run id is recorded twice.
var ErrDuplicateRun = errors.New("run already recorded")

const ledgerSchema = `CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	mode             TEXT NOT NULL,
	nodes            INTEGER NOT NULL,
	run              INTEGER NOT NULL,
	width            REAL NOT NULL,
	seed             INTEGER NOT NULL,
	sps_avg_in       REAL NOT NULL,
	sps_avg_out      REAL NOT NULL,
	sps_avg_total    REAL NOT NULL,
	direct_avg_total REAL NOT NULL,
	sps_messages     REAL NOT NULL,
	direct_messages  REAL NOT NULL,
	elapsed_ms       INTEGER NOT NULL,
	created_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_nodes ON runs (nodes, run);
CREATE UNIQUE INDEX IF NOT EXISTS runs_slot ON runs (mode, nodes, run);`

// RunSummary is one ledger row.
type RunSummary struct {
	ID        string
	Mode      Mode
	Nodes     int
	Run       int
	Width     float64
	Seed      int64
	Stats     trace.Stats
	Elapsed   time.Duration
	CreatedAt time.Time
}

// Ledger persists run summaries in SQLite so campaigns can be queried
// without walking the results tree.
type Ledger struct {
	sqlDB *sql.DB
}

// OpenLedger opens (creating if needed) the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(ledgerSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}
	return &Ledger{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (l *Ledger) Close() error {
	if l == nil || l.sqlDB == nil {
		return nil
	}
	return l.sqlDB.Close()
}

// Record inserts one run summary. A run of the same mode, node count and run
// number recorded under another id is replaced, so a resumed campaign that
// repeats an interrupted run keeps one row per run.
func (l *Ledger) Record(ctx context.Context, s RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("run id is required")
	}
	createdAt := s.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := l.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record run %s: %w", s.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM runs WHERE mode = ? AND nodes = ? AND run = ? AND id <> ?`,
		string(s.Mode), s.Nodes, s.Run, s.ID,
	); err != nil {
		return fmt.Errorf("replace run %s: %w", s.ID, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
		   id, mode, nodes, run, width, seed,
		   sps_avg_in, sps_avg_out, sps_avg_total, direct_avg_total,
		   sps_messages, direct_messages, elapsed_ms, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, string(s.Mode), s.Nodes, s.Run, s.Width, s.Seed,
		s.Stats.Net.SPS.AvgIn, s.Stats.Net.SPS.AvgOut, s.Stats.Net.SPS.AvgTotal, s.Stats.Net.Direct.AvgTotal,
		s.Stats.Messages.SPS, s.Stats.Messages.Direct, s.Elapsed.Milliseconds(), createdAt.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateRun, s.ID)
		}
		return fmt.Errorf("record run %s: %w", s.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", s.ID, err)
	}
	return nil
}

// Runs returns the recorded summaries ordered by node count then run number.
// nodes > 0 restricts the result to that node count.
func (l *Ledger) Runs(ctx context.Context, nodes int) ([]RunSummary, error) {
	query := `SELECT id, mode, nodes, run, width, seed,
	            sps_avg_in, sps_avg_out, sps_avg_total, direct_avg_total,
	            sps_messages, direct_messages, elapsed_ms, created_at
	          FROM runs`
	var args []any
	if nodes > 0 {
		query += ` WHERE nodes = ?`
		args = append(args, nodes)
	}
	query += ` ORDER BY nodes, run, created_at`

	rows, err := l.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var mode string
		var elapsedMs, createdMs int64
		if err := rows.Scan(
			&s.ID, &mode, &s.Nodes, &s.Run, &s.Width, &s.Seed,
			&s.Stats.Net.SPS.AvgIn, &s.Stats.Net.SPS.AvgOut, &s.Stats.Net.SPS.AvgTotal, &s.Stats.Net.Direct.AvgTotal,
			&s.Stats.Messages.SPS, &s.Stats.Messages.Direct, &elapsedMs, &createdMs,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.Mode = Mode(mode)
		// Direct traffic is identical in both directions.
		s.Stats.Net.Direct.AvgIn = s.Stats.Net.Direct.AvgTotal
		s.Stats.Net.Direct.AvgOut = s.Stats.Net.Direct.AvgTotal
		s.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		s.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
