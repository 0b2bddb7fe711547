package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS command_journal (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	at_ns        INTEGER NOT NULL,
	execution_id TEXT NOT NULL,
	kind         TEXT NOT NULL,
	target       TEXT NOT NULL,
	operator     TEXT NOT NULL DEFAULT '',
	action       TEXT NOT NULL,
	ok           INTEGER NOT NULL,
	error        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS command_journal_target ON command_journal (target, at_ns);`

const sqliteInsert = `INSERT INTO command_journal
	(at_ns, execution_id, kind, target, operator, action, ok, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// SQLiteStore keeps the journal in a SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	insert *sql.Stmt
}

// NewSQLiteStore opens path, creating the table when missing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; sqlite serializes anyway
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, errors.Join(fmt.Errorf("journal schema: %w", err), db.Close())
	}
	stmt, err := db.Prepare(sqliteInsert)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("journal insert: %w", err), db.Close())
	}
	return &SQLiteStore{db: db, insert: stmt}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	_, err := s.insert.ExecContext(ctx, rec.Timestamp.UnixNano(), rec.ExecutionID,
		rec.Kind, rec.Target, rec.Operator, rec.Action, rec.OK, rec.Error)
	return err
}

// where renders q as a SQL condition with positional arguments.
func (q Query) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		conds = append(conds, cond)
		args = append(args, v)
	}
	if !q.Start.IsZero() {
		add("at_ns >= ?", q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		add("at_ns <= ?", q.End.UnixNano())
	}
	if q.Kind != "" {
		add("kind = ?", q.Kind)
	}
	if q.Target != "" {
		add("target = ?", q.Target)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	where, args := q.where()
	rows, err := s.db.QueryContext(ctx,
		"SELECT at_ns, execution_id, kind, target, operator, action, ok, error FROM command_journal"+where+" ORDER BY at_ns, seq",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r  Record
			ns int64
		)
		if err := rows.Scan(&ns, &r.ExecutionID, &r.Kind, &r.Target, &r.Operator, &r.Action, &r.OK, &r.Error); err != nil {
			return nil, fmt.Errorf("journal row: %w", err)
		}
		r.Timestamp = time.Unix(0, ns)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the statement and the database handle.
func (s *SQLiteStore) Close() error {
	return errors.Join(s.insert.Close(), s.db.Close())
}
