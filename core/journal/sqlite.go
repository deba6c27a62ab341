package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/elevsim/core/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS assignments (
	id          TEXT PRIMARY KEY,
	ts          INTEGER NOT NULL,
	floor       INTEGER NOT NULL,
	direction   TEXT NOT NULL,
	elevator_id INTEGER NOT NULL,
	rule        TEXT NOT NULL,
	waited_ms   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS assignments_ts ON assignments (ts);
CREATE INDEX IF NOT EXISTS assignments_car ON assignments (elevator_id, ts);`

// SQLiteStore keeps the journal in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps writes serialised.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, errors.Join(fmt.Errorf("journal schema: %w", err), db.Close())
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec LogRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assignments (id, ts, floor, direction, elevator_id, rule, waited_ms) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.UnixNano(), rec.Floor, string(rec.Direction), rec.ElevatorID, rec.Rule, rec.WaitedMS)
	return err
}

// Query pushes every filter of q into SQL.
func (s *SQLiteStore) Query(ctx context.Context, q LogQuery) ([]LogRecord, error) {
	var (
		where []string
		args  []any
	)
	if !q.Start.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		where = append(where, "ts <= ?")
		args = append(args, q.End.UnixNano())
	}
	if q.ElevatorID != nil {
		where = append(where, "elevator_id = ?")
		args = append(args, *q.ElevatorID)
	}
	if q.Rule != "" {
		where = append(where, "rule = ?")
		args = append(args, q.Rule)
	}
	stmt := "SELECT id, ts, floor, direction, elevator_id, rule, waited_ms FROM assignments"
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	// Latest first so LIMIT keeps the most recent rows, reversed below.
	stmt += " ORDER BY ts DESC, rowid DESC"
	if q.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []LogRecord
	for rows.Next() {
		var (
			r   LogRecord
			ts  int64
			dir string
		)
		if err := rows.Scan(&r.ID, &ts, &r.Floor, &dir, &r.ElevatorID, &r.Rule, &r.WaitedMS); err != nil {
			return nil, err
		}
		r.Timestamp = time.Unix(0, ts).UTC()
		r.Direction = model.Direction(dir)
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(res)
	return res, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
