package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists transitions to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS plan_transitions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        ts INTEGER,
        plan_id TEXT,
        previous_plan_id TEXT,
        record TEXT
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("exec schema: %v, close: %v", err, cerr)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, t Transition) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plan_transitions (ts, plan_id, previous_plan_id, record) VALUES (?, ?, ?, ?)`,
		t.Timestamp.UnixNano(), t.PlanID, t.PreviousPlanID, string(b))
	return err
}

func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Transition, error) {
	query := `SELECT record FROM plan_transitions WHERE 1=1`
	var args []any
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, q.End.UnixNano())
	}
	if q.PlanID != "" {
		query += ` AND (plan_id = ? OR previous_plan_id = ?)`
		args = append(args, q.PlanID, q.PlanID)
	}
	query += ` ORDER BY ts`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Transition
	for rows.Next() {
		var rec string
		if err := rows.Scan(&rec); err != nil {
			return nil, err
		}
		var t Transition
		if err := json.Unmarshal([]byte(rec), &t); err != nil {
			continue
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
