package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Collection keys as used by the local store and the presentation layer.
const (
	KeyExperiences = "career_experiences"
	KeyJobs        = "career_jobs"
	KeyChatHistory = "chat_history"
)

// tableForKey maps collection keys to remote table names. Table names are
// interpolated into SQL, so only keys in this map are accepted.
var tableForKey = map[string]string{
	KeyExperiences: "experiences",
	KeyJobs:        "jobs",
	KeyChatHistory: "messages",
}

// TableFor returns the remote table backing a collection key.
func TableFor(key string) (string, error) {
	table, ok := tableForKey[key]
	if !ok {
		return "", fmt.Errorf("no remote table for collection key %q", key)
	}
	return table, nil
}

// Row is one remote record: the full document as opaque JSON plus its id
// duplicated as the primary key, and the time of the last write.
type Row struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Remote is the PostgreSQL document store. Each collection maps to one table
// of (id TEXT PRIMARY KEY, data JSONB, updated_at TIMESTAMPTZ).
type Remote struct {
	pool *pgxpool.Pool
}

// OpenRemote establishes a verified connection pool to the remote store.
func OpenRemote(ctx context.Context, databaseURL string) (*Remote, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, &ConnectionError{Message: "failed to create connection pool", Cause: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ConnectionError{Message: "failed to ping database", Cause: err}
	}
	return &Remote{pool: pool}, nil
}

// Close closes the connection pool.
func (r *Remote) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// EnsureSchema creates the collection tables if they do not exist.
func (r *Remote) EnsureSchema(ctx context.Context) error {
	for _, table := range tableForKey {
		_, err := r.pool.Exec(ctx, fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				data JSONB NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, table))
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// SelectAll returns every row in a collection table. Ids are
// millisecond-timestamp strings, so id order approximates insertion order.
func (r *Remote) SelectAll(ctx context.Context, table string) ([]Row, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT id, data, updated_at FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("failed to select from %s", table), Cause: err}
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.Data, &row.UpdatedAt); err != nil {
			return nil, &ConnectionError{Message: fmt.Sprintf("failed to scan row from %s", table), Cause: err}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("failed to read rows from %s", table), Cause: err}
	}
	return out, nil
}

// Upsert inserts or replaces rows by primary key.
func (r *Remote) Upsert(ctx context.Context, table string, rows []Row) error {
	for _, row := range rows {
		_, err := r.pool.Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (id, data, updated_at) VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO UPDATE SET data = $2, updated_at = $3`, table),
			row.ID, row.Data, row.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert into %s: %w", table, err)
		}
	}
	return nil
}

// DeleteNotIn removes every row whose id is not in keepIDs. An empty keep
// set clears the table.
func (r *Remote) DeleteNotIn(ctx context.Context, table string, keepIDs []string) error {
	var err error
	if len(keepIDs) == 0 {
		_, err = r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, table))
	} else {
		_, err = r.pool.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE NOT (id = ANY($1))`, table), keepIDs)
	}
	if err != nil {
		return fmt.Errorf("failed to prune %s: %w", table, err)
	}
	return nil
}
