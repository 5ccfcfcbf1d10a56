package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// StrategyRecord is one saved strategy: the editable graph plus the config
// it compiled to at save time. GraphJSON and ConfigJSON are stored verbatim
// so loading reproduces the exact graph that was saved.
type StrategyRecord struct {
	ID          string
	Name        string
	Description string
	Market      string
	RiskLabel   string
	GraphJSON   string
	ConfigJSON  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StrategyStore persists saved strategies.
type StrategyStore interface {
	Save(ctx context.Context, rec StrategyRecord) (StrategyRecord, error)
	Get(ctx context.Context, id string) (StrategyRecord, error)
	List(ctx context.Context, limit int) ([]StrategyRecord, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// ErrStrategyNotFound is returned for unknown strategy ids.
var ErrStrategyNotFound = errors.New("strategy not found")

// SQLiteStrategyStore implements StrategyStore over a local sqlite file.
type SQLiteStrategyStore struct {
	db *sql.DB
}

var _ StrategyStore = (*SQLiteStrategyStore)(nil)

// OpenStrategyStore opens (creating if needed) the sqlite database at path
// and ensures the schema exists.
func OpenStrategyStore(path string) (*SQLiteStrategyStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite allows one writer; serialize through database/sql.
	db.SetMaxOpenConns(1)
	const schema = `
CREATE TABLE IF NOT EXISTS strategies (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	market      TEXT NOT NULL DEFAULT '',
	risk_label  TEXT NOT NULL DEFAULT '',
	graph_json  TEXT NOT NULL,
	config_json TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStrategyStore{db: db}, nil
}

// Save inserts a new strategy or updates an existing one when rec.ID is set.
func (s *SQLiteStrategyStore) Save(ctx context.Context, rec StrategyRecord) (StrategyRecord, error) {
	if rec.Name == "" {
		return StrategyRecord{}, fmt.Errorf("strategy name must not be empty")
	}
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	const q = `
INSERT INTO strategies (id, name, description, market, risk_label, graph_json, config_json, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	description = excluded.description,
	market = excluded.market,
	risk_label = excluded.risk_label,
	graph_json = excluded.graph_json,
	config_json = excluded.config_json,
	updated_at = excluded.updated_at;`
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if _, err := s.db.ExecContext(ctx, q,
		rec.ID, rec.Name, rec.Description, rec.Market, rec.RiskLabel,
		rec.GraphJSON, rec.ConfigJSON, createdAt, rec.UpdatedAt,
	); err != nil {
		return StrategyRecord{}, fmt.Errorf("save strategy: %w", err)
	}
	return s.Get(ctx, rec.ID)
}

// Get loads one strategy by id.
func (s *SQLiteStrategyStore) Get(ctx context.Context, id string) (StrategyRecord, error) {
	const q = `
SELECT id, name, description, market, risk_label, graph_json, config_json, created_at, updated_at
FROM strategies WHERE id = ?;`
	var rec StrategyRecord
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&rec.ID, &rec.Name, &rec.Description, &rec.Market, &rec.RiskLabel,
		&rec.GraphJSON, &rec.ConfigJSON, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return StrategyRecord{}, ErrStrategyNotFound
	}
	if err != nil {
		return StrategyRecord{}, fmt.Errorf("get strategy: %w", err)
	}
	return rec, nil
}

// List returns the most recently updated strategies.
func (s *SQLiteStrategyStore) List(ctx context.Context, limit int) ([]StrategyRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, name, description, market, risk_label, graph_json, config_json, created_at, updated_at
FROM strategies ORDER BY updated_at DESC LIMIT ?;`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}
	defer rows.Close()

	var out []StrategyRecord
	for rows.Next() {
		var rec StrategyRecord
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.Description, &rec.Market, &rec.RiskLabel,
			&rec.GraphJSON, &rec.ConfigJSON, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan strategy: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes one strategy by id.
func (s *SQLiteStrategyStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM strategies WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete strategy: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStrategyNotFound
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStrategyStore) Close() error {
	return s.db.Close()
}
