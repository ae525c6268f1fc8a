package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store persists optimizer iterations in a SQLite file, keyed by run id and
// iteration number.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used by the store
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Run summarises one stored run
type Run struct {
	ID         string
	Name       string
	Iterations int
	Created    time.Time
}

// Open opens or creates the store at path
func Open(path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("snapshot store opened", zap.String("path", path))
	return s, nil
}

func (s *Store) initSchema() error {
	runsTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	`

	iterationsTable := `
	CREATE TABLE IF NOT EXISTS iterations (
		run_id TEXT NOT NULL REFERENCES runs(id),
		iteration INTEGER NOT NULL,
		kind TEXT NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (run_id, iteration)
	);
	CREATE INDEX IF NOT EXISTS idx_iterations_kind ON iterations(kind);
	`

	for _, table := range []string{runsTable, iterationsTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Import appends records to a run, creating it when needed. An empty run id
// starts a new run with a fresh UUID. Every record is validated before
// anything is written.
func (s *Store) Import(ctx context.Context, run, name string, recs []Record) (string, error) {
	if len(recs) == 0 {
		return "", fmt.Errorf("no iterations to import")
	}
	if run == "" {
		run = uuid.NewString()
	} else if _, err := uuid.Parse(run); err != nil {
		return "", fmt.Errorf("invalid run id %q: %w", run, err)
	}

	kinds := make([]Kind, len(recs))
	payloads := make([][]byte, len(recs))
	for i, r := range recs {
		it, err := Resolve(i, r)
		if err != nil {
			return "", err
		}
		kinds[i] = it.Kind
		if payloads[i], err = json.Marshal(r); err != nil {
			return "", fmt.Errorf("failed to encode iteration %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO runs (id, name, created_at) VALUES (?, ?, ?)",
		run, name, time.Now().UnixNano(),
	); err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(iteration) + 1, 0) FROM iterations WHERE run_id = ?", run,
	).Scan(&next); err != nil {
		return "", fmt.Errorf("failed to read run length: %w", err)
	}

	for i := range recs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO iterations (run_id, iteration, kind, payload) VALUES (?, ?, ?, ?)",
			run, next+i, string(kinds[i]), string(payloads[i]),
		); err != nil {
			return "", fmt.Errorf("failed to store iteration %d: %w", next+i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Info("iterations imported",
		zap.String("run", run),
		zap.Int("first", next),
		zap.Int("count", len(recs)),
	)
	return run, nil
}

// Runs lists the stored runs, oldest first
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.created_at, COUNT(i.iteration)
		FROM runs r LEFT JOIN iterations i ON i.run_id = r.id
		GROUP BY r.id, r.name, r.created_at
		ORDER BY r.created_at, r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &r.Name, &created, &r.Iterations); err != nil {
			return nil, err
		}
		r.Created = time.Unix(0, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// History loads every iteration of a run and builds its history
func (s *Store) History(ctx context.Context, run string) (*History, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM iterations WHERE run_id = ? ORDER BY iteration", run)
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var r Record
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("failed to decode iteration %d: %w", len(recs), err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("run %s not found", run)
	}

	h, err := NewHistory(run, recs)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("history loaded", zap.String("run", run), zap.Int("iterations", h.Len()))
	return h, nil
}
