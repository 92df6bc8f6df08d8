package usage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteConfig contains configuration for the SQLite usage sink.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite sink configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/usage.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		BusyTimeout:  5 * time.Second,
	}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS usage_metrics (
	id            TEXT PRIMARY KEY,
	provider      TEXT NOT NULL,
	model         TEXT NOT NULL,
	input_tokens  INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	cost          REAL NOT NULL,
	duration_ms   INTEGER NOT NULL,
	timestamp     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_metrics_timestamp ON usage_metrics(timestamp);
CREATE INDEX IF NOT EXISTS idx_usage_metrics_provider ON usage_metrics(provider, timestamp);
`

const insertMetricSQL = `
INSERT INTO usage_metrics (id, provider, model, input_tokens, output_tokens, cost, duration_ms, timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// SQLiteSink persists usage metrics to a SQLite database.
//
// The sink uses WAL journaling so concurrent recording and summary
// queries do not block each other.
type SQLiteSink struct {
	db         *sql.DB
	config     *SQLiteConfig
	insertStmt *sql.Stmt
	logger     *slog.Logger
}

// NewSQLiteSink opens (creating if needed) the database at config.Path
// and initializes the schema.
func NewSQLiteSink(config *SQLiteConfig) (*SQLiteSink, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "usage.sqlite")

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating usage database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("opening usage database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteSink{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite usage sink initialized",
		"path", config.Path,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize enables WAL mode and creates the schema.
func (s *SQLiteSink) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enabling WAL mode: %w", err)
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("creating usage schema: %w", err)
	}

	stmt, err := s.db.Prepare(insertMetricSQL)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	s.insertStmt = stmt

	return nil
}

// Record persists one metric.
func (s *SQLiteSink) Record(ctx context.Context, m Metric) error {
	_, err := s.insertStmt.ExecContext(ctx,
		m.ID,
		m.Provider,
		m.Model,
		m.InputTokens,
		m.OutputTokens,
		m.Cost,
		m.Duration.Milliseconds(),
		m.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting usage metric: %w", err)
	}
	return nil
}

// Summary aggregates recorded metrics per provider since the given time.
func (s *SQLiteSink) Summary(ctx context.Context, since time.Time) ([]ProviderSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT provider, COUNT(*), SUM(input_tokens), SUM(output_tokens), SUM(cost)
		FROM usage_metrics
		WHERE timestamp >= ?
		GROUP BY provider
		ORDER BY provider`,
		since.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying usage summary: %w", err)
	}
	defer rows.Close()

	var summaries []ProviderSummary
	for rows.Next() {
		var sum ProviderSummary
		if err := rows.Scan(&sum.Provider, &sum.Requests, &sum.InputTokens, &sum.OutputTokens, &sum.Cost); err != nil {
			return nil, fmt.Errorf("scanning usage summary row: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating usage summary rows: %w", err)
	}

	return summaries, nil
}

// Prune deletes metrics older than the given time and returns the number
// of rows removed.
func (s *SQLiteSink) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM usage_metrics WHERE timestamp < ?",
		olderThan.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning usage metrics: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}

	if deleted > 0 {
		s.logger.Info("pruned usage metrics",
			"deleted", deleted,
			"older_than", olderThan,
		)
	}

	return deleted, nil
}

// Close closes the prepared statements and the database.
func (s *SQLiteSink) Close() error {
	if s.insertStmt != nil {
		s.insertStmt.Close()
	}
	return s.db.Close()
}
