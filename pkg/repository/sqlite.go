package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"mercator-hq/callisto/pkg/archive"
	"mercator-hq/callisto/pkg/interaction"
	"mercator-hq/callisto/pkg/scrub"
)

const sqliteBackend = "sqlite"

// SQLiteConfig configures the SQLite repository.
type SQLiteConfig struct {
	// Path is the path to the SQLite database file.
	Path string

	// BusyTimeout is how long a connection waits for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// CheckpointInterval is how often the write-ahead log is checkpointed.
	// Default: 5 minutes
	CheckpointInterval time.Duration
}

// DefaultSQLiteConfig returns the default SQLite repository configuration.
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path:               "callisto.db",
		BusyTimeout:        5 * time.Second,
		CheckpointInterval: 5 * time.Minute,
	}
}

// SQLiteRepository persists interactions in a single SQLite database instead
// of one archive file per interaction. Each recorded exchange becomes one row
// holding its position within the interaction and the archive entry as JSON,
// so archives exported from the database and archives written by
// FileRepository carry identical entry payloads.
//
// The database is opened in WAL mode with a single writer connection, which
// lets concurrent Store calls from multiple goroutines serialize cleanly.
type SQLiteRepository struct {
	config   SQLiteConfig
	db       *sql.DB
	scrubber *scrub.Scrubber
	logger   *slog.Logger
	done     chan struct{}
	mu       sync.RWMutex

	closeOnce sync.Once

	existsStmt *sql.Stmt
	loadStmt   *sql.Stmt
	insertStmt *sql.Stmt
	nextStmt   *sql.Stmt
	listStmt   *sql.Stmt
}

// NewSQLiteRepository opens (creating if necessary) the database at
// cfg.Path and prepares the statements the repository uses. A nil scrubber
// means interactions are stored with the default scrubbing rules applied;
// a nil logger falls back to slog.Default.
func NewSQLiteRepository(cfg SQLiteConfig, scrubber *scrub.Scrubber, logger *slog.Logger) (*SQLiteRepository, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if scrubber == nil {
		scrubber = scrub.NewScrubber(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	repo := &SQLiteRepository{
		config:   cfg,
		db:       db,
		scrubber: scrubber,
		logger:   logger.With("component", "repository.sqlite"),
		done:     make(chan struct{}),
	}

	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := repo.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go repo.checkpointLoop()

	return repo, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *SQLiteRepository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS interactions (
		name TEXT NOT NULL,
		sequence INTEGER NOT NULL,
		started INTEGER NOT NULL,
		entry TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (name, sequence)
	);

	CREATE INDEX IF NOT EXISTS idx_interactions_started ON interactions(started);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteRepository) prepareStatements() error {
	var err error

	s.existsStmt, err = s.db.Prepare(`
		SELECT 1 FROM interactions WHERE name = ? LIMIT 1
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare exists statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT entry FROM interactions WHERE name = ? ORDER BY sequence
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO interactions (name, sequence, started, entry, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	s.nextStmt, err = s.db.Prepare(`
		SELECT COALESCE(MAX(sequence), -1) + 1 FROM interactions WHERE name = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sequence statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT DISTINCT name FROM interactions ORDER BY name
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	return nil
}

// Exists reports whether at least one exchange is stored under name.
func (s *SQLiteRepository) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.existsStmt.QueryRowContext(ctx, name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, NewStorageError(sqliteBackend, "exists", err)
	}
	return true, nil
}

// Load reassembles the named interaction from its stored entries, in the
// order they were recorded.
func (s *SQLiteRepository) Load(ctx context.Context, name string) (*interaction.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.loadStmt.QueryContext(ctx, name)
	if err != nil {
		return nil, NewStorageError(sqliteBackend, "load", err)
	}
	defer rows.Close()

	loaded := interaction.New(name)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, NewStorageError(sqliteBackend, "load", err)
		}

		var entry archive.Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, archive.NewMalformedArchiveError("invalid entry json", err)
		}
		msg, err := archive.MessageFromEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.config.Path, err)
		}
		loaded.Append(msg)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(sqliteBackend, "load", err)
	}

	if loaded.Empty() {
		return nil, NewNoSuchInteractionError(name, sqliteBackend)
	}
	return loaded, nil
}

// Store scrubs the interaction and appends its messages as new rows after
// any already stored under the same name. The insert runs in a single
// transaction, so a failed store leaves no partial interaction behind.
func (s *SQLiteRepository) Store(ctx context.Context, i *interaction.Interaction) (*StoreResult, error) {
	if i == nil || i.Empty() {
		return &StoreResult{Persisted: false}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, NewStorageError(sqliteBackend, "store", err)
	}

	scrubbed := s.scrubber.Scrub(i)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, NewStorageError(sqliteBackend, "store", err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.StmtContext(ctx, s.nextStmt).QueryRowContext(ctx, scrubbed.Name).Scan(&next); err != nil {
		return nil, NewStorageError(sqliteBackend, "store", err)
	}

	now := time.Now().Unix()
	insert := tx.StmtContext(ctx, s.insertStmt)
	for n, msg := range scrubbed.Messages {
		entry := archive.EntryFromMessage(msg, scrubbed.Name)
		raw, err := json.Marshal(entry)
		if err != nil {
			return nil, NewStorageError(sqliteBackend, "store", err)
		}
		if _, err := insert.ExecContext(ctx, scrubbed.Name, next+int64(n), msg.Started.UnixNano(), string(raw), now); err != nil {
			return nil, NewStorageError(sqliteBackend, "store", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, NewStorageError(sqliteBackend, "store", err)
	}

	s.logger.Debug("interaction stored",
		"interaction", scrubbed.Name,
		"entries", len(scrubbed.Messages),
		"path", s.config.Path)

	return &StoreResult{
		Persisted: true,
		Path:      s.config.Path,
		Entries:   len(scrubbed.Messages),
	}, nil
}

// Rewrite replaces every row stored under the interaction's name with
// freshly scrubbed ones. Delete and insert share one transaction, so
// readers never observe a half-rewritten interaction.
func (s *SQLiteRepository) Rewrite(ctx context.Context, i *interaction.Interaction) (*StoreResult, error) {
	if i == nil || i.Empty() {
		return &StoreResult{Persisted: false}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, NewStorageError(sqliteBackend, "rewrite", err)
	}

	scrubbed := s.scrubber.Scrub(i)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, NewStorageError(sqliteBackend, "rewrite", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM interactions WHERE name = ?`, scrubbed.Name); err != nil {
		return nil, NewStorageError(sqliteBackend, "rewrite", err)
	}

	now := time.Now().Unix()
	insert := tx.StmtContext(ctx, s.insertStmt)
	for n, msg := range scrubbed.Messages {
		entry := archive.EntryFromMessage(msg, scrubbed.Name)
		raw, err := json.Marshal(entry)
		if err != nil {
			return nil, NewStorageError(sqliteBackend, "rewrite", err)
		}
		if _, err := insert.ExecContext(ctx, scrubbed.Name, int64(n), msg.Started.UnixNano(), string(raw), now); err != nil {
			return nil, NewStorageError(sqliteBackend, "rewrite", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, NewStorageError(sqliteBackend, "rewrite", err)
	}

	s.logger.Debug("interaction rewritten",
		"interaction", scrubbed.Name,
		"entries", len(scrubbed.Messages),
		"path", s.config.Path)

	return &StoreResult{
		Persisted: true,
		Path:      s.config.Path,
		Entries:   len(scrubbed.Messages),
	}, nil
}

// List returns the names of all stored interactions in lexical order.
func (s *SQLiteRepository) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, NewStorageError(sqliteBackend, "list", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, NewStorageError(sqliteBackend, "list", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(sqliteBackend, "list", err)
	}
	return names, nil
}

// PruneBefore removes every interaction whose newest recorded exchange
// started before cutoff and returns how many interactions were removed.
// Interactions with at least one exchange at or after the cutoff are kept
// whole.
func (s *SQLiteRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, NewStorageError(sqliteBackend, "prune", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT name FROM interactions
		GROUP BY name
		HAVING MAX(started) < ?
	`, cutoff.UnixNano())
	if err != nil {
		return 0, NewStorageError(sqliteBackend, "prune", err)
	}

	var stale []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return 0, NewStorageError(sqliteBackend, "prune", err)
		}
		stale = append(stale, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, NewStorageError(sqliteBackend, "prune", err)
	}
	rows.Close()

	for _, name := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM interactions WHERE name = ?`, name); err != nil {
			return 0, NewStorageError(sqliteBackend, "prune", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, NewStorageError(sqliteBackend, "prune", err)
	}

	if len(stale) > 0 {
		s.logger.Info("pruned interactions",
			"count", len(stale),
			"cutoff", cutoff.Format(time.RFC3339))
	}
	return len(stale), nil
}

// Close releases database resources. Close is idempotent and safe to call
// multiple times.
func (s *SQLiteRepository) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		for _, stmt := range []*sql.Stmt{s.existsStmt, s.loadStmt, s.insertStmt, s.nextStmt, s.listStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// checkpointLoop runs periodic WAL checkpoints until Close.
func (s *SQLiteRepository) checkpointLoop() {
	ticker := time.NewTicker(s.config.CheckpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
