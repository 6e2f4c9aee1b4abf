package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// Entry is one logged food item.
type Entry struct {
	// ID is a UUID assigned when the entry is stored.
	ID string

	// UserID identifies the owner.
	UserID int64

	// Name is the food description.
	Name string

	// Nutrition per logged portion.
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64

	// LoggedAt is when the entry was recorded.
	LoggedAt time.Time
}

// DaySummary aggregates a user's entries for one calendar day.
type DaySummary struct {
	Entries  int
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
}

// Config configures the food log store.
type Config struct {
	// Path is the SQLite database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// Store persists users and their food logs.
type Store struct {
	db        *sql.DB
	mu        sync.RWMutex
	closeOnce sync.Once

	upsertUserStmt *sql.Stmt
	insertStmt     *sql.Stmt
	deleteStmt     *sql.Stmt
	listStmt       *sql.Stmt
	summaryStmt    *sql.Stmt
}

// NewStore opens (or creates) the database at cfg.Path.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		first_seen INTEGER NOT NULL,
		last_seen INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS food_log (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		calories REAL NOT NULL DEFAULT 0,
		protein REAL NOT NULL DEFAULT 0,
		fat REAL NOT NULL DEFAULT 0,
		carbs REAL NOT NULL DEFAULT 0,
		logged_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_food_log_user_time ON food_log(user_id, logged_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) prepareStatements() error {
	var err error

	s.upsertUserStmt, err = s.db.Prepare(`
		INSERT INTO users (id, username, first_seen, last_seen)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			last_seen = excluded.last_seen
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare user statement: %w", err)
	}

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO food_log (id, user_id, name, calories, protein, fat, carbs, logged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`
		DELETE FROM food_log
		WHERE id = ? AND user_id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT id, user_id, name, calories, protein, fat, carbs, logged_at
		FROM food_log
		WHERE user_id = ? AND logged_at >= ? AND logged_at < ?
		ORDER BY logged_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	s.summaryStmt, err = s.db.Prepare(`
		SELECT COUNT(*), COALESCE(SUM(calories), 0), COALESCE(SUM(protein), 0),
			COALESCE(SUM(fat), 0), COALESCE(SUM(carbs), 0)
		FROM food_log
		WHERE user_id = ? AND logged_at >= ? AND logged_at < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare summary statement: %w", err)
	}

	return nil
}

// EnsureUser records a user, updating the username and last-seen time
// on repeat visits.
func (s *Store) EnsureUser(ctx context.Context, userID int64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	_, err := s.upsertUserStmt.ExecContext(ctx, userID, username, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// AddEntry stores a food log entry and returns its assigned ID.
// A zero LoggedAt is filled with the current time.
func (s *Store) AddEntry(ctx context.Context, entry *Entry) (string, error) {
	if entry == nil {
		return "", fmt.Errorf("entry cannot be nil")
	}
	if entry.UserID == 0 {
		return "", fmt.Errorf("user ID cannot be zero")
	}
	if entry.Name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.insertStmt.ExecContext(ctx,
		entry.ID,
		entry.UserID,
		entry.Name,
		entry.Calories,
		entry.Protein,
		entry.Fat,
		entry.Carbs,
		entry.LoggedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert entry: %w", err)
	}

	return entry.ID, nil
}

// DeleteEntry removes one of the user's entries. Deleting an unknown
// entry is not an error.
func (s *Store) DeleteEntry(ctx context.Context, userID int64, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.deleteStmt.ExecContext(ctx, entryID, userID); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	return nil
}

// EntriesForDay returns the user's entries for the calendar day
// containing day, in the day's location, ordered by log time.
func (s *Store) EntriesForDay(ctx context.Context, userID int64, day time.Time) ([]Entry, error) {
	start, end := dayBounds(day)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.listStmt.QueryContext(ctx, userID, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry    Entry
			loggedAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Name,
			&entry.Calories, &entry.Protein, &entry.Fat, &entry.Carbs, &loggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entry.LoggedAt = time.Unix(loggedAt, 0)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

// Summary aggregates the user's entries for the calendar day
// containing day.
func (s *Store) Summary(ctx context.Context, userID int64, day time.Time) (*DaySummary, error) {
	start, end := dayBounds(day)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var summary DaySummary
	err := s.summaryStmt.QueryRowContext(ctx, userID, start.Unix(), end.Unix()).Scan(
		&summary.Entries,
		&summary.Calories,
		&summary.Protein,
		&summary.Fat,
		&summary.Carbs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize entries: %w", err)
	}

	return &summary, nil
}

// Close releases the database. Close is idempotent.
func (s *Store) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{
			s.upsertUserStmt, s.insertStmt, s.deleteStmt, s.listStmt, s.summaryStmt,
		} {
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

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
