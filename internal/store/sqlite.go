package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"

	"github.com/dwizi/recruit-desk/internal/deskerr"
)

var ErrRecordNotFound = fmt.Errorf("store: %w", deskerr.ErrNotFound)

func init() {
	// SQLite's lower() and LIKE only fold ASCII letters.
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1, unicodeLower)
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite pragmas: %w", err)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// SetClock overrides the store's time source for created/updated stamps.
func (s *Store) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	s.now = func() time.Time { return now().UTC() }
}

func (s *Store) AutoMigrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS candidates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT,
			email TEXT,
			status TEXT NOT NULL DEFAULT 'New',
			custom_reminder_at_unix INTEGER,
			reminder_notified_at_unix INTEGER,
			created_at_unix INTEGER NOT NULL,
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			contact TEXT,
			company TEXT,
			status TEXT NOT NULL DEFAULT 'New',
			custom_reminder_at_unix INTEGER,
			reminder_notified_at_unix INTEGER,
			placement_fee REAL NOT NULL DEFAULT 0,
			placement_date_unix INTEGER,
			refund_amount REAL NOT NULL DEFAULT 0,
			created_at_unix INTEGER NOT NULL,
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS interviews (
			id TEXT PRIMARY KEY,
			candidate_id TEXT NOT NULL,
			client_id TEXT,
			scheduled_at_unix INTEGER NOT NULL,
			notes TEXT,
			created_at_unix INTEGER NOT NULL,
			FOREIGN KEY(candidate_id) REFERENCES candidates(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS staff (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			username TEXT NOT NULL UNIQUE,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS meeting_notes (
			id TEXT PRIMARY KEY,
			linked_to_type TEXT NOT NULL,
			linked_to_id TEXT NOT NULL,
			title TEXT NOT NULL,
			note_content TEXT NOT NULL,
			status TEXT NOT NULL,
			created_by TEXT NOT NULL,
			created_at_unix INTEGER NOT NULL,
			completed_by TEXT,
			completed_at_unix INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS meeting_tasks (
			id TEXT PRIMARY KEY,
			meeting_note_id TEXT NOT NULL,
			description TEXT NOT NULL,
			assigned_to TEXT,
			status TEXT NOT NULL,
			created_at_unix INTEGER NOT NULL,
			completed_at_unix INTEGER,
			FOREIGN KEY(meeting_note_id) REFERENCES meeting_notes(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS task_assignments (
			id TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			assigned_to TEXT NOT NULL,
			assigned_by TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at_unix INTEGER NOT NULL,
			completed_at_unix INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS reminder_confirmations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			person_kind TEXT NOT NULL,
			person_id TEXT NOT NULL,
			remind_at_unix INTEGER NOT NULL,
			status TEXT NOT NULL,
			expires_at_unix INTEGER NOT NULL,
			created_at_unix INTEGER NOT NULL,
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS activity_log (
			id TEXT PRIMARY KEY,
			actor_id TEXT NOT NULL,
			action TEXT NOT NULL,
			subject_kind TEXT,
			subject_id TEXT,
			summary TEXT,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_interviews_candidate ON interviews(candidate_id, scheduled_at_unix);`,
		`CREATE INDEX IF NOT EXISTS idx_meeting_notes_link ON meeting_notes(linked_to_type, linked_to_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_meeting_tasks_note ON meeting_tasks(meeting_note_id);`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}
	alterQueries := []string{
		`ALTER TABLE candidates ADD COLUMN custom_reminder_at_unix INTEGER;`,
		`ALTER TABLE candidates ADD COLUMN reminder_notified_at_unix INTEGER;`,
		`ALTER TABLE clients ADD COLUMN custom_reminder_at_unix INTEGER;`,
		`ALTER TABLE clients ADD COLUMN reminder_notified_at_unix INTEGER;`,
		`ALTER TABLE clients ADD COLUMN placement_fee REAL NOT NULL DEFAULT 0;`,
		`ALTER TABLE clients ADD COLUMN placement_date_unix INTEGER;`,
		`ALTER TABLE clients ADD COLUMN refund_amount REAL NOT NULL DEFAULT 0;`,
		`ALTER TABLE meeting_notes ADD COLUMN completed_by TEXT;`,
		`ALTER TABLE meeting_notes ADD COLUMN completed_at_unix INTEGER;`,
	}
	for _, query := range alterQueries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			message := strings.ToLower(err.Error())
			if strings.Contains(message, "duplicate column name") || strings.Contains(message, "no such table") {
				continue
			}
			return fmt.Errorf("run migration alter: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func nullIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullTimeUnix(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Unix()
}

func timeFromUnix(value sql.NullInt64) time.Time {
	if !value.Valid || value.Int64 <= 0 {
		return time.Time{}
	}
	return time.Unix(value.Int64, 0).UTC()
}

func likeContains(fragment string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(strings.TrimSpace(fragment))) + "%"
}

func clampLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch value := args[0].(type) {
	case string:
		return strings.ToLower(value), nil
	case []byte:
		return strings.ToLower(string(value)), nil
	default:
		return value, nil
	}
}

// queryError wraps err with action, tagging a missing column as a schema gap
// so callers can report it as a pending migration.
func queryError(action string, err error) error {
	if deskerr.IsMissingColumn(err, "") {
		return fmt.Errorf("%w: %s: %v", deskerr.ErrSchemaGap, action, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
