package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrConfirmationNotFound = errors.New("reminder confirmation not found")

const (
	ConfirmationPending   = "pending"
	ConfirmationConfirmed = "confirmed"
	ConfirmationExpired   = "expired"
)

// ReminderConfirmation holds a reminder that was withheld because of a
// scheduling conflict until the same user confirms it.
type ReminderConfirmation struct {
	ID        string
	UserID    string
	Person    PersonRef
	RemindAt  time.Time
	Status    string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateReminderConfirmationInput struct {
	UserID   string
	Person   PersonRef
	RemindAt time.Time
	TTL      time.Duration
}

// CreateReminderConfirmation replaces any pending confirmation the user holds
// for the same person.
func (s *Store) CreateReminderConfirmation(ctx context.Context, input CreateReminderConfirmationInput) (ReminderConfirmation, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" || !input.Person.Valid() || input.RemindAt.IsZero() {
		return ReminderConfirmation{}, fmt.Errorf("missing required reminder confirmation fields")
	}
	ttl := input.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	now := s.now()
	record := ReminderConfirmation{
		ID:        "conf_" + uuid.NewString(),
		UserID:    userID,
		Person:    input.Person,
		RemindAt:  input.RemindAt.UTC(),
		Status:    ConfirmationPending,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.db.ExecContext(
		ctx,
		`UPDATE reminder_confirmations
		 SET status = ?, updated_at_unix = ?
		 WHERE user_id = ? AND person_kind = ? AND person_id = ? AND status = ?`,
		ConfirmationExpired,
		now.Unix(),
		record.UserID,
		string(record.Person.Kind),
		record.Person.ID,
		ConfirmationPending,
	); err != nil {
		return ReminderConfirmation{}, fmt.Errorf("supersede reminder confirmation: %w", err)
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO reminder_confirmations (
			id, user_id, person_kind, person_id, remind_at_unix, status, expires_at_unix, created_at_unix, updated_at_unix
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.UserID,
		string(record.Person.Kind),
		record.Person.ID,
		record.RemindAt.Unix(),
		record.Status,
		record.ExpiresAt.Unix(),
		now.Unix(),
		now.Unix(),
	); err != nil {
		return ReminderConfirmation{}, fmt.Errorf("insert reminder confirmation: %w", err)
	}
	return record, nil
}

// LatestPendingReminderConfirmation returns the newest unexpired pending
// confirmation for the user.
func (s *Store) LatestPendingReminderConfirmation(ctx context.Context, userID string, now time.Time) (ReminderConfirmation, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, person_kind, person_id, remind_at_unix, status, expires_at_unix, created_at_unix, updated_at_unix
		 FROM reminder_confirmations
		 WHERE user_id = ? AND status = ? AND expires_at_unix > ?
		 ORDER BY created_at_unix DESC, id DESC
		 LIMIT 1`,
		strings.TrimSpace(userID),
		ConfirmationPending,
		now.UTC().Unix(),
	)
	var record ReminderConfirmation
	var personKind string
	var remindAt, expiresAt, createdAt, updatedAt int64
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&personKind,
		&record.Person.ID,
		&remindAt,
		&record.Status,
		&expiresAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ReminderConfirmation{}, ErrConfirmationNotFound
		}
		return ReminderConfirmation{}, err
	}
	record.Person.Kind = PersonKind(personKind)
	record.RemindAt = time.Unix(remindAt, 0).UTC()
	record.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	record.CreatedAt = time.Unix(createdAt, 0).UTC()
	record.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return record, nil
}

func (s *Store) ResolveReminderConfirmation(ctx context.Context, id, status string) error {
	status = strings.TrimSpace(status)
	if status != ConfirmationConfirmed && status != ConfirmationExpired {
		return fmt.Errorf("invalid reminder confirmation status %q", status)
	}
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE reminder_confirmations SET status = ?, updated_at_unix = ? WHERE id = ? AND status = ?`,
		status,
		s.now().Unix(),
		strings.TrimSpace(id),
		ConfirmationPending,
	)
	if err != nil {
		return fmt.Errorf("resolve reminder confirmation: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return ErrConfirmationNotFound
	}
	return nil
}
