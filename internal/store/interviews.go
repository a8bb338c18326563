package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Interview struct {
	ID          string
	CandidateID string
	ClientID    string
	ScheduledAt time.Time
	Notes       string
	CreatedAt   time.Time
}

type CreateInterviewInput struct {
	CandidateID string
	ClientID    string
	ScheduledAt time.Time
	Notes       string
}

func (s *Store) CreateInterview(ctx context.Context, input CreateInterviewInput) (Interview, error) {
	candidateID := strings.TrimSpace(input.CandidateID)
	if candidateID == "" || input.ScheduledAt.IsZero() {
		return Interview{}, fmt.Errorf("candidate id and scheduled time are required")
	}
	now := s.now()
	record := Interview{
		ID:          "int_" + uuid.NewString(),
		CandidateID: candidateID,
		ClientID:    strings.TrimSpace(input.ClientID),
		ScheduledAt: input.ScheduledAt.UTC(),
		Notes:       strings.TrimSpace(input.Notes),
		CreatedAt:   now,
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO interviews (id, candidate_id, client_id, scheduled_at_unix, notes, created_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.CandidateID,
		nullIfEmpty(record.ClientID),
		record.ScheduledAt.Unix(),
		nullIfEmpty(record.Notes),
		now.Unix(),
	); err != nil {
		return Interview{}, fmt.Errorf("insert interview: %w", err)
	}
	return record, nil
}

func (s *Store) ListInterviewsForCandidate(ctx context.Context, candidateID string) ([]Interview, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, candidate_id, client_id, scheduled_at_unix, notes, created_at_unix
		 FROM interviews
		 WHERE candidate_id = ?
		 ORDER BY scheduled_at_unix ASC`,
		strings.TrimSpace(candidateID),
	)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	defer rows.Close()
	return scanInterviews(rows)
}

func (s *Store) ListInterviews(ctx context.Context) ([]Interview, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, candidate_id, client_id, scheduled_at_unix, notes, created_at_unix
		 FROM interviews
		 ORDER BY scheduled_at_unix ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	defer rows.Close()
	return scanInterviews(rows)
}

func scanInterviews(rows *sql.Rows) ([]Interview, error) {
	results := []Interview{}
	for rows.Next() {
		var record Interview
		var clientID sql.NullString
		var notes sql.NullString
		var scheduledAt int64
		var createdAt int64
		if err := rows.Scan(&record.ID, &record.CandidateID, &clientID, &scheduledAt, &notes, &createdAt); err != nil {
			return nil, err
		}
		record.ClientID = clientID.String
		record.Notes = notes.String
		record.ScheduledAt = time.Unix(scheduledAt, 0).UTC()
		record.CreatedAt = time.Unix(createdAt, 0).UTC()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
