package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ActivityEntry struct {
	ID        string
	ActorID   string
	Action    string
	Subject   PersonRef
	Summary   string
	CreatedAt time.Time
}

type AppendActivityInput struct {
	ActorID string
	Action  string
	Subject PersonRef
	Summary string
}

func (s *Store) AppendActivity(ctx context.Context, input AppendActivityInput) (ActivityEntry, error) {
	record := ActivityEntry{
		ID:        "audit_" + uuid.NewString(),
		ActorID:   strings.TrimSpace(input.ActorID),
		Action:    strings.TrimSpace(input.Action),
		Subject:   input.Subject,
		Summary:   strings.TrimSpace(input.Summary),
		CreatedAt: s.now(),
	}
	if record.ActorID == "" || record.Action == "" {
		return ActivityEntry{}, fmt.Errorf("activity actor and action are required")
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO activity_log (id, actor_id, action, subject_kind, subject_id, summary, created_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.ActorID,
		record.Action,
		nullIfEmpty(string(record.Subject.Kind)),
		nullIfEmpty(record.Subject.ID),
		nullIfEmpty(record.Summary),
		record.CreatedAt.Unix(),
	); err != nil {
		return ActivityEntry{}, fmt.Errorf("insert activity: %w", err)
	}
	return record, nil
}

func (s *Store) ListActivity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, actor_id, action, subject_kind, subject_id, summary, created_at_unix
		 FROM activity_log
		 ORDER BY created_at_unix DESC, id DESC
		 LIMIT ?`,
		clampLimit(limit, 50, 500),
	)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	results := []ActivityEntry{}
	for rows.Next() {
		var record ActivityEntry
		var subjectKind, subjectID, summary sql.NullString
		var createdAt int64
		if err := rows.Scan(&record.ID, &record.ActorID, &record.Action, &subjectKind, &subjectID, &summary, &createdAt); err != nil {
			return nil, err
		}
		record.Subject = PersonRef{Kind: PersonKind(subjectKind.String), ID: subjectID.String}
		record.Summary = summary.String
		record.CreatedAt = time.Unix(createdAt, 0).UTC()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
