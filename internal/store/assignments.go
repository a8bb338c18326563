package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskAssignment struct {
	ID          string
	Description string
	AssignedTo  string
	AssignedBy  string
	Status      string
	CreatedAt   time.Time
	CompletedAt time.Time
}

type CreateTaskAssignmentInput struct {
	Description string
	AssignedTo  string
	AssignedBy  string
}

type TaskAssignmentFilter struct {
	AssignedTo   string
	Status       string
	CreatedFrom  time.Time
	CreatedUntil time.Time
	Limit        int
}

func (s *Store) CreateTaskAssignment(ctx context.Context, input CreateTaskAssignmentInput) (TaskAssignment, error) {
	record := TaskAssignment{
		ID:          "asg_" + uuid.NewString(),
		Description: strings.TrimSpace(input.Description),
		AssignedTo:  strings.TrimSpace(input.AssignedTo),
		AssignedBy:  strings.TrimSpace(input.AssignedBy),
		Status:      StatusPending,
		CreatedAt:   s.now(),
	}
	if record.Description == "" || record.AssignedTo == "" || record.AssignedBy == "" {
		return TaskAssignment{}, fmt.Errorf("task description, assignee and assigner are required")
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO task_assignments (id, description, assigned_to, assigned_by, status, created_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Description,
		record.AssignedTo,
		record.AssignedBy,
		record.Status,
		record.CreatedAt.Unix(),
	); err != nil {
		return TaskAssignment{}, fmt.Errorf("insert task assignment: %w", err)
	}
	return record, nil
}

func (s *Store) CompleteTaskAssignment(ctx context.Context, id string, completedAt time.Time) error {
	if completedAt.IsZero() {
		completedAt = s.now()
	}
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE task_assignments SET status = ?, completed_at_unix = ? WHERE id = ?`,
		StatusCompleted,
		completedAt.UTC().Unix(),
		strings.TrimSpace(id),
	)
	if err != nil {
		return fmt.Errorf("complete task assignment: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *Store) ListTaskAssignments(ctx context.Context, filter TaskAssignmentFilter) ([]TaskAssignment, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT id, description, assigned_to, assigned_by, status, created_at_unix, completed_at_unix
		FROM task_assignments WHERE 1 = 1`)
	args := []any{}
	if assignedTo := strings.TrimSpace(filter.AssignedTo); assignedTo != "" {
		query.WriteString(` AND assigned_to = ?`)
		args = append(args, assignedTo)
	}
	if status := strings.ToLower(strings.TrimSpace(filter.Status)); status != "" {
		query.WriteString(` AND status = ?`)
		args = append(args, status)
	}
	if !filter.CreatedFrom.IsZero() {
		query.WriteString(` AND created_at_unix >= ?`)
		args = append(args, filter.CreatedFrom.UTC().Unix())
	}
	if !filter.CreatedUntil.IsZero() {
		query.WriteString(` AND created_at_unix < ?`)
		args = append(args, filter.CreatedUntil.UTC().Unix())
	}
	query.WriteString(` ORDER BY created_at_unix DESC, id ASC LIMIT ?`)
	args = append(args, clampLimit(filter.Limit, 100, 500))

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list task assignments: %w", err)
	}
	defer rows.Close()

	results := []TaskAssignment{}
	for rows.Next() {
		var record TaskAssignment
		var createdAt int64
		var completedAt sql.NullInt64
		if err := rows.Scan(
			&record.ID,
			&record.Description,
			&record.AssignedTo,
			&record.AssignedBy,
			&record.Status,
			&createdAt,
			&completedAt,
		); err != nil {
			return nil, err
		}
		record.CreatedAt = time.Unix(createdAt, 0).UTC()
		record.CompletedAt = timeFromUnix(completedAt)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
