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

var ErrMeetingNoteNotPending = errors.New("meeting note is not pending")

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

type MeetingNote struct {
	ID          string
	Link        PersonRef
	Title       string
	Content     string
	Status      string
	CreatedBy   string
	CreatedAt   time.Time
	CompletedBy string
	CompletedAt time.Time
}

type CreateMeetingNoteInput struct {
	Link      PersonRef
	Title     string
	Content   string
	CreatedBy string
}

type CompleteMeetingNoteInput struct {
	ID          string
	CompletedBy string
	CompletedAt time.Time
}

type MeetingTask struct {
	ID            string
	MeetingNoteID string
	Description   string
	AssignedTo    string
	Status        string
	CreatedAt     time.Time
	CompletedAt   time.Time
}

// MeetingTaskView is a meeting task joined to its parent note and assignee.
type MeetingTaskView struct {
	MeetingTask
	MeetingTitle  string
	MeetingDate   time.Time
	AssigneeName  string
	AssigneeLogin string
}

type CreateMeetingTaskInput struct {
	MeetingNoteID string
	Description   string
	AssignedTo    string
	Status        string
}

// MeetingTaskFilter narrows ListMeetingTasks. Zero values do not filter.
// MeetingFrom/MeetingUntil bound the parent note's creation instant.
type MeetingTaskFilter struct {
	AssignedTo   string
	Status       string
	MeetingFrom  time.Time
	MeetingUntil time.Time
	Limit        int
}

func (s *Store) CreateMeetingNote(ctx context.Context, input CreateMeetingNoteInput) (MeetingNote, error) {
	if !input.Link.Valid() {
		return MeetingNote{}, fmt.Errorf("meeting note link is required")
	}
	content := strings.TrimSpace(input.Content)
	createdBy := strings.TrimSpace(input.CreatedBy)
	if content == "" || createdBy == "" {
		return MeetingNote{}, fmt.Errorf("meeting note content and author are required")
	}
	now := s.now()
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "Meeting note"
	}
	record := MeetingNote{
		ID:        "note_" + uuid.NewString(),
		Link:      input.Link,
		Title:     title,
		Content:   content,
		Status:    StatusPending,
		CreatedBy: createdBy,
		CreatedAt: now,
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO meeting_notes (
			id, linked_to_type, linked_to_id, title, note_content, status, created_by, created_at_unix
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		string(record.Link.Kind),
		record.Link.ID,
		record.Title,
		record.Content,
		record.Status,
		record.CreatedBy,
		now.Unix(),
	); err != nil {
		return MeetingNote{}, fmt.Errorf("insert meeting note: %w", err)
	}
	return record, nil
}

func (s *Store) ListPendingMeetingNotes(ctx context.Context, link PersonRef) ([]MeetingNote, error) {
	if !link.Valid() {
		return nil, fmt.Errorf("meeting note link is required")
	}
	rows, err := s.db.QueryContext(
		ctx,
		meetingNoteSelect+`
		 WHERE linked_to_type = ? AND linked_to_id = ? AND status = ?
		 ORDER BY created_at_unix ASC, id ASC`,
		string(link.Kind),
		link.ID,
		StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending meeting notes: %w", err)
	}
	defer rows.Close()
	return scanMeetingNotes(rows)
}

func (s *Store) ListMeetingNotes(ctx context.Context) ([]MeetingNote, error) {
	rows, err := s.db.QueryContext(ctx, meetingNoteSelect+` ORDER BY created_at_unix ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list meeting notes: %w", err)
	}
	defer rows.Close()
	return scanMeetingNotes(rows)
}

func (s *Store) LookupMeetingNote(ctx context.Context, id string) (MeetingNote, error) {
	row := s.db.QueryRowContext(ctx, meetingNoteSelect+` WHERE id = ?`, strings.TrimSpace(id))
	record, err := scanMeetingNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return MeetingNote{}, ErrRecordNotFound
		}
		return MeetingNote{}, err
	}
	return record, nil
}

// CompleteMeetingNote moves a pending note to completed. Completed notes are
// terminal; completing one again returns ErrMeetingNoteNotPending.
func (s *Store) CompleteMeetingNote(ctx context.Context, input CompleteMeetingNoteInput) (MeetingNote, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return MeetingNote{}, ErrRecordNotFound
	}
	completedAt := input.CompletedAt
	if completedAt.IsZero() {
		completedAt = s.now()
	}
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE meeting_notes
		 SET status = ?, completed_by = ?, completed_at_unix = ?
		 WHERE id = ? AND status = ?`,
		StatusCompleted,
		nullIfEmpty(strings.TrimSpace(input.CompletedBy)),
		completedAt.UTC().Unix(),
		id,
		StatusPending,
	)
	if err != nil {
		return MeetingNote{}, fmt.Errorf("complete meeting note: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		existing, lookupErr := s.LookupMeetingNote(ctx, id)
		if lookupErr != nil {
			return MeetingNote{}, lookupErr
		}
		if existing.Status != StatusPending {
			return MeetingNote{}, ErrMeetingNoteNotPending
		}
	}
	return s.LookupMeetingNote(ctx, id)
}

func (s *Store) CreateMeetingTask(ctx context.Context, input CreateMeetingTaskInput) (MeetingTask, error) {
	noteID := strings.TrimSpace(input.MeetingNoteID)
	description := strings.TrimSpace(input.Description)
	if noteID == "" || description == "" {
		return MeetingTask{}, fmt.Errorf("meeting task note and description are required")
	}
	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status == "" {
		status = StatusPending
	}
	now := s.now()
	record := MeetingTask{
		ID:            "mtask_" + uuid.NewString(),
		MeetingNoteID: noteID,
		Description:   description,
		AssignedTo:    strings.TrimSpace(input.AssignedTo),
		Status:        status,
		CreatedAt:     now,
	}
	if status == StatusCompleted {
		record.CompletedAt = now
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO meeting_tasks (
			id, meeting_note_id, description, assigned_to, status, created_at_unix, completed_at_unix
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.MeetingNoteID,
		record.Description,
		nullIfEmpty(record.AssignedTo),
		record.Status,
		now.Unix(),
		nullTimeUnix(record.CompletedAt),
	); err != nil {
		return MeetingTask{}, fmt.Errorf("insert meeting task: %w", err)
	}
	return record, nil
}

func (s *Store) ListMeetingTasks(ctx context.Context, filter MeetingTaskFilter) ([]MeetingTaskView, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT t.id, t.meeting_note_id, t.description, t.assigned_to, t.status,
		t.created_at_unix, t.completed_at_unix,
		n.title, n.created_at_unix, s.name, s.username
		FROM meeting_tasks t
		JOIN meeting_notes n ON n.id = t.meeting_note_id
		LEFT JOIN staff s ON s.id = t.assigned_to
		WHERE 1 = 1`)
	args := []any{}
	if assignedTo := strings.TrimSpace(filter.AssignedTo); assignedTo != "" {
		query.WriteString(` AND t.assigned_to = ?`)
		args = append(args, assignedTo)
	}
	if status := strings.ToLower(strings.TrimSpace(filter.Status)); status != "" {
		query.WriteString(` AND t.status = ?`)
		args = append(args, status)
	}
	if !filter.MeetingFrom.IsZero() {
		query.WriteString(` AND n.created_at_unix >= ?`)
		args = append(args, filter.MeetingFrom.UTC().Unix())
	}
	if !filter.MeetingUntil.IsZero() {
		query.WriteString(` AND n.created_at_unix < ?`)
		args = append(args, filter.MeetingUntil.UTC().Unix())
	}
	query.WriteString(` ORDER BY n.created_at_unix DESC, n.id ASC, t.created_at_unix ASC, t.id ASC LIMIT ?`)
	args = append(args, clampLimit(filter.Limit, 100, 500))

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list meeting tasks: %w", err)
	}
	defer rows.Close()

	results := []MeetingTaskView{}
	for rows.Next() {
		var record MeetingTaskView
		var assignedTo sql.NullString
		var createdAt int64
		var completedAt sql.NullInt64
		var meetingCreatedAt int64
		var assigneeName sql.NullString
		var assigneeLogin sql.NullString
		if err := rows.Scan(
			&record.ID,
			&record.MeetingNoteID,
			&record.Description,
			&assignedTo,
			&record.Status,
			&createdAt,
			&completedAt,
			&record.MeetingTitle,
			&meetingCreatedAt,
			&assigneeName,
			&assigneeLogin,
		); err != nil {
			return nil, err
		}
		record.AssignedTo = assignedTo.String
		record.CreatedAt = time.Unix(createdAt, 0).UTC()
		record.CompletedAt = timeFromUnix(completedAt)
		record.MeetingDate = time.Unix(meetingCreatedAt, 0).UTC()
		record.AssigneeName = assigneeName.String
		record.AssigneeLogin = assigneeLogin.String
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

const meetingNoteSelect = `SELECT id, linked_to_type, linked_to_id, title, note_content, status,
	created_by, created_at_unix, completed_by, completed_at_unix
	FROM meeting_notes`

func scanMeetingNotes(rows *sql.Rows) ([]MeetingNote, error) {
	results := []MeetingNote{}
	for rows.Next() {
		record, err := scanMeetingNote(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanMeetingNote(scanner rowScanner) (MeetingNote, error) {
	var record MeetingNote
	var linkKind string
	var createdAt int64
	var completedBy sql.NullString
	var completedAt sql.NullInt64
	if err := scanner.Scan(
		&record.ID,
		&linkKind,
		&record.Link.ID,
		&record.Title,
		&record.Content,
		&record.Status,
		&record.CreatedBy,
		&createdAt,
		&completedBy,
		&completedAt,
	); err != nil {
		return MeetingNote{}, err
	}
	record.Link.Kind = PersonKind(linkKind)
	record.CreatedAt = time.Unix(createdAt, 0).UTC()
	record.CompletedBy = completedBy.String
	record.CompletedAt = timeFromUnix(completedAt)
	return record, nil
}
