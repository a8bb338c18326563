package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dwizi/recruit-desk/internal/deskerr"
)

type PersonKind string

const (
	PersonKindCandidate PersonKind = "candidate"
	PersonKindClient    PersonKind = "client"
)

// PersonKinds lists every person kind in resolution order.
var PersonKinds = []PersonKind{PersonKindCandidate, PersonKindClient}

func ParsePersonKind(value string) (PersonKind, bool) {
	switch PersonKind(strings.ToLower(strings.TrimSpace(value))) {
	case PersonKindCandidate:
		return PersonKindCandidate, true
	case PersonKindClient:
		return PersonKindClient, true
	default:
		return "", false
	}
}

// Label is the upper-case form used when asking a caller to pick a kind.
func (k PersonKind) Label() string {
	return strings.ToUpper(string(k))
}

// PersonRef points at exactly one candidate or client row.
type PersonRef struct {
	Kind PersonKind
	ID   string
}

func CandidateRef(id string) PersonRef {
	return PersonRef{Kind: PersonKindCandidate, ID: strings.TrimSpace(id)}
}

func ClientRef(id string) PersonRef {
	return PersonRef{Kind: PersonKindClient, ID: strings.TrimSpace(id)}
}

func (r PersonRef) Valid() bool {
	_, ok := personTables[r.Kind]
	return ok && strings.TrimSpace(r.ID) != ""
}

// Person is the shared shape of candidate and client rows.
type Person struct {
	Kind       PersonKind
	ID         string
	Name       string
	Contact    string
	Status     string
	ReminderAt time.Time
}

func (p Person) Ref() PersonRef {
	return PersonRef{Kind: p.Kind, ID: p.ID}
}

type Client struct {
	Person
	Company       string
	PlacementFee  float64
	PlacementDate time.Time
	RefundAmount  float64
	CreatedAt     time.Time
}

type CreateCandidateInput struct {
	Name   string
	Phone  string
	Email  string
	Status string
}

type CreateClientInput struct {
	Name          string
	Contact       string
	Company       string
	Status        string
	PlacementFee  float64
	PlacementDate time.Time
	RefundAmount  float64
}

type DueReminder struct {
	Person
	NotifiedAt time.Time
}

type personTable struct {
	table         string
	contactColumn string
}

var personTables = map[PersonKind]personTable{
	PersonKindCandidate: {table: "candidates", contactColumn: "phone"},
	PersonKindClient:    {table: "clients", contactColumn: "contact"},
}

func lookupPersonTable(kind PersonKind) (personTable, error) {
	table, ok := personTables[kind]
	if !ok {
		return personTable{}, fmt.Errorf("unknown person kind %q", kind)
	}
	return table, nil
}

func (s *Store) CreateCandidate(ctx context.Context, input CreateCandidateInput) (Person, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Person{}, fmt.Errorf("candidate name is required")
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = "New"
	}
	now := s.now()
	record := Person{
		Kind:    PersonKindCandidate,
		ID:      "cand_" + uuid.NewString(),
		Name:    name,
		Contact: strings.TrimSpace(input.Phone),
		Status:  status,
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO candidates (id, name, phone, email, status, created_at_unix, updated_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Name,
		nullIfEmpty(record.Contact),
		nullIfEmpty(strings.TrimSpace(input.Email)),
		record.Status,
		now.Unix(),
		now.Unix(),
	); err != nil {
		return Person{}, fmt.Errorf("insert candidate: %w", err)
	}
	return record, nil
}

func (s *Store) CreateClient(ctx context.Context, input CreateClientInput) (Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Client{}, fmt.Errorf("client name is required")
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = "New"
	}
	now := s.now()
	record := Client{
		Person: Person{
			Kind:    PersonKindClient,
			ID:      "cli_" + uuid.NewString(),
			Name:    name,
			Contact: strings.TrimSpace(input.Contact),
			Status:  status,
		},
		Company:       strings.TrimSpace(input.Company),
		PlacementFee:  input.PlacementFee,
		PlacementDate: input.PlacementDate,
		RefundAmount:  input.RefundAmount,
		CreatedAt:     now,
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO clients (
			id, name, contact, company, status, placement_fee, placement_date_unix, refund_amount,
			created_at_unix, updated_at_unix
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Name,
		nullIfEmpty(record.Contact),
		nullIfEmpty(record.Company),
		record.Status,
		record.PlacementFee,
		nullTimeUnix(record.PlacementDate),
		record.RefundAmount,
		now.Unix(),
		now.Unix(),
	); err != nil {
		return Client{}, fmt.Errorf("insert client: %w", err)
	}
	return record, nil
}

// SearchPeople matches fragment as a case-insensitive substring of the name
// column of one kind's table. Names are not unique, so any number of rows
// may come back.
func (s *Store) SearchPeople(ctx context.Context, kind PersonKind, fragment string, limit int) ([]Person, error) {
	table, err := lookupPersonTable(kind)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(fragment) == "" {
		return nil, nil
	}
	limit = clampLimit(limit, 25, 200)
	rows, err := s.db.QueryContext(
		ctx,
		fmt.Sprintf(
			`SELECT id, name, %s, status, custom_reminder_at_unix
			 FROM %s
			 WHERE unicode_lower(name) LIKE ? ESCAPE '\'
			 ORDER BY name ASC, id ASC
			 LIMIT ?`,
			table.contactColumn, table.table,
		),
		likeContains(fragment),
		limit,
	)
	if err != nil {
		return nil, queryError("search "+table.table, err)
	}
	defer rows.Close()

	results := []Person{}
	for rows.Next() {
		record, err := scanPerson(rows, kind)
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

func (s *Store) GetPerson(ctx context.Context, ref PersonRef) (Person, error) {
	table, err := lookupPersonTable(ref.Kind)
	if err != nil {
		return Person{}, err
	}
	row := s.db.QueryRowContext(
		ctx,
		fmt.Sprintf(`SELECT id, name, %s, status, custom_reminder_at_unix FROM %s WHERE id = ?`, table.contactColumn, table.table),
		strings.TrimSpace(ref.ID),
	)
	record, err := scanPerson(row, ref.Kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Person{}, ErrRecordNotFound
		}
		return Person{}, queryError("get "+string(ref.Kind), err)
	}
	return record, nil
}

// SetReminder writes the custom reminder instant and clears any previous
// notification stamp so the sweep picks the new instant up.
func (s *Store) SetReminder(ctx context.Context, ref PersonRef, remindAt time.Time) error {
	table, err := lookupPersonTable(ref.Kind)
	if err != nil {
		return err
	}
	if remindAt.IsZero() {
		return fmt.Errorf("reminder instant is required")
	}
	result, err := s.db.ExecContext(
		ctx,
		fmt.Sprintf(
			`UPDATE %s
			 SET custom_reminder_at_unix = ?,
			     reminder_notified_at_unix = NULL,
			     updated_at_unix = ?
			 WHERE id = ?`,
			table.table,
		),
		remindAt.UTC().Unix(),
		s.now().Unix(),
		strings.TrimSpace(ref.ID),
	)
	if err != nil {
		if deskerr.IsMissingColumn(err, "reminder") {
			return fmt.Errorf("%w: %s: %v", deskerr.ErrSchemaGap, table.table, err)
		}
		return fmt.Errorf("set reminder: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *Store) SetCandidateStatus(ctx context.Context, id, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return fmt.Errorf("candidate status is required")
	}
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE candidates SET status = ?, updated_at_unix = ? WHERE id = ?`,
		status,
		s.now().Unix(),
		strings.TrimSpace(id),
	)
	if err != nil {
		return fmt.Errorf("set candidate status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *Store) ListCandidates(ctx context.Context) ([]Person, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, phone, status, custom_reminder_at_unix FROM candidates ORDER BY name ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	results := []Person{}
	for rows.Next() {
		record, err := scanPerson(rows, PersonKindCandidate)
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

func (s *Store) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, contact, status, custom_reminder_at_unix, company, placement_fee,
		        placement_date_unix, refund_amount, created_at_unix
		 FROM clients
		 ORDER BY name ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	results := []Client{}
	for rows.Next() {
		var record Client
		var contact sql.NullString
		var reminderAt sql.NullInt64
		var company sql.NullString
		var placementDate sql.NullInt64
		var createdAt int64
		if err := rows.Scan(
			&record.ID,
			&record.Name,
			&contact,
			&record.Status,
			&reminderAt,
			&company,
			&record.PlacementFee,
			&placementDate,
			&record.RefundAmount,
			&createdAt,
		); err != nil {
			return nil, err
		}
		record.Kind = PersonKindClient
		record.Contact = contact.String
		record.ReminderAt = timeFromUnix(reminderAt)
		record.Company = company.String
		record.PlacementDate = timeFromUnix(placementDate)
		record.CreatedAt = time.Unix(createdAt, 0).UTC()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// ListDueReminders returns candidates and clients whose reminder instant is
// at or before now and has not been notified yet, oldest first.
func (s *Store) ListDueReminders(ctx context.Context, now time.Time, limit int) ([]DueReminder, error) {
	limit = clampLimit(limit, 50, 500)
	results := []DueReminder{}
	for _, kind := range PersonKinds {
		table := personTables[kind]
		rows, err := s.db.QueryContext(
			ctx,
			fmt.Sprintf(
				`SELECT id, name, %s, status, custom_reminder_at_unix
				 FROM %s
				 WHERE custom_reminder_at_unix IS NOT NULL
				   AND custom_reminder_at_unix <= ?
				   AND reminder_notified_at_unix IS NULL
				 ORDER BY custom_reminder_at_unix ASC
				 LIMIT ?`,
				table.contactColumn, table.table,
			),
			now.UTC().Unix(),
			limit,
		)
		if err != nil {
			return nil, queryError("list due reminders from "+table.table, err)
		}
		for rows.Next() {
			record, err := scanPerson(rows, kind)
			if err != nil {
				rows.Close()
				return nil, err
			}
			results = append(results, DueReminder{Person: record})
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *Store) MarkReminderNotified(ctx context.Context, ref PersonRef, notifiedAt time.Time) error {
	table, err := lookupPersonTable(ref.Kind)
	if err != nil {
		return err
	}
	if notifiedAt.IsZero() {
		notifiedAt = s.now()
	}
	result, err := s.db.ExecContext(
		ctx,
		fmt.Sprintf(`UPDATE %s SET reminder_notified_at_unix = ? WHERE id = ?`, table.table),
		notifiedAt.UTC().Unix(),
		strings.TrimSpace(ref.ID),
	)
	if err != nil {
		return fmt.Errorf("mark reminder notified: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(scanner rowScanner, kind PersonKind) (Person, error) {
	var record Person
	var contact sql.NullString
	var reminderAt sql.NullInt64
	if err := scanner.Scan(&record.ID, &record.Name, &contact, &record.Status, &reminderAt); err != nil {
		return Person{}, err
	}
	record.Kind = kind
	record.Contact = contact.String
	record.ReminderAt = timeFromUnix(reminderAt)
	return record, nil
}
