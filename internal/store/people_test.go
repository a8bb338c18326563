package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dwizi/recruit-desk/internal/deskerr"
)

func TestSearchPeopleIsCaseInsensitiveSubstring(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Jane Doe", "JANET Smith", "Bob Janes", "Alice"} {
		if _, err := sqlStore.CreateCandidate(ctx, CreateCandidateInput{Name: name, Phone: "555-0100"}); err != nil {
			t.Fatalf("create candidate %s: %v", name, err)
		}
	}
	if _, err := sqlStore.CreateClient(ctx, CreateClientInput{Name: "Jane Corp", Contact: "ops@jane.example"}); err != nil {
		t.Fatalf("create client: %v", err)
	}

	matches, err := sqlStore.SearchPeople(ctx, PersonKindCandidate, "jane", 10)
	if err != nil {
		t.Fatalf("search candidates: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 candidate matches, got %d: %+v", len(matches), matches)
	}
	for _, match := range matches {
		if match.Kind != PersonKindCandidate {
			t.Fatalf("expected candidate kind, got %s", match.Kind)
		}
		if match.Contact != "555-0100" {
			t.Fatalf("expected phone as contact, got %q", match.Contact)
		}
	}

	clients, err := sqlStore.SearchPeople(ctx, PersonKindClient, "JANE", 10)
	if err != nil {
		t.Fatalf("search clients: %v", err)
	}
	if len(clients) != 1 || clients[0].Contact != "ops@jane.example" {
		t.Fatalf("unexpected client matches: %+v", clients)
	}
}

func TestSearchPeopleFoldsNonASCIICase(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"ÉLODIE Martin", "Zoë Öberg"} {
		if _, err := sqlStore.CreateCandidate(ctx, CreateCandidateInput{Name: name}); err != nil {
			t.Fatalf("create candidate %s: %v", name, err)
		}
	}
	cases := map[string]string{"élodie": "ÉLODIE Martin", "ÉLO": "ÉLODIE Martin", "ÖBERG": "Zoë Öberg", "zoë": "Zoë Öberg"}
	for fragment, want := range cases {
		matches, err := sqlStore.SearchPeople(ctx, PersonKindCandidate, fragment, 10)
		if err != nil {
			t.Fatalf("search %q: %v", fragment, err)
		}
		if len(matches) != 1 || matches[0].Name != want {
			t.Fatalf("search %q: expected %s, got %+v", fragment, want, matches)
		}
	}
}

func TestMissingReminderColumnIsSchemaGapOnReads(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()
	candidate, err := sqlStore.CreateCandidate(ctx, CreateCandidateInput{Name: "Jane Doe"})
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	if _, err := sqlStore.db.ExecContext(ctx, `ALTER TABLE candidates DROP COLUMN custom_reminder_at_unix`); err != nil {
		t.Fatalf("drop column: %v", err)
	}

	if _, err := sqlStore.SearchPeople(ctx, PersonKindCandidate, "jane", 10); !errors.Is(err, deskerr.ErrSchemaGap) {
		t.Fatalf("search: expected schema gap, got %v", err)
	}
	if _, err := sqlStore.GetPerson(ctx, candidate.Ref()); !errors.Is(err, deskerr.ErrSchemaGap) {
		t.Fatalf("get: expected schema gap, got %v", err)
	}
	if _, err := sqlStore.ListDueReminders(ctx, time.Now(), 10); !errors.Is(err, deskerr.ErrSchemaGap) {
		t.Fatalf("due reminders: expected schema gap, got %v", err)
	}
	if _, err := sqlStore.SearchPeople(ctx, PersonKindClient, "jane", 10); err != nil {
		t.Fatalf("clients table is intact, got %v", err)
	}
}

func TestSearchPeopleEscapesLikeWildcards(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()
	if _, err := sqlStore.CreateCandidate(ctx, CreateCandidateInput{Name: "Dana"}); err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	matches, err := sqlStore.SearchPeople(ctx, PersonKindCandidate, "%", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected wildcard to be literal, got %+v", matches)
	}
}

func TestSetReminderAndDueSweep(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	candidate, err := sqlStore.CreateCandidate(ctx, CreateCandidateInput{Name: "Jane Doe", Phone: "555-0101"})
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	remindAt := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	if err := sqlStore.SetReminder(ctx, candidate.Ref(), remindAt); err != nil {
		t.Fatalf("set reminder: %v", err)
	}
	loaded, err := sqlStore.GetPerson(ctx, candidate.Ref())
	if err != nil {
		t.Fatalf("get person: %v", err)
	}
	if !loaded.ReminderAt.Equal(remindAt) {
		t.Fatalf("expected reminder %s, got %s", remindAt, loaded.ReminderAt)
	}

	due, err := sqlStore.ListDueReminders(ctx, remindAt.Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("list due before: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("expected nothing due yet, got %d", len(due))
	}
	due, err = sqlStore.ListDueReminders(ctx, remindAt.Add(time.Minute), 10)
	if err != nil {
		t.Fatalf("list due after: %v", err)
	}
	if len(due) != 1 || due[0].ID != candidate.ID {
		t.Fatalf("expected candidate due, got %+v", due)
	}
	if err := sqlStore.MarkReminderNotified(ctx, candidate.Ref(), remindAt.Add(time.Minute)); err != nil {
		t.Fatalf("mark notified: %v", err)
	}
	due, err = sqlStore.ListDueReminders(ctx, remindAt.Add(time.Hour), 10)
	if err != nil {
		t.Fatalf("list due after notify: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("expected notified reminder to be skipped, got %d", len(due))
	}
}

func TestSetReminderUnknownRow(t *testing.T) {
	sqlStore := newTestStore(t)
	err := sqlStore.SetReminder(context.Background(), ClientRef("cli_missing"), time.Now())
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestSetReminderMissingColumnIsSchemaGap(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()
	if _, err := sqlStore.db.ExecContext(ctx, `DROP TABLE clients`); err != nil {
		t.Fatalf("drop clients: %v", err)
	}
	if _, err := sqlStore.db.ExecContext(ctx, `CREATE TABLE clients (
		id TEXT PRIMARY KEY, name TEXT NOT NULL, contact TEXT, status TEXT NOT NULL DEFAULT 'New',
		updated_at_unix INTEGER
	)`); err != nil {
		t.Fatalf("create legacy clients: %v", err)
	}
	if _, err := sqlStore.db.ExecContext(ctx, `INSERT INTO clients (id, name) VALUES ('cli_1', 'Acme')`); err != nil {
		t.Fatalf("insert legacy client: %v", err)
	}
	err := sqlStore.SetReminder(ctx, ClientRef("cli_1"), time.Now())
	if !errors.Is(err, deskerr.ErrSchemaGap) {
		t.Fatalf("expected schema gap, got %v", err)
	}
}

func TestSetCandidateStatusIsIdempotent(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()
	candidate, err := sqlStore.CreateCandidate(ctx, CreateCandidateInput{Name: "Ravi"})
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := sqlStore.SetCandidateStatus(ctx, candidate.ID, "Pending"); err != nil {
			t.Fatalf("set status attempt %d: %v", i+1, err)
		}
	}
	loaded, err := sqlStore.GetPerson(ctx, candidate.Ref())
	if err != nil {
		t.Fatalf("get person: %v", err)
	}
	if loaded.Status != "Pending" {
		t.Fatalf("expected Pending, got %s", loaded.Status)
	}
}
