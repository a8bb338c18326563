package gateway

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dwizi/recruit-desk/internal/intent"
	"github.com/dwizi/recruit-desk/internal/llm"
	"github.com/dwizi/recruit-desk/internal/roster"
	"github.com/dwizi/recruit-desk/internal/store"
	"github.com/dwizi/recruit-desk/internal/textfmt"
)

var (
	testZone = time.FixedZone("IST", 5*3600+1800)
	testNow  = time.Date(2026, 3, 10, 4, 30, 0, 0, time.UTC)
)

type recordingAnswerer struct {
	calls []llm.QuestionInput
	reply string
}

func (r *recordingAnswerer) Answer(ctx context.Context, input llm.QuestionInput) (string, error) {
	r.calls = append(r.calls, input)
	return r.reply, nil
}

type testHarness struct {
	service  *Service
	store    *store.Store
	answerer *recordingAnswerer
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	sqlStore, err := store.New(filepath.Join(t.TempDir(), "gateway_test.sqlite"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = sqlStore.Close() })
	if err := sqlStore.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}
	sqlStore.SetClock(func() time.Time { return testNow })
	return sqlStore
}

func newHarness(t *testing.T, mode ConfirmationMode) testHarness {
	t.Helper()
	sqlStore := newTestStore(t)
	answerer := &recordingAnswerer{reply: "Here is what I know."}
	members := roster.New(roster.Member{Name: "Priya", ID: "stf_priya"})
	service := New(sqlStore, members, answerer, Config{
		Clock:            textfmt.NewClock(testZone),
		PAFAmount:        5000,
		ConfirmationMode: mode,
		ConfirmationTTL:  10 * time.Minute,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	service.SetClock(func() time.Time { return testNow })
	return testHarness{service: service, store: sqlStore, answerer: answerer}
}

type fatalHelper interface {
	Helper()
	Fatalf(format string, args ...any)
}

func (h testHarness) send(t fatalHelper, text string) MessageOutput {
	t.Helper()
	output, err := h.service.HandleMessage(context.Background(), MessageInput{ActingUserID: "stf_priya", Text: text})
	if err != nil {
		t.Fatalf("handle %q: %v", text, err)
	}
	return output
}

func mustCandidate(t *testing.T, sqlStore *store.Store, name, phone string) store.Person {
	t.Helper()
	person, err := sqlStore.CreateCandidate(context.Background(), store.CreateCandidateInput{Name: name, Phone: phone})
	if err != nil {
		t.Fatalf("create candidate %s: %v", name, err)
	}
	return person
}

func mustClient(t *testing.T, sqlStore *store.Store, input store.CreateClientInput) store.Client {
	t.Helper()
	client, err := sqlStore.CreateClient(context.Background(), input)
	if err != nil {
		t.Fatalf("create client %s: %v", input.Name, err)
	}
	return client
}

func TestScenarioASetReminderForUniqueCandidate(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	jane := mustCandidate(t, h.store, "Jane Doe", "555-0100")

	output := h.send(t, `set reminder for candidate "Jane Doe" in next 2 hours`)
	if !output.Handled || output.Intent != intent.KindSetReminder {
		t.Fatalf("expected handled reminder, got %+v", output)
	}
	want := testNow.Add(2 * time.Hour)
	for _, part := range []string{"Jane Doe", "555-0100", textfmt.NewClock(testZone).DateTime(want)} {
		if !strings.Contains(output.Reply, part) {
			t.Fatalf("expected %q in reply %q", part, output.Reply)
		}
	}
	stored, err := h.store.GetPerson(context.Background(), jane.Ref())
	if err != nil {
		t.Fatalf("get person: %v", err)
	}
	if !stored.ReminderAt.Equal(want) {
		t.Fatalf("expected reminder %s, got %s", want, stored.ReminderAt)
	}
	activity, err := h.store.ListActivity(context.Background(), 10)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(activity) != 1 || activity[0].Action != "reminder.set" {
		t.Fatalf("expected one audit entry, got %+v", activity)
	}
}

func TestSetReminderForClientSkipsConflictCheck(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	acme := mustClient(t, h.store, store.CreateClientInput{Name: "Acme Corp", Contact: "ops@acme.example"})

	output := h.send(t, "set reminder for Acme in next 5 hours")
	if !strings.Contains(output.Reply, "ops@acme.example") {
		t.Fatalf("expected client contact in reply, got %q", output.Reply)
	}
	stored, err := h.store.GetPerson(context.Background(), acme.Ref())
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if !stored.ReminderAt.Equal(testNow.Add(5 * time.Hour)) {
		t.Fatalf("unexpected reminder %s", stored.ReminderAt)
	}
}

func TestSetReminderWithSameDayInterviewIsWithheld(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	jane := mustCandidate(t, h.store, "Jane Doe", "555-0100")
	ctx := context.Background()
	for _, at := range []time.Time{
		time.Date(2026, 3, 10, 15, 0, 0, 0, testZone),
		time.Date(2026, 3, 10, 17, 45, 0, 0, testZone),
	} {
		if _, err := h.store.CreateInterview(ctx, store.CreateInterviewInput{CandidateID: jane.ID, ScheduledAt: at}); err != nil {
			t.Fatalf("create interview: %v", err)
		}
	}

	output := h.send(t, "set reminder for candidate Jane Doe in next 2 hours")
	reply := strings.ToLower(output.Reply)
	for _, part := range []string{"conflict", "3:00 pm", "5:45 pm", "not set"} {
		if !strings.Contains(reply, part) {
			t.Fatalf("expected %q in reply %q", part, output.Reply)
		}
	}
	stored, err := h.store.GetPerson(ctx, jane.Ref())
	if err != nil {
		t.Fatalf("get person: %v", err)
	}
	if !stored.ReminderAt.IsZero() {
		t.Fatalf("expected reminder unchanged, got %s", stored.ReminderAt)
	}
}

func TestScenarioDStaticConfirmationIgnoresState(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	output := h.send(t, "yes reminder")
	if output.Intent != intent.KindConfirmPendingReminder || output.Reply != staticConfirmationReply {
		t.Fatalf("expected static confirmation, got %+v", output)
	}
	activity, err := h.store.ListActivity(context.Background(), 10)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(activity) != 0 {
		t.Fatalf("expected no mutation, got %+v", activity)
	}
}

func TestSessionConfirmationAppliesWithheldReminder(t *testing.T) {
	h := newHarness(t, ConfirmationSession)
	jane := mustCandidate(t, h.store, "Jane Doe", "555-0100")
	ctx := context.Background()
	interviewAt := time.Date(2026, 3, 10, 13, 0, 0, 0, testZone)
	if _, err := h.store.CreateInterview(ctx, store.CreateInterviewInput{CandidateID: jane.ID, ScheduledAt: interviewAt}); err != nil {
		t.Fatalf("create interview: %v", err)
	}

	if output := h.send(t, "yes reminder"); !strings.Contains(output.Reply, "no pending reminder") {
		t.Fatalf("expected nothing to confirm, got %q", output.Reply)
	}
	if output := h.send(t, "set reminder for Jane in next 3 hours"); !strings.Contains(output.Reply, "conflict") {
		t.Fatalf("expected conflict, got %q", output.Reply)
	}
	output := h.send(t, "confirm reminder")
	if !strings.Contains(output.Reply, "Reminder set for Jane Doe") {
		t.Fatalf("expected applied reminder, got %q", output.Reply)
	}
	stored, err := h.store.GetPerson(ctx, jane.Ref())
	if err != nil {
		t.Fatalf("get person: %v", err)
	}
	if !stored.ReminderAt.Equal(testNow.Add(3 * time.Hour)) {
		t.Fatalf("unexpected reminder %s", stored.ReminderAt)
	}
	if output := h.send(t, "yes reminder"); !strings.Contains(output.Reply, "no pending reminder") {
		t.Fatalf("expected confirmation to be consumed, got %q", output.Reply)
	}
}

func TestScenarioBAmbiguousAcrossKinds(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	mustCandidate(t, h.store, "John Smith", "555-0101")
	mustClient(t, h.store, store.CreateClientInput{Name: "John Corp"})

	output := h.send(t, "add meeting note for John: call back tomorrow")
	if !strings.Contains(output.Reply, "CANDIDATE or CLIENT") {
		t.Fatalf("expected kind prompt, got %q", output.Reply)
	}
	notes, err := h.store.ListMeetingNotes(context.Background())
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 0 {
		t.Fatalf("expected no meeting note, got %+v", notes)
	}

	output = h.send(t, "add meeting note for client John: call back tomorrow")
	if !strings.Contains(output.Reply, "Meeting note added for John Corp (client): Call back tomorrow.") {
		t.Fatalf("unexpected reply %q", output.Reply)
	}
	notes, err = h.store.ListMeetingNotes(context.Background())
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 1 || notes[0].Status != store.StatusPending || notes[0].CreatedBy != "stf_priya" || notes[0].Link.Kind != store.PersonKindClient {
		t.Fatalf("unexpected notes: %+v", notes)
	}
}

func TestAmbiguousWithinKindListsContacts(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	mustCandidate(t, h.store, "Jane Doe", "555-0100")
	mustCandidate(t, h.store, "Jane Roe", "")

	output := h.send(t, "set reminder for candidate Jane in next 2 hours")
	for _, part := range []string{"Found 2 candidates", "Jane Doe (555-0100)", "Jane Roe (no contact on file)", "more specific"} {
		if !strings.Contains(output.Reply, part) {
			t.Fatalf("expected %q in reply %q", part, output.Reply)
		}
	}
}

func TestNotFoundReply(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	output := h.send(t, "mark candidate Zed as pending")
	if output.Reply != `No candidate found matching "Zed".` {
		t.Fatalf("unexpected reply %q", output.Reply)
	}
}

func TestMarkMeetingNoteDoneSingleNote(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	ctx := context.Background()
	jane := mustCandidate(t, h.store, "Jane Doe", "555-0100")
	bob := mustCandidate(t, h.store, "Bob Stone", "555-0102")
	target, err := h.store.CreateMeetingNote(ctx, store.CreateMeetingNoteInput{Link: jane.Ref(), Content: "Discuss offer", CreatedBy: "stf_priya"})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	other, err := h.store.CreateMeetingNote(ctx, store.CreateMeetingNoteInput{Link: bob.Ref(), Content: "Check references", CreatedBy: "stf_priya"})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	output := h.send(t, "mark meeting note for Jane Doe as done")
	if !strings.Contains(output.Reply, "Marked the meeting note for Jane Doe as done") {
		t.Fatalf("unexpected reply %q", output.Reply)
	}
	completed, err := h.store.LookupMeetingNote(ctx, target.ID)
	if err != nil {
		t.Fatalf("lookup note: %v", err)
	}
	if completed.Status != store.StatusCompleted || completed.CompletedBy != "stf_priya" || !completed.CompletedAt.Equal(testNow) {
		t.Fatalf("unexpected completed note: %+v", completed)
	}
	untouched, err := h.store.LookupMeetingNote(ctx, other.ID)
	if err != nil {
		t.Fatalf("lookup note: %v", err)
	}
	if untouched.Status != store.StatusPending {
		t.Fatalf("expected other note pending, got %+v", untouched)
	}

	if output := h.send(t, "mark meeting note for Jane Doe as done"); output.Reply != "No pending meeting notes for Jane Doe." {
		t.Fatalf("expected no pending notes, got %q", output.Reply)
	}
}

func TestMarkMeetingNoteDoneWithSeveralNotesEnumerates(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	ctx := context.Background()
	jane := mustCandidate(t, h.store, "Jane Doe", "555-0100")
	contents := []string{
		"Discuss offer &amp; joining date with the hiring manager before Friday",
		"Collect documents",
	}
	for _, content := range contents {
		if _, err := h.store.CreateMeetingNote(ctx, store.CreateMeetingNoteInput{Link: jane.Ref(), Content: content, CreatedBy: "stf_priya"}); err != nil {
			t.Fatalf("create note: %v", err)
		}
	}

	output := h.send(t, "mark meeting note for Jane as done")
	for _, part := range []string{"2 pending meeting notes", "1. ", "2. ", "Discuss offer & joining date with the hiring manag...", "Collect documents"} {
		if !strings.Contains(output.Reply, part) {
			t.Fatalf("expected %q in reply %q", part, output.Reply)
		}
	}
	pending, err := h.store.ListPendingMeetingNotes(ctx, jane.Ref())
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected both notes pending, got %d", len(pending))
	}
}

func TestMarkCandidatePendingIsIdempotent(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	arjun := mustCandidate(t, h.store, "Arjun Mehta", "555-0103")
	mustClient(t, h.store, store.CreateClientInput{Name: "Arjun Holdings"})

	for i := 0; i < 2; i++ {
		output := h.send(t, "mark candidate: Arjun as pending")
		if !strings.Contains(output.Reply, "Arjun Mehta is now marked as Pending") {
			t.Fatalf("call %d: unexpected reply %q", i+1, output.Reply)
		}
		stored, err := h.store.GetPerson(context.Background(), arjun.Ref())
		if err != nil {
			t.Fatalf("get person: %v", err)
		}
		if stored.Status != "Pending" {
			t.Fatalf("call %d: expected Pending, got %q", i+1, stored.Status)
		}
	}
}

func TestScenarioCFinanceSummary(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	thisMonth := time.Date(2026, 3, 2, 12, 0, 0, 0, testZone)
	lastYear := time.Date(2025, 3, 2, 12, 0, 0, 0, testZone)
	for _, input := range []store.CreateClientInput{
		{Name: "Active One", Status: "Active", PlacementFee: 1000, PlacementDate: thisMonth},
		{Name: "Active Two", Status: "Active", PlacementFee: 2000, PlacementDate: thisMonth},
		{Name: "Active Three", Status: "Active"},
		{Name: "Won Old", Status: "Won", PlacementFee: 4000, PlacementDate: lastYear, RefundAmount: 500},
		{Name: "Refunded", Status: "Lost", PlacementFee: -250, PlacementDate: thisMonth},
	} {
		mustClient(t, h.store, input)
	}

	output := h.send(t, "finance")
	for _, part := range []string{
		"PAF REVENUE: 15,000 (3 active clients x 5,000)",
		"PLACEMENT FEES THIS MONTH: 3,000",
		"PLACEMENT FEES ALL TIME: 7,000",
		"REFUNDS: -750",
		"NET REVENUE: 21,250",
		"CLIENTS: 1 won, 3 active",
	} {
		if !strings.Contains(output.Reply, part) {
			t.Fatalf("expected %q in reply:\n%s", part, output.Reply)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{0: "0", 999: "999", 1000: "1,000", 1234567.6: "1,234,568", -4500: "-4,500"}
	for value, want := range cases {
		if got := formatAmount(value); got != want {
			t.Fatalf("formatAmount(%v) = %q, want %q", value, got, want)
		}
	}
}

func TestNonASCIINamesResolveCaseInsensitively(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	mustCandidate(t, h.store, "ÉLODIE Martin", "555-0142")

	output := h.send(t, "mark candidate élodie as pending")
	if !strings.HasPrefix(output.Reply, "ÉLODIE Martin is now marked as Pending.") {
		t.Fatalf("expected accented name to resolve, got %q", output.Reply)
	}
}

func TestMeetingTaskQueryGroupsAndFilters(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	ctx := context.Background()
	jane := mustCandidate(t, h.store, "Jane Doe", "555-0100")
	if _, err := h.store.CreateStaff(ctx, store.CreateStaffInput{ID: "stf_priya", Name: "Priya Nair", Username: "priya"}); err != nil {
		t.Fatalf("create staff: %v", err)
	}
	if _, err := h.store.CreateStaff(ctx, store.CreateStaffInput{ID: "stf_rahul", Name: "Rahul Verma", Username: "rahul"}); err != nil {
		t.Fatalf("create staff: %v", err)
	}

	h.store.SetClock(func() time.Time { return testNow.Add(-48 * time.Hour) })
	old, err := h.store.CreateMeetingNote(ctx, store.CreateMeetingNoteInput{Link: jane.Ref(), Title: "Kickoff", Content: "x", CreatedBy: "stf_priya"})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	h.store.SetClock(func() time.Time { return testNow })
	today, err := h.store.CreateMeetingNote(ctx, store.CreateMeetingNoteInput{Link: jane.Ref(), Title: "Offer &amp; terms", Content: "y", CreatedBy: "stf_priya"})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	for _, task := range []store.CreateMeetingTaskInput{
		{MeetingNoteID: old.ID, Description: "To send the JD", AssignedTo: "stf_priya", Status: store.StatusCompleted},
		{MeetingNoteID: today.ID, Description: "to call the hiring manager", AssignedTo: "stf_priya"},
		{MeetingNoteID: today.ID, Description: "Book the room", AssignedTo: "stf_rahul", Status: store.StatusCompleted},
	} {
		if _, err := h.store.CreateMeetingTask(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	output := h.send(t, "show my meeting tasks for today")
	if output.Intent != intent.KindMeetingTaskQuery {
		t.Fatalf("unexpected intent %s", output.Intent)
	}
	for _, part := range []string{"for Priya Nair, today", "Offer & terms - Mar 10, 2026", "⏳ Call the hiring manager"} {
		if !strings.Contains(output.Reply, part) {
			t.Fatalf("expected %q in reply:\n%s", part, output.Reply)
		}
	}
	if strings.Contains(output.Reply, "Book the room") || strings.Contains(output.Reply, "Kickoff") {
		t.Fatalf("expected other assignee and older meeting filtered out:\n%s", output.Reply)
	}

	output = h.send(t, "list meeting notes for Rahul completed")
	if !strings.Contains(output.Reply, "✅ Book the room") || strings.Contains(output.Reply, "Send the JD") {
		t.Fatalf("unexpected completed tasks for Rahul:\n%s", output.Reply)
	}

	output = h.send(t, "meeting tasks for Zoe")
	if strings.Contains(strings.ToLower(output.Reply), "not found") || strings.Contains(output.Reply, "Zoe") {
		t.Fatalf("expected unknown user to be ignored silently:\n%s", output.Reply)
	}
	for _, part := range []string{"Kickoff - Mar 8, 2026", "✅ Send the JD (Priya Nair)", "⏳ Call the hiring manager (Priya Nair)", "✅ Book the room (Rahul Verma)"} {
		if !strings.Contains(output.Reply, part) {
			t.Fatalf("expected unknown user to widen to all tasks, missing %q:\n%s", part, output.Reply)
		}
	}
}

func TestAssignAndQueryGenericTasks(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)

	output := h.send(t, `assign task "collect documents from Jane" to Priya`)
	if output.Reply != "Task assigned to Priya: Collect documents from Jane." {
		t.Fatalf("unexpected reply %q", output.Reply)
	}
	assignments, err := h.store.ListTaskAssignments(context.Background(), store.TaskAssignmentFilter{})
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(assignments) != 1 || assignments[0].AssignedTo != "stf_priya" || assignments[0].AssignedBy != "stf_priya" || assignments[0].Status != store.StatusPending {
		t.Fatalf("unexpected assignments: %+v", assignments)
	}

	output = h.send(t, "pending tasks for Priya")
	if !strings.Contains(output.Reply, "Tasks for Priya (pending):") || !strings.Contains(output.Reply, "⏳ Collect documents from Jane.") {
		t.Fatalf("unexpected task list %q", output.Reply)
	}
	if output := h.send(t, "completed tasks for Priya"); output.Reply != "No tasks found for Priya." {
		t.Fatalf("unexpected completed list %q", output.Reply)
	}
}

func TestUnrecognizedUserIsRefused(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	for _, text := range []string{`assign task "call Jane" to Rahul`, "tasks for Rahul"} {
		output := h.send(t, text)
		if !strings.Contains(output.Reply, "recognized team members (Priya)") {
			t.Fatalf("expected refusal for %q, got %q", text, output.Reply)
		}
	}
	assignments, err := h.store.ListTaskAssignments(context.Background(), store.TaskAssignmentFilter{})
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(assignments) != 0 {
		t.Fatalf("expected no assignment, got %+v", assignments)
	}
}

func TestFallbackReceivesSnapshotAndLocalNow(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	mustCandidate(t, h.store, "Jane Doe", "555-0100")

	output := h.send(t, "who joined last week?")
	if output.Handled || output.Reply != "Here is what I know." {
		t.Fatalf("unexpected fallback output %+v", output)
	}
	if len(h.answerer.calls) != 1 {
		t.Fatalf("expected one fallback call, got %d", len(h.answerer.calls))
	}
	call := h.answerer.calls[0]
	if len(call.Snapshot.Candidates) != 1 || !call.Now.Equal(testNow) || call.Location != testZone || call.ActingUserID != "stf_priya" {
		t.Fatalf("unexpected fallback input %+v", call)
	}
}

func TestEmptyMessageIsIgnored(t *testing.T) {
	h := newHarness(t, ConfirmationStatic)
	output := h.send(t, "   ")
	if output.Handled || output.Reply != "" || len(h.answerer.calls) != 0 {
		t.Fatalf("expected empty output, got %+v", output)
	}
}

func TestParseConfirmationMode(t *testing.T) {
	for raw, want := range map[string]ConfirmationMode{"": ConfirmationStatic, "STATIC": ConfirmationStatic, " session ": ConfirmationSession} {
		got, err := ParseConfirmationMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseConfirmationMode(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseConfirmationMode("sticky"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
