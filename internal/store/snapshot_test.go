package store

import (
	"context"
	"testing"
	"time"
)

func TestSnapshotLoadsEveryTable(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	candidate, err := sqlStore.CreateCandidate(ctx, CreateCandidateInput{Name: "Jane Doe"})
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	if _, err := sqlStore.CreateClient(ctx, CreateClientInput{Name: "Acme", Status: "Active"}); err != nil {
		t.Fatalf("create client: %v", err)
	}
	if _, err := sqlStore.CreateInterview(ctx, CreateInterviewInput{CandidateID: candidate.ID, ScheduledAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("create interview: %v", err)
	}
	staff, err := sqlStore.CreateStaff(ctx, CreateStaffInput{Name: "Alice", Username: "alice"})
	if err != nil {
		t.Fatalf("create staff: %v", err)
	}
	note, err := sqlStore.CreateMeetingNote(ctx, CreateMeetingNoteInput{Link: candidate.Ref(), Content: "follow up", CreatedBy: staff.ID})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if _, err := sqlStore.CreateMeetingTask(ctx, CreateMeetingTaskInput{MeetingNoteID: note.ID, Description: "call", AssignedTo: staff.ID}); err != nil {
		t.Fatalf("create meeting task: %v", err)
	}
	if _, err := sqlStore.CreateTaskAssignment(ctx, CreateTaskAssignmentInput{Description: "file", AssignedTo: staff.ID, AssignedBy: staff.ID}); err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	snapshot, err := sqlStore.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot.Candidates) != 1 || len(snapshot.Clients) != 1 || len(snapshot.Interviews) != 1 ||
		len(snapshot.MeetingNotes) != 1 || len(snapshot.MeetingTasks) != 1 || len(snapshot.TaskAssignments) != 1 ||
		len(snapshot.Staff) != 1 {
		t.Fatalf("unexpected snapshot sizes: %+v", snapshot)
	}
}
