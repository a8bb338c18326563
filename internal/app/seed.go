package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dwizi/recruit-desk/internal/store"
)

type SeedSummary struct {
	Staff       int
	Candidates  int
	Clients     int
	Interviews  int
	Notes       int
	Tasks       int
	Assignments int
}

// Seed writes a small demo data set relative to now.
func Seed(ctx context.Context, dataStore *store.Store, now time.Time) (SeedSummary, error) {
	summary := SeedSummary{}
	staff := []store.CreateStaffInput{
		{ID: "stf_priya", Name: "Priya Sharma", Username: "priya"},
		{ID: "stf_arjun", Name: "Arjun Mehta", Username: "arjun"},
	}
	for _, input := range staff {
		if _, err := dataStore.CreateStaff(ctx, input); err != nil {
			return summary, fmt.Errorf("seed staff %s: %w", input.Name, err)
		}
		summary.Staff++
	}

	jane, err := dataStore.CreateCandidate(ctx, store.CreateCandidateInput{Name: "Jane Doe", Phone: "+91 98200 00001", Email: "jane@example.com", Status: "Interviewing"})
	if err != nil {
		return summary, fmt.Errorf("seed candidate: %w", err)
	}
	ravi, err := dataStore.CreateCandidate(ctx, store.CreateCandidateInput{Name: "Ravi Kumar", Phone: "+91 98200 00002", Status: "New"})
	if err != nil {
		return summary, fmt.Errorf("seed candidate: %w", err)
	}
	summary.Candidates = 2

	acme, err := dataStore.CreateClient(ctx, store.CreateClientInput{
		Name:          "Acme Corp",
		Contact:       "hiring@acme.example",
		Company:       "Acme Corp",
		Status:        "active",
		PlacementFee:  25000,
		PlacementDate: now.AddDate(0, 0, -3),
	})
	if err != nil {
		return summary, fmt.Errorf("seed client: %w", err)
	}
	if _, err := dataStore.CreateClient(ctx, store.CreateClientInput{
		Name:         "Globex",
		Contact:      "talent@globex.example",
		Company:      "Globex",
		Status:       "won",
		PlacementFee: 18000,
		RefundAmount: 2000,
	}); err != nil {
		return summary, fmt.Errorf("seed client: %w", err)
	}
	summary.Clients = 2

	interviews := []store.CreateInterviewInput{
		{CandidateID: jane.ID, ClientID: acme.ID, ScheduledAt: now.Add(26 * time.Hour), Notes: "Panel round"},
		{CandidateID: ravi.ID, ClientID: acme.ID, ScheduledAt: now.Add(50 * time.Hour), Notes: "Screening"},
	}
	for _, input := range interviews {
		if _, err := dataStore.CreateInterview(ctx, input); err != nil {
			return summary, fmt.Errorf("seed interview: %w", err)
		}
		summary.Interviews++
	}

	note, err := dataStore.CreateMeetingNote(ctx, store.CreateMeetingNoteInput{
		Link:      acme.Ref(),
		Title:     "Meeting with Acme Corp",
		Content:   "Discussed Q3 hiring plan and two open backend roles.",
		CreatedBy: "stf_priya",
	})
	if err != nil {
		return summary, fmt.Errorf("seed meeting note: %w", err)
	}
	summary.Notes = 1

	tasks := []store.CreateMeetingTaskInput{
		{MeetingNoteID: note.ID, Description: "Send revised job description", AssignedTo: "stf_priya", Status: store.StatusPending},
		{MeetingNoteID: note.ID, Description: "Share candidate shortlist", AssignedTo: "stf_arjun", Status: store.StatusCompleted},
	}
	for _, input := range tasks {
		if _, err := dataStore.CreateMeetingTask(ctx, input); err != nil {
			return summary, fmt.Errorf("seed meeting task: %w", err)
		}
		summary.Tasks++
	}

	if _, err := dataStore.CreateTaskAssignment(ctx, store.CreateTaskAssignmentInput{
		Description: "Call Jane Doe about the panel round.",
		AssignedTo:  "stf_priya",
		AssignedBy:  "stf_arjun",
	}); err != nil {
		return summary, fmt.Errorf("seed task assignment: %w", err)
	}
	summary.Assignments = 1
	return summary, nil
}
