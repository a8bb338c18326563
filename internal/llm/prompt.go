package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const DefaultSystemPrompt = `You are the assistant of a staffing agency desk.
Answer using only the business data provided. Reply in plain text without markdown emphasis.
Refer to people by name, never by internal identifier.
If the data does not contain the answer, say so briefly.`

type snapshotDocument struct {
	Now             string           `json:"now"`
	Candidates      []map[string]any `json:"candidates"`
	Clients         []map[string]any `json:"clients"`
	Interviews      []map[string]any `json:"interviews"`
	MeetingNotes    []map[string]any `json:"meeting_notes"`
	MeetingTasks    []map[string]any `json:"meeting_tasks"`
	TaskAssignments []map[string]any `json:"task_assignments"`
	Staff           []map[string]any `json:"staff"`
}

// BuildUserPrompt renders the question plus a JSON copy of the snapshot with
// all instants converted to the display zone and ids replaced by names.
func BuildUserPrompt(input QuestionInput) (string, error) {
	location := input.Location
	if location == nil {
		location = time.UTC
	}
	render := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.In(location).Format("2006-01-02 15:04 MST")
	}
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	snapshot := input.Snapshot
	names := map[string]string{}
	for _, person := range snapshot.Candidates {
		names[person.ID] = person.Name
	}
	for _, client := range snapshot.Clients {
		names[client.ID] = client.Name
	}
	for _, member := range snapshot.Staff {
		names[member.ID] = member.Name
	}
	nameOf := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return id
	}

	doc := snapshotDocument{Now: now.In(location).Format("Monday, Jan 2 2006 15:04 MST")}
	for _, person := range snapshot.Candidates {
		doc.Candidates = append(doc.Candidates, map[string]any{
			"name":     person.Name,
			"phone":    person.Contact,
			"status":   person.Status,
			"reminder": render(person.ReminderAt),
		})
	}
	for _, client := range snapshot.Clients {
		doc.Clients = append(doc.Clients, map[string]any{
			"name":           client.Name,
			"contact":        client.Contact,
			"company":        client.Company,
			"status":         client.Status,
			"placement_fee":  client.PlacementFee,
			"placement_date": render(client.PlacementDate),
			"refund_amount":  client.RefundAmount,
			"reminder":       render(client.ReminderAt),
		})
	}
	for _, interview := range snapshot.Interviews {
		doc.Interviews = append(doc.Interviews, map[string]any{
			"candidate": nameOf(interview.CandidateID),
			"client":    nameOf(interview.ClientID),
			"at":        render(interview.ScheduledAt),
			"notes":     interview.Notes,
		})
	}
	for _, note := range snapshot.MeetingNotes {
		doc.MeetingNotes = append(doc.MeetingNotes, map[string]any{
			"person":       nameOf(note.Link.ID),
			"person_kind":  string(note.Link.Kind),
			"title":        note.Title,
			"content":      note.Content,
			"status":       note.Status,
			"created_by":   nameOf(note.CreatedBy),
			"created_at":   render(note.CreatedAt),
			"completed_at": render(note.CompletedAt),
		})
	}
	for _, task := range snapshot.MeetingTasks {
		doc.MeetingTasks = append(doc.MeetingTasks, map[string]any{
			"meeting":     task.MeetingTitle,
			"meeting_at":  render(task.MeetingDate),
			"description": task.Description,
			"assignee":    firstNonEmpty(task.AssigneeName, nameOf(task.AssignedTo)),
			"status":      task.Status,
		})
	}
	for _, assignment := range snapshot.TaskAssignments {
		doc.TaskAssignments = append(doc.TaskAssignments, map[string]any{
			"description": assignment.Description,
			"assignee":    nameOf(assignment.AssignedTo),
			"assigned_by": nameOf(assignment.AssignedBy),
			"status":      assignment.Status,
			"created_at":  render(assignment.CreatedAt),
		})
	}
	for _, member := range snapshot.Staff {
		doc.Staff = append(doc.Staff, map[string]any{"name": member.Name, "username": member.Username})
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	var builder strings.Builder
	builder.WriteString("Business data (JSON):\n")
	builder.Write(encoded)
	builder.WriteString("\n\nQuestion from ")
	builder.WriteString(nameOf(strings.TrimSpace(input.ActingUserID)))
	builder.WriteString(":\n")
	builder.WriteString(strings.TrimSpace(input.Text))
	return builder.String(), nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
