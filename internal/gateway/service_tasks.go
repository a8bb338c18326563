package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/dwizi/recruit-desk/internal/intent"
	"github.com/dwizi/recruit-desk/internal/resolver"
	"github.com/dwizi/recruit-desk/internal/store"
	"github.com/dwizi/recruit-desk/internal/textfmt"
)

const (
	markDone    = "✅"
	markPending = "⏳"
)

func (s *Service) meetingTaskQuery(ctx context.Context, actor string, request intent.MeetingTaskQuery) string {
	filter := store.MeetingTaskFilter{Limit: 200}
	scope := []string{}

	if request.Mine || request.UserName != "" {
		staff, err := s.store.ListStaff(ctx)
		if err != nil {
			return s.failure("load staff", err)
		}
		query := request.UserName
		if request.Mine {
			query = actor
		}
		// An unknown user widens the query to every assignee.
		if member, ok := matchActor(staff, query); ok {
			filter.AssignedTo = member.ID
			scope = append(scope, "for "+member.Name)
		}
	}
	if request.Today {
		filter.MeetingFrom, filter.MeetingUntil = s.cfg.Clock.DayBounds(s.now())
		scope = append(scope, "today")
	}
	switch {
	case request.Pending && !request.Completed:
		filter.Status = store.StatusPending
		scope = append(scope, "pending")
	case request.Completed && !request.Pending:
		filter.Status = store.StatusCompleted
		scope = append(scope, "completed")
	}

	tasks, err := s.store.ListMeetingTasks(ctx, filter)
	if err != nil {
		return s.failure("load meeting tasks", err)
	}
	heading := "Meeting tasks"
	if len(scope) > 0 {
		heading += " " + strings.Join(scope, ", ")
	}
	if len(tasks) == 0 {
		return "No " + strings.ToLower(heading[:1]) + heading[1:] + "."
	}

	type group struct {
		title string
		tasks []store.MeetingTaskView
	}
	groups := []*group{}
	byKey := map[string]*group{}
	for _, task := range tasks {
		title := textfmt.StripEntities(task.MeetingTitle)
		if title == "" {
			title = "Meeting"
		}
		key := title + " - " + s.cfg.Clock.Date(task.MeetingDate)
		current, ok := byKey[key]
		if !ok {
			current = &group{title: key}
			byKey[key] = current
			groups = append(groups, current)
		}
		current.tasks = append(current.tasks, task)
	}

	lines := []string{heading + ":"}
	for _, current := range groups {
		lines = append(lines, "", current.title)
		for _, task := range current.tasks {
			marker := markPending
			if task.Status == store.StatusCompleted {
				marker = markDone
			}
			line := marker + " " + cleanTaskDescription(task.Description)
			if assignee := strings.TrimSpace(task.AssigneeName); assignee != "" && filter.AssignedTo == "" {
				line += " (" + assignee + ")"
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// matchActor prefers an exact staff id before the fuzzy name rules.
func matchActor(staff []store.Staff, query string) (store.Staff, bool) {
	for _, member := range staff {
		if member.ID == strings.TrimSpace(query) {
			return member, true
		}
	}
	return resolver.MatchStaff(staff, query)
}

func cleanTaskDescription(description string) string {
	cleaned := textfmt.StripEntities(description)
	if len(cleaned) > 3 && strings.EqualFold(cleaned[:3], "to ") {
		cleaned = cleaned[3:]
	}
	return textfmt.CapitalizeFirst(cleaned)
}

func (s *Service) rosterRefusal(name string) string {
	if s.roster.Len() == 0 {
		return "Task lookups are not configured for any team member yet."
	}
	return fmt.Sprintf("I can only handle tasks for recognized team members (%s); %q is not one of them.", s.roster.Names(), textfmt.TrimQuotes(name))
}

func (s *Service) genericTaskQuery(ctx context.Context, request intent.GenericTaskQuery) string {
	member, ok := s.roster.Lookup(request.UserName)
	if !ok {
		return s.rosterRefusal(request.UserName)
	}
	filter := store.TaskAssignmentFilter{AssignedTo: member.ID, Limit: 100}
	switch request.DateFilter {
	case intent.DateFilterToday:
		filter.CreatedFrom, filter.CreatedUntil = s.cfg.Clock.DayBounds(s.now())
	case intent.DateFilterPending:
		filter.Status = store.StatusPending
	case intent.DateFilterCompleted:
		filter.Status = store.StatusCompleted
	}
	tasks, err := s.store.ListTaskAssignments(ctx, filter)
	if err != nil {
		return s.failure("load tasks", err)
	}
	heading := "Tasks for " + member.Name
	if request.DateFilter != intent.DateFilterNone {
		heading += " (" + string(request.DateFilter) + ")"
	}
	if len(tasks) == 0 {
		return "No tasks found for " + member.Name + "."
	}
	lines := []string{heading + ":"}
	for i, task := range tasks {
		marker := markPending
		if task.Status == store.StatusCompleted {
			marker = markDone
		}
		lines = append(lines, fmt.Sprintf("%d. %s %s (assigned %s)", i+1, marker, cleanTaskDescription(task.Description), s.cfg.Clock.Date(task.CreatedAt)))
	}
	return strings.Join(lines, "\n")
}

func (s *Service) assignTask(ctx context.Context, actor string, request intent.AssignTask) string {
	member, ok := s.roster.Lookup(request.UserName)
	if !ok {
		return s.rosterRefusal(request.UserName)
	}
	description := textfmt.EnsureSentence(textfmt.StripEntities(request.Description))
	task, err := s.store.CreateTaskAssignment(ctx, store.CreateTaskAssignmentInput{
		Description: description,
		AssignedTo:  member.ID,
		AssignedBy:  actor,
	})
	if err != nil {
		return s.failure("assign task", err)
	}
	s.audit(ctx, actor, "task.assign", store.PersonRef{}, member.Name+": "+task.Description)
	return fmt.Sprintf("Task assigned to %s: %s", member.Name, task.Description)
}
