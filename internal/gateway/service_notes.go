package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwizi/recruit-desk/internal/intent"
	"github.com/dwizi/recruit-desk/internal/store"
	"github.com/dwizi/recruit-desk/internal/textfmt"
)

const notePreviewLength = 50

func (s *Service) addMeetingNote(ctx context.Context, actor string, request intent.AddMeetingNote) string {
	person, reply, ok := s.resolvePerson(ctx, request.PersonName, kindsFor(request.PersonKind)...)
	if !ok {
		return reply
	}
	content := textfmt.EnsureSentence(textfmt.DecodeEntities(strings.TrimSpace(request.Content)))
	note, err := s.store.CreateMeetingNote(ctx, store.CreateMeetingNoteInput{
		Link:      person.Ref(),
		Title:     "Meeting with " + person.Name,
		Content:   content,
		CreatedBy: actor,
	})
	if err != nil {
		return s.failure("add meeting note", err)
	}
	s.audit(ctx, actor, "meeting_note.add", person.Ref(), textfmt.Truncate(note.Content, notePreviewLength))
	return fmt.Sprintf("Meeting note added for %s (%s): %s", person.Name, person.Kind, note.Content)
}

func (s *Service) markMeetingNoteDone(ctx context.Context, actor string, request intent.MarkMeetingNoteDone) string {
	person, reply, ok := s.resolvePerson(ctx, request.PersonName, kindsFor(request.PersonKind)...)
	if !ok {
		return reply
	}
	pending, err := s.store.ListPendingMeetingNotes(ctx, person.Ref())
	if err != nil {
		return s.failure("load meeting notes", err)
	}
	switch len(pending) {
	case 0:
		return fmt.Sprintf("No pending meeting notes for %s.", person.Name)
	case 1:
	default:
		lines := []string{fmt.Sprintf("%s has %d pending meeting notes:", person.Name, len(pending))}
		for i, note := range pending {
			preview := textfmt.Truncate(textfmt.StripEntities(note.Content), notePreviewLength)
			lines = append(lines, fmt.Sprintf("%d. %s (%s)", i+1, preview, s.cfg.Clock.Date(note.CreatedAt)))
		}
		lines = append(lines, "Please be specific about which note is done.")
		return strings.Join(lines, "\n")
	}

	now := s.now()
	note, err := s.store.CompleteMeetingNote(ctx, store.CompleteMeetingNoteInput{
		ID:          pending[0].ID,
		CompletedBy: actor,
		CompletedAt: now,
	})
	if err != nil {
		if errors.Is(err, store.ErrMeetingNoteNotPending) {
			return fmt.Sprintf("The meeting note for %s was already completed.", person.Name)
		}
		return s.failure("complete meeting note", err)
	}
	preview := textfmt.Truncate(textfmt.StripEntities(note.Content), notePreviewLength)
	s.audit(ctx, actor, "meeting_note.complete", person.Ref(), preview)
	return fmt.Sprintf("Marked the meeting note for %s as done: %s\nCompleted %s.", person.Name, preview, s.cfg.Clock.DateTime(now))
}
