package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dwizi/recruit-desk/internal/conflict"
	"github.com/dwizi/recruit-desk/internal/intent"
	"github.com/dwizi/recruit-desk/internal/store"
)

const staticConfirmationReply = "Reminder confirmed."

func (s *Service) setReminder(ctx context.Context, actor string, request intent.SetReminder) string {
	person, reply, ok := s.resolvePerson(ctx, request.Name, kindsFor(request.PersonKind)...)
	if !ok {
		return reply
	}
	remindAt := s.now().Add(time.Duration(request.Hours) * time.Hour)

	if person.Kind == store.PersonKindCandidate {
		found, err := s.conflicts.Check(ctx, person.ID, remindAt)
		if err != nil {
			return s.failure("check interviews", err)
		}
		if found != nil {
			return s.withholdReminder(ctx, actor, person, remindAt, found)
		}
	}
	reply, _ = s.applyReminder(ctx, actor, person, remindAt)
	return reply
}

func (s *Service) withholdReminder(ctx context.Context, actor string, person store.Person, remindAt time.Time, found *conflict.Conflict) string {
	s.logger.Info("reminder withheld", "person_id", person.ID, "error", found)
	if s.cfg.ConfirmationMode == ConfirmationSession {
		if _, err := s.store.CreateReminderConfirmation(ctx, store.CreateReminderConfirmationInput{
			UserID:   actor,
			Person:   person.Ref(),
			RemindAt: remindAt,
			TTL:      s.cfg.ConfirmationTTL,
		}); err != nil {
			return s.failure("hold reminder for confirmation", err)
		}
	}
	noun := "an interview"
	if len(found.Times) > 1 {
		noun = fmt.Sprintf("%d interviews", len(found.Times))
	}
	lines := []string{
		fmt.Sprintf("Scheduling conflict: %s has %s on %s at %s.",
			person.Name, noun, s.cfg.Clock.Date(remindAt), strings.Join(found.Times, ", ")),
		fmt.Sprintf("The reminder for %s was not set.", s.cfg.Clock.DateTime(remindAt)),
		`Reply "yes reminder" to confirm it anyway.`,
	}
	return strings.Join(lines, "\n")
}

func (s *Service) applyReminder(ctx context.Context, actor string, person store.Person, remindAt time.Time) (string, bool) {
	if err := s.store.SetReminder(ctx, person.Ref(), remindAt); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return fmt.Sprintf("%s no longer exists.", person.Name), false
		}
		return s.failure("set reminder", err), false
	}
	when := s.cfg.Clock.DateTime(remindAt)
	s.audit(ctx, actor, "reminder.set", person.Ref(), fmt.Sprintf("reminder for %s at %s", person.Name, when))
	return fmt.Sprintf("Reminder set for %s (%s) on %s.", person.Name, contactOf(person), when), true
}

func (s *Service) confirmPendingReminder(ctx context.Context, actor string) string {
	if s.cfg.ConfirmationMode != ConfirmationSession {
		return staticConfirmationReply
	}
	pending, err := s.store.LatestPendingReminderConfirmation(ctx, actor, s.now())
	if err != nil {
		if errors.Is(err, store.ErrConfirmationNotFound) {
			return "There is no pending reminder to confirm."
		}
		return s.failure("load pending reminder", err)
	}
	person, err := s.store.GetPerson(ctx, pending.Person)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			if err := s.store.ResolveReminderConfirmation(ctx, pending.ID, store.ConfirmationExpired); err != nil && !errors.Is(err, store.ErrConfirmationNotFound) {
				s.logger.Warn("expire reminder confirmation failed", "confirmation_id", pending.ID, "error", err)
			}
			return "The person for that reminder no longer exists."
		}
		return s.failure("load reminder person", err)
	}
	reply, applied := s.applyReminder(ctx, actor, person, pending.RemindAt)
	if !applied {
		return reply
	}
	if err := s.store.ResolveReminderConfirmation(ctx, pending.ID, store.ConfirmationConfirmed); err != nil && !errors.Is(err, store.ErrConfirmationNotFound) {
		s.logger.Warn("resolve reminder confirmation failed", "confirmation_id", pending.ID, "error", err)
	}
	return reply
}
