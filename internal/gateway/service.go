package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dwizi/recruit-desk/internal/conflict"
	"github.com/dwizi/recruit-desk/internal/deskerr"
	"github.com/dwizi/recruit-desk/internal/intent"
	"github.com/dwizi/recruit-desk/internal/llm"
	"github.com/dwizi/recruit-desk/internal/resolver"
	"github.com/dwizi/recruit-desk/internal/roster"
	"github.com/dwizi/recruit-desk/internal/store"
	"github.com/dwizi/recruit-desk/internal/textfmt"
)

type Store interface {
	SearchPeople(ctx context.Context, kind store.PersonKind, fragment string, limit int) ([]store.Person, error)
	GetPerson(ctx context.Context, ref store.PersonRef) (store.Person, error)
	SetReminder(ctx context.Context, ref store.PersonRef, remindAt time.Time) error
	SetCandidateStatus(ctx context.Context, id, status string) error
	ListInterviewsForCandidate(ctx context.Context, candidateID string) ([]store.Interview, error)
	CreateMeetingNote(ctx context.Context, input store.CreateMeetingNoteInput) (store.MeetingNote, error)
	ListPendingMeetingNotes(ctx context.Context, link store.PersonRef) ([]store.MeetingNote, error)
	CompleteMeetingNote(ctx context.Context, input store.CompleteMeetingNoteInput) (store.MeetingNote, error)
	ListClients(ctx context.Context) ([]store.Client, error)
	ListStaff(ctx context.Context) ([]store.Staff, error)
	ListMeetingTasks(ctx context.Context, filter store.MeetingTaskFilter) ([]store.MeetingTaskView, error)
	CreateTaskAssignment(ctx context.Context, input store.CreateTaskAssignmentInput) (store.TaskAssignment, error)
	ListTaskAssignments(ctx context.Context, filter store.TaskAssignmentFilter) ([]store.TaskAssignment, error)
	CreateReminderConfirmation(ctx context.Context, input store.CreateReminderConfirmationInput) (store.ReminderConfirmation, error)
	LatestPendingReminderConfirmation(ctx context.Context, userID string, now time.Time) (store.ReminderConfirmation, error)
	ResolveReminderConfirmation(ctx context.Context, id, status string) error
	AppendActivity(ctx context.Context, input store.AppendActivityInput) (store.ActivityEntry, error)
	Snapshot(ctx context.Context) (store.Snapshot, error)
}

type ConfirmationMode string

const (
	// ConfirmationStatic answers every confirmation with a fixed sentence and
	// never writes the withheld reminder.
	ConfirmationStatic ConfirmationMode = "static"
	// ConfirmationSession remembers a withheld reminder per user until it is
	// confirmed or expires.
	ConfirmationSession ConfirmationMode = "session"
)

func ParseConfirmationMode(raw string) (ConfirmationMode, error) {
	switch ConfirmationMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ConfirmationStatic:
		return ConfirmationStatic, nil
	case ConfirmationSession:
		return ConfirmationSession, nil
	default:
		return "", fmt.Errorf("unknown reminder confirmation mode %q", raw)
	}
}

type Config struct {
	Clock            textfmt.Clock
	PAFAmount        float64
	ConfirmationMode ConfirmationMode
	ConfirmationTTL  time.Duration
}

type Service struct {
	store     Store
	extractor *intent.Extractor
	resolver  *resolver.Resolver
	conflicts *conflict.Checker
	roster    *roster.Roster
	answerer  llm.Answerer
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

type MessageInput struct {
	ActingUserID string
	Text         string
}

// MessageOutput carries the reply text. Handled is true when the message
// matched an action; fallback answers leave it false.
type MessageOutput struct {
	Handled bool
	Intent  intent.Kind
	Reply   string
}

const (
	anonymousUser       = "anonymous"
	genericFailureReply = "Sorry, something went wrong while handling that request."
	fallbackFailure     = "Sorry, I could not answer that right now."
)

func New(dataStore Store, members *roster.Roster, answerer llm.Answerer, cfg Config, logger *slog.Logger) *Service {
	if cfg.Clock.Location == nil {
		cfg.Clock = textfmt.NewClock(nil)
	}
	if cfg.ConfirmationMode == "" {
		cfg.ConfirmationMode = ConfirmationStatic
	}
	if cfg.ConfirmationTTL <= 0 {
		cfg.ConfirmationTTL = 15 * time.Minute
	}
	if members == nil {
		members = roster.New()
	}
	if answerer == nil {
		answerer = llm.Static{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     dataStore,
		extractor: intent.NewExtractor(),
		resolver:  resolver.New(dataStore),
		conflicts: conflict.NewChecker(dataStore, cfg.Clock),
		roster:    members,
		answerer:  answerer,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the time source used for reminders and "today".
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) HandleMessage(ctx context.Context, input MessageInput) (output MessageOutput, err error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return MessageOutput{}, nil
	}
	actor := strings.TrimSpace(input.ActingUserID)
	if actor == "" {
		actor = anonymousUser
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error("message handler panicked",
				"acting_user_id", actor,
				"panic", fmt.Sprint(recovered),
				"stack", string(debug.Stack()),
			)
			output = MessageOutput{Handled: output.Handled, Intent: output.Intent, Reply: genericFailureReply}
			err = nil
		}
	}()

	matched, ok := s.extractor.Extract(text)
	if !ok {
		reply := s.answer(ctx, actor, text)
		s.logger.Info("message answered by fallback", "acting_user_id", actor)
		return MessageOutput{Reply: reply}, nil
	}

	output = MessageOutput{Handled: true, Intent: matched.Kind()}
	output.Reply = s.dispatch(ctx, actor, matched)
	s.logger.Info("message handled", "intent", string(matched.Kind()), "acting_user_id", actor)
	return output, nil
}

func (s *Service) dispatch(ctx context.Context, actor string, matched intent.Intent) string {
	switch value := matched.(type) {
	case intent.SetReminder:
		return s.setReminder(ctx, actor, value)
	case intent.AddMeetingNote:
		return s.addMeetingNote(ctx, actor, value)
	case intent.MarkMeetingNoteDone:
		return s.markMeetingNoteDone(ctx, actor, value)
	case intent.ConfirmPendingReminder:
		return s.confirmPendingReminder(ctx, actor)
	case intent.MarkCandidatePending:
		return s.markCandidatePending(ctx, actor, value)
	case intent.FinanceQuery:
		return s.financialSummary(ctx)
	case intent.MeetingTaskQuery:
		return s.meetingTaskQuery(ctx, actor, value)
	case intent.GenericTaskQuery:
		return s.genericTaskQuery(ctx, value)
	case intent.AssignTask:
		return s.assignTask(ctx, actor, value)
	default:
		s.logger.Error("no executor for intent", "intent", string(matched.Kind()))
		return genericFailureReply
	}
}

func (s *Service) answer(ctx context.Context, actor, text string) string {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return s.failure("load business data", err)
	}
	reply, err := s.answerer.Answer(ctx, llm.QuestionInput{
		ActingUserID: actor,
		Text:         text,
		Snapshot:     snapshot,
		Now:          s.now(),
		Location:     s.cfg.Clock.Location,
	})
	if err != nil {
		s.logger.Error("fallback answer failed", "error", err)
		return fallbackFailure
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return fallbackFailure
	}
	return reply
}

// failure renders a store error as the reply text. A missing column is
// reported as a migration problem instead of a generic failure.
func (s *Service) failure(action string, err error) string {
	classified := deskerr.AsStoreFailure(err)
	s.logger.Error("store operation failed", "action", action, "error", classified)
	if errors.Is(classified, deskerr.ErrSchemaGap) {
		return fmt.Sprintf("Cannot %s: the database needs migration (%v). Restart the service to apply pending migrations.", action, err)
	}
	return fmt.Sprintf("Failed to %s: %v", action, err)
}

func (s *Service) audit(ctx context.Context, actor, action string, subject store.PersonRef, summary string) {
	if _, err := s.store.AppendActivity(ctx, store.AppendActivityInput{
		ActorID: actor,
		Action:  action,
		Subject: subject,
		Summary: summary,
	}); err != nil {
		s.logger.Warn("activity log append failed", "action", action, "error", err)
	}
}
