package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dwizi/recruit-desk/internal/health"
	"github.com/dwizi/recruit-desk/internal/store"
	"github.com/dwizi/recruit-desk/internal/textfmt"
)

const componentName = "reminder-sweep"

var sweepParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Store interface {
	ListDueReminders(ctx context.Context, now time.Time, limit int) ([]store.DueReminder, error)
	MarkReminderNotified(ctx context.Context, ref store.PersonRef, notifiedAt time.Time) error
}

// Notifier delivers one due reminder. Delivery channels such as SMS live
// behind this interface.
type Notifier interface {
	NotifyReminder(ctx context.Context, reminder store.DueReminder) error
}

type Config struct {
	Spec      string
	Location  *time.Location
	BatchSize int
}

// Service sweeps due person reminders on a cron schedule.
type Service struct {
	store    Store
	notifier Notifier
	schedule cron.Schedule
	cfg      Config
	logger   *slog.Logger
	reporter health.Reporter
	now      func() time.Time
}

func New(dataStore Store, notifier Notifier, cfg Config, logger *slog.Logger) (*Service, error) {
	cfg.Spec = strings.Join(strings.Fields(cfg.Spec), " ")
	if cfg.Spec == "" {
		cfg.Spec = "*/5 * * * *"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	schedule, err := sweepParser.Parse(cfg.Spec)
	if err != nil {
		return nil, fmt.Errorf("parse reminder sweep schedule: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    dataStore,
		notifier: notifier,
		schedule: schedule,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *Service) SetHealthReporter(reporter health.Reporter) {
	s.reporter = reporter
}

// NextRun is the first sweep strictly after from.
func (s *Service) NextRun(from time.Time) time.Time {
	return s.schedule.Next(from.In(s.cfg.Location)).UTC()
}

func (s *Service) Start(ctx context.Context) error {
	if s.store == nil || s.notifier == nil {
		s.report(func(r health.Reporter) { r.Disabled(componentName, "dependencies missing") })
		<-ctx.Done()
		return nil
	}
	runner := cron.New(cron.WithLocation(s.cfg.Location), cron.WithParser(sweepParser))
	runner.Schedule(s.schedule, cron.FuncJob(func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.report(func(r health.Reporter) { r.Degrade(componentName, "sweep failed", err) })
			s.logger.Error("reminder sweep failed", "error", err)
			return
		}
		s.report(func(r health.Reporter) { r.Beat(componentName, "sweep completed") })
	}))
	runner.Start()
	s.report(func(r health.Reporter) { r.Starting(componentName, "next sweep "+s.NextRun(s.now()).Format(time.RFC3339)) })
	s.logger.Info("reminder sweep started", "schedule", s.cfg.Spec, "location", s.cfg.Location.String())

	<-ctx.Done()
	<-runner.Stop().Done()
	s.report(func(r health.Reporter) { r.Stopped(componentName, "stopped") })
	s.logger.Info("reminder sweep stopped")
	return nil
}

// Sweep notifies every due reminder once. A failed notification leaves the
// reminder due so the next sweep retries it.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.store.ListDueReminders(ctx, now, s.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list due reminders: %w", err)
	}
	notified := 0
	for _, reminder := range due {
		if err := s.notifier.NotifyReminder(ctx, reminder); err != nil {
			s.logger.Error("reminder notification failed", "person_id", reminder.ID, "kind", string(reminder.Kind), "error", err)
			continue
		}
		if err := s.store.MarkReminderNotified(ctx, reminder.Ref(), now); err != nil {
			return notified, fmt.Errorf("mark reminder notified: %w", err)
		}
		notified++
	}
	if len(due) > 0 {
		s.logger.Info("reminder sweep completed", "due", len(due), "notified", notified)
	}
	return notified, nil
}

func (s *Service) report(apply func(health.Reporter)) {
	if s.reporter != nil {
		apply(s.reporter)
	}
}

// LogNotifier writes due reminders to the structured log.
type LogNotifier struct {
	Logger *slog.Logger
	Clock  textfmt.Clock
}

func (n LogNotifier) NotifyReminder(ctx context.Context, reminder store.DueReminder) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "reminder due",
		"kind", string(reminder.Kind),
		"name", reminder.Name,
		"contact", reminder.Contact,
		"remind_at", n.Clock.DateTime(reminder.ReminderAt),
	)
	return nil
}
