package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dwizi/recruit-desk/internal/health"
	"github.com/dwizi/recruit-desk/internal/store"
)

const healthActor = "system"

type activityAppender interface {
	AppendActivity(ctx context.Context, input store.AppendActivityInput) (store.ActivityEntry, error)
}

// healthAuditor logs component transitions and records the ones operators
// care about (failures and recoveries) in the activity log.
type healthAuditor struct {
	store  activityAppender
	logger *slog.Logger
}

func newHealthAuditor(storeRef activityAppender, logger *slog.Logger) *healthAuditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &healthAuditor{store: storeRef, logger: logger}
}

func (a *healthAuditor) HandleTransition(ctx context.Context, transition health.Transition) {
	action := transitionAction(transition)
	if action == "" {
		a.logger.Info("component state changed", "component", transition.Component, "from", transition.From, "to", transition.To)
		return
	}
	a.logger.Warn("component state changed",
		"component", transition.Component,
		"from", transition.From,
		"to", transition.To,
		"error", transition.Error,
	)
	if a.store == nil {
		return
	}
	if _, err := a.store.AppendActivity(ctx, store.AppendActivityInput{
		ActorID: healthActor,
		Action:  action,
		Summary: transitionSummary(transition),
	}); err != nil {
		a.logger.Error("failed to record health transition", "component", transition.Component, "error", err)
	}
}

func transitionAction(transition health.Transition) string {
	switch transition.To {
	case health.StateDegraded, health.StateStale:
		return "health.degraded"
	case health.StateHealthy:
		if transition.From == health.StateDegraded || transition.From == health.StateStale {
			return "health.recovered"
		}
	}
	return ""
}

func transitionSummary(transition health.Transition) string {
	summary := fmt.Sprintf("%s changed from %s to %s", transition.Component, transition.From, transition.To)
	if detail := strings.TrimSpace(transition.Error); detail != "" {
		summary += ": " + detail
	} else if detail := strings.TrimSpace(transition.Message); detail != "" {
		summary += ": " + detail
	}
	return summary
}
