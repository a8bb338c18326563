package health

import (
	"context"
	"log/slog"
	"time"
)

type Transition struct {
	Component string
	From      string
	To        string
	Message   string
	Error     string
}

type MonitorConfig struct {
	Interval     time.Duration
	StaleAfter   time.Duration
	Logger       *slog.Logger
	OnTransition func(context.Context, Transition)
}

// Monitor polls a Registry and reports state changes per component.
type Monitor struct {
	registry *Registry
	cfg      MonitorConfig
}

func NewMonitor(registry *Registry, cfg MonitorConfig) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.OnTransition == nil {
		logger := cfg.Logger
		cfg.OnTransition = func(_ context.Context, transition Transition) {
			level := slog.LevelInfo
			if transition.To == StateDegraded || transition.To == StateStale {
				level = slog.LevelWarn
			}
			logger.Log(context.Background(), level, "component state changed",
				"component", transition.Component,
				"from", transition.From,
				"to", transition.To,
				"message", transition.Message,
				"error", transition.Error,
			)
		}
	}
	return &Monitor{registry: registry, cfg: cfg}
}

func (m *Monitor) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	previous := map[string]string{}
	for {
		m.evaluate(ctx, previous)
		select {
		case <-ctx.Done():
			m.cfg.Logger.Info("health monitor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (m *Monitor) evaluate(ctx context.Context, previous map[string]string) {
	for _, item := range m.registry.Snapshot(m.cfg.StaleAfter).Components {
		before, seen := previous[item.Name]
		previous[item.Name] = item.State
		if !seen || before == item.State {
			continue
		}
		m.cfg.OnTransition(ctx, Transition{
			Component: item.Name,
			From:      before,
			To:        item.State,
			Message:   item.Message,
			Error:     item.Error,
		})
	}
}
