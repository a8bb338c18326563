package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dwizi/recruit-desk/internal/config"
	"github.com/dwizi/recruit-desk/internal/gateway"
	"github.com/dwizi/recruit-desk/internal/health"
	"github.com/dwizi/recruit-desk/internal/httpapi"
	"github.com/dwizi/recruit-desk/internal/llm"
	"github.com/dwizi/recruit-desk/internal/llm/anthropic"
	"github.com/dwizi/recruit-desk/internal/llm/openai"
	"github.com/dwizi/recruit-desk/internal/mcp"
	"github.com/dwizi/recruit-desk/internal/roster"
	"github.com/dwizi/recruit-desk/internal/scheduler"
	"github.com/dwizi/recruit-desk/internal/store"
	"github.com/dwizi/recruit-desk/internal/textfmt"
	"github.com/dwizi/recruit-desk/internal/watcher"
)

const Version = "0.1.0"

// Options trims New for commands that only need the router.
type Options struct {
	Background bool
}

func New(cfg config.Config, logger *slog.Logger, opts Options) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	sqlStore, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqlStore.AutoMigrate(context.Background()); err != nil {
		sqlStore.Close()
		return nil, err
	}

	location, ok := cfg.Location()
	if !ok {
		logger.Warn("unknown display timezone, using UTC", "timezone", cfg.DisplayTimezone)
	}
	clock := textfmt.NewClock(location)

	members, err := roster.Load(cfg.RosterFile, cfg.RosterCSV)
	if err != nil {
		sqlStore.Close()
		return nil, fmt.Errorf("load roster: %w", err)
	}
	team := roster.New(members...)

	mode, err := gateway.ParseConfirmationMode(cfg.ReminderConfirmations)
	if err != nil {
		sqlStore.Close()
		return nil, err
	}
	gatewayService := gateway.New(sqlStore, team, newAnswerer(cfg, logger), gateway.Config{
		Clock:            clock,
		PAFAmount:        cfg.PAFAmount,
		ConfirmationMode: mode,
		ConfirmationTTL:  cfg.ConfirmationTTL(),
	}, logger.With("component", "gateway"))

	runtime := &Runtime{
		cfg:     cfg,
		logger:  logger,
		store:   sqlStore,
		roster:  team,
		gateway: gatewayService,
		mcp:     mcp.NewServer(gatewayService, Version),
	}
	if !opts.Background {
		return runtime, nil
	}

	registry := health.NewRegistry()
	registry.Starting("runtime", "booting")
	registry.Starting("api", "initializing")
	runtime.health = registry

	if cfg.ReminderSweepEnabled {
		schedulerService, err := scheduler.New(sqlStore, scheduler.LogNotifier{
			Logger: logger.With("component", "reminder-notifier"),
			Clock:  clock,
		}, scheduler.Config{
			Spec:      cfg.ReminderSweepCron,
			Location:  location,
			BatchSize: cfg.ReminderSweepBatchSize,
		}, logger.With("component", "scheduler"))
		if err != nil {
			sqlStore.Close()
			return nil, err
		}
		runtime.scheduler = schedulerService
	} else {
		registry.Disabled("reminder-sweep", "disabled by configuration")
	}

	if cfg.RosterFile != "" {
		watchService, err := watcher.New(cfg.RosterFile, logger.With("component", "watcher"), func(ctx context.Context, path string) error {
			return runtime.reloadRoster()
		})
		if err != nil {
			sqlStore.Close()
			return nil, err
		}
		runtime.watcher = watchService
	} else {
		registry.Disabled("roster-watcher", "no roster file configured")
	}

	for _, component := range runtime.healthAwareComponents() {
		component.SetHealthReporter(registry)
	}

	var mcpHandler http.Handler
	if cfg.MCPHTTPEnabled {
		mcpHandler = runtime.mcp.Handler()
	}
	staleAfter := time.Duration(cfg.HealthStaleSec) * time.Second
	runtime.httpServer = &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.Dependencies{
			Config:           cfg,
			Store:            sqlStore,
			Gateway:          gatewayService,
			MCPHandler:       mcpHandler,
			Logger:           logger.With("component", "httpapi"),
			Health:           registry,
			HealthStaleAfter: staleAfter,
			Version:          Version,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	auditor := newHealthAuditor(sqlStore, logger.With("component", "health-auditor"))
	runtime.healthMonitor = health.NewMonitor(registry, health.MonitorConfig{
		Interval:     time.Duration(cfg.HealthIntervalSec) * time.Second,
		StaleAfter:   staleAfter,
		Logger:       logger.With("component", "health-monitor"),
		OnTransition: auditor.HandleTransition,
	})
	return runtime, nil
}

func (r *Runtime) reloadRoster() error {
	members, err := roster.Load(r.cfg.RosterFile, r.cfg.RosterCSV)
	if err != nil {
		return err
	}
	r.roster.Replace(members)
	r.logger.Info("roster reloaded", "members", r.roster.Len())
	return nil
}

func newAnswerer(cfg config.Config, logger *slog.Logger) llm.Answerer {
	if !cfg.LLMEnabled {
		return llm.Static{}
	}
	timeout := time.Duration(cfg.LLMTimeoutSec) * time.Second
	switch cfg.LLMProvider {
	case "anthropic":
		return anthropic.New(anthropic.Config{
			APIKey:       cfg.LLMAPIKey,
			BaseURL:      cfg.LLMBaseURL,
			Model:        cfg.LLMModel,
			Timeout:      timeout,
			SystemPrompt: cfg.LLMSystemPrompt,
		}, logger.With("component", "llm-anthropic"))
	default:
		return openai.New(openai.Config{
			APIKey:       cfg.LLMAPIKey,
			BaseURL:      cfg.LLMBaseURL,
			Model:        cfg.LLMModel,
			Timeout:      timeout,
			SystemPrompt: cfg.LLMSystemPrompt,
		}, logger.With("component", "llm-openai"))
	}
}

func (r *Runtime) healthAwareComponents() []healthAware {
	components := []healthAware{}
	if r.scheduler != nil {
		components = append(components, r.scheduler)
	}
	if r.watcher != nil {
		components = append(components, r.watcher)
	}
	return components
}
