package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dwizi/recruit-desk/internal/health"
)

const componentName = "roster-watcher"

// Service watches one file and calls onChange when it is written, created
// or replaced. The parent directory is watched so editors that save by
// rename keep triggering reloads.
type Service struct {
	path     string
	logger   *slog.Logger
	onChange func(context.Context, string) error
	watcher  *fsnotify.Watcher
	reporter health.Reporter
}

func New(path string, logger *slog.Logger, onChange func(context.Context, string) error) (*Service, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		path:     filepath.Clean(absolute),
		logger:   logger,
		onChange: onChange,
		watcher:  fileWatcher,
	}, nil
}

func (s *Service) SetHealthReporter(reporter health.Reporter) {
	s.reporter = reporter
}

func (s *Service) Start(ctx context.Context) error {
	defer s.watcher.Close()

	dir := filepath.Dir(s.path)
	if err := s.watcher.Add(dir); err != nil {
		s.report(func(r health.Reporter) { r.Degrade(componentName, "watch failed", err) })
		return fmt.Errorf("watch path %s: %w", dir, err)
	}
	s.report(func(r health.Reporter) { r.Beat(componentName, "watching "+s.path) })
	s.logger.Info("roster watcher started", "path", s.path)

	for {
		select {
		case <-ctx.Done():
			s.report(func(r health.Reporter) { r.Stopped(componentName, "stopped") })
			s.logger.Info("roster watcher stopped")
			return nil
		case event, ok := <-s.watcher.Events:
			if !ok {
				return nil
			}
			s.handleEvent(ctx, event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				s.report(func(r health.Reporter) { r.Degrade(componentName, "watcher error", err) })
				s.logger.Error("file watcher error", "error", err)
			}
		}
	}
}

func (s *Service) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != s.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	s.logger.Info("roster file changed", "path", event.Name, "op", event.Op.String())
	if err := s.onChange(ctx, event.Name); err != nil {
		s.report(func(r health.Reporter) { r.Degrade(componentName, "reload failed", err) })
		s.logger.Error("roster reload failed", "path", event.Name, "error", err)
		return
	}
	s.report(func(r health.Reporter) { r.Beat(componentName, "reloaded") })
}

func (s *Service) report(apply func(health.Reporter)) {
	if s.reporter != nil {
		apply(s.reporter)
	}
}

func (s *Service) Close() error {
	return s.watcher.Close()
}
