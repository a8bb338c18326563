package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dwizi/recruit-desk/internal/health"
)

func (r *Runtime) Run(ctx context.Context) error {
	if r.httpServer == nil {
		return errors.New("runtime was built without background services")
	}
	r.logger.Info("recruit-desk runtime starting",
		"addr", r.cfg.HTTPAddr,
		"db_path", r.cfg.DBPath,
		"display_timezone", r.cfg.DisplayTimezone,
		"roster_members", r.roster.Len(),
	)
	r.health.Beat("runtime", "runtime loop started")

	group, groupCtx := errgroup.WithContext(ctx)
	if r.scheduler != nil {
		group.Go(func() error {
			return r.scheduler.Start(groupCtx)
		})
	}
	if r.watcher != nil {
		group.Go(func() error {
			return r.watcher.Start(groupCtx)
		})
	}
	group.Go(func() error {
		return runMonitored(groupCtx, r.health, "api", 20*time.Second, func(runCtx context.Context) error {
			err := r.httpServer.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
	})
	group.Go(func() error {
		return runMonitored(groupCtx, r.health, "runtime", 20*time.Second, func(runCtx context.Context) error {
			<-runCtx.Done()
			return nil
		})
	})
	if r.healthMonitor != nil {
		group.Go(func() error {
			return r.healthMonitor.Start(groupCtx)
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func (r *Runtime) Close() error {
	if r.watcher != nil {
		_ = r.watcher.Close()
	}
	if r.store == nil {
		return nil
	}
	if err := r.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

func runMonitored(
	ctx context.Context,
	reporter health.Reporter,
	component string,
	beatInterval time.Duration,
	run func(context.Context) error,
) error {
	if run == nil {
		return nil
	}
	if reporter != nil {
		reporter.Starting(component, "starting")
		reporter.Beat(component, "running")
	}

	var stopBeats func()
	if reporter != nil && beatInterval > 0 {
		beatCtx, cancel := context.WithCancel(ctx)
		stopBeats = cancel
		go func() {
			ticker := time.NewTicker(beatInterval)
			defer ticker.Stop()
			for {
				select {
				case <-beatCtx.Done():
					return
				case <-ticker.C:
					reporter.Beat(component, "running")
				}
			}
		}()
	}

	err := run(ctx)
	if stopBeats != nil {
		stopBeats()
	}
	if reporter == nil {
		return err
	}
	if err != nil && ctx.Err() == nil {
		reporter.Degrade(component, "component failed", err)
		return err
	}
	reporter.Stopped(component, "stopped")
	return err
}
