package watcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dwizi/recruit-desk/internal/health"
)

func newTestService(t *testing.T, path string, onChange func(context.Context, string) error) *Service {
	t.Helper()
	service, err := New(path, slog.New(slog.NewTextHandler(io.Discard, nil)), onChange)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() { _ = service.watcher.Close() })
	return service
}

func TestHandleEventFiltersOtherFiles(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "roster.yaml")
	calls := 0
	service := newTestService(t, rosterPath, func(ctx context.Context, path string) error {
		calls++
		return nil
	})

	service.handleEvent(context.Background(), fsnotify.Event{Name: filepath.Join(dir, "notes.yaml"), Op: fsnotify.Write})
	service.handleEvent(context.Background(), fsnotify.Event{Name: rosterPath, Op: fsnotify.Chmod})
	if calls != 0 {
		t.Fatalf("expected unrelated events to be ignored, got %d calls", calls)
	}
	service.handleEvent(context.Background(), fsnotify.Event{Name: rosterPath, Op: fsnotify.Write})
	service.handleEvent(context.Background(), fsnotify.Event{Name: rosterPath, Op: fsnotify.Rename})
	if calls != 2 {
		t.Fatalf("expected two reloads, got %d", calls)
	}
}

func TestHandleEventReportsReloadFailure(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "roster.yaml")
	service := newTestService(t, rosterPath, func(ctx context.Context, path string) error {
		return errors.New("bad yaml")
	})
	registry := health.NewRegistry()
	service.SetHealthReporter(registry)

	service.handleEvent(context.Background(), fsnotify.Event{Name: rosterPath, Op: fsnotify.Write})
	snapshot := registry.Snapshot(0)
	if len(snapshot.Components) != 1 || snapshot.Components[0].State != health.StateDegraded {
		t.Fatalf("expected degraded watcher, got %+v", snapshot.Components)
	}
	if snapshot.Components[0].Error != "bad yaml" {
		t.Fatalf("unexpected error text %q", snapshot.Components[0].Error)
	}
}

func TestStartReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "roster.yaml")
	if err := os.WriteFile(rosterPath, []byte("members: []\n"), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	changed := make(chan string, 4)
	service := newTestService(t, rosterPath, func(ctx context.Context, path string) error {
		changed <- path
		return nil
	})
	registry := health.NewRegistry()
	service.SetHealthReporter(registry)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Start(ctx) }()

	started := false
	for attempt := 0; attempt < 200 && !started; attempt++ {
		for _, item := range registry.Snapshot(0).Components {
			if item.Name == componentName {
				started = true
			}
		}
		if !started {
			time.Sleep(10 * time.Millisecond)
		}
	}
	if !started {
		cancel()
		t.Fatal("watcher did not start")
	}

	if err := os.WriteFile(rosterPath, []byte("members:\n  - name: Priya\n    id: stf_priya\n"), 0o644); err != nil {
		t.Fatalf("rewrite roster: %v", err)
	}
	select {
	case path := <-changed:
		if filepath.Base(path) != "roster.yaml" {
			t.Fatalf("unexpected path %s", path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected reload after write")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("start returned error: %v", err)
	}
}
