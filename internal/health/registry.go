package health

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	StateStarting = "starting"
	StateHealthy  = "healthy"
	StateDegraded = "degraded"
	StateDisabled = "disabled"
	StateStopped  = "stopped"
	StateStale    = "stale"
)

// Reporter is implemented by Registry and handed to background components
// such as the reminder sweep and the roster watcher.
type Reporter interface {
	Starting(component, message string)
	Beat(component, message string)
	Degrade(component, message string, err error)
	Disabled(component, message string)
	Stopped(component, message string)
}

type ComponentStatus struct {
	Name       string `json:"name"`
	State      string `json:"state"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	LastBeatAt int64  `json:"last_beat_at_unix,omitempty"`
	UpdatedAt  int64  `json:"updated_at_unix"`
}

type Snapshot struct {
	GeneratedAt int64             `json:"generated_at_unix"`
	Overall     string            `json:"overall"`
	Components  []ComponentStatus `json:"components"`
}

// Ready is false while any component is degraded or stale.
func (s Snapshot) Ready() bool {
	return s.Overall != StateDegraded
}

type component struct {
	state     string
	message   string
	lastError string
	lastBeat  time.Time
	updated   time.Time
}

type Registry struct {
	mu         sync.RWMutex
	components map[string]component
	now        func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{components: map[string]component{}, now: time.Now}
}

func (r *Registry) Starting(name, message string) { r.set(name, StateStarting, message, nil) }
func (r *Registry) Beat(name, message string)     { r.set(name, StateHealthy, message, nil) }
func (r *Registry) Disabled(name, message string) { r.set(name, StateDisabled, message, nil) }
func (r *Registry) Stopped(name, message string)  { r.set(name, StateStopped, message, nil) }

func (r *Registry) Degrade(name, message string, err error) {
	r.set(name, StateDegraded, message, err)
}

func (r *Registry) set(name, state, message string, err error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	now := r.now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	record := r.components[name]
	record.state = state
	record.message = strings.TrimSpace(message)
	record.lastError = ""
	if err != nil {
		record.lastError = strings.TrimSpace(err.Error())
	}
	if state == StateHealthy || record.lastBeat.IsZero() {
		record.lastBeat = now
	}
	record.updated = now
	r.components[name] = record
}

// Snapshot reports every component. Healthy or starting components that
// have not beaten within staleAfter are reported stale.
func (r *Registry) Snapshot(staleAfter time.Duration) Snapshot {
	now := r.now().UTC()
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]ComponentStatus, 0, len(r.components))
	for name, record := range r.components {
		state := record.state
		if staleAfter > 0 && (state == StateHealthy || state == StateStarting) && now.Sub(record.lastBeat) > staleAfter {
			state = StateStale
		}
		items = append(items, ComponentStatus{
			Name:       name,
			State:      state,
			Message:    record.message,
			Error:      record.lastError,
			LastBeatAt: record.lastBeat.Unix(),
			UpdatedAt:  record.updated.Unix(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return Snapshot{GeneratedAt: now.Unix(), Overall: overall(items), Components: items}
}

func overall(items []ComponentStatus) string {
	if len(items) == 0 {
		return "unknown"
	}
	starting := false
	active := false
	for _, item := range items {
		switch item.State {
		case StateDegraded, StateStale:
			return StateDegraded
		case StateStarting:
			starting = true
			active = true
		case StateHealthy:
			active = true
		}
	}
	switch {
	case starting:
		return StateStarting
	case active:
		return StateHealthy
	default:
		return "idle"
	}
}
