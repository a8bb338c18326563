package httpapi

import "net/http"

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	if r.deps.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": "store is unavailable"})
		return
	}
	if err := r.deps.Store.Ping(req.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": err.Error()})
		return
	}
	if r.deps.Health != nil {
		snapshot := r.deps.Health.Snapshot(r.deps.HealthStaleAfter)
		if !snapshot.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not-ready", "health": snapshot})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (r *router) handleComponents(w http.ResponseWriter, req *http.Request) {
	if r.deps.Health == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  "health registry is disabled",
		})
		return
	}
	writeJSON(w, http.StatusOK, r.deps.Health.Snapshot(r.deps.HealthStaleAfter))
}

func (r *router) handleInfo(w http.ResponseWriter, req *http.Request) {
	version := r.deps.Version
	if version == "" {
		version = "dev"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":                   "recruit-desk",
		"version":                version,
		"environment":            r.deps.Config.Environment,
		"display_timezone":       r.deps.Config.DisplayTimezone,
		"reminder_confirmations": r.deps.Config.ReminderConfirmations,
		"llm_enabled":            r.deps.Config.LLMEnabled,
		"mcp_http":               r.deps.MCPHandler != nil,
	})
}
