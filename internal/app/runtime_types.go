package app

import (
	"log/slog"
	"net/http"

	"github.com/dwizi/recruit-desk/internal/config"
	"github.com/dwizi/recruit-desk/internal/gateway"
	"github.com/dwizi/recruit-desk/internal/health"
	"github.com/dwizi/recruit-desk/internal/mcp"
	"github.com/dwizi/recruit-desk/internal/roster"
	"github.com/dwizi/recruit-desk/internal/scheduler"
	"github.com/dwizi/recruit-desk/internal/store"
	"github.com/dwizi/recruit-desk/internal/watcher"
)

type Runtime struct {
	cfg           config.Config
	logger        *slog.Logger
	store         *store.Store
	roster        *roster.Roster
	gateway       *gateway.Service
	mcp           *mcp.Server
	httpServer    *http.Server
	watcher       *watcher.Service
	scheduler     *scheduler.Service
	health        *health.Registry
	healthMonitor *health.Monitor
}

type healthAware interface {
	SetHealthReporter(reporter health.Reporter)
}

func (r *Runtime) Gateway() *gateway.Service {
	return r.gateway
}

func (r *Runtime) Store() *store.Store {
	return r.store
}

func (r *Runtime) MCP() *mcp.Server {
	return r.mcp
}
