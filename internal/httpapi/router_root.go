package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dwizi/recruit-desk/internal/config"
	"github.com/dwizi/recruit-desk/internal/gateway"
	"github.com/dwizi/recruit-desk/internal/health"
)

type MessageGateway interface {
	HandleMessage(ctx context.Context, input gateway.MessageInput) (gateway.MessageOutput, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Config           config.Config
	Store            Pinger
	Gateway          MessageGateway
	MCPHandler       http.Handler
	Logger           *slog.Logger
	Health           *health.Registry
	HealthStaleAfter time.Duration
	Version          string
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.handleHealth)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.HandleFunc("/api/v1/health", rt.handleComponents)
	mux.HandleFunc("/api/v1/info", rt.handleInfo)
	mux.HandleFunc("/api/v1/chat", rt.handleChat)
	mux.HandleFunc("/api/v1/chat/ws", rt.handleChatSocket)
	if deps.MCPHandler != nil {
		mux.Handle("/mcp", deps.MCPHandler)
	}
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
