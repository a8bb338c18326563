package main

import (
	"log/slog"
	"os"

	"github.com/dwizi/recruit-desk/internal/cli"
)

func main() {
	// stdout carries the MCP stdio stream, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if err := cli.NewRoot(logger).Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
