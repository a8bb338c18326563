package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string
	HTTPAddr    string
	DataDir     string
	DBPath      string

	DisplayTimezone string
	PAFAmount       float64

	RosterFile string
	RosterCSV  string

	ReminderConfirmations  string // static | session
	ConfirmationTTLSeconds int
	ReminderSweepCron      string
	ReminderSweepEnabled   bool
	ReminderSweepBatchSize int

	HealthIntervalSec int
	HealthStaleSec    int

	LLMEnabled      bool
	LLMProvider     string // openai | anthropic
	LLMBaseURL      string
	LLMAPIKey       string
	LLMModel        string
	LLMTimeoutSec   int
	LLMSystemPrompt string

	AdminAPIURL    string
	MCPHTTPEnabled bool
}

func FromEnv() Config {
	dataDir := stringOrDefault("RECRUIT_DESK_DATA_DIR", "/data")
	dbPath := stringOrDefault("RECRUIT_DESK_DB_PATH", filepath.Join(dataDir, "recruit-desk", "desk.sqlite"))
	provider := strings.ToLower(stringOrDefault("RECRUIT_DESK_LLM_PROVIDER", "openai"))

	return Config{
		Environment: stringOrDefault("RECRUIT_DESK_ENV", "development"),
		HTTPAddr:    stringOrDefault("RECRUIT_DESK_HTTP_ADDR", ":8080"),
		DataDir:     dataDir,
		DBPath:      dbPath,

		DisplayTimezone: stringOrDefault("RECRUIT_DESK_DISPLAY_TIMEZONE", "Asia/Kolkata"),
		PAFAmount:       floatOrDefault("RECRUIT_DESK_PAF_AMOUNT", 5000),

		RosterFile: strings.TrimSpace(os.Getenv("RECRUIT_DESK_ROSTER_FILE")),
		RosterCSV:  strings.TrimSpace(os.Getenv("RECRUIT_DESK_ROSTER")),

		ReminderConfirmations:  confirmationModeOrDefault("RECRUIT_DESK_REMINDER_CONFIRMATIONS", "static"),
		ConfirmationTTLSeconds: intOrDefault("RECRUIT_DESK_CONFIRMATION_TTL_SECONDS", 900),
		ReminderSweepCron:      stringOrDefault("RECRUIT_DESK_REMINDER_SWEEP_CRON", "*/5 * * * *"),
		ReminderSweepEnabled:   boolOrDefault("RECRUIT_DESK_REMINDER_SWEEP_ENABLED", true),
		ReminderSweepBatchSize: intOrDefault("RECRUIT_DESK_REMINDER_SWEEP_BATCH_SIZE", 50),

		HealthIntervalSec: intOrDefault("RECRUIT_DESK_HEALTH_INTERVAL_SECONDS", 30),
		HealthStaleSec:    intOrDefault("RECRUIT_DESK_HEALTH_STALE_SECONDS", 900),

		LLMEnabled:      boolOrDefault("RECRUIT_DESK_LLM_ENABLED", false),
		LLMProvider:     provider,
		LLMBaseURL:      stringOrDefault("RECRUIT_DESK_LLM_BASE_URL", defaultLLMBaseURL(provider)),
		LLMAPIKey:       strings.TrimSpace(os.Getenv("RECRUIT_DESK_LLM_API_KEY")),
		LLMModel:        stringOrDefault("RECRUIT_DESK_LLM_MODEL", defaultLLMModel(provider)),
		LLMTimeoutSec:   intOrDefault("RECRUIT_DESK_LLM_TIMEOUT_SECONDS", 60),
		LLMSystemPrompt: strings.TrimSpace(os.Getenv("RECRUIT_DESK_LLM_SYSTEM_PROMPT")),

		AdminAPIURL:    stringOrDefault("RECRUIT_DESK_ADMIN_API_URL", "http://localhost:8080"),
		MCPHTTPEnabled: boolOrDefault("RECRUIT_DESK_MCP_HTTP_ENABLED", true),
	}
}

// Location loads DisplayTimezone, falling back to UTC when the zone database
// does not know the name.
func (c Config) Location() (*time.Location, bool) {
	location, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC, false
	}
	return location, true
}

func (c Config) ConfirmationTTL() time.Duration {
	return time.Duration(c.ConfirmationTTLSeconds) * time.Second
}

func defaultLLMBaseURL(provider string) string {
	if provider == "anthropic" {
		return "https://api.anthropic.com/v1"
	}
	return "https://api.openai.com/v1"
}

func defaultLLMModel(provider string) string {
	if provider == "anthropic" {
		return "claude-sonnet-4-5"
	}
	return "gpt-4o"
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func boolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func confirmationModeOrDefault(name, fallback string) string {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch value {
	case "static", "session":
		return value
	default:
		return fallback
	}
}

func floatOrDefault(name string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
