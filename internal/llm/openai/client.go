package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dwizi/recruit-desk/internal/llm"
)

const maxResponseBytes = 4 << 20

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	SystemPrompt string
}

// Client answers desk questions through any OpenAI-compatible
// chat completions endpoint, including local ones.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func New(cfg Config, logger *slog.Logger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4o"
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = llm.DefaultSystemPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (c *Client) Answer(ctx context.Context, input llm.QuestionInput) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" && !isLocalEndpoint(c.cfg.BaseURL) {
		return "", fmt.Errorf("%w: missing API key for %s", llm.ErrUnavailable, c.cfg.BaseURL)
	}
	if strings.TrimSpace(input.Text) == "" {
		return "", nil
	}

	question, err := llm.BuildUserPrompt(input)
	if err != nil {
		return "", err
	}
	started := time.Now()
	response, err := c.complete(ctx, chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: strings.TrimSpace(c.cfg.SystemPrompt)},
			{Role: "user", Content: question},
		},
	})
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", errors.New("openai response returned no choices")
	}
	c.logger.Debug("question answered", "model", c.cfg.Model, "duration", time.Since(started))
	return stripThinking(response.Choices[0].Message.Content), nil
}

func (c *Client) complete(ctx context.Context, payload chatCompletionRequest) (chatCompletionResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return chatCompletionResponse{}, fmt.Errorf("marshal openai request: %w", err)
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return chatCompletionResponse{}, fmt.Errorf("build openai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey := strings.TrimSpace(c.cfg.APIKey); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return chatCompletionResponse{}, fmt.Errorf("call openai: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return chatCompletionResponse{}, fmt.Errorf("read openai response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.logger.Error("openai chat completion failed", "status", res.StatusCode, "body", strings.TrimSpace(string(raw)))
		return chatCompletionResponse{}, fmt.Errorf("openai completion failed with status %d", res.StatusCode)
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return chatCompletionResponse{}, fmt.Errorf("decode openai response: %w", err)
	}
	return response, nil
}

var (
	thinkBlockPattern = regexp.MustCompile(`(?is)<think\b[^>]*>.*?</think>`)
	thinkFencePattern = regexp.MustCompile("(?is)```think\\s*.*?```")
)

// stripThinking drops reasoning blocks some local models prepend to replies.
func stripThinking(reply string) string {
	reply = thinkBlockPattern.ReplaceAllString(reply, "")
	reply = thinkFencePattern.ReplaceAllString(reply, "")
	reply = strings.NewReplacer("<think>", "", "</think>", "").Replace(reply)
	return strings.TrimSpace(reply)
}

// isLocalEndpoint reports whether baseURL points at a loopback or ollama
// host, which run without keys.
func isLocalEndpoint(baseURL string) bool {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "localhost" || strings.Contains(host, "ollama") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
