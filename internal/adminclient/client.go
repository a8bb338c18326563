package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dwizi/recruit-desk/internal/config"
)

const defaultTimeout = 120 * time.Second

// Client talks to a running recruit-desk server.
type Client struct {
	baseURL string
	http    *http.Client
}

type ChatRequest struct {
	Text         string `json:"text"`
	ActingUserID string `json:"acting_user_id,omitempty"`
}

type ChatResponse struct {
	Handled bool   `json:"handled"`
	Intent  string `json:"intent"`
	Reply   string `json:"reply"`
}

type Info struct {
	Name                  string `json:"name"`
	Version               string `json:"version"`
	Environment           string `json:"environment"`
	DisplayTimezone       string `json:"display_timezone"`
	ReminderConfirmations string `json:"reminder_confirmations"`
	LLMEnabled            bool   `json:"llm_enabled"`
	MCPHTTP               bool   `json:"mcp_http"`
}

type ComponentStatus struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type Health struct {
	Overall    string            `json:"overall"`
	Components []ComponentStatus `json:"components"`
}

func New(cfg config.Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.AdminAPIURL), "/")
	if baseURL == "" {
		return nil, errors.New("admin api url is required")
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if c == nil {
		return nil
	}
	if timeout < time.Second {
		return c
	}
	clone := *c
	if c.http == nil {
		clone.http = &http.Client{Timeout: timeout}
		return &clone
	}
	httpClone := *c.http
	httpClone.Timeout = timeout
	clone.http = &httpClone
	return &clone
}

func (c *Client) Chat(ctx context.Context, input ChatRequest) (ChatResponse, error) {
	input.Text = strings.TrimSpace(input.Text)
	input.ActingUserID = strings.TrimSpace(input.ActingUserID)
	if input.Text == "" {
		return ChatResponse{}, errors.New("text is required")
	}
	requestBody, err := json.Marshal(input)
	if err != nil {
		return ChatResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/chat", bytes.NewReader(requestBody))
	if err != nil {
		return ChatResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	var response ChatResponse
	if err := c.doJSON(req, &response); err != nil {
		return ChatResponse{}, err
	}
	return response, nil
}

func (c *Client) Info(ctx context.Context) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/info", nil)
	if err != nil {
		return Info{}, err
	}
	var info Info
	if err := c.doJSON(req, &info); err != nil {
		return Info{}, err
	}
	return info, nil
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return Health{}, err
	}
	var health Health
	if err := c.doJSON(req, &health); err != nil {
		return Health{}, err
	}
	return health, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var apiError struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&apiError)
		if strings.TrimSpace(apiError.Error) == "" {
			apiError.Error = res.Status
		}
		return fmt.Errorf("api error: %s", apiError.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
