package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dwizi/recruit-desk/internal/gateway"
)

type chatRequest struct {
	Text         string `json:"text"`
	ActingUserID string `json:"acting_user_id"`
}

type chatResponse struct {
	Handled bool   `json:"handled"`
	Intent  string `json:"intent,omitempty"`
	Reply   string `json:"reply"`
	Error   string `json:"error,omitempty"`
}

func (r *router) handleChat(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if r.deps.Gateway == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "chat gateway is unavailable"})
		return
	}

	var payload chatRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	text := strings.TrimSpace(payload.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	output, err := r.deps.Gateway.HandleMessage(req.Context(), gateway.MessageInput{
		ActingUserID: strings.TrimSpace(payload.ActingUserID),
		Text:         text,
	})
	if err != nil {
		r.deps.Logger.Error("chat message failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toChatResponse(output))
}

func toChatResponse(output gateway.MessageOutput) chatResponse {
	return chatResponse{
		Handled: output.Handled,
		Intent:  string(output.Intent),
		Reply:   strings.TrimSpace(output.Reply),
	}
}
