package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dwizi/recruit-desk/internal/gateway"
)

const socketWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// handleChatSocket carries one chatRequest per inbound frame and answers with
// one chatResponse per frame, in order.
func (r *router) handleChatSocket(w http.ResponseWriter, req *http.Request) {
	if r.deps.Gateway == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "chat gateway is unavailable"})
		return
	}
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.deps.Logger.Warn("chat socket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(64 * 1024)

	ctx := req.Context()
	for {
		var payload chatRequest
		if err := conn.ReadJSON(&payload); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				r.deps.Logger.Warn("chat socket read failed", "error", err)
			}
			return
		}

		response := chatResponse{}
		text := strings.TrimSpace(payload.Text)
		if text == "" {
			response.Error = "text is required"
		} else {
			output, err := r.deps.Gateway.HandleMessage(ctx, gateway.MessageInput{
				ActingUserID: strings.TrimSpace(payload.ActingUserID),
				Text:         text,
			})
			if err != nil {
				response.Error = err.Error()
			} else {
				response = toChatResponse(output)
			}
		}

		_ = conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
		if err := conn.WriteJSON(response); err != nil {
			r.deps.Logger.Warn("chat socket write failed", "error", err)
			return
		}
	}
}
