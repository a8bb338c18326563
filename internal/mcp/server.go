package mcp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dwizi/recruit-desk/internal/gateway"
)

const ToolName = "recruit_desk_message"

type MessageGateway interface {
	HandleMessage(ctx context.Context, input gateway.MessageInput) (gateway.MessageOutput, error)
}

// Server exposes the message router as a single MCP tool.
type Server struct {
	server  *sdkmcp.Server
	gateway MessageGateway
}

type messageInput struct {
	Text         string `json:"text" jsonschema:"the free-text request, for example: set reminder for candidate Jane in 2 hours"`
	ActingUserID string `json:"acting_user_id,omitempty" jsonschema:"id of the team member sending the request"`
}

type messageOutput struct {
	Handled bool   `json:"handled"`
	Intent  string `json:"intent,omitempty"`
	Reply   string `json:"reply"`
}

func NewServer(messageGateway MessageGateway, version string) *Server {
	if strings.TrimSpace(version) == "" {
		version = "dev"
	}
	s := &Server{gateway: messageGateway}
	s.server = sdkmcp.NewServer(&sdkmcp.Implementation{Name: "recruit-desk", Version: version}, nil)
	sdkmcp.AddTool(s.server, &sdkmcp.Tool{
		Name:        ToolName,
		Description: "Send a recruiting desk request (reminders, meeting notes, candidate status, finances, tasks) and receive the reply text.",
	}, s.handleMessage)
	return s
}

// Run serves over stdio until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &sdkmcp.StdioTransport{})
}

// Handler serves the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server { return s.server }, nil)
}

func (s *Server) MCPServer() *sdkmcp.Server {
	return s.server
}

func (s *Server) handleMessage(ctx context.Context, _ *sdkmcp.CallToolRequest, input messageInput) (*sdkmcp.CallToolResult, messageOutput, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return errorResult("text is required"), messageOutput{}, nil
	}
	output, err := s.gateway.HandleMessage(ctx, gateway.MessageInput{
		ActingUserID: input.ActingUserID,
		Text:         text,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("handle message: %s", err)), messageOutput{}, nil
	}
	return nil, messageOutput{
		Handled: output.Handled,
		Intent:  string(output.Intent),
		Reply:   output.Reply,
	}, nil
}

func errorResult(message string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: message}},
		IsError: true,
	}
}
