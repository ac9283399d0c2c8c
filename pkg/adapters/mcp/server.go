package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/pizzabot/internal/logging"
	"github.com/aretw0/pizzabot/internal/presentation/graph"
	"github.com/aretw0/pizzabot/internal/sanitize"
	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/session"
)

// GraphURI is the resource exposing the transition table.
const GraphURI = "pizzabot://graph"

// Dispatcher is the dialog entry point exposed as tools.
type Dispatcher interface {
	Dispatch(ctx context.Context, conversationID, text string) (*session.Result, error)
	Transitions() []domain.TransitionInfo
}

// Registry gives read access to stored conversations.
type Registry interface {
	Load(ctx context.Context, conversationID string) (*domain.Conversation, error)
	List(ctx context.Context) ([]string, error)
}

// SendMessageArgs are the arguments of the send_message tool.
type SendMessageArgs struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

// ConversationArgs are the arguments of the get_conversation tool.
type ConversationArgs struct {
	ConversationID string `json:"conversation_id"`
}

// Server exposes the ordering dialog as an MCP server so an agent can
// play the customer or inspect conversations.
type Server struct {
	dispatcher Dispatcher
	registry   Registry
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(d Dispatcher, r Registry, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		dispatcher: d,
		registry:   r,
		mcpServer:  server.NewMCPServer("pizzabot-mcp", strings.TrimSpace(version)),
		logger:     logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: send_message
	s.mcpServer.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send a customer message to a conversation and get the bot replies."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation key, e.g. a chat id")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Message text")),
		mcp.WithOutputSchema[session.Result](),
	), mcp.NewStructuredToolHandler(s.handleSendMessage))

	// TOOL: get_conversation
	s.mcpServer.AddTool(mcp.NewTool("get_conversation",
		mcp.WithDescription("Get the current state and order of a conversation."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation key")),
		mcp.WithOutputSchema[domain.Conversation](),
	), mcp.NewStructuredToolHandler(s.handleGetConversation))

	// TOOL: list_conversations
	s.mcpServer.AddTool(mcp.NewTool("list_conversations",
		mcp.WithDescription("List the keys of stored conversations."),
	), s.handleListConversations)

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the dialog transition table."),
		mcp.WithString("format", mcp.Description("json (default) or mermaid"), mcp.Enum("json", "mermaid")),
	), s.handleGetGraph)
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest, args SendMessageArgs) (session.Result, error) {
	text, err := sanitize.Input(args.Text)
	if err != nil {
		s.logger.Warn("MCP send_message: Input rejected", "err", err, "size", len(args.Text))
		return session.Result{}, fmt.Errorf("input rejected: %w", err)
	}

	res, err := s.dispatcher.Dispatch(ctx, args.ConversationID, text)
	if err != nil {
		return session.Result{}, fmt.Errorf("dispatch failed: %w", err)
	}
	return *res, nil
}

func (s *Server) handleGetConversation(ctx context.Context, request mcp.CallToolRequest, args ConversationArgs) (domain.Conversation, error) {
	conv, err := s.registry.Load(ctx, args.ConversationID)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("load failed: %w", err)
	}
	return *conv, nil
}

func (s *Server) handleListConversations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.registry.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if ids == nil {
		ids = []string{}
	}
	jsonBytes, _ := json.Marshal(ids)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	transitions := s.dispatcher.Transitions()
	if request.GetString("format", "json") == "mermaid" {
		return mcp.NewToolResultText(graph.GenerateMermaid(transitions, nil)), nil
	}
	jsonBytes, err := json.Marshal(transitions)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: pizzabot://graph
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Dialog transition table",
		mcp.WithMIMEType("application/json"),
	), s.readGraph)
}

func (s *Server) readGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.dispatcher.Transitions())
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
