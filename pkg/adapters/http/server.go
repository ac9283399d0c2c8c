package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/pizzabot/internal/logging"
	"github.com/aretw0/pizzabot/internal/presentation/graph"
	"github.com/aretw0/pizzabot/internal/sanitize"
	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/session"
)

// Dispatcher is the dialog entry point served over HTTP.
type Dispatcher interface {
	Dispatch(ctx context.Context, conversationID, text string) (*session.Result, error)
	Transitions() []domain.TransitionInfo
}

// Registry gives read access to stored conversations.
type Registry interface {
	Load(ctx context.Context, conversationID string) (*domain.Conversation, error)
	List(ctx context.Context) ([]string, error)
}

// Server holds the HTTP dependencies. Optional handlers are mounted only when set.
type Server struct {
	Dispatcher Dispatcher
	Registry   Registry
	Streams    *StreamManager
	Telegram   http.Handler // POST /telegram
	Metrics    http.Handler // GET /metrics
	Version    string
	Logger     *slog.Logger
}

// DispatchRequest is the body of POST /dispatch.
type DispatchRequest struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

// NewHandler builds the router.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}
	s.streams()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	r.Post("/dispatch", s.Dispatch)
	r.Get("/events", s.SubscribeEvents)
	if s.Registry != nil {
		r.Get("/conversations", s.ListConversations)
		r.Get("/conversations/{id}", s.GetConversation)
	}
	if s.Telegram != nil {
		r.Method(http.MethodPost, "/telegram", s.Telegram)
	}
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) streams() *StreamManager {
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.Logger)
	}
	return s.Streams
}

// Hooks returns lifecycle hooks that broadcast transitions to SSE subscribers.
// Call it before serving; the dispatcher is usually built with these hooks.
func (s *Server) Hooks() domain.LifecycleHooks {
	streams := s.streams()
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			if bytes, err := json.Marshal(e); err == nil {
				streams.Broadcast(e.ConversationID, string(bytes))
			}
		},
	}
}

// Dispatch handles the POST /dispatch request.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	var body DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("Dispatch: Invalid request body", "err", err)
		return
	}

	text, err := sanitize.Input(body.Text)
	if err != nil {
		s.writeError(w, "Dispatch", err)
		return
	}

	res, err := s.Dispatcher.Dispatch(r.Context(), body.ConversationID, text)
	if err != nil {
		s.writeError(w, "Dispatch", err)
		return
	}
	s.writeJSON(w, "Dispatch", res)
}

// ListConversations handles the GET /conversations request.
func (s *Server) ListConversations(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Registry.List(r.Context())
	if err != nil {
		s.writeError(w, "ListConversations", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, "ListConversations", ids)
}

// GetConversation handles the GET /conversations/{id} request.
func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.Registry.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "GetConversation", err)
		return
	}
	s.writeJSON(w, "GetConversation", conv)
}

// GetGraph handles the GET /graph request. ?format=mermaid returns a flowchart,
// optionally highlighting ?conversation_id's current state.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	transitions := s.Dispatcher.Transitions()
	if r.URL.Query().Get("format") != "mermaid" {
		s.writeJSON(w, "GetGraph", transitions)
		return
	}

	var overlay *graph.Overlay
	if id := r.URL.Query().Get("conversation_id"); id != "" && s.Registry != nil {
		conv, err := s.Registry.Load(r.Context(), id)
		if err != nil {
			s.writeError(w, "GetGraph", err)
			return
		}
		overlay = &graph.Overlay{Current: conv.State}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(transitions, overlay))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "GetHealth", map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "GetInfo", map[string]string{
		"app":     "pizzabot",
		"version": strings.TrimSpace(s.Version),
	})
}

// SubscribeEvents handles the GET /events?conversation_id= request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		http.Error(w, "conversation_id is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.Logger.Info("SSE: Subscribing to conversation", "conversation_id", conversationID)
	ch, cancel := s.Streams.Subscribe(conversationID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected", "conversation_id", conversationID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: transition\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// statusFor maps domain and input errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyConversationID), sanitize.IsInvalid(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConversationNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "err", err)
	} else {
		s.Logger.Warn(op+": request rejected", "err", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), code)
}

func (s *Server) writeJSON(w http.ResponseWriter, op string, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error(op+" response encode failed", "err", err)
	}
}
