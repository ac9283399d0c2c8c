// Package lambda serves the dialog from AWS Lambda behind API Gateway.
package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/aretw0/pizzabot/internal/logging"
	"github.com/aretw0/pizzabot/internal/sanitize"
	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/session"
)

const correlationHeader = "X-Correlation-Id"

// Dispatcher is the dialog entry point.
type Dispatcher interface {
	Dispatch(ctx context.Context, conversationID, text string) (*session.Result, error)
}

// UpdateHandler processes Telegram updates (see the telegram adapter).
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

type dispatchRequest struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler routes API Gateway proxy events.
//
//	POST /telegram  Telegram webhook update
//	POST /dispatch  {"conversation_id", "text"}
type Handler struct {
	dispatcher Dispatcher
	telegram   UpdateHandler
	logger     *slog.Logger
}

// NewHandler validates its dependencies. telegram may be nil.
func NewHandler(d Dispatcher, telegram UpdateHandler, logger *slog.Logger) (*Handler, error) {
	if d == nil {
		return nil, errors.New("lambda: dispatcher must not be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{dispatcher: d, telegram: telegram, logger: logger}, nil
}

// Handle is the Lambda entry point.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	logger := h.logger.With("correlation_id", correlationID, "path", req.Path)

	if req.HTTPMethod != http.MethodPost {
		return respond(correlationID, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"}), nil
	}

	switch strings.TrimSuffix(req.Path, "/") {
	case "/telegram":
		if h.telegram == nil {
			return respond(correlationID, http.StatusNotFound, errorResponse{Error: "telegram is not configured"}), nil
		}
		var update tgbotapi.Update
		if err := json.Unmarshal([]byte(req.Body), &update); err != nil {
			logger.Warn("Invalid telegram update", "err", err)
			return respond(correlationID, http.StatusBadRequest, errorResponse{Error: "invalid update"}), nil
		}
		h.telegram.HandleUpdate(ctx, update)
		return respond(correlationID, http.StatusOK, map[string]bool{"ok": true}), nil

	case "/dispatch":
		var body dispatchRequest
		if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
			return respond(correlationID, http.StatusBadRequest, errorResponse{Error: "invalid request body"}), nil
		}
		text, err := sanitize.Input(body.Text)
		if err != nil {
			return respond(correlationID, http.StatusBadRequest, errorResponse{Error: err.Error()}), nil
		}
		res, err := h.dispatcher.Dispatch(ctx, body.ConversationID, text)
		if err != nil {
			if errors.Is(err, domain.ErrEmptyConversationID) {
				return respond(correlationID, http.StatusBadRequest, errorResponse{Error: err.Error()}), nil
			}
			logger.Error("Dispatch failed", "err", err)
			return respond(correlationID, http.StatusInternalServerError, errorResponse{Error: "internal error"}), nil
		}
		return respond(correlationID, http.StatusOK, res), nil
	}

	return respond(correlationID, http.StatusNotFound, errorResponse{Error: "not found"}), nil
}

func respond(correlationID string, code int, body any) events.APIGatewayProxyResponse {
	data, err := json.Marshal(body)
	if err != nil {
		code, data = http.StatusInternalServerError, []byte(`{"error":"encode failed"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: code,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(data),
	}
}

// headerValue looks a header up case-insensitively; API Gateway keeps client casing.
func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
