package telegram

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aretw0/pizzabot/internal/logging"
	"github.com/aretw0/pizzabot/internal/sanitize"
	"github.com/aretw0/pizzabot/pkg/ports"
	"github.com/aretw0/pizzabot/pkg/session"
)

// Dispatcher is the inbound side of the dialog.
type Dispatcher interface {
	Dispatch(ctx context.Context, conversationID, text string) (*session.Result, error)
}

// Texts are the replies the transport sends without involving the dialog.
type Texts struct {
	Greeting string // Answer to /start
	TextOnly string // Answer to stickers, photos and other non-text messages
}

// Handler turns Telegram updates into dispatcher calls.
// It implements http.Handler for webhook delivery.
type Handler struct {
	dispatcher Dispatcher
	sender     ports.Sender
	texts      Texts
	logger     *slog.Logger
}

// NewHandler creates an update handler. The sender is used only for the
// transport-level replies in texts; dialog replies go through the dispatcher.
func NewHandler(d Dispatcher, sender ports.Sender, texts Texts, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		dispatcher: d,
		sender:     sender,
		texts:      texts,
		logger:     logger,
	}
}

// ServeHTTP decodes one webhook update. It always answers 200 once the body
// is valid JSON, otherwise Telegram keeps redelivering the update.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("Invalid telegram update", "err", err)
		http.Error(w, "invalid update", http.StatusBadRequest)
		return
	}
	h.HandleUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
}

// HandleUpdate processes one update.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Chat.ID == 0 {
		h.logger.Warn("Skipping update without chat id", "update_id", update.UpdateID)
		return
	}
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	switch {
	case msg.Text == "":
		h.reply(ctx, chatID, h.texts.TextOnly)
	case isStart(msg):
		h.reply(ctx, chatID, h.texts.Greeting)
	default:
		text, err := sanitize.Input(msg.Text)
		if err != nil {
			h.logger.Warn("Rejected telegram message", "conversation_id", chatID, "err", err)
			return
		}
		if _, err := h.dispatcher.Dispatch(ctx, chatID, text); err != nil {
			h.logger.Error("Failed to dispatch telegram message", "conversation_id", chatID, "err", err)
		}
	}
}

func isStart(msg *tgbotapi.Message) bool {
	if msg.IsCommand() {
		return msg.Command() == "start"
	}
	return strings.TrimSpace(msg.Text) == "/start"
}

func (h *Handler) reply(ctx context.Context, chatID, text string) {
	if h.sender == nil || text == "" {
		return
	}
	if err := h.sender.Send(ctx, chatID, text); err != nil {
		h.logger.Warn("Failed to send reply", "recipient", chatID, "err", err)
	}
}
