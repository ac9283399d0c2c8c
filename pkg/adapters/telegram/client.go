// Package telegram connects the dialog to the Telegram Bot API: outbound
// replies (ports.Sender), inbound updates via webhook or long polling, and
// webhook registration.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aretw0/pizzabot/internal/logging"
)

// Client wraps the Bot API.
type Client struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	endpoint string
	logger   *slog.Logger
}

// WithEndpoint overrides the Bot API endpoint format
// (default tgbotapi.APIEndpoint, "https://api.telegram.org/bot%s/%s").
func WithEndpoint(endpoint string) ClientOption {
	return func(c *clientConfig) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New authenticates against the Bot API (getMe).
func New(token string, opts ...ClientOption) (*Client, error) {
	cfg := clientConfig{
		endpoint: tgbotapi.APIEndpoint,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, cfg.endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram: failed to create bot: %w", err)
	}
	cfg.logger.Info("Authorized on telegram", "username", api.Self.UserName)

	return &Client{api: api, logger: cfg.logger}, nil
}

// Username returns the bot's username.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// Send delivers text to a chat. The recipient is the decimal chat id.
func (c *Client) Send(ctx context.Context, recipient, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat id %q: %w", recipient, err)
	}
	if _, err := c.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram: send to %d: %w", chatID, err)
	}
	return nil
}

// RegisterWebhook points Telegram at link (setWebhook).
func (c *Client) RegisterWebhook(link string) error {
	wh, err := tgbotapi.NewWebhook(link)
	if err != nil {
		return fmt.Errorf("telegram: invalid webhook url: %w", err)
	}
	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("telegram: set webhook: %w", err)
	}
	c.logger.Info("Webhook registered", "url", link)
	return nil
}

// Poll receives updates with long polling until ctx is done.
// Updates are handled one at a time so replies keep their order.
func (c *Client) Poll(ctx context.Context, h *Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := c.api.GetUpdatesChan(u)
	defer c.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.HandleUpdate(ctx, update)
		}
	}
}
