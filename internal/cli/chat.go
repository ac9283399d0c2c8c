package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/pizzabot/internal/presentation/tui"
	"github.com/aretw0/pizzabot/internal/sanitize"
	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/session"
)

// Chat commands handled locally instead of being sent to the dialog.
const (
	CommandQuit  = "/quit"
	CommandOrder = "/order"
)

// Bot is the part of pizzabot.Bot the chat loop needs.
type Bot interface {
	Dispatch(ctx context.Context, conversationID, text string) (*session.Result, error)
	Load(ctx context.Context, conversationID string) (*domain.Conversation, error)
	Greeting() string
}

// ChatOptions configures a terminal chat session.
type ChatOptions struct {
	ConversationID string
	In             io.Reader
	Out            io.Writer
	// Render turns markdown into terminal output. Nil prints it raw.
	Render func(string) (string, error)
	Banner bool
}

// Chat drives one conversation from a terminal until the input ends,
// the user types /quit or ctx is cancelled.
func Chat(ctx context.Context, bot Bot, opts ChatOptions) error {
	if opts.ConversationID == "" {
		return domain.ErrEmptyConversationID
	}
	out := opts.Out

	if opts.Banner {
		tui.PrintBanner(out)
	}
	fmt.Fprintln(out, tui.Bot(out, bot.Greeting()))
	fmt.Fprintln(out, tui.Muted(out, fmt.Sprintf("%s shows the current order, %s leaves.", CommandOrder, CommandQuit)))

	scanner := bufio.NewScanner(NewInterruptibleReader(opts.In, ctx.Done()))
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case CommandQuit:
			return nil
		case CommandOrder:
			if err := printOrder(ctx, bot, opts); err != nil {
				return err
			}
			continue
		}

		text, err := sanitize.Input(line)
		if err != nil {
			fmt.Fprintln(out, tui.Muted(out, ">>> "+err.Error()))
			continue
		}

		res, err := bot.Dispatch(ctx, opts.ConversationID, text)
		if err != nil {
			return fmt.Errorf("dispatch: %w", err)
		}
		for _, r := range res.Replies {
			fmt.Fprintln(out, tui.Bot(out, r.Text))
		}
	}

	fmt.Fprintln(out)
	if err := scanner.Err(); err != nil && !IsInterrupted(err) {
		return err
	}
	return nil
}

func printOrder(ctx context.Context, bot Bot, opts ChatOptions) error {
	conv, err := bot.Load(ctx, opts.ConversationID)
	if errors.Is(err, domain.ErrConversationNotFound) {
		fmt.Fprintln(opts.Out, tui.Muted(opts.Out, ">>> no order yet"))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}

	card := tui.OrderCard(string(conv.State), string(conv.Order.Size), string(conv.Order.Payment), conv.Cycles)
	if opts.Render != nil {
		rendered, err := opts.Render(card)
		if err == nil {
			card = rendered
		}
	}
	fmt.Fprintln(opts.Out, card)
	return nil
}
