package cli_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/pizzabot"
	"github.com/aretw0/pizzabot/internal/cli"
	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runChat(t *testing.T, bot *pizzabot.Bot, input string) string {
	t.Helper()
	var out bytes.Buffer
	err := cli.Chat(context.Background(), bot, cli.ChatOptions{
		ConversationID: "local",
		In:             strings.NewReader(input),
		Out:            &out,
	})
	require.NoError(t, err)
	return out.String()
}

func TestChat_Order(t *testing.T) {
	bot := pizzabot.New()

	out := runChat(t, bot, "привет\nбольшую\nкартой\nда\n")

	assert.Contains(t, out, "Привет! Напишите любой текст")
	assert.Contains(t, out, "Какую вы хотите пиццу? Большую или маленькую?")
	assert.Contains(t, out, "Вы хотите большую пиццу, оплата - картой?")
	assert.Contains(t, out, "Спасибо за заказ!")

	conv, err := bot.Load(context.Background(), "local")
	require.NoError(t, err)
	assert.Equal(t, domain.StateStart, conv.State)
	assert.Equal(t, 1, conv.Cycles)
}

func TestChat_QuitStopsReading(t *testing.T) {
	bot := pizzabot.New()

	out := runChat(t, bot, "привет\n/quit\nбольшую\n")

	assert.NotContains(t, out, "Как вы будете платить?")
	conv, err := bot.Load(context.Background(), "local")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAskSize, conv.State)
}

func TestChat_OrderCommand(t *testing.T) {
	bot := pizzabot.New()

	out := runChat(t, bot, "/order\nпривет\nмаленькую\n/order\n")

	assert.Contains(t, out, "no order yet")
	assert.Contains(t, out, "`ask_payment`")
	assert.Contains(t, out, "small")
}

func TestChat_SkipsBlankLines(t *testing.T) {
	bot := pizzabot.New()

	runChat(t, bot, "\n   \n")

	_, err := bot.Load(context.Background(), "local")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestChat_RejectsOversizedInput(t *testing.T) {
	t.Setenv("PIZZABOT_MAX_INPUT_SIZE", "8")
	bot := pizzabot.New()

	out := runChat(t, bot, "очень длинное сообщение\n")

	assert.Contains(t, out, ">>> ")
	_, err := bot.Load(context.Background(), "local")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestChat_RequiresConversationID(t *testing.T) {
	err := cli.Chat(context.Background(), pizzabot.New(), cli.ChatOptions{
		In:  strings.NewReader(""),
		Out: io.Discard,
	})
	assert.ErrorIs(t, err, domain.ErrEmptyConversationID)
}

func TestChat_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := cli.Chat(ctx, pizzabot.New(), cli.ChatOptions{
		ConversationID: "local",
		In:             strings.NewReader("привет\n"),
		Out:            &out,
	})
	assert.NoError(t, err)
	assert.NotContains(t, out.String(), "Какую вы хотите пиццу?")
}

func TestInterruptibleReader(t *testing.T) {
	cancel := make(chan struct{})
	r := cli.NewInterruptibleReader(strings.NewReader("abc"), cancel)

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))

	close(cancel)
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, cli.ErrInterrupted)
	assert.True(t, cli.IsInterrupted(err))
	assert.True(t, cli.IsInterrupted(io.EOF))
	assert.False(t, cli.IsInterrupted(assert.AnError))
}
