package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/pizzabot"
	"github.com/aretw0/pizzabot/internal/bootstrap"
	"github.com/aretw0/pizzabot/internal/cli"
	"github.com/aretw0/pizzabot/internal/presentation/tui"
	"github.com/aretw0/pizzabot/pkg/observability"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Order a pizza from the terminal",
	Long: `Drives one conversation from standard input, printing the bot's replies.
The configured store is used, so a conversation can be resumed with --id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		id, _ := cmd.Flags().GetString("id")
		// Dialog logs would interleave with the chat on the same terminal.
		if !cmd.Flags().Changed("log-level") {
			cfg.Log.Level = "warn"
		}

		logger := bootstrap.Logger(cfg.Log)
		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		storage, err := bootstrap.NewStorage(ctx, cfg.Store, logger)
		if err != nil {
			return err
		}
		defer storage.Close()

		vocabulary, err := bootstrap.Classifier(cfg.Vocabulary)
		if err != nil {
			return err
		}
		bot := pizzabot.New(bootstrap.BotOptions(storage, vocabulary, logger,
			pizzabot.WithHooks(observability.Hooks(logger, nil)),
		)...)

		opts := cli.ChatOptions{
			ConversationID: id,
			In:             os.Stdin,
			Out:            cmd.OutOrStdout(),
		}
		if cli.IsTerminal(os.Stdout) {
			opts.Banner = true
			opts.Render = tui.NewRenderer(cli.Width(os.Stdout))
		}
		return cli.Chat(ctx, bot, opts)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("id", "local", "Conversation id to use")
}
