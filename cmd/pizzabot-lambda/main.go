// Command pizzabot-lambda serves the bot behind API Gateway. Conversations
// are kept in DynamoDB and the Telegram token may be an SSM parameter
// reference ("ssm:/pizzabot/telegram-token").
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/aretw0/pizzabot"
	"github.com/aretw0/pizzabot/internal/bootstrap"
	"github.com/aretw0/pizzabot/internal/config"
	lambdaAdapter "github.com/aretw0/pizzabot/pkg/adapters/lambda"
	"github.com/aretw0/pizzabot/pkg/adapters/paramstore"
	"github.com/aretw0/pizzabot/pkg/adapters/telegram"
	"github.com/aretw0/pizzabot/pkg/observability"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (environment only) ----
	cfg, err := config.Load(os.Getenv("PIZZABOT_CONFIG"))
	if err != nil {
		fatal("failed to load config", err)
	}
	if cfg.Store.Driver == config.DriverMemory {
		slog.Warn("memory store selected; conversations are lost between cold starts")
	}
	logger := bootstrap.Logger(cfg.Log)

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		fatal("failed to load AWS config", err)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		fatal("failed to create SSM client", err)
	}
	token, err := paramstore.Resolve(ctx, ssmClient, cfg.Messengers.Telegram.Token)
	if err != nil {
		fatal("failed to resolve telegram token", err)
	}

	storage, err := bootstrap.NewStorage(ctx, cfg.Store, logger)
	if err != nil {
		fatal("failed to create store", err)
	}
	vocabulary, err := bootstrap.Classifier(cfg.Vocabulary)
	if err != nil {
		fatal("failed to load vocabulary", err)
	}

	extra := []pizzabot.Option{pizzabot.WithHooks(observability.Hooks(logger, nil))}
	var tg *telegram.Client
	if token != "" {
		tg, err = telegram.New(token, telegram.WithEndpoint(cfg.Messengers.Telegram.API), telegram.WithLogger(logger))
		if err != nil {
			fatal("failed to create telegram client", err)
		}
		extra = append(extra, pizzabot.WithSender(tg))
	}
	bot := pizzabot.New(bootstrap.BotOptions(storage, vocabulary, logger, extra...)...)

	// ---- Handler ----
	var updates lambdaAdapter.UpdateHandler
	if tg != nil {
		updates = telegram.NewHandler(bot, tg, telegram.Texts{
			Greeting: bot.Greeting(),
			TextOnly: bot.TextOnly(),
		}, logger)
	}

	h, err := lambdaAdapter.NewHandler(bot, updates, logger)
	if err != nil {
		fatal("failed to create handler", err)
	}

	lambda.Start(h.Handle)
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
