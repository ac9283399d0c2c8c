package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/pizzabot"
	"github.com/aretw0/pizzabot/internal/bootstrap"
	"github.com/aretw0/pizzabot/internal/cli"
	"github.com/aretw0/pizzabot/internal/config"
	httpAdapter "github.com/aretw0/pizzabot/pkg/adapters/http"
	"github.com/aretw0/pizzabot/pkg/adapters/telegram"
	"github.com/aretw0/pizzabot/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bot",
	Long: `Starts the HTTP server (dispatch API, conversation inspection, SSE events,
metrics) and, when a Telegram token is configured, the Telegram transport:
a webhook when messengers.telegram.webhook is set, long polling otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Bot.Port = port
		}
		return serve(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides bot.port and PORT)")
}

func serve(cfg config.Config) error {
	logger := bootstrap.Logger(cfg.Log)
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Cancel()

	storage, err := bootstrap.NewStorage(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.Warn("Failed to close store", "err", err)
		}
	}()

	vocabulary, err := bootstrap.Classifier(cfg.Vocabulary)
	if err != nil {
		return err
	}

	srv := &httpAdapter.Server{Version: pizzabot.Version, Logger: logger}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = observability.NewMetrics(reg)
		storage.Instrument(reg)
		srv.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	extra := []pizzabot.Option{
		pizzabot.WithHooks(observability.Hooks(logger, metrics)),
		pizzabot.WithHooks(srv.Hooks()),
	}

	var tg *telegram.Client
	if cfg.Messengers.Telegram.Enabled() {
		tg, err = telegram.New(cfg.Messengers.Telegram.Token,
			telegram.WithEndpoint(cfg.Messengers.Telegram.API),
			telegram.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		logger.Info("Authorized on Telegram", "username", tg.Username())
		extra = append(extra, pizzabot.WithSender(tg))
	}

	bot := pizzabot.New(bootstrap.BotOptions(storage, vocabulary, logger, extra...)...)
	srv.Dispatcher = bot
	srv.Registry = bot

	if tg != nil {
		handler := telegram.NewHandler(bot, tg, telegram.Texts{
			Greeting: bot.Greeting(),
			TextOnly: bot.TextOnly(),
		}, logger)

		if link := cfg.Messengers.Telegram.Webhook; link != "" {
			// Registration failures are not fatal; the route is still served.
			if err := tg.RegisterWebhook(link); err != nil {
				logger.Warn("Webhook registration failed", "err", err)
			}
			srv.Telegram = handler
		} else {
			go func() {
				logger.Info("Polling Telegram for updates")
				if err := tg.Poll(ctx, handler); err != nil {
					logger.Error("Telegram polling stopped", "err", err)
				}
			}()
		}
	}

	return listen(ctx, logger, &http.Server{
		Addr:              cfg.Bot.Addr(),
		Handler:           httpAdapter.NewHandler(srv),
		ReadHeaderTimeout: 10 * time.Second,
	})
}

// listen serves until the server fails or ctx is cancelled, then drains
// outstanding requests.
func listen(ctx *cli.SignalContext, logger *slog.Logger, srv *http.Server) error {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting pizzabot server", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown", "signal", ctx.Signal())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("killing server: %w", err)
			}
		}
		logger.Info("pizzabot server stopped gracefully")
		return nil
	}
}
