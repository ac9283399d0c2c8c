// Package bootstrap turns a config.Config into wired components shared by
// the pizzabot binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/pizzabot"
	"github.com/aretw0/pizzabot/internal/config"
	"github.com/aretw0/pizzabot/internal/logging"
	"github.com/aretw0/pizzabot/pkg/adapters/dynamodb"
	"github.com/aretw0/pizzabot/pkg/adapters/memory"
	"github.com/aretw0/pizzabot/pkg/adapters/redis"
	"github.com/aretw0/pizzabot/pkg/classifier"
	"github.com/aretw0/pizzabot/pkg/persistence/middleware"
	"github.com/aretw0/pizzabot/pkg/ports"
)

// Storage is the persistence selected by the store driver.
type Storage struct {
	Store  ports.ConversationStore
	Locker ports.DistributedLocker // Nil unless the driver can lock across replicas
	Close  func() error
}

// Logger builds the application logger from the log section.
func Logger(cfg config.LogConfig) *slog.Logger {
	return logging.New(logging.ParseLevel(cfg.Level), cfg.Format)
}

// NewStorage opens the store named by cfg.Driver. Calls are bounded by
// cfg.Timeout and traced on logger.
func NewStorage(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Storage, error) {
	storage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	storage.Store = middleware.Chain(storage.Store,
		middleware.NewLoggingMiddleware(logger),
		middleware.NewTimeoutMiddleware(cfg.Timeout),
	)
	return storage, nil
}

// Instrument records store latencies on reg.
func (s *Storage) Instrument(reg prometheus.Registerer) {
	s.Store = middleware.NewMetricsMiddleware(reg)(s.Store)
}

func openStorage(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Storage, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return &Storage{Store: memory.NewStore(), Close: func() error { return nil }}, nil

	case config.DriverRedis:
		opts := []redis.Option{redis.WithTTL(cfg.Redis.TTL)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Client().Close()
			return nil, fmt.Errorf("redis: ping %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("Using Redis store", "addr", cfg.Redis.Addr, "prefix", store.Prefix())
		return &Storage{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), store.Prefix()),
			Close:  store.Client().Close,
		}, nil

	case config.DriverDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		store, err := dynamodb.New(awsdynamodb.NewFromConfig(awsCfg), cfg.DynamoDB.Table, dynamodb.WithTTL(cfg.DynamoDB.TTL))
		if err != nil {
			return nil, err
		}
		logger.Info("Using DynamoDB store", "table", cfg.DynamoDB.Table)
		return &Storage{Store: store, Close: func() error { return nil }}, nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
}

// Classifier loads the configured vocabulary, or the built-in one when path is empty.
func Classifier(path string) (*classifier.Classifier, error) {
	if path == "" {
		return classifier.Default(), nil
	}
	vocab, err := classifier.LoadVocabularyFile(path)
	if err != nil {
		return nil, err
	}
	return classifier.New(vocab), nil
}

// BotOptions translates storage and vocabulary into pizzabot options.
// Extra options are appended last.
func BotOptions(storage *Storage, c *classifier.Classifier, logger *slog.Logger, extra ...pizzabot.Option) []pizzabot.Option {
	opts := []pizzabot.Option{
		pizzabot.WithLogger(logger),
		pizzabot.WithStore(storage.Store),
		pizzabot.WithClassifier(c),
	}
	if storage.Locker != nil {
		opts = append(opts, pizzabot.WithLocker(storage.Locker, 0))
	}
	return append(opts, extra...)
}
