// Package config loads the bot configuration from a YAML file, an optional
// .env file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverDynamoDB = "dynamodb"
)

var (
	// ErrUnknownDriver is returned by Validate for an unsupported store driver.
	ErrUnknownDriver = errors.New("unknown store driver")
	// ErrWebhookWithoutToken is returned when a webhook URL is set but no bot token.
	ErrWebhookWithoutToken = errors.New("telegram webhook requires a token")
)

// Config is the full bot configuration.
type Config struct {
	Bot        BotConfig        `yaml:"bot"`
	Messengers MessengersConfig `yaml:"messengers"`
	Log        LogConfig        `yaml:"log"`
	Store      StoreConfig      `yaml:"store"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	// Vocabulary is an optional path to a YAML vocabulary file.
	Vocabulary string `yaml:"vocabulary" env:"PIZZABOT_VOCABULARY"`
}

type BotConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

// Addr returns the listen address.
func (b BotConfig) Addr() string {
	return b.Host + ":" + strconv.Itoa(b.Port)
}

type MessengersConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Token   string `yaml:"token" env:"TELEGRAM_TOKEN"`
	API     string `yaml:"api" env:"TELEGRAM_API"`
	Webhook string `yaml:"webhook" env:"TELEGRAM_WEBHOOK"`
}

// Enabled reports whether a Telegram token is configured.
func (t TelegramConfig) Enabled() bool { return t.Token != "" }

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type StoreConfig struct {
	Driver   string         `yaml:"driver" env:"STORE_DRIVER"`
	Timeout  time.Duration  `yaml:"timeout" env:"STORE_TIMEOUT"` // Bounds every store call; zero disables it
	Redis    RedisConfig    `yaml:"redis"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB"`
	Prefix   string        `yaml:"prefix" env:"REDIS_PREFIX"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL"`
}

type DynamoDBConfig struct {
	Table string        `yaml:"table" env:"DYNAMODB_TABLE"`
	TTL   time.Duration `yaml:"ttl" env:"DYNAMODB_TTL"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"METRICS_ENABLED"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Bot: BotConfig{Host: "0.0.0.0", Port: 8080},
		Messengers: MessengersConfig{
			Telegram: TelegramConfig{API: "https://api.telegram.org/bot%s/%s"},
		},
		Log:   LogConfig{Level: "info", Format: "text"},
		Store: StoreConfig{
			Driver:  DriverMemory,
			Timeout: 5 * time.Second,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
	}
}

// Load reads path (optional, may be empty), then the .env file in the
// working directory if present, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := Decode(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode maps YAML data onto cfg. Keys absent from data keep their current
// values; scalars are weakly typed so "8080" and 8080 both decode into Port.
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if raw == nil {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		TagName:          "yaml",
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverRedis, DriverDynamoDB:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver)
	}
	if c.Messengers.Telegram.Webhook != "" && c.Messengers.Telegram.Token == "" {
		return ErrWebhookWithoutToken
	}
	if c.Store.Driver == DriverDynamoDB && c.Store.DynamoDB.Table == "" {
		return errors.New("dynamodb store requires a table name")
	}
	return nil
}
