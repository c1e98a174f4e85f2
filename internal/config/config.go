package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
	"github.com/shopspring/decimal"
)

// Command sources.
const (
	SourceKafka = "kafka"
	SourceRedis = "redis"
)

// Snapshot backends.
const (
	BackendRedis = "redis"
	BackendFile  = "file"
)

// Config holds the configuration for the engine process.
type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Engine   EngineConfig   `envPrefix:"ENGINE_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	History  HistoryConfig  `envPrefix:"HISTORY_KAFKA_"`
	Redis    redis.Config   `envPrefix:"REDIS_"`
	Snapshot SnapshotConfig `envPrefix:"SNAPSHOT_"`

	// CommandSource selects where commands are read from: kafka or redis.
	CommandSource string `env:"COMMAND_SOURCE" envDefault:"kafka"`
	// CommandQueue is the Redis list popped when CommandSource is redis.
	CommandQueue string `env:"COMMAND_QUEUE" envDefault:"messages"`

	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9100"`
}

// AppConfig holds process wide settings and the default seed.
type AppConfig struct {
	Name         string          `env:"NAME" envDefault:"matching-engine"`
	LogLevel     string          `env:"LOG_LEVEL" envDefault:"info"`
	BaseCurrency string          `env:"BASE_CURRENCY" envDefault:"INR"`
	Markets      []string        `env:"MARKETS" envDefault:"TATA"`
	SeedUsers    []string        `env:"SEED_USERS" envDefault:"1,2,5"`
	SeedAmount   decimal.Decimal `env:"SEED_AMOUNT" envDefault:"10000000"`
}

// EngineConfig tunes the command loop, snapshots and the outbox.
type EngineConfig struct {
	SnapshotInterval     time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"3s"`
	SnapshotCommandDelta int64         `env:"SNAPSHOT_COMMAND_DELTA" envDefault:"1"`
	OutboxSize           int           `env:"OUTBOX_SIZE" envDefault:"4096"`
	PublishTimeout       time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"2s"`
}

// KafkaConfig holds the configuration for the command topic reader.
type KafkaConfig struct {
	Brokers   []string `env:"BROKERS" envDefault:"localhost:9092"`
	Topic     string   `env:"TOPIC" envDefault:"engine-commands"`
	Partition int      `env:"PARTITION" envDefault:"0"`
}

// HistoryConfig holds the configuration for the trade history writer topic.
type HistoryConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"true"`
	Brokers []string `env:"BROKERS" envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"db_processor"`
}

// SnapshotConfig selects where snapshots live.
type SnapshotConfig struct {
	Backend string `env:"BACKEND" envDefault:"redis"`
	Key     string `env:"KEY" envDefault:"engine:snapshot"`
	Path    string `env:"PATH" envDefault:"./snapshot.json"`
	// Restore loads the stored snapshot at startup when true.
	Restore bool `env:"RESTORE" envDefault:"true"`
}

// Tickers returns BASE_QUOTE symbols for every configured market.
func (c AppConfig) Tickers() []string {
	out := make([]string, 0, len(c.Markets))
	for _, m := range c.Markets {
		out = append(out, strings.ToUpper(m)+"_"+c.BaseCurrency)
	}
	return out
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if len(c.App.Markets) == 0 {
		return fmt.Errorf("APP_MARKETS must list at least one market")
	}
	if c.App.BaseCurrency == "" {
		return fmt.Errorf("APP_BASE_CURRENCY is required")
	}
	if c.App.SeedAmount.IsNegative() {
		return fmt.Errorf("APP_SEED_AMOUNT must not be negative")
	}
	for _, m := range c.App.Markets {
		if strings.EqualFold(m, c.App.BaseCurrency) {
			return fmt.Errorf("market %s cannot be quoted in itself", m)
		}
	}
	switch c.CommandSource {
	case SourceKafka:
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
			return fmt.Errorf("KAFKA_BROKERS and KAFKA_TOPIC are required for the kafka command source")
		}
	case SourceRedis:
		if c.CommandQueue == "" {
			return fmt.Errorf("COMMAND_QUEUE is required for the redis command source")
		}
	default:
		return fmt.Errorf("unknown COMMAND_SOURCE %q", c.CommandSource)
	}
	switch c.Snapshot.Backend {
	case BackendRedis, BackendFile:
	default:
		return fmt.Errorf("unknown SNAPSHOT_BACKEND %q", c.Snapshot.Backend)
	}
	if c.Engine.SnapshotInterval <= 0 {
		return fmt.Errorf("ENGINE_SNAPSHOT_INTERVAL must be positive")
	}
	if c.Engine.OutboxSize <= 0 {
		return fmt.Errorf("ENGINE_OUTBOX_SIZE must be positive")
	}
	return nil
}
