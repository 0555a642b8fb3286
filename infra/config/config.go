// Package config loads process configuration from the environment and
// an optional .env file.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load()

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and, when
// present, the given .env files. A missing .env file is not an error.
func Load[T any](cfg T, files ...string) error {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return errors.Wrap(err, "load env file")
	}
	if err := env.Parse(cfg); err != nil {
		return errors.Wrap(err, "parse env")
	}
	return nil
}

// Config holds the configuration for the book server.
type Config struct {
	Instrument string `env:"INSTRUMENT" envDefault:"BTC-USD"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	Book     BookConfig     `envPrefix:"BOOK_"`
	WAL      WALConfig      `envPrefix:"WAL_"`
	Snapshot SnapshotConfig `envPrefix:"SNAPSHOT_"`
	Outbox   OutboxConfig   `envPrefix:"OUTBOX_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	GRPC     GRPCConfig     `envPrefix:"GRPC_"`
	Metrics  MetricsConfig  `envPrefix:"METRICS_"`
}

// BookConfig selects the price index and the unknown-order policy.
type BookConfig struct {
	Index              string `env:"INDEX" envDefault:"rbtree"`
	UnknownOrderPolicy string `env:"UNKNOWN_ORDER_POLICY" envDefault:"strict"`
	Capacity           int    `env:"CAPACITY" envDefault:"65536"`
}

type WALConfig struct {
	Dir         string `env:"DIR" envDefault:"./data/wal_entry"`
	SegmentSize int64  `env:"SEGMENT_SIZE" envDefault:"2097152"`
}

type SnapshotConfig struct {
	Dir      string        `env:"DIR" envDefault:"./data/snapshots"`
	Interval time.Duration `env:"INTERVAL" envDefault:"30s"`
}

type OutboxConfig struct {
	Dir          string        `env:"DIR" envDefault:"./data/wal_exit"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"250ms"`
	MaxRetries   uint32        `env:"MAX_RETRIES" envDefault:"5"`
}

// KafkaConfig holds broker and topic settings. An empty broker list
// disables every Kafka component.
type KafkaConfig struct {
	Brokers       []string `env:"BROKERS" envSeparator:","`
	EventsTopic   string   `env:"EVENTS_TOPIC" envDefault:"book.events"`
	QuotesTopic   string   `env:"QUOTES_TOPIC" envDefault:"book.quotes"`
	CommandsTopic string   `env:"COMMANDS_TOPIC"`
	GroupID       string   `env:"GROUP_ID" envDefault:"lob-commands"`
}

// RedisConfig holds the top-of-book cache settings. An empty address
// disables it.
type RedisConfig struct {
	Addr      string `env:"ADDRESS"`
	Password  string `env:"PASSWORD" envDefault:""`
	DB        int    `env:"DB" envDefault:"0"`
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"lob:"`
}

type GRPCConfig struct {
	Addr string `env:"ADDR" envDefault:":50051"`
}

type MetricsConfig struct {
	Addr string `env:"ADDR" envDefault:":9100"`
}
