// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendSpanner  = "spanner"
)

// Config holds the settings shared by the ledger binaries.
type Config struct {
	ServiceName string `env:"LEDGER_SERVICE_NAME" envDefault:"provenance-ledger"`
	LogLevel    string `env:"LEDGER_LOG_LEVEL" envDefault:"info"`

	Backend     string `env:"LEDGER_BACKEND" envDefault:"sqlite"`
	SQLiteDSN   string `env:"LEDGER_SQLITE_DSN" envDefault:"file:ledger.db?_pragma=busy_timeout(5000)"`
	PostgresDSN string `env:"LEDGER_POSTGRES_DSN"`
	SpannerDB   string `env:"SPANNER_DATABASE" envDefault:"projects/test-project/instances/dev-instance/databases/provenance-ledger"`

	// Owner is the deploying identity recorded at bootstrap.
	Owner string `env:"LEDGER_OWNER"`

	GRPCPort string `env:"GRPC_PORT" envDefault:"9090"`
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	JWTSigningKey string        `env:"LEDGER_JWT_SIGNING_KEY"`
	JWTIssuer     string        `env:"LEDGER_JWT_ISSUER" envDefault:"provenance-ledger"`
	JWTTTL        time.Duration `env:"LEDGER_JWT_TTL" envDefault:"1h"`

	OTelEndpoint string `env:"LEDGER_OTEL_ENDPOINT"`

	Relay  RelayConfig
	Export ExportConfig
}

// RelayConfig configures the audit relay.
type RelayConfig struct {
	Sink         string        `env:"LEDGER_RELAY_SINK" envDefault:"redis"`
	PollInterval time.Duration `env:"LEDGER_RELAY_POLL_INTERVAL" envDefault:"1s"`
	BatchSize    int           `env:"LEDGER_RELAY_BATCH_SIZE" envDefault:"100"`
	StartTxID    uint64        `env:"LEDGER_RELAY_START_TX" envDefault:"0"`
	RedisAddr    string        `env:"LEDGER_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisStream  string        `env:"LEDGER_REDIS_STREAM" envDefault:"ledger:audit"`
	KafkaBrokers []string      `env:"LEDGER_KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	KafkaTopic   string        `env:"LEDGER_KAFKA_TOPIC" envDefault:"ledger.audit"`
}

// ExportConfig configures the audit archive export.
type ExportConfig struct {
	Target      string `env:"LEDGER_EXPORT_TARGET" envDefault:"file"`
	Dir         string `env:"LEDGER_EXPORT_DIR" envDefault:"./exports"`
	S3Bucket    string `env:"LEDGER_EXPORT_S3_BUCKET"`
	S3Prefix    string `env:"LEDGER_EXPORT_S3_PREFIX" envDefault:"audit/"`
	S3Region    string `env:"LEDGER_EXPORT_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"LEDGER_EXPORT_S3_ENDPOINT"`
	S3PathStyle bool   `env:"LEDGER_EXPORT_S3_PATH_STYLE" envDefault:"false"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that tags cannot express.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite, BackendSpanner:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("LEDGER_POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.Backend)
	}
	if c.Relay.BatchSize <= 0 {
		return fmt.Errorf("LEDGER_RELAY_BATCH_SIZE must be positive")
	}
	return nil
}
