package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported document store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Supported MCP transports.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string `env:"DB_HOST"`
	Port               string `env:"DB_PORT" envDefault:"5432"`
	User               string `env:"DB_USER"`
	Password           string `env:"DB_PASSWORD"`
	Name               string `env:"DB_NAME"`
	SSLMode            string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns       int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns       int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetimeSec int    `env:"DB_CONN_MAX_LIFETIME_SEC" envDefault:"300"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI                 string        `env:"MONGODB_URI"`
	Database            string        `env:"DATABASE_NAME" envDefault:"document_mcp"`
	DocumentsCollection string        `env:"MONGO_DOCUMENTS_COLLECTION" envDefault:"documents"`
	MetadataCollection  string        `env:"MONGO_METADATA_COLLECTION" envDefault:"file_metadata"`
	ConnectTimeout      time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env       string `env:"APP_ENV" envDefault:"production"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	Port      string `env:"PORT" envDefault:"8080"`
	Transport string `env:"MCP_TRANSPORT" envDefault:"http"`
	Driver    string `env:"DOCSTORE_DRIVER" envDefault:"mongo"`

	Mongo    MongoConfig
	Database DatabaseConfig
}

// IsDevelopment reports whether the process runs with developer-friendly defaults.
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings. Connection details are validated by the gateways.
func (c *AppConfig) Validate() error {
	switch c.Driver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported DOCSTORE_DRIVER %q", c.Driver)
	}
	switch c.Transport {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("unsupported MCP_TRANSPORT %q", c.Transport)
	}
	return nil
}
