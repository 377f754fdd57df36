package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `env:"PORT"          envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL"     envDefault:"info"`
	LogDev   bool   `env:"LOG_DEV"       envDefault:"false"`

	DBDriver    string `env:"DB_DRIVER"    envDefault:"sqlite"`
	DBPath      string `env:"DB_PATH"      envDefault:"data/app.db"`
	DatabaseURL string `env:"DATABASE_URL"`
	SeedPath    string `env:"SEED_PATH"`

	ModelPath        string `env:"MODEL_PATH"        envDefault:"data/models/fill_predictor.msgpack"`
	RetrainThreshold int    `env:"RETRAIN_THRESHOLD" envDefault:"10"`
	RetrainSchedule  string `env:"RETRAIN_SCHEDULE"`

	OSRMBaseURL        string        `env:"OSRM_BASE_URL"       envDefault:"http://router.project-osrm.org"`
	OSRMTimeout        time.Duration `env:"OSRM_TIMEOUT"        envDefault:"10s"`
	RoutingConcurrency int           `env:"ROUTING_CONCURRENCY" envDefault:"4"`

	RedisURL      string        `env:"REDIS_URL"`
	RouteCacheTTL time.Duration `env:"ROUTE_CACHE_TTL" envDefault:"24h"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
}

// Load reads an optional .env file, then parses the environment.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("load config: read .env: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for sqlite")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}

	if c.RetrainThreshold < 1 {
		return fmt.Errorf("RETRAIN_THRESHOLD must be positive, got %d", c.RetrainThreshold)
	}
	if c.RoutingConcurrency < 1 {
		return fmt.Errorf("ROUTING_CONCURRENCY must be positive, got %d", c.RoutingConcurrency)
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}
