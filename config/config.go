package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DBDriver         string `env:"DB_DRIVER" envDefault:"postgres"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"dashboard"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"dashboard123"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"sales_db"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	MaxRetries int `env:"MAX_RETRIES" envDefault:"3"`
	TopN       int `env:"TOP_N" envDefault:"10"`

	SourcePath string `env:"SALES_SOURCE_PATH" envDefault:"./data/vendas.csv"`
	UsersFile  string `env:"USERS_FILE"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the .env file (if any) and returns a populated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN returns the PostgreSQL connection string. Both supported drivers
// accept the keyword/value form.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "pgx":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q (want postgres or pgx)", c.DBDriver)
	}
	if c.TopN < 1 {
		return fmt.Errorf("config: TOP_N must be positive, got %d", c.TopN)
	}
	return nil
}
