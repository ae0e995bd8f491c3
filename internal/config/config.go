package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV" env-default:"local"`
	HTTP     HTTPConfig
	Database DBConfig
	Security SecConfig
	Trading  TradingConfig
	Market   MarketConfig
}

type HTTPConfig struct {
	Port    uint16        `env:"HTTP_PORT" env-default:"8000"`
	Timeout time.Duration `env:"HTTP_TIMEOUT" env-default:"30s"`
}

type DBConfig struct {
	Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     uint16 `env:"POSTGRES_PORT" env-default:"5432"`
	User     string `env:"POSTGRES_USER" env-default:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	DBName   string `env:"POSTGRES_DB" env-default:"novatrade_db"`
}

type SecConfig struct {
	JWTSecret string `env:"JWT_SECRET" env-required:"true"`
}

type TradingConfig struct {
	// StartingBalance is credited to every account on first authenticated access.
	StartingBalance float64 `env:"STARTING_BALANCE" env-default:"10000"`
	MinDepositUSD   float64 `env:"MIN_DEPOSIT_USD" env-default:"1.00"`
	// LimitFillPolicy: "fill_at_limit" executes at the stated limit price
	// unconditionally, "reject_unmarketable" refuses limits the simulated
	// market would not reach.
	LimitFillPolicy string `env:"LIMIT_FILL_POLICY" env-default:"fill_at_limit"`
}

type MarketConfig struct {
	BroadcastInterval time.Duration `env:"MARKET_BROADCAST_INTERVAL" env-default:"5s"`
}

func MustLoad() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment variables")
	}

	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("failed to read environment variables", "error", err)
		os.Exit(1)
	}

	return &cfg
}
