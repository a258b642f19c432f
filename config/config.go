package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string `env:"DATABASE_URL,required"`
	JWTSecretKey string `env:"JWT_SECRET_KEY,required"`
	ServerPort   int    `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	AutoMigrate  bool   `env:"AUTO_MIGRATE" envDefault:"false"`

	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`

	ZoneCapacity  int `env:"ZONE_CAPACITY" envDefault:"4"`
	CurrentSeason int `env:"CURRENT_SEASON"`

	// Optional YAML points table; the embedded default is used when empty.
	PointsFile string `env:"POINTS_FILE"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Empty allows every origin for CORS and websockets.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Closure results are published to NATS when set.
	NATSURL     string `env:"NATS_URL"`
	NATSSubject string `env:"NATS_SUBJECT" envDefault:"circuit.tournament.closed"`

	// Cloudflare R2 closure report storage; disabled when the account is empty.
	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `env:"R2_BUCKET_NAME"`
	R2PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.ZoneCapacity < 2 {
		return fmt.Errorf("ZONE_CAPACITY must be at least 2, got %d", c.ZoneCapacity)
	}
	if c.CurrentSeason == 0 {
		c.CurrentSeason = time.Now().Year()
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.R2AccountID != "" && (c.R2AccessKeyID == "" || c.R2SecretAccessKey == "" || c.R2BucketName == "") {
		return fmt.Errorf("R2_ACCOUNT_ID is set but R2 credentials or bucket are missing")
	}
	return nil
}

func (c *Config) R2Enabled() bool {
	return c.R2AccountID != ""
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
