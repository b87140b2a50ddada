package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string        `envconfig:"PORT" default:"8080"`
	DatabaseURL string        `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string        `envconfig:"REDIS_URL" required:"true"`
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	LogMode     string        `envconfig:"LOG_MODE" default:"dev"`

	// Разрешен ли повторный запрос после отклонения
	AllowRequestAfterDecline bool `envconfig:"ALLOW_REQUEST_AFTER_DECLINE" default:"true"`

	RealtimeBuffer       int      `envconfig:"REALTIME_BUFFER" default:"256"`
	RealtimeRedisChannel string   `envconfig:"REALTIME_REDIS_CHANNEL" default:"gigmate:realtime"`
	AllowedOrigins       []string `envconfig:"ALLOWED_ORIGINS"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load читает .env.local/.env (если есть) и переменные окружения
func Load() (*Config, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
