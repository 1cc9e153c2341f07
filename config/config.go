package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL       string
	ServerPort        int
	NATSURL           string
	NATSTimeout       time.Duration
	RoundReadySeconds int
	Environment       string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	// Окно между завершением раунда и запуском матчей следующего.
	roundReady, err := intEnv("ROUND_READY_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	if roundReady <= 0 {
		return nil, fmt.Errorf("ROUND_READY_SECONDS must be positive, got %d", roundReady)
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &Config{
		DatabaseURL:       dbURL,
		ServerPort:        port,
		NATSURL:           natsURL,
		NATSTimeout:       5 * time.Second,
		RoundReadySeconds: roundReady,
		Environment:       env,
	}, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}
