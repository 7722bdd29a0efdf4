package config

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	// APIBaseURL is where the backend REST API lives.
	APIBaseURL string
	// PublicBaseURL is the guest-facing origin encoded into table QR codes.
	PublicBaseURL string
	// RedisAddr enables shared-terminal storage when non-empty.
	RedisAddr string
	// StatePath is the JSON state file used when Redis is not configured.
	StatePath string

	HTTPTimeout time.Duration
}

// Load reads configuration from the environment, with a .env file layered
// underneath when present.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] skipping .env: %v", err)
	}

	cfg := Config{
		APIBaseURL:    getenv("API_BASE_URL", "http://localhost:8080/api"),
		PublicBaseURL: getenv("PUBLIC_BASE_URL", "http://localhost:8080"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		StatePath:     getenv("STATE_PATH", ".tableside.json"),
		HTTPTimeout:   10 * time.Second,
	}

	if raw := os.Getenv("HTTP_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.HTTPTimeout = d
		} else {
			log.Printf("[config] invalid HTTP_TIMEOUT %q, using default", raw)
		}
	}
	return cfg
}

func MustInitRedis(addr string) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
