package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	GatewayURL   string
	GatewayToken string

	APIToken string

	Port    string
	DataDir string

	ProvidersFile string

	RedisURL string
	AMQPURL  string

	RateLimitPerMinute int
}

func Load() (*Config, error) {
	// .env is optional — env vars may already be set (e.g. in production)
	_ = godotenv.Load()

	cfg := &Config{
		GatewayURL:         os.Getenv("WA_GATEWAY_URL"),
		GatewayToken:       os.Getenv("WA_GATEWAY_TOKEN"),
		APIToken:           os.Getenv("API_TOKEN"),
		Port:               os.Getenv("PORT"),
		DataDir:            os.Getenv("DATA_DIR"),
		ProvidersFile:      os.Getenv("PROVIDERS_FILE"),
		RedisURL:           os.Getenv("REDIS_URL"),
		AMQPURL:            os.Getenv("AMQP_URL"),
		RateLimitPerMinute: parseIntEnv("RATE_LIMIT_PER_MINUTE"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}

	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 60
	}

	if cfg.APIToken == "" {
		token, err := randomHex(16)
		if err != nil {
			return nil, fmt.Errorf("generating api token: %w", err)
		}
		cfg.APIToken = token
		fmt.Fprintf(os.Stderr, "API_TOKEN not set, generated: %s\n", token)
	}

	for _, req := range []struct {
		name, val string
	}{
		{"WA_GATEWAY_URL", cfg.GatewayURL},
		{"WA_GATEWAY_TOKEN", cfg.GatewayToken},
	} {
		if req.val == "" {
			return nil, fmt.Errorf("required env var %s is not set", req.name)
		}
	}

	return cfg, nil
}

func parseIntEnv(key string) int {
	v, _ := strconv.Atoi(os.Getenv(key))
	return v
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
