package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string
	LogLevel string
}

// Load reads configuration from the environment, picking up a local
// .env file when one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:     getEnv("COURIER_ADDR", ":8080"),
		LogLevel: getEnv("COURIER_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
