package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string
	PlaidClientID  string
	PlaidSecret    string
	PlaidEnv       string
	SyncSecret     string
	BinanceBaseURL string
}

func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		PlaidClientID:  getEnv("PLAID_CLIENT_ID", ""),
		PlaidSecret:    getEnv("PLAID_SECRET", ""),
		PlaidEnv:       getEnv("PLAID_ENV", "sandbox"),
		SyncSecret:     getEnv("SYNC_SECRET", ""),
		BinanceBaseURL: getEnv("BINANCE_BASE_URL", "https://api.binance.com"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.SyncSecret == "" {
		log.Fatal("SYNC_SECRET is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
