package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the marketplace server
type Config struct {
	HTTPAddr        string
	SweepInterval   time.Duration
	DefaultDuration time.Duration
	SeedPriceBoard  bool
}

// Load reads settings from a .env file (if present) and the environment
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:        httpAddr(),
		SweepInterval:   getduration("SWEEP_INTERVAL", 10*time.Second),
		DefaultDuration: getduration("DEFAULT_AUCTION_DURATION", 24*time.Hour),
		SeedPriceBoard:  getenv("SEED_PRICE_BOARD", "true") == "true",
	}
}

func httpAddr() string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return getenv("HTTP_ADDR", ":8080")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
