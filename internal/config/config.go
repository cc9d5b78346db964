package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the simulation settings. The engine itself takes no
// configuration; everything here shapes the driver around it.
type Config struct {
	Seed       int64  // pseudo-random stream seed; same seed, same run
	Orders     int    // number of place operations to issue
	Traders    int    // size of the trader population
	CancelRate int    // percentage of orders followed by a cancel attempt
	JournalDSN string // SQLite DSN for the trade journal, in-memory if empty
	Debug      bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using environment")
	}

	cfg := &Config{
		Seed:       envInt64("SIM_SEED", 1),
		Orders:     envInt("SIM_ORDERS", 200),
		Traders:    envInt("SIM_TRADERS", 8),
		CancelRate: envInt("SIM_CANCEL_RATE", 10),
		JournalDSN: os.Getenv("JOURNAL_DSN"),
		Debug:      os.Getenv("DEBUG") == "true",
	}

	return cfg
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring non-integer setting")
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring non-integer setting")
		return fallback
	}
	return n
}
