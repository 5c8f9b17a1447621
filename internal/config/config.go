package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

type Config struct {
	AssetID    string
	VsCurrency string

	CoinGeckoBaseURL        string
	CoinGeckoRequestsPerMin int
	CoinGeckoTimeoutSecs    int

	LogFile  string
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		AssetID:          strings.ToLower(strings.TrimSpace(os.Getenv("TRACKER_ASSET_ID"))),
		VsCurrency:       strings.ToLower(strings.TrimSpace(os.Getenv("TRACKER_VS_CURRENCY"))),
		CoinGeckoBaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("COINGECKO_BASE_URL")), "/"),
		LogFile:          strings.TrimSpace(os.Getenv("TRACKER_LOG_FILE")),
	}

	if cfg.AssetID == "" {
		cfg.AssetID = "bitcoin"
	}
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = "usd"
	}
	if cfg.CoinGeckoBaseURL == "" {
		cfg.CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	}

	cfg.CoinGeckoRequestsPerMin = 8
	if v := strings.TrimSpace(os.Getenv("COINGECKO_REQUESTS_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CoinGeckoRequestsPerMin = n
		} else {
			log.Warn("invalid COINGECKO_REQUESTS_PER_MIN, using default", "value", v, "default", 8)
		}
	}

	cfg.CoinGeckoTimeoutSecs = 0
	if v := strings.TrimSpace(os.Getenv("COINGECKO_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CoinGeckoTimeoutSecs = n
		} else {
			log.Warn("invalid COINGECKO_TIMEOUT_SECS, using transport default", "value", v)
		}
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("TRACKER_LOG_LEVEL")))
	if _, err := log.ParseLevel(cfg.LogLevel); cfg.LogLevel == "" || err != nil {
		if cfg.LogLevel != "" {
			log.Warn("unsupported TRACKER_LOG_LEVEL, defaulting to info", "value", cfg.LogLevel)
		}
		cfg.LogLevel = "info"
	}

	return cfg
}
