// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DBName string

	// OMDb
	OMDbAPIKey string
	OMDbAPIURL string

	// Fetch
	FetchTimeout time.Duration
	FetchMaxSize int64

	// Rate Limit
	RateLimitPerMinute int

	// Server
	ServerPort string
}

// Load は環境変数からConfigを読み込む。
// API_KEYが未設定の場合はエラーを返す（起動時の致命的条件）。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.OMDbAPIKey = os.Getenv("API_KEY")
	if cfg.OMDbAPIKey == "" {
		return nil, fmt.Errorf("required environment variable is not set: API_KEY")
	}

	// Optional fields with defaults
	cfg.DBName = getEnvString("DB_NAME", "moviweb.db")
	cfg.OMDbAPIURL = getEnvString("OMDB_API_URL", "https://www.omdbapi.com/")
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 1048576)
	cfg.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", 120)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
