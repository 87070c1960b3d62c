package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	API     APIConfig
	Polling PollingConfig
	History HistoryConfig
	Log     LogConfig
}

// APIConfig holds the backend endpoint configuration
type APIConfig struct {
	BaseURL            string
	RequestTimeout     time.Duration
	AudioUploadTimeout time.Duration
}

// PollingConfig holds job status polling configuration
type PollingConfig struct {
	Interval time.Duration
	// MaxWait bounds a single watch; zero means poll until the job is terminal.
	MaxWait time.Duration
}

// HistoryConfig holds the local job history store configuration
type HistoryConfig struct {
	Enabled bool
	Path    string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		API: APIConfig{
			BaseURL:            getEnv("MEETSUM_API_URL", "http://localhost:8000"),
			RequestTimeout:     getEnvAsDuration("MEETSUM_REQUEST_TIMEOUT", "300s"),
			AudioUploadTimeout: getEnvAsDuration("MEETSUM_AUDIO_UPLOAD_TIMEOUT", "600s"),
		},
		Polling: PollingConfig{
			Interval: getEnvAsDuration("MEETSUM_POLL_INTERVAL", "1s"),
			MaxWait:  getEnvAsDuration("MEETSUM_POLL_MAX_WAIT", "0s"),
		},
		History: HistoryConfig{
			Enabled: getEnvAsBool("MEETSUM_HISTORY_ENABLED", true),
			Path:    getEnv("MEETSUM_HISTORY_PATH", defaultHistoryPath()),
		},
		Log: LogConfig{
			Level: getEnv("MEETSUM_LOG_LEVEL", "warn"),
		},
	}

	return config, nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "meetsum-history.db"
	}
	return filepath.Join(home, ".meetsum", "history.db")
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
