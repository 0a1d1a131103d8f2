package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Guard    GuardConfig
	Realtime RealtimeConfig
	Rates    RatesConfig
	Files    FilesConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type GuardConfig struct {
	SuppressionWindow time.Duration
	GracePeriod       time.Duration
	SubmitCooldown    time.Duration
}

type RealtimeConfig struct {
	Debounce time.Duration
}

type RatesConfig struct {
	// Period tag the rates row is keyed by, e.g. "OCAK 2026".
	Period   string
	FetchURL string
}

type FilesConfig struct {
	Dir     string
	BaseURL string
}

type LoggingConfig struct {
	Level string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values")
	}

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:          getEnv("DATABASE_URL", ""),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 30),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
		},
		Guard: GuardConfig{
			SuppressionWindow: getDurationEnv("GUARD_SUPPRESSION_WINDOW", 2*time.Second),
			GracePeriod:       getDurationEnv("GUARD_GRACE_PERIOD", 5*time.Second),
			SubmitCooldown:    getDurationEnv("SUBMIT_COOLDOWN", 2*time.Second),
		},
		Realtime: RealtimeConfig{
			Debounce: getDurationEnv("REALTIME_DEBOUNCE", 500*time.Millisecond),
		},
		Rates: RatesConfig{
			Period:   getEnv("RATES_PERIOD", "OCAK 2026"),
			FetchURL: getEnv("RATES_FETCH_URL", "https://api.frankfurter.app/latest?from=EUR&to=TRY,USD,GBP"),
		},
		Files: FilesConfig{
			Dir:     getEnv("FILES_DIR", "./documents"),
			BaseURL: getEnv("FILES_BASE_URL", "/documents"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid duration for %s: %s, using default: %s", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}
