package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Data directory (monthly series, category table, YTD ledger)
	DataDir string

	// External APIs
	Meli    MeliConfig
	Twitter TwitterConfig

	// Failure notification webhook (Discord-style). Optional.
	WebhookURL string

	// Clock
	UTCOffsetHours int // local market time, Argentina is -3

	// Inflation policy
	YTDStartYear int // year-to-date is only published from this year on

	// Scheduling
	RunSchedule  string // cron expression for the daily run
	PriceWorkers int    // concurrent price batches

	// Logging
	LogLevel  string
	LogFormat string
}

// MeliConfig holds Mercado Libre API configuration.
type MeliConfig struct {
	BaseURL      string
	Site         string // site id, e.g. MLA
	ClientID     string
	ClientSecret string
	SecretKey    string // XOR key for the refresh-token file
	TokenFile    string // path of the obfuscated refresh token
	RefreshToken string // env-store alternative to TokenFile
}

// TwitterConfig holds the OAuth1 user-context credentials for posting.
type TwitterConfig struct {
	ConsumerKey      string
	ConsumerSecret   string
	OAuthToken       string
	OAuthTokenSecret string
}

// Load reads configuration from environment variables.
// This function is the only caller of os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port:    getEnv("PORT", "8089"),
		Env:     getEnv("ENV", "development"),
		DataDir: getEnv("DATA_DIR", "datasets"),

		Meli: MeliConfig{
			BaseURL:      getEnv("MELI_BASE_URL", "https://api.mercadolibre.com"),
			Site:         getEnv("MELI_SITE", "MLA"),
			ClientID:     getEnv("MELI_CLIENT_ID", ""),
			ClientSecret: getEnv("MELI_CLIENT_SECRET", ""),
			SecretKey:    getEnv("MELI_SECRET_KEY", ""),
			TokenFile:    getEnv("MELI_TOKEN_FILE", "meli_refresh_token"),
			RefreshToken: getEnv("MELI_REFRESH_TOKEN", ""),
		},

		Twitter: TwitterConfig{
			ConsumerKey:      getEnv("TW_CONSUMER_KEY", ""),
			ConsumerSecret:   getEnv("TW_CONSUMER_SECRET", ""),
			OAuthToken:       getEnv("TW_OAUTH_TOKEN", ""),
			OAuthTokenSecret: getEnv("TW_OAUTH_TOKEN_SECRET", ""),
		},

		WebhookURL: getEnv("DISCORD_WEBHOOK", ""),

		UTCOffsetHours: getEnvAsInt("CLOCK_UTC_OFFSET_HOURS", -3),
		YTDStartYear:   getEnvAsInt("YTD_START_YEAR", 2023),

		RunSchedule:  getEnv("RUN_SCHEDULE", "0 0 21 * * *"),
		PriceWorkers: getEnvAsInt("PRICE_WORKERS", 4),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}

	if c.UTCOffsetHours < -12 || c.UTCOffsetHours > 14 {
		return fmt.Errorf("CLOCK_UTC_OFFSET_HOURS out of range: %d", c.UTCOffsetHours)
	}

	if c.PriceWorkers < 1 {
		return fmt.Errorf("PRICE_WORKERS must be at least 1")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
