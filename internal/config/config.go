package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	WhatsApp WhatsAppConfig
	Sheets   SheetsConfig
	Forecast ForecastConfig
	AI       AIConfig
	MongoDB  MongoDBConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
	ManagerID     string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	InventoryRange  string
}

// ForecastConfig holds the reorder forecast defaults and its schedule.
type ForecastConfig struct {
	DefaultHorizonDays int
	AllowedHorizons    []int
	CronSchedule       string
	Timezone           string
}

// AIConfig holds settings for LLM providers.
type AIConfig struct {
	AnthropicKey string
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	horizon, err := strconv.Atoi(getenvWithDefault("FORECAST_DEFAULT_HORIZON_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("FORECAST_DEFAULT_HORIZON_DAYS: %w", err)
	}

	allowed, err := parseIntList(getenvWithDefault("FORECAST_ALLOWED_HORIZONS", "7,14,30,60"))
	if err != nil {
		return nil, fmt.Errorf("FORECAST_ALLOWED_HORIZONS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerID:     os.Getenv("WHATSAPP_MANAGER_ID"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			InventoryRange:  getenvWithDefault("GOOGLE_SHEET_INVENTORY_RANGE", "Inventory!A2:K"),
		},
		Forecast: ForecastConfig{
			DefaultHorizonDays: horizon,
			AllowedHorizons:    allowed,
			CronSchedule:       getenvWithDefault("FORECAST_CRON_SCHEDULE", "0 7 * * *"),
			Timezone:           getenvWithDefault("TIMEZONE", "Africa/Conakry"),
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "farmstock"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.WhatsApp.AccessToken == "":
		return errors.New("WHATSAPP_TOKEN must be provided")
	case c.WhatsApp.PhoneNumberID == "":
		return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
	case c.WhatsApp.VerifyToken == "":
		return errors.New("META_VERIFY_TOKEN must be provided")
	case c.WhatsApp.ManagerID == "":
		return errors.New("WHATSAPP_MANAGER_ID must be provided")
	}

	if c.WhatsApp.BaseURL == "" {
		return errors.New("WHATSAPP_BASE_URL must not be empty")
	}

	if c.WhatsApp.APIVersion == "" {
		return errors.New("WHATSAPP_API_VERSION must not be empty")
	}

	if c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
	}

	if c.Sheets.SpreadsheetID == "" {
		return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
	}

	if c.Sheets.InventoryRange == "" {
		return errors.New("GOOGLE_SHEET_INVENTORY_RANGE must not be empty")
	}

	if len(c.Forecast.AllowedHorizons) == 0 {
		return errors.New("FORECAST_ALLOWED_HORIZONS must list at least one horizon")
	}

	for _, h := range c.Forecast.AllowedHorizons {
		if h <= 0 {
			return fmt.Errorf("FORECAST_ALLOWED_HORIZONS contains non-positive horizon %d", h)
		}
	}

	if !c.Forecast.Allows(c.Forecast.DefaultHorizonDays) {
		return fmt.Errorf("FORECAST_DEFAULT_HORIZON_DAYS %d is not in FORECAST_ALLOWED_HORIZONS", c.Forecast.DefaultHorizonDays)
	}

	if c.Forecast.CronSchedule == "" {
		return errors.New("FORECAST_CRON_SCHEDULE must be provided")
	}

	if c.Forecast.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

// Allows reports whether days is one of the configured forecast horizons.
func (f ForecastConfig) Allows(days int) bool {
	for _, h := range f.AllowedHorizons {
		if h == days {
			return true
		}
	}
	return false
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseIntList(value string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
