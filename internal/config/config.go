// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Env     string
	APIPort int

	DB       DBConfig
	Redis    RedisConfig
	Hold     HoldConfig
	Calendar CalendarConfig
	Payment  PaymentConfig
	SMTP     SMTPConfig
	Sheet    SheetConfig
	Pricing  PricingConfig

	BusinessTimezone string
	ImagesDir        string
}

type DBConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// DSN renders the lib/pq connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		c.Host, c.Port, c.Name, c.User, c.Password)
}

type RedisConfig struct {
	Host     string
	Port     int
	DB       int
	Password string
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type HoldConfig struct {
	Duration time.Duration
}

type CalendarConfig struct {
	// BaseURL of the provider's events API.
	BaseURL string
	// TokenFile holds the OAuth token previously minted by the
	// credential bootstrap tooling (out of scope here).
	TokenFile string
	Timeout   time.Duration
}

type PaymentConfig struct {
	SecretKey     string
	WebhookSecret string
}

func (c PaymentConfig) Enabled() bool { return c.SecretKey != "" }

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (c SMTPConfig) Configured() bool { return c.User != "" && c.Password != "" }

// SheetConfig is read only by the spreadsheet importer.
type SheetConfig struct {
	Name      string
	Worksheet string
}

// PricingConfig holds the holiday and season tables staff maintain
// for the pricing engine. Empty lists fall back to the engine's
// built-in tables for the current year.
type PricingConfig struct {
	Holidays            []string
	HighSeasonMonths    []int
	HolidaySeasonMonths []int
}

// Load reads a local .env when present, then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("API_PORT", 8000)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_NAME", "zimmerbot_db")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PASSWORD", "")

	v.SetDefault("HOLD_DURATION_SECONDS", 900)

	v.SetDefault("CALENDAR_BASE_URL", "https://www.googleapis.com/calendar/v3")
	v.SetDefault("CALENDAR_TOKEN_FILE", "data/token_api.json")
	v.SetDefault("CALENDAR_TIMEOUT_SECONDS", 5)

	v.SetDefault("SMTP_SERVER", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)

	v.SetDefault("WORKSHEET_NAME", "Sheet1")

	v.SetDefault("HOLIDAY_DATES", "")
	v.SetDefault("HIGH_SEASON_MONTHS", "")
	v.SetDefault("HOLIDAY_SEASON_MONTHS", "")

	v.SetDefault("BUSINESS_TZ", "Asia/Jerusalem")
	v.SetDefault("IMAGES_DIR", "data/images")

	smtpFrom := v.GetString("EMAIL_FROM")
	if smtpFrom == "" {
		smtpFrom = v.GetString("SMTP_USER")
	}

	return &Config{
		Env:     v.GetString("ENV"),
		APIPort: v.GetInt("API_PORT"),
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			DB:       v.GetInt("REDIS_DB"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		Hold: HoldConfig{
			Duration: time.Duration(v.GetInt("HOLD_DURATION_SECONDS")) * time.Second,
		},
		Calendar: CalendarConfig{
			BaseURL:   v.GetString("CALENDAR_BASE_URL"),
			TokenFile: v.GetString("CALENDAR_TOKEN_FILE"),
			Timeout:   time.Duration(v.GetInt("CALENDAR_TIMEOUT_SECONDS")) * time.Second,
		},
		Payment: PaymentConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_SERVER"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     smtpFrom,
		},
		Sheet: SheetConfig{
			Name:      v.GetString("SHEET_NAME"),
			Worksheet: v.GetString("WORKSHEET_NAME"),
		},
		Pricing: PricingConfig{
			Holidays:            splitList(v.GetString("HOLIDAY_DATES")),
			HighSeasonMonths:    splitMonths(v.GetString("HIGH_SEASON_MONTHS")),
			HolidaySeasonMonths: splitMonths(v.GetString("HOLIDAY_SEASON_MONTHS")),
		},
		BusinessTimezone: v.GetString("BUSINESS_TZ"),
		ImagesDir:        v.GetString("IMAGES_DIR"),
	}
}

// IsDevelopment mirrors the environment switch the log setup uses.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// splitList parses a comma-separated env value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitMonths parses comma-separated month numbers, keeping only 1-12.
func splitMonths(s string) []int {
	var out []int
	for _, part := range splitList(s) {
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > 12 {
			continue
		}
		out = append(out, n)
	}
	return out
}
