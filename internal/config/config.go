package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	LogLevel  string
	JWTSecret string

	// Reference key rate
	CBRURL             string
	BankMargin         float64
	RedisAddr          string
	KeyRateTTL         time.Duration
	KeyRateRefreshSpec string

	// Schedule defaults
	ScheduleStyle string
	MoneyPlaces   int32

	// Applicant PII protection
	HMACSecret    string
	EncryptionKey []byte

	// Report delivery
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables, reading .env first when present
func NewConfig() (*Config, error) {
	// Missing .env is not an error; real environment wins over the file.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBConn:             getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=appraisal sslmode=disable"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		CBRURL:             getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		KeyRateRefreshSpec: getEnv("KEY_RATE_REFRESH_SPEC", "@daily"),
		ScheduleStyle:      getEnv("SCHEDULE_STYLE", "equal_principal"),
		HMACSecret:         getEnv("HMAC_SECRET", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),
		SMTPHost:           getEnv("SMTP_HOST", "localhost"),
		SMTPPort:           getEnv("SMTP_PORT", "25"),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SenderEmail:        getEnv("SENDER_EMAIL", "appraisal@localhost"),
	}

	var err error
	if cfg.BankMargin, err = strconv.ParseFloat(getEnv("BANK_MARGIN", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid BANK_MARGIN: %w", err)
	}
	if cfg.KeyRateTTL, err = time.ParseDuration(getEnv("KEY_RATE_TTL", "12h")); err != nil {
		return nil, fmt.Errorf("invalid KEY_RATE_TTL: %w", err)
	}
	places, err := strconv.ParseInt(getEnv("MONEY_PLACES", "2"), 10, 32)
	if err != nil || places < 0 {
		return nil, fmt.Errorf("invalid MONEY_PLACES: %q", getEnv("MONEY_PLACES", "2"))
	}
	cfg.MoneyPlaces = int32(places)

	cfg.EncryptionKey, err = hex.DecodeString(getEnv("ENCRYPTION_KEY", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"))
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be hex: %w", err)
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.HMACSecret == "" {
		return nil, fmt.Errorf("HMAC_SECRET is required")
	}
	switch len(cfg.EncryptionKey) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("ENCRYPTION_KEY must decode to 16, 24 or 32 bytes, got %d", len(cfg.EncryptionKey))
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
