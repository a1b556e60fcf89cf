package config

import (
	"fmt"
	"os"
)

// Config carries all runtime settings. It is loaded once in main and passed
// explicitly to constructors; nothing reads the environment after startup.
type Config struct {
	// HTTP
	Port         string
	AllowOrigins []string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Billing defaults
	Currency string // ISO 4217 code stamped on new documents
	Locale   string // BCP 47 tag for money formatting on receipts

	// Rendering
	ReceiptTemplate string // template name used for the receipt view
	WkhtmltopdfPath string // optional explicit path to the wkhtmltopdf binary

	// Auth; empty secret disables the bearer-token guard
	JWTSecret string

	// Logging
	LogLevel  string
	LogFormat string // json, console
}

func Load() Config {
	return Config{
		Port:         getEnv("PORT", "8080"),
		AllowOrigins: []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "postgres"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		Currency: getEnv("BILLING_CURRENCY", "EUR"),
		Locale:   getEnv("BILLING_LOCALE", "nl"),

		ReceiptTemplate: getEnv("RECEIPT_TEMPLATE", "receipt"),
		WkhtmltopdfPath: getEnv("WKHTMLTOPDF_PATH", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
}

// DSN assembles the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
