package config

import (
	"fmt"
	"log"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	StorageDriver string
	SQLitePath    string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string
	LogLevel      string

	// BudgetOveragePolicy is "allow" or "confirm".
	BudgetOveragePolicy string
	// RateLimit uses the ulule limiter format, e.g. "100-M". Empty disables limiting.
	RateLimit          string
	CORSAllowedOrigins []string
	DisplayCurrency    string
}

// SetDefaults registers the default of every key on the global viper instance.
func SetDefaults() {
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("STORAGE_DRIVER", DriverPostgres)
	viper.SetDefault("SQLITE_PATH", "data/ledger.db")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "money-tracker")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("BUDGET_OVERAGE_POLICY", "allow")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DISPLAY_CURRENCY", "USD")
}

// LoadConfig loads configuration from environment variables and .env file if present.
// Values bound to command line flags take precedence over both.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	SetDefaults()
	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:         viper.GetString("PGSQL_URL"),
		StorageDriver:       strings.ToLower(viper.GetString("STORAGE_DRIVER")),
		SQLitePath:          viper.GetString("SQLITE_PATH"),
		Port:                viper.GetString("PORT"),
		IsProduction:        viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:       viper.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:           viper.GetString("JWT_SECRET"),
		JWTIssuer:           viper.GetString("JWT_ISSUER"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		BudgetOveragePolicy: viper.GetString("BUDGET_OVERAGE_POLICY"),
		RateLimit:           viper.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:  splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		DisplayCurrency:     strings.ToUpper(viper.GetString("DISPLAY_CURRENCY")),
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL must be set when STORAGE_DRIVER is %s", DriverPostgres)
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH must be set when STORAGE_DRIVER is %s", DriverSQLite)
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" && cfg.IsProduction {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
