package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the complete runtime configuration.
type Config struct {
	Port     int
	LogLevel string
	Env      string

	// DBPath is the SQLite database file. Tests use ":memory:".
	DBPath string

	// ExportDir is where order export files are written.
	ExportDir string

	// StaticDir holds the landing and admin viewer pages.
	StaticDir string

	Auth  AuthConfig
	Kafka KafkaConfig
}

// AuthConfig holds the admin credential pair, the shared key for public
// read access and the admin session lifetime. The defaults mirror the
// original deployment; real installations override them via environment.
type AuthConfig struct {
	AdminUsername   string
	AdminPassword   string
	PublicAccessKey string
	SessionTTL      time.Duration
}

// KafkaConfig configures the optional order event notifications. Leaving
// Brokers empty disables publishing entirely.
type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

// getEnv retrieves the value of an environment variable or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

// Load reads the configuration from environment variables and returns a Config struct.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))

	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	sessionTTL, err := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "30"))

	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_MINUTES: %w", err)
	}

	var brokers []string
	for _, b := range strings.Split(getEnv("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return &Config{
		Port:      port,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Env:       getEnv("APP_ENV", "development"),
		DBPath:    getEnv("DB_PATH", "orders.db"),
		ExportDir: getEnv("EXPORT_DIR", "exports"),
		StaticDir: getEnv("STATIC_DIR", "web"),
		Auth: AuthConfig{
			AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword:   getEnv("ADMIN_PASSWORD", "sumifun2023"),
			PublicAccessKey: getEnv("PUBLIC_ACCESS_KEY", "sumifun2023"),
			SessionTTL:      time.Duration(sessionTTL) * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:     brokers,
			OrdersTopic: getEnv("KAFKA_ORDERS_TOPIC", "order-events"),
		},
	}, nil
}
