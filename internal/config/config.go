// Package config loads process configuration from the environment.
// Security-critical values (encryption key, JWT secret) are validated at
// startup: a missing or malformed value fails the process instead of
// silently degrading security.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EncryptionKeySize is the required key length for AES-256.
const EncryptionKeySize = 32

// Config holds application configuration.
type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string
	RedisPassword string

	// EncryptionKey is the 256-bit key for the identity-mapping cipher.
	// Loaded once at startup, read-only afterwards.
	EncryptionKey []byte

	JWTSecret []byte
	JWTExpiry time.Duration

	// TelegramBotToken and TelegramAdminChatID are optional; when empty the
	// admin notifier is disabled.
	TelegramBotToken    string
	TelegramAdminChatID int64
}

// Load reads configuration from .env / environment variables and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBUser:        getEnv("DB_USER", "user"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "voisafedb"),
		DBPort:        getEnv("DB_PORT", "5432"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	key := os.Getenv("ENCRYPTION_KEY")
	if key == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is not set")
	}
	if len(key) < EncryptionKeySize {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be at least %d characters, got %d", EncryptionKeySize, len(key))
	}
	// AES-256 takes exactly 32 bytes; longer keys are truncated the same way
	// the original deployment did.
	cfg.EncryptionKey = []byte(key)[:EncryptionKeySize]

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	cfg.JWTSecret = []byte(secret)

	hours := getEnvInt("JWT_EXPIRES_HOURS", 168) // 7 days
	if hours <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRES_HOURS must be positive, got %d", hours)
	}
	cfg.JWTExpiry = time.Duration(hours) * time.Hour

	if chatID := os.Getenv("TELEGRAM_ADMIN_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID is not a valid chat id: %w", err)
		}
		cfg.TelegramAdminChatID = id
	}

	return cfg, nil
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default value.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
