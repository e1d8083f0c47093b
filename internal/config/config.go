package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Pass     PassConfig
	CORS     CORSConfig
	Listing  ListingConfig
	LogDir   string
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver        string // sqlite or postgres
	DSN           string
	MaxOpenConns  int
	MaxIdleConns  int
	MaxLifetime   time.Duration
	AutoMigrate   bool
	MigrationsDir string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	StatsTTL time.Duration
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topics  TopicConfig
}

type TopicConfig struct {
	Events        string
	Registrations string
}

type AuthConfig struct {
	// AdminSecret signs admin bearer tokens. Empty disables the check.
	AdminSecret string
}

type PassConfig struct {
	// Secret signs registration passes. Required once admin auth is on.
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type ListingConfig struct {
	PageSize int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", ":3060"),
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // the change stream is long-lived
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:        strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:           getEnv("DB_DSN", "file:charity_events.db"),
			MaxOpenConns:  getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:   time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
			AutoMigrate:   getEnvBool("AUTO_MIGRATE", true),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			StatsTTL: time.Duration(getEnvInt("STATS_CACHE_TTL_SECONDS", 30)) * time.Second,
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topics: TopicConfig{
				Events:        getEnv("KAFKA_TOPIC_EVENTS", "charity.events.changed"),
				Registrations: getEnv("KAFKA_TOPIC_REGISTRATIONS", "charity.registrations.created"),
			},
		},
		Auth: AuthConfig{
			AdminSecret: getEnv("ADMIN_JWT_SECRET", ""),
		},
		Pass: PassConfig{
			Secret: getEnv("PASS_SECRET", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Listing: ListingConfig{
			PageSize: getEnvInt("LISTING_PAGE_SIZE", 10),
		},
		LogDir: getEnv("LOG_DIR", "logs"),
	}
}

// Validate rejects settings the service must not start with.
func (c *Config) Validate() error {
	if c.Auth.AdminSecret != "" && c.Pass.Secret == "" {
		return errors.New("PASS_SECRET must be set when ADMIN_JWT_SECRET is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
