package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Storage    StorageConfig
	Worker     WorkerConfig
	Redis      RedisConfig
	SMTP       SMTPConfig
	OTP        OTPConfig
	Bot        BotConfig
	SuperAdmin SuperAdminConfig
	LogLevel   string
}

type ServerConfig struct {
	Host      string
	Port      int
	PublicURL string
	Env       string
	RateLimit int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type StorageConfig struct {
	Provider  string // none, s3, r2
	SignedTTL time.Duration
	S3        S3Config
}

type S3Config struct {
	BucketName string
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
}

type WorkerConfig struct {
	Concurrency int
}

type RedisConfig struct {
	Addr     string
	Password string
	Username string
	DB       int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type OTPConfig struct {
	TTL          time.Duration
	ResendWindow time.Duration
	ResendMax    int
}

type BotConfig struct {
	WebhookSecret string
	SessionTTL    time.Duration
}

type SuperAdminConfig struct {
	UserName string
	Password string
	Email    string
	FullName string
	Phone    string
}

var (
	config *Config
	once   sync.Once
)

// GetConfig returns the singleton config instance
func GetConfig() *Config {
	once.Do(func() {
		config, _ = Load()
	})
	return config
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvAsInt("SERVER_PORT", 8080),
			PublicURL: getEnv("PUBLIC_URL", "http://localhost:8080"),
			Env:       getEnv("APP_ENV", "development"),
			RateLimit: getEnvAsInt("RATE_LIMIT_RPS", 20),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Name:     getEnv("POSTGRES_DB", "cargodesk"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_SECRET", "your-secret-key"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "your-refresh-secret-key"),
			AccessTTL:     getEnvAsDuration("JWT_ACCESS_TTL", 24*time.Hour),
			RefreshTTL:    getEnvAsDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Storage: StorageConfig{
			Provider:  getEnv("STORAGE_PROVIDER", "none"),
			SignedTTL: getEnvAsDuration("STORAGE_SIGNED_URL_TTL", 15*time.Minute),
			S3: S3Config{
				BucketName: getEnv("S3_BUCKET_NAME", ""),
				Endpoint:   getEnv("S3_ENDPOINT", ""),
				Region:     getEnv("S3_REGION", ""),
				AccessKey:  getEnv("S3_ACCESS_KEY", ""),
				SecretKey:  getEnv("S3_SECRET_KEY", ""),
			},
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 10),
		},
		Redis: RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", getEnv("REDIS_HOST", "localhost"), getEnvAsInt("REDIS_PORT", 6379)),
			Password: getEnv("REDIS_PASSWORD", ""),
			Username: getEnv("REDIS_USERNAME", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", "no-reply@cargodesk.local"),
		},
		OTP: OTPConfig{
			TTL:          getEnvAsDuration("OTP_TTL", 10*time.Minute),
			ResendWindow: getEnvAsDuration("OTP_RESEND_WINDOW", 10*time.Minute),
			ResendMax:    getEnvAsInt("OTP_RESEND_MAX", 3),
		},
		Bot: BotConfig{
			WebhookSecret: getEnv("BOT_WEBHOOK_SECRET", ""),
			SessionTTL:    getEnvAsDuration("BOT_SESSION_TTL", 30*time.Minute),
		},
		SuperAdmin: SuperAdminConfig{
			UserName: getEnv("SUPERADMIN_USERNAME", ""),
			Password: getEnv("SUPERADMIN_PASSWORD", ""),
			Email:    getEnv("SUPERADMIN_EMAIL", ""),
			FullName: getEnv("SUPERADMIN_NAME", "Super Admin"),
			Phone:    getEnv("SUPERADMIN_PHONE", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.IsProduction() && cfg.JWT.AccessSecret == "your-secret-key" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// IsProduction reports whether internal error details must be hidden.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
