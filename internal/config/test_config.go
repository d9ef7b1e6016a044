package config

import "time"

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "localhost",
			Port:      8081,
			Env:       "test",
			RateLimit: 1000,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Name:     "cargodesk_test",
			User:     "test_user",
			Password: "test_password",
		},
		JWT: JWTConfig{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			AccessTTL:     time.Hour,
			RefreshTTL:    24 * time.Hour,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		},
		OTP: OTPConfig{
			TTL:          10 * time.Minute,
			ResendWindow: 10 * time.Minute,
			ResendMax:    3,
		},
		Bot: BotConfig{
			WebhookSecret: "test-bot-secret",
			SessionTTL:    30 * time.Minute,
		},
		SuperAdmin: SuperAdminConfig{
			UserName: "root",
			Password: "root-password",
			Email:    "root@cargodesk.local",
			FullName: "Root",
		},
		LogLevel: "error",
	}
}
