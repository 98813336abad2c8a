package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Env         string
	BaseURL     string
	DatabaseDSN string

	CORSOrigins []string

	JWTSecret     string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	EmailExpiry   time.Duration

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

func Load() Config {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/contacthub?parseTime=true"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
		EmailExpiry:   7 * 24 * time.Hour,

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", "contacthub-avatars"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
	}

	if cfg.Env == "production" && cfg.JWTSecret == "dev-secret-change-in-production" {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
