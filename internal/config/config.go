package config

import (
	"fmt"
	"os"
	"time"

	"friendchat-service/internal/pkg/jwt"
)

type AppConfig struct {
	// Server
	HTTPAddr  string
	RedisAddr string
	RedisPass string

	// Postgres
	DatabaseURL string

	// JWT
	JWT jwt.Config

	// Supabase / GoTrue
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseAnonKey    string
}

// Load reads environment variables into AppConfig. The JWT secret has no
// fallback: sessions signed with a guessed default would verify anywhere.
func Load() (AppConfig, error) {
	secret := os.Getenv("SUPABASE_JWT_SECRET")
	if secret == "" {
		return AppConfig{}, fmt.Errorf("config: SUPABASE_JWT_SECRET is required")
	}

	return AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8000"),
		RedisAddr: getEnv("REDIS_ADDR", "redis-friendchat:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWT: jwt.Config{
			Secret:   secret,
			Issuer:   "friendchat-beta",
			Audience: "authenticated",
			TTL:      720 * time.Hour,
			KID:      "beta-key-1",
		},

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
	}, nil
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
