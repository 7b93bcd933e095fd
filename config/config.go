package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the environment-supplied configuration for the server.
type Config struct {
	Port     string
	AppEnv   string
	MongoURI string
	MongoDB  string

	JWTSecret               []byte
	EmailVerificationSecret []byte
	JWTExpire               time.Duration
	CookieExpire            time.Duration
	ResetTokenTTL           time.Duration

	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	FromName  string
	FromEmail string

	AllowedOrigins []string
	RedisAddr      string
}

// Production reports whether the server runs in the production
// environment, which enables the secure flag on session cookies.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

// Load reads configuration from the environment. Call godotenv.Load
// first if a .env file should be honored.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          envOr("PORT", "8080"),
		AppEnv:        os.Getenv("APP_ENV"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDB:       envOr("MONGO_DB", "yearbook"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      os.Getenv("SMTP_PORT"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		FromName:      envOr("FROM_NAME", "Yearbook"),
		FromEmail:     os.Getenv("FROM_EMAIL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		JWTExpire:     24 * time.Hour * time.Duration(envInt("JWT_EXPIRE_DAYS", 30)),
		CookieExpire:  24 * time.Hour * time.Duration(envInt("JWT_COOKIE_EXPIRE_DAYS", 30)),
		ResetTokenTTL: time.Minute * time.Duration(envInt("RESET_TOKEN_TTL_MIN", 10)),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI not set in env")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set in env")
	}
	cfg.JWTSecret = []byte(secret)

	emailSecret := os.Getenv("EMAIL_VERIFICATION_SECRET")
	if emailSecret == "" {
		return nil, fmt.Errorf("EMAIL_VERIFICATION_SECRET not set in env")
	}
	cfg.EmailVerificationSecret = []byte(emailSecret)

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
