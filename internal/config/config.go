// Package config loads service settings from an optional env file and the
// process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the service.
type Config struct {
	// Application
	AppHost  string
	AppPort  string
	LogLevel string
	LogDir   string

	// PostgreSQL
	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int

	// Redis
	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int

	// Kafka; empty brokers disable ledger event publishing
	KafkaBrokers []string
	KafkaTopic   string

	// Tokens
	JWTSecretKey  string
	JWTExp        time.Duration
	ResetTokenExp time.Duration

	DefaultUserCredits int

	// SMTP; reset emails are only logged when host, user or password is empty
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailsFrom   string
	FrontendURL  string

	CORSAllowedOrigins []string
	// AllowedHosts limits accepted Host headers; empty accepts any host
	AllowedHosts []string
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders  bool
	AuthRateLimitRPS   float64
	AuthRateLimitBurst int

	SuperuserEmail    string
	SuperuserPassword string
}

// DSN returns the PostgreSQL connection string for the pgx driver.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDB)
}

// Parse loads environment variables from the file at path (if present) and
// returns the resulting configuration. Unset keys fall back to defaults;
// malformed numbers are reported as errors.
func Parse(path string) (*Config, error) {
	_ = godotenv.Load(path)

	p := &parser{}
	cfg := &Config{}

	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")
	cfg.LogDir = getEnv("APP_LOG_DIR", "")

	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGPort = p.int("POSTGRES_PORT", 5432)
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "database")
	cfg.PGMaxOpenConns = p.int("POSTGRES_MAX_OPEN_CONNS", 16)
	cfg.PGMaxIdleConns = p.int("POSTGRES_MAX_IDLE_CONNS", 8)

	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	cfg.RedisPort = p.int("REDIS_PORT", 6379)
	cfg.RedisDB = p.int("REDIS_DB", 0)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisPoolSize = p.int("REDIS_POOL_SIZE", 10)
	cfg.RedisMinIdleConns = p.int("REDIS_MIN_IDLE_CONNS", 2)

	cfg.KafkaBrokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "credit-events")

	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	cfg.JWTExp = time.Duration(p.int("JWT_EXP_SECOND", 3600)) * time.Second
	cfg.ResetTokenExp = time.Duration(p.int("RESET_TOKEN_EXP_SECOND", 3600)) * time.Second

	cfg.DefaultUserCredits = p.int("DEFAULT_USER_CREDITS", 10)

	cfg.SMTPHost = getEnv("SMTP_HOST", "")
	cfg.SMTPPort = p.int("SMTP_PORT", 587)
	cfg.SMTPUser = getEnv("SMTP_USER", "")
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", "")
	cfg.EmailsFrom = getEnv("EMAILS_FROM_EMAIL", cfg.SMTPUser)
	cfg.FrontendURL = strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/")

	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"))
	cfg.AllowedHosts = splitList(getEnv("ALLOWED_HOSTS", "localhost,127.0.0.1,0.0.0.0,nginx"))
	cfg.TrustProxyHeaders = p.bool("TRUST_PROXY_HEADERS", false)
	cfg.AuthRateLimitRPS = p.float("AUTH_RATE_LIMIT_RPS", 5)
	cfg.AuthRateLimitBurst = p.int("AUTH_RATE_LIMIT_BURST", 10)

	cfg.SuperuserEmail = getEnv("SUPERUSER_EMAIL", "")
	cfg.SuperuserPassword = getEnv("SUPERUSER_PASSWORD", "")

	if p.err != nil {
		return nil, p.err
	}
	if cfg.DefaultUserCredits < 0 {
		return nil, fmt.Errorf("DEFAULT_USER_CREDITS must be >= 0, got %d", cfg.DefaultUserCredits)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultValue
}

// parser keeps the first conversion error so Parse can read every key in
// sequence and report once.
type parser struct {
	err error
}

func (p *parser) int(key string, defaultValue int) int {
	raw := getEnv(key, strconv.Itoa(defaultValue))
	v, err := strconv.Atoi(raw)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("invalid %s: %w", key, err)
		}
		return defaultValue
	}
	return v
}

func (p *parser) float(key string, defaultValue float64) float64 {
	raw := getEnv(key, strconv.FormatFloat(defaultValue, 'f', -1, 64))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("invalid %s: %w", key, err)
		}
		return defaultValue
	}
	return v
}

func (p *parser) bool(key string, defaultValue bool) bool {
	raw := getEnv(key, strconv.FormatBool(defaultValue))
	v, err := strconv.ParseBool(raw)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("invalid %s: %w", key, err)
		}
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
