package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr            = ":8080"
	defaultDatabaseURL         = "hotel.db"
	defaultJWTSecret           = "change-me-jwt-secret"
	defaultJWTAccessTTL        = "24h"
	defaultFlutterwaveBaseURL  = "https://api.flutterwave.com"
	defaultExchangeRateTTL     = "1h"
	defaultExchangeRateTimeout = "5s"
	defaultKafkaTopic          = "license-events"
	defaultWebhookRPS          = "20"
	defaultWebhookBurst        = "40"
	defaultMailFrom            = "licensing@hotelfolio.local"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	JWTSecret    string
	JWTAccessTTL time.Duration

	// FlutterwaveSecretHash is compared against the verif-hash header of webhook calls.
	FlutterwaveSecretHash string
	FlutterwaveSecretKey  string
	FlutterwaveBaseURL    string

	ExchangeRateTTL     time.Duration
	ExchangeRateTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	SMTPAddr     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	WebhookRPS   float64
	WebhookBurst int

	CORSAllowedOrigins []string
	// MetricsToken guards /metrics with a static bearer token when set.
	MetricsToken string

	// OrderRevenueSameDay restricts order revenue to orders created on the reference day.
	OrderRevenueSameDay bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.FlutterwaveSecretHash = strings.TrimSpace(os.Getenv("FLUTTERWAVE_SECRET_HASH"))
	cfg.FlutterwaveSecretKey = strings.TrimSpace(os.Getenv("FLUTTERWAVE_SECRET_KEY"))
	cfg.FlutterwaveBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("FLUTTERWAVE_BASE_URL", defaultFlutterwaveBaseURL)), "/")
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaTopic = strings.TrimSpace(getEnv("KAFKA_TOPIC_LICENSE_EVENTS", defaultKafkaTopic))
	cfg.SMTPAddr = strings.TrimSpace(os.Getenv("SMTP_ADDR"))
	cfg.SMTPUser = strings.TrimSpace(os.Getenv("SMTP_USER"))
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.MailFrom = strings.TrimSpace(getEnv("MAIL_FROM", defaultMailFrom))
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	cfg.MetricsToken = strings.TrimSpace(os.Getenv("METRICS_TOKEN"))
	cfg.OrderRevenueSameDay = parseBoolEnv("ORDER_REVENUE_SAME_DAY", "false")

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.ExchangeRateTTL, err = parseDurationEnv("EXCHANGE_RATE_TTL", defaultExchangeRateTTL)
	if err != nil {
		return nil, err
	}
	cfg.ExchangeRateTimeout, err = parseDurationEnv("EXCHANGE_RATE_TIMEOUT", defaultExchangeRateTimeout)
	if err != nil {
		return nil, err
	}

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}
	cfg.WebhookRPS, err = strconv.ParseFloat(getEnv("WEBHOOK_RPS", defaultWebhookRPS), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_RPS value: %w", err)
	}
	cfg.WebhookBurst, err = strconv.Atoi(getEnv("WEBHOOK_BURST", defaultWebhookBurst))
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_BURST value: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.ExchangeRateTTL <= 0 {
		return fmt.Errorf("EXCHANGE_RATE_TTL must be > 0")
	}
	if cfg.ExchangeRateTimeout <= 0 {
		return fmt.Errorf("EXCHANGE_RATE_TIMEOUT must be > 0")
	}
	if cfg.WebhookRPS <= 0 || cfg.WebhookBurst <= 0 {
		return fmt.Errorf("WEBHOOK_RPS and WEBHOOK_BURST must be > 0")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.FlutterwaveSecretHash == "" {
			return fmt.Errorf("in prod/release FLUTTERWAVE_SECRET_HASH must be set")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
