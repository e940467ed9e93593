package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Hygraph   HygraphConfig
	Clerk     ClerkConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	SMTP      SMTPConfig
	RateLimit RateLimitConfig
	Exports   ExportsConfig
	DevAuth   DevAuthConfig
}

// HygraphConfig describes the upstream GraphQL backend.
type HygraphConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// ClerkConfig holds token verification material for the identity provider.
type ClerkConfig struct {
	SecretKey    string
	PEMPublicKey string
}

// DatabaseConfig backs the local audit-trail store.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SMTPConfig configures the contact-form mail relay.
type SMTPConfig struct {
	Host             string
	Port             int
	User             string
	Password         string
	From             string
	ContactRecipient string
}

// RateLimitConfig is the blunt global request budget.
type RateLimitConfig struct {
	PerMinute int
}

// ExportsConfig configures asynchronous CSV/PDF export generation.
type ExportsConfig struct {
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// DevAuthConfig drives the Clerk-less development login and seeding.
type DevAuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	// The legacy deployment exported NODE_ENV; honor it when ENV is unset.
	if env := v.GetString("NODE_ENV"); env != "" && cfg.Env == EnvDevelopment {
		cfg.Env = env
	}
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Hygraph = HygraphConfig{
		Endpoint: v.GetString("HYGRAPH_ENDPOINT"),
		Token:    v.GetString("HYGRAPH_TOKEN"),
		Timeout:  parseDuration(v.GetString("HYGRAPH_TIMEOUT"), 10*time.Second),
	}

	cfg.Clerk = ClerkConfig{
		SecretKey:    v.GetString("CLERK_SECRET_KEY"),
		PEMPublicKey: v.GetString("CLERK_PEM_PUBLIC_KEY"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	origins := splitAndTrim(v.GetString("FRONTEND_URL"))
	origins = append(origins, splitAndTrim(v.GetString("ALLOWED_ORIGINS"))...)
	cfg.CORS = CORSConfig{AllowedOrigins: origins}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.SMTP = SMTPConfig{
		Host:             v.GetString("SMTP_HOST"),
		Port:             v.GetInt("SMTP_PORT"),
		User:             v.GetString("SMTP_USER"),
		Password:         v.GetString("SMTP_PASSWORD"),
		From:             v.GetString("SMTP_FROM"),
		ContactRecipient: v.GetString("CONTACT_RECIPIENT"),
	}

	cfg.RateLimit = RateLimitConfig{
		PerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
	}

	cfg.DevAuth = DevAuthConfig{
		TokenSecret: v.GetString("DEV_TOKEN_SECRET"),
		TokenExpiry: parseDuration(v.GetString("DEV_TOKEN_EXPIRY"), 24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("HYGRAPH_ENDPOINT", "")
	v.SetDefault("HYGRAPH_TOKEN", "")
	v.SetDefault("HYGRAPH_TIMEOUT", "10s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "academy_gateway")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("FRONTEND_URL", "")
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "noreply@academy.local")
	v.SetDefault("CONTACT_RECIPIENT", "")

	v.SetDefault("RATE_LIMIT_PER_MINUTE", 300)

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)

	v.SetDefault("DEV_TOKEN_SECRET", "dev_secret")
	v.SetDefault("DEV_TOKEN_EXPIRY", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
