package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Upstream UpstreamConfig
	Origin   OriginConfig
	Postgres PostgresConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	AppEnv       string   `validate:"required"`
	HTTPPort     string   `validate:"required"`
	GRPCPort     string   `validate:"required"`
	AllowOrigins []string `validate:"min=1"` // CORS
}

type LoggerConfig struct {
	Level             string `validate:"oneof=debug info warn error"`
	Encoding          string `validate:"oneof=console json"`
	DisableCaller     bool
	DisableStacktrace bool
}

// UpstreamConfig points the category fetcher at the catalog origin.
type UpstreamConfig struct {
	BaseURL     string        `validate:"required,url"`
	Path        string        `validate:"required,startswith=/"`
	Timeout     time.Duration `validate:"gt=0"`
	MaxAttempts int           `validate:"min=1,max=10"`
	BackoffStep time.Duration `validate:"gte=0"`
}

// OriginConfig controls the locally served /categories endpoint.
type OriginConfig struct {
	Enabled      bool
	AutoMigrate  bool
	CacheEnabled bool
	CacheTTL     time.Duration `validate:"gte=0"`
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoadEnv reads the environment. Without UPSTREAM_BASE_URL the navigation fetches from this
// server's own origin routes, which only exist when ORIGIN_ENABLED is set; otherwise the base
// URL stays empty and Validate rejects it.
func LoadEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			AppEnv:       getEnv("APP_ENV", "dev"),
			HTTPPort:     getEnv("HTTP_PORT", ":8080"),
			GRPCPort:     getEnv("GRPC_PORT", ":8082"),
			AllowOrigins: getEnvSlice("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Upstream: UpstreamConfig{
			BaseURL:     getEnv("UPSTREAM_BASE_URL", ""),
			Path:        getEnv("UPSTREAM_CATEGORIES_PATH", "/categories"),
			Timeout:     getEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second),
			MaxAttempts: getEnvInt("UPSTREAM_MAX_ATTEMPTS", 3),
			BackoffStep: getEnvDuration("UPSTREAM_BACKOFF_STEP", time.Second),
		},
		Origin: OriginConfig{
			Enabled:      getEnvBool("ORIGIN_ENABLED", false),
			AutoMigrate:  getEnvBool("ORIGIN_AUTO_MIGRATE", false),
			CacheEnabled: getEnvBool("ORIGIN_CACHE_ENABLED", false),
			CacheTTL:     getEnvDuration("ORIGIN_CACHE_TTL", 5*time.Minute),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5433"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "omnipos_storefront"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}

	if cfg.Upstream.BaseURL == "" && cfg.Origin.Enabled {
		cfg.Upstream.BaseURL = "http://localhost" + withColon(cfg.Server.HTTPPort)
	}
	return cfg
}

func withColon(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// Validate checks the loaded values before any component is built from them.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("750ms") or plain milliseconds ("750").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return fallback
}
