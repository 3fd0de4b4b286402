package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Redis    RedisConfig
	Store    StoreConfig
	Catalog  CatalogConfig
	S3       S3Config
	Log      LogConfig
	CORS     CORSConfig
	Checks   ChecksConfig
	Reporter ReporterConfig
	Events   EventsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StoreConfig selects the document record store.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// CatalogConfig locates the rule catalog. An empty Source uses the embedded default;
// "s3://bucket/key" downloads from S3; anything else is a file path.
type CatalogConfig struct {
	Source string `mapstructure:"source"`
}

// S3Config holds AWS S3 settings used to fetch the catalog.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Development reports whether console (development) encoding was requested.
func (l *LogConfig) Development() bool {
	return l.Format != "json"
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ChecksConfig holds lifecycle check settings. Remote checks without a URL always fail.
type ChecksConfig struct {
	VirusScanURL     string        `mapstructure:"virus_scan_url"`
	FinalReviewURL   string        `mapstructure:"final_review_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	BreakerFailures  uint32        `mapstructure:"breaker_failures"`
	BreakerOpenFor   time.Duration `mapstructure:"breaker_open_for"`
	BreakerHalfOpenN uint32        `mapstructure:"breaker_half_open_requests"`
}

// ReporterConfig holds invalid-document error reporting settings.
type ReporterConfig struct {
	Provider    string   `mapstructure:"provider"`
	Region      string   `mapstructure:"region"`
	FromAddress string   `mapstructure:"from_address"`
	FromName    string   `mapstructure:"from_name"`
	ToAddresses []string `mapstructure:"to_addresses"`
}

// EventsConfig holds document event publishing settings.
type EventsConfig struct {
	Provider      string `mapstructure:"provider"`
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// Load reads configuration from environment variables with the TAXDOCS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TAXDOCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "20s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "taxdocs")
	v.SetDefault("db.password", "taxdocs_secret")
	v.SetDefault("db.name", "taxdocs_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Redis defaults
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.key_prefix", "taxdocs:")
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	v.SetDefault("store.driver", StoreMemory)
	v.SetDefault("catalog.source", "")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Check defaults
	v.SetDefault("checks.virus_scan_url", "")
	v.SetDefault("checks.final_review_url", "")
	v.SetDefault("checks.timeout", "10s")
	v.SetDefault("checks.breaker_failures", 5)
	v.SetDefault("checks.breaker_open_for", "30s")
	v.SetDefault("checks.breaker_half_open_requests", 1)

	// Reporter defaults
	v.SetDefault("reporter.provider", "noop")
	v.SetDefault("reporter.region", "us-east-1")
	v.SetDefault("reporter.from_address", "noreply@taxdocs.local")
	v.SetDefault("reporter.from_name", "Tax Documents")
	v.SetDefault("reporter.to_addresses", "")

	// Event defaults
	v.SetDefault("events.provider", "noop")
	v.SetDefault("events.url", "nats://localhost:4222")
	v.SetDefault("events.subject_prefix", "taxdocs")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "TAXDOCS_SERVER_PORT",
		"server.read_timeout":               "TAXDOCS_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "TAXDOCS_SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout":           "TAXDOCS_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":                "TAXDOCS_SERVER_ENVIRONMENT",
		"db.host":                           "TAXDOCS_DB_HOST",
		"db.port":                           "TAXDOCS_DB_PORT",
		"db.user":                           "TAXDOCS_DB_USER",
		"db.password":                       "TAXDOCS_DB_PASSWORD",
		"db.name":                           "TAXDOCS_DB_NAME",
		"db.sslmode":                        "TAXDOCS_DB_SSLMODE",
		"db.max_open":                       "TAXDOCS_DB_MAX_OPEN",
		"db.max_idle":                       "TAXDOCS_DB_MAX_IDLE",
		"redis.url":                         "TAXDOCS_REDIS_URL",
		"redis.key_prefix":                  "TAXDOCS_REDIS_KEY_PREFIX",
		"redis.pool_size":                   "TAXDOCS_REDIS_POOL_SIZE",
		"redis.min_idle_conns":              "TAXDOCS_REDIS_MIN_IDLE_CONNS",
		"redis.dial_timeout":                "TAXDOCS_REDIS_DIAL_TIMEOUT",
		"redis.read_timeout":                "TAXDOCS_REDIS_READ_TIMEOUT",
		"redis.write_timeout":               "TAXDOCS_REDIS_WRITE_TIMEOUT",
		"store.driver":                      "TAXDOCS_STORE_DRIVER",
		"catalog.source":                    "TAXDOCS_CATALOG_SOURCE",
		"s3.region":                         "TAXDOCS_S3_REGION",
		"s3.endpoint":                       "TAXDOCS_S3_ENDPOINT",
		"s3.access_key":                     "TAXDOCS_S3_ACCESS_KEY",
		"s3.secret_key":                     "TAXDOCS_S3_SECRET_KEY",
		"log.level":                         "TAXDOCS_LOG_LEVEL",
		"log.format":                        "TAXDOCS_LOG_FORMAT",
		"cors.allowed_origins":              "TAXDOCS_CORS_ALLOWED_ORIGINS",
		"checks.virus_scan_url":             "TAXDOCS_CHECKS_VIRUS_SCAN_URL",
		"checks.final_review_url":           "TAXDOCS_CHECKS_FINAL_REVIEW_URL",
		"checks.timeout":                    "TAXDOCS_CHECKS_TIMEOUT",
		"checks.breaker_failures":           "TAXDOCS_CHECKS_BREAKER_FAILURES",
		"checks.breaker_open_for":           "TAXDOCS_CHECKS_BREAKER_OPEN_FOR",
		"checks.breaker_half_open_requests": "TAXDOCS_CHECKS_BREAKER_HALF_OPEN_REQUESTS",
		"reporter.provider":                 "TAXDOCS_REPORTER_PROVIDER",
		"reporter.region":                   "TAXDOCS_REPORTER_REGION",
		"reporter.from_address":             "TAXDOCS_REPORTER_FROM_ADDRESS",
		"reporter.from_name":                "TAXDOCS_REPORTER_FROM_NAME",
		"reporter.to_addresses":             "TAXDOCS_REPORTER_TO_ADDRESSES",
		"events.provider":                   "TAXDOCS_EVENTS_PROVIDER",
		"events.url":                        "TAXDOCS_EVENTS_URL",
		"events.subject_prefix":             "TAXDOCS_EVENTS_SUBJECT_PREFIX",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Platforms that inject PORT win unless TAXDOCS_SERVER_PORT is set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TAXDOCS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Redis = RedisConfig{
		URL:          v.GetString("redis.url"),
		KeyPrefix:    v.GetString("redis.key_prefix"),
		PoolSize:     v.GetInt("redis.pool_size"),
		MinIdleConns: v.GetInt("redis.min_idle_conns"),
		DialTimeout:  v.GetDuration("redis.dial_timeout"),
		ReadTimeout:  v.GetDuration("redis.read_timeout"),
		WriteTimeout: v.GetDuration("redis.write_timeout"),
	}
	cfg.Store = StoreConfig{Driver: strings.ToLower(v.GetString("store.driver"))}
	switch cfg.Store.Driver {
	case StoreMemory, StorePostgres, StoreRedis:
	default:
		return nil, fmt.Errorf("config: unknown store driver %q", cfg.Store.Driver)
	}
	cfg.Catalog = CatalogConfig{Source: v.GetString("catalog.source")}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{AllowedOrigins: splitList(v.GetString("cors.allowed_origins"))}
	cfg.Checks = ChecksConfig{
		VirusScanURL:     v.GetString("checks.virus_scan_url"),
		FinalReviewURL:   v.GetString("checks.final_review_url"),
		Timeout:          v.GetDuration("checks.timeout"),
		BreakerFailures:  v.GetUint32("checks.breaker_failures"),
		BreakerOpenFor:   v.GetDuration("checks.breaker_open_for"),
		BreakerHalfOpenN: v.GetUint32("checks.breaker_half_open_requests"),
	}
	cfg.Reporter = ReporterConfig{
		Provider:    v.GetString("reporter.provider"),
		Region:      v.GetString("reporter.region"),
		FromAddress: v.GetString("reporter.from_address"),
		FromName:    v.GetString("reporter.from_name"),
		ToAddresses: splitList(v.GetString("reporter.to_addresses")),
	}
	cfg.Events = EventsConfig{
		Provider:      v.GetString("events.provider"),
		URL:           v.GetString("events.url"),
		SubjectPrefix: v.GetString("events.subject_prefix"),
	}

	return cfg, nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
