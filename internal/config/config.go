package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	CORSAllowedOrigins []string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Observability ObservabilityConfig
	Redis         RedisConfig
	RateLimit     RateLimitConfig
	UsageMetrics  UsageMetricsConfig
	Bootstrap     BootstrapConfig
}

// ObservabilityConfig controls logs, traces and OTLP metrics.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string

	TracingEnabled bool
	OTLPProtocol   string
	SamplingRatio  float64

	// SlowQuery is the duration above which a SQL statement is logged at
	// warn level.
	SlowQuery time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a redis endpoint was configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type RateLimitConfig struct {
	Enabled     bool
	ReportRate  float64
	ReportBurst int
	ExportLock  int
}

type UsageMetricsConfig struct {
	Enabled         bool
	Exporter        string
	Endpoint        string
	AuthToken       string
	IntervalMinutes int
}

type BootstrapConfig struct {
	EnsureDefaultCompany bool
	AdminEmail           string
	AdminPassword        string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	dev := isDevEnv(environment)

	cfg := Config{
		AppName:            getenv("APP_SERVICE", "crm"),
		AppVersion:         getenv("APP_VERSION", "0.1.0"),
		Environment:        environment,
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:       getenv("OTLP_ENDPOINT", "localhost:4317"),
		CORSAllowedOrigins: parseList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		DBType:             getenv("DATABASE_TYPE", "postgres"),
		DBHost:             getenv("DATABASE_HOST", "localhost"),
		DBPort:             getenv("DATABASE_PORT", "5432"),
		DBName:             getenv("DATABASE_NAME", "crm"),
		DBUser:             getenv("DATABASE_USER", "postgres"),
		DBPassword:         getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:          getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:      getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:      getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime:  getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime:  getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),
		Observability: ObservabilityConfig{
			LogLevel:       strings.ToLower(getenv("LOG_LEVEL", pick(dev, "debug", "info"))),
			LogFormat:      strings.ToLower(getenv("LOG_FORMAT", pick(dev, "console", "json"))),
			TracingEnabled: getenvBool("OTEL_ENABLED", !dev),
			OTLPProtocol:   strings.ToLower(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
			SamplingRatio:  getenvFloat("OTEL_SAMPLING_RATIO", pickFloat(dev, 1, 0.1)),
			SlowQuery:      time.Duration(getenvInt("DATABASE_SLOW_QUERY_MS", 500)) * time.Millisecond,
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       getenvInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:     getenvBool("RATE_LIMIT_ENABLED", false),
			ReportRate:  getenvFloat("REPORT_RATE", 2),
			ReportBurst: getenvInt("REPORT_BURST", 20),
			ExportLock:  getenvInt("REPORT_EXPORT_LOCK_SECONDS", 30),
		},
		UsageMetrics: UsageMetricsConfig{
			Enabled:         getenvBool("USAGE_METRICS_ENABLED", false),
			Exporter:        strings.ToLower(getenv("USAGE_METRICS_EXPORTER", "")),
			Endpoint:        strings.TrimSpace(getenv("USAGE_METRICS_ENDPOINT", "")),
			AuthToken:       strings.TrimSpace(getenv("USAGE_METRICS_AUTH_TOKEN", "")),
			IntervalMinutes: getenvInt("USAGE_METRICS_INTERVAL_MINUTES", 30),
		},
		Bootstrap: BootstrapConfig{
			EnsureDefaultCompany: getenvBool("BOOTSTRAP_DEFAULT_COMPANY", false),
			AdminEmail:           getenv("BOOTSTRAP_ADMIN_EMAIL", "admin@crm.local"),
			AdminPassword:        getenv("BOOTSTRAP_ADMIN_PASSWORD", "admin"),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// Debug reports whether verbose diagnostics (stacks in request logs, caller
// info) should be emitted.
func (c Config) Debug() bool {
	return c.Observability.LogLevel == "debug" || isDevEnv(c.Environment)
}

func isDevEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

func pickFloat(cond bool, yes, no float64) float64 {
	if cond {
		return yes
	}
	return no
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
