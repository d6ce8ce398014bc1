package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides the loaded configuration to the fx graph.
var Module = fx.Module("config",
	fx.Provide(Load),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	// Secret used to derive the AES key for stored upstream credentials.
	ConfigSecret string

	OTLPEndpoint string

	Evalue8 Evalue8Config

	RateLimit RateLimitConfig

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
}

// Evalue8Config addresses the upstream valuation web service.
type Evalue8Config struct {
	LiveBaseURL    string
	SandboxBaseURL string
	Timeout        time.Duration
}

// RateLimitConfig controls the redis token bucket for billed valuation calls.
type RateLimitConfig struct {
	Enabled        bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ValuationRate  float64
	ValuationBurst int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "drivevalue"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		ConfigSecret: strings.TrimSpace(getenv("CONFIG_ENC_SECRET", "")),
		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),
		Evalue8: Evalue8Config{
			LiveBaseURL:    getenv("EVALUE8_LIVE_BASE_URL", "https://www.evalue8.co.za/evalue8webservice/"),
			SandboxBaseURL: getenv("EVALUE8_SANDBOX_BASE_URL", "https://www.evalue8.co.za/evalue8webservice/sandbox/"),
			Timeout:        getenvDuration("EVALUE8_TIMEOUT", 15*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:      strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword:  getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:        int(getenvInt64("RATE_LIMIT_REDIS_DB", 0)),
			ValuationRate:  getenvFloat("RATE_LIMIT_VALUATION_RATE", 5),
			ValuationBurst: int(getenvInt64("RATE_LIMIT_VALUATION_BURST", 10)),
		},
		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "drivevalue"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 2)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 10)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 3600)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 600)),
	}

	return cfg
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

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
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

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
