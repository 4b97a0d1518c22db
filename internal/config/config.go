package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported values for DB_DRIVER.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSurreal  = "surrealdb"
)

// Provider exposes the configuration values consumed by the rest of the application.
type Provider interface {
	GetServerAddr() string
	GetLogFormat() string
	GetLogLevel() string

	GetDBDriver() string
	GetDBDSN() string
	GetDBMaxOpenConns() int
	GetDBMaxIdleConns() int
	GetDBConnMaxIdleTime() time.Duration
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration

	GetSurrealURL() string
	GetSurrealNs() string
	GetSurrealDb() string
	GetSurrealUser() string
	GetSurrealPass() string

	GetCORSOrigin() string
	GetRateLimitMax() int
	GetRateLimitWindow() time.Duration
	GetStaticDir() string

	GetTracingEnabled() bool
	GetTracingServiceName() string
	GetTracingZipkinURL() string
}

// Config holds all configuration for the application.
type Config struct {
	ServerAddr string
	LogFormat  string
	LogLevel   string

	DBDriver          string
	DBDSN             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxIdleTime time.Duration
	DBQueryTimeout    time.Duration
	DBExecuteTimeout  time.Duration

	SurrealURL  string
	SurrealNs   string
	SurrealDb   string
	SurrealUser string
	SurrealPass string

	CORSOrigin      string
	RateLimitMax    int
	RateLimitWindow time.Duration
	StaticDir       string

	TracingEnabled     bool
	TracingServiceName string
	TracingZipkinURL   string
}

// New loads configuration from environment variables, reading a .env file first if present.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment, applying defaults.
func FromEnv() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":5000"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBDSN:             getEnv("DB_DSN", "file:topics.db?_foreign_keys=on"),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 5),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
		DBConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE", 10*time.Second),
		DBQueryTimeout:    getEnvDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		DBExecuteTimeout:  getEnvDuration("DB_EXECUTE_TIMEOUT", 10*time.Second),

		SurrealURL:  os.Getenv("SURREAL_URL"),
		SurrealNs:   os.Getenv("SURREAL_NS"),
		SurrealDb:   os.Getenv("SURREAL_DB"),
		SurrealUser: os.Getenv("SURREAL_USER"),
		SurrealPass: os.Getenv("SURREAL_PASS"),

		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 1000),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		StaticDir:       getEnv("STATIC_DIR", "public"),

		TracingEnabled:     getEnvBool("PUBSUB_TRACING_ENABLED", false),
		TracingServiceName: getEnv("PUBSUB_TRACING_SERVICE_NAME", "topictracker"),
		TracingZipkinURL:   getEnv("PUBSUB_TRACING_ZIPKIN_URL", "http://localhost:9411/api/v2/spans"),
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
		if c.DBDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required for SQL drivers"))
		}
	case DriverSurreal:
		if c.SurrealURL == "" || c.SurrealNs == "" || c.SurrealDb == "" {
			errs = append(errs, errors.New("SURREAL_URL, SURREAL_NS and SURREAL_DB are required when DB_DRIVER=surrealdb"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}

	if c.DBQueryTimeout <= 0 {
		errs = append(errs, errors.New("DB_QUERY_TIMEOUT must be a positive duration"))
	}
	if c.DBExecuteTimeout <= 0 {
		errs = append(errs, errors.New("DB_EXECUTE_TIMEOUT must be a positive duration"))
	}
	if c.RateLimitMax <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be positive"))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be a positive duration"))
	}
	if c.TracingEnabled && c.TracingZipkinURL == "" {
		errs = append(errs, errors.New("PUBSUB_TRACING_ZIPKIN_URL is required when tracing is enabled"))
	}

	return errors.Join(errs...)
}

func (c *Config) GetServerAddr() string { return c.ServerAddr }
func (c *Config) GetLogFormat() string  { return c.LogFormat }
func (c *Config) GetLogLevel() string   { return c.LogLevel }

func (c *Config) GetDBDriver() string                 { return c.DBDriver }
func (c *Config) GetDBDSN() string                    { return c.DBDSN }
func (c *Config) GetDBMaxOpenConns() int              { return c.DBMaxOpenConns }
func (c *Config) GetDBMaxIdleConns() int              { return c.DBMaxIdleConns }
func (c *Config) GetDBConnMaxIdleTime() time.Duration { return c.DBConnMaxIdleTime }
func (c *Config) GetDBQueryTimeout() time.Duration    { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration  { return c.DBExecuteTimeout }

func (c *Config) GetSurrealURL() string  { return c.SurrealURL }
func (c *Config) GetSurrealNs() string   { return c.SurrealNs }
func (c *Config) GetSurrealDb() string   { return c.SurrealDb }
func (c *Config) GetSurrealUser() string { return c.SurrealUser }
func (c *Config) GetSurrealPass() string { return c.SurrealPass }

func (c *Config) GetCORSOrigin() string             { return c.CORSOrigin }
func (c *Config) GetRateLimitMax() int              { return c.RateLimitMax }
func (c *Config) GetRateLimitWindow() time.Duration { return c.RateLimitWindow }
func (c *Config) GetStaticDir() string              { return c.StaticDir }

func (c *Config) GetTracingEnabled() bool       { return c.TracingEnabled }
func (c *Config) GetTracingServiceName() string { return c.TracingServiceName }
func (c *Config) GetTracingZipkinURL() string   { return c.TracingZipkinURL }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid value for %s (%q), using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Invalid boolean for %s (%q), using default %t", key, v, fallback)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s (%q), using default %s", key, v, fallback)
		return fallback
	}
	return d
}
