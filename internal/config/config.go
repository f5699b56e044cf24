package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"
	"time"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database settings are only required when the
// store driver is a SQL driver.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	StoreDriver  string        // mysql, postgres or memory
	DBUser       string        // database username
	DBPass       string        // database password (optional)
	DBHost       string        // database host address
	DBPort       string        // database port number
	DBName       string        // database name
	DBSSLMode    string        // postgres sslmode (disable, require, verify-full)
	StoreTimeout time.Duration // upper bound for a single request's store work

	JWTSecret       string // secret used to sign admin session JWTs
	AdminSessionTTL int    // admin session lifetime in minutes

	AdminOverrideToken     string // plaintext admin override token
	AdminOverrideTokenHash string // bcrypt hash; takes precedence over the plaintext token

	MinBookingMinutes   int // shortest admissible booking
	DefaultRoomCapacity int // capacity given to auto-provisioned rooms

	LogLevel  string // debug, info, warn, error
	LogFormat string // json or console

	RabbitURL   string // broker for booking lifecycle events; empty disables publishing
	EventLogDir string // directory the audit consumer appends to
}

// Load reads configuration values from environment variables and returns a
// Config.  All missing required variables are reported together.
func Load() (Config, error) {
	var missing []string
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := Config{
		Env:                    envStr("APP_ENV", "dev"),
		Port:                   envStr("APP_PORT", "8080"),
		StoreDriver:            strings.ToLower(envStr("STORE_DRIVER", DriverMySQL)),
		DBPass:                 os.Getenv("DB_PASS"),
		DBSSLMode:              envStr("DB_SSLMODE", "disable"),
		StoreTimeout:           envDur("STORE_TIMEOUT", 5*time.Second),
		AdminSessionTTL:        envInt("ADMIN_SESSION_TTL_MIN", 30),
		AdminOverrideToken:     envStr("ADMIN_OVERRIDE_TOKEN", "admin123"),
		AdminOverrideTokenHash: os.Getenv("ADMIN_OVERRIDE_TOKEN_BCRYPT"),
		MinBookingMinutes:      envInt("MIN_BOOKING_MINUTES", 30),
		DefaultRoomCapacity:    envInt("DEFAULT_ROOM_CAPACITY", 4),
		LogLevel:               envStr("LOG_LEVEL", "info"),
		LogFormat:              envStr("LOG_FORMAT", "json"),
		RabbitURL:              rabbitURL(),
		EventLogDir:            envStr("EVENT_LOG_DIR", "logs"),
	}

	switch cfg.StoreDriver {
	case DriverMySQL, DriverPostgres:
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	cfg.JWTSecret = must("JWT_SECRET")

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if cfg.MinBookingMinutes < 1 {
		return Config{}, errors.New("MIN_BOOKING_MINUTES must be positive")
	}
	if cfg.DefaultRoomCapacity < 0 {
		cfg.DefaultRoomCapacity = 0
	}
	if cfg.AdminSessionTTL < 1 {
		cfg.AdminSessionTTL = 30
	}
	return cfg, nil
}

// rabbitURL honours both RABBITMQ_URL and the older AMQP_URL name.  An
// explicit "off" disables event publishing.
func rabbitURL() string {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		url = os.Getenv("AMQP_URL")
	}
	if strings.EqualFold(url, "off") {
		return ""
	}
	return url
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
