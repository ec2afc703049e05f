package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time converts the confirm window into a Duration
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for pool sizes.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	// JWTSecret, when set, lets the identity middleware decode an
	// optional bearer token to key rate limiting by user rather than
	// IP. There is no login/session system in this service — owner
	// matching on confirm is done by comparing the user_id in the
	// request body against the booking row, per spec.
	JWTSecret string

	Scheduler SchedulerConfig
}

// SchedulerConfig holds the booking scheduler's tunables (spec.md §6.4).
type SchedulerConfig struct {
	ConfirmWindow   time.Duration // W: how long a promoted offer stays claimable
	WorkerCount     int           // read from WORKER_COUNT; StartConsumers does not use it and runs one consumer per queue
	DBPoolMax       int           // max open DB connections
	DBPoolMinIdle   int           // idle-connection pool size, applied as the max idle connections
	BusHost         string        // RabbitMQ connection string override
	EnableConsumers bool          // false starts an API-only instance
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),      // environment (dev/test/prod)
		Port:      must("APP_PORT"),     // port to bind the HTTP server
		DBUser:    must("DB_USER"),      // database user
		DBPass:    os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:    must("DB_HOST"),      // database host
		DBPort:    must("DB_PORT"),      // database port
		DBName:    must("DB_NAME"),      // database name
		JWTSecret: os.Getenv("JWT_SECRET"),
		Scheduler: loadSchedulerConfig(),
	}
}

func loadSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		ConfirmWindow:   envDuration("CONFIRM_WINDOW_SECONDS", 10*time.Second),
		WorkerCount:     envInt("WORKER_COUNT", 20),
		DBPoolMax:       envInt("DB_POOL_MAX", 10),
		DBPoolMinIdle:   envInt("DB_POOL_MIN_IDLE", 2),
		BusHost:         os.Getenv("RABBITMQ_URL"),
		EnableConsumers: envBoolDefault("ENABLE_CONSUMERS", true),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(n) * time.Second
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return def
}
