package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"time"
)

// Config holds all runtime configuration values. Required variables
// are enforced by must(); optional ones fall back to defaults suited
// for local development.
type Config struct {
	Env           string        // application environment (dev/test/prod)
	Port          string        // HTTP port to listen on
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	DBMaxOpen     int           // connection pool upper bound
	DBMaxIdle     int           // idle connections kept around
	DBConnLife    time.Duration // connection recycle interval
	DBPingTimeout time.Duration // startup connectivity check bound
	JWTSecret     string        // secret used to sign session tokens
	TokenValidity time.Duration // session token lifetime
	BcryptCost    int           // bcrypt cost for password hashing
	SlotLockTTL   time.Duration // per-slot booking lock lifetime
}

// Load reads configuration from environment variables. Missing
// required values abort startup with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		DBMaxOpen:     envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdle:     envInt("DB_MAX_IDLE_CONNS", 25),
		DBConnLife:    envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBPingTimeout: envDur("DB_PING_TIMEOUT", 5*time.Second),
		JWTSecret:     must("JWT_SECRET"),
		TokenValidity: time.Duration(envInt("TOKEN_TTL_HOURS", 10)) * time.Hour,
		BcryptCost:    envInt("BCRYPT_COST", 12),
		SlotLockTTL:   envDur("SLOT_LOCK_TTL", 5*time.Second),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
