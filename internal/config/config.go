// Package config loads application configuration from environment
// variables.  Required variables are enforced by must() and missing
// values abort startup with a fatal log message.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.
type Config struct {
	Env               string        // application environment (e.g. "dev", "prod")
	Port              string        // HTTP port to listen on
	DBUser            string        // database username
	DBPass            string        // database password (optional)
	DBHost            string        // database host address
	DBPort            string        // database port number
	DBName            string        // database name
	JWTSecret         string        // secret used to verify access tokens
	ReservationWindow time.Duration // how long an unpaid order holds its ticket
}

// Load reads configuration from the environment.  The reservation window
// is configured in minutes and must be positive: a zero or negative
// window would make every new order instantly expired.
func Load() Config {
	cfg := Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		JWTSecret:         must("JWT_SECRET"),
		ReservationWindow: time.Duration(mustInt("RESERVATION_TTL_MIN")) * time.Minute,
	}
	if cfg.ReservationWindow <= 0 {
		log.Fatalf("RESERVATION_TTL_MIN must be positive, got %s", cfg.ReservationWindow)
	}
	return cfg
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
