// Package config reads process configuration from SPRATICHE_-prefixed
// environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the API daemon needs at startup. The auth secret
// stays out of this struct; the account package reads it lazily.
type Config struct {
	Addr            string
	DatabaseDSN     string
	AllowedOrigins  []string
	RateLimitRPS    float64
	RateLimitBurst  int
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

// FromEnv builds a Config from the environment, applying defaults for
// anything unset.
func FromEnv() Config {
	return Config{
		Addr:            stringVar("SPRATICHE_ADDR", ":8080"),
		DatabaseDSN:     stringVar("SPRATICHE_PG_DSN", ""),
		AllowedOrigins:  listVar("SPRATICHE_CORS_ORIGINS", []string{"*"}),
		RateLimitRPS:    floatVar("SPRATICHE_RATE_RPS", 10),
		RateLimitBurst:  intVar("SPRATICHE_RATE_BURST", 20),
		MaxBodyBytes:    int64(intVar("SPRATICHE_MAX_BODY_BYTES", 1<<20)),
		ShutdownTimeout: durationVar("SPRATICHE_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func stringVar(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func listVar(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func intVar(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func floatVar(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func durationVar(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}
