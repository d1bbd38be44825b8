package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings read from the environment
type Config struct {
	Port             string
	DatabaseURL      string
	ExtensionWindow  time.Duration
	SchedulerTick    time.Duration
	LivenessInterval time.Duration
	BidTimeout       time.Duration
	BidRatePerSecond float64
	BidBurst         int
	LogLevel         string
	OTLPEndpoint     string
	SeedDemo         bool
}

// Load reads the configuration, applying defaults for anything unset
func Load() (Config, error) {
	cfg := Config{
		Port:         getPort(),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	var err error
	if cfg.ExtensionWindow, err = getDuration("EXTENSION_WINDOW", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SchedulerTick, err = getDuration("SCHEDULER_TICK", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.LivenessInterval, err = getDuration("LIVENESS_INTERVAL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.BidTimeout, err = getDuration("BID_TIMEOUT", 2*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.BidRatePerSecond, err = getFloat("BID_RATE_PER_SECOND", 5); err != nil {
		return Config{}, err
	}
	if cfg.BidBurst, err = getInt("BID_BURST", 10); err != nil {
		return Config{}, err
	}
	if cfg.SeedDemo, err = getBool("SEED_DEMO", false); err != nil {
		return Config{}, err
	}

	if cfg.ExtensionWindow <= 0 || cfg.SchedulerTick <= 0 || cfg.BidTimeout <= 0 {
		return Config{}, fmt.Errorf("config: durations must be positive")
	}
	return cfg, nil
}

// getPort returns the server port from env or defaults to ":8080"
func getPort() string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return ":8080"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}
