// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration for the engine driver. The
// numerical core itself takes its parameters explicitly; this only feeds
// the CLI.
type Config struct {
	Dimension        int     // total workspace dimension n (should equal A*B)
	SubsystemADim    int     // dimension of subsystem A
	SubsystemBDim    int     // dimension of subsystem B
	EntropyThreshold float64 // collapse trigger as a fraction of max entropy
	DT               float64 // simulated seconds per evolution tick
	DecoherenceRate  float64 // Lindblad dephasing rate
	Seed             uint64  // PRNG seed; 0 derives one from the wall clock
	Steps            int     // simulation steps for the driver loop
	LogLevel         string
}

// Load reads configuration from environment variables, with a .env file
// loaded first if present.
func Load() (*Config, error) {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Dimension, err = getEnvInt("QUALIA_DIMENSION", 12); err != nil {
		return nil, err
	}
	if cfg.SubsystemADim, err = getEnvInt("QUALIA_SUBSYSTEM_A", 3); err != nil {
		return nil, err
	}
	if cfg.SubsystemBDim, err = getEnvInt("QUALIA_SUBSYSTEM_B", 4); err != nil {
		return nil, err
	}
	if cfg.EntropyThreshold, err = getEnvFloat("QUALIA_ENTROPY_THRESHOLD", 0.95); err != nil {
		return nil, err
	}
	if cfg.DT, err = getEnvFloat("QUALIA_DT", 0.01); err != nil {
		return nil, err
	}
	if cfg.DecoherenceRate, err = getEnvFloat("QUALIA_DECOHERENCE_RATE", 0.05); err != nil {
		return nil, err
	}
	if cfg.Steps, err = getEnvInt("QUALIA_STEPS", 200); err != nil {
		return nil, err
	}

	seed, err := getEnvInt("QUALIA_SEED", 0)
	if err != nil {
		return nil, err
	}
	if seed < 0 {
		return nil, fmt.Errorf("QUALIA_SEED must be non-negative, got %d", seed)
	}
	cfg.Seed = uint64(seed)

	return cfg, nil
}

// getEnv retrieves an environment variable value, returning a fallback if
// the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return parsed, nil
}
