// Package config loads, validates and persists operator configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalid is wrapped by all validation failures.
var ErrInvalid = errors.New("invalid configuration")

// Valid ranges for operator-configurable values.
const (
	MinThreshold = 1
	MaxThreshold = 100
	MinInterval  = 5 // seconds
	MaxInterval  = 300
	MinTimeout   = 10 // seconds
	MaxTimeout   = 120
)

// Config holds the operator configuration consumed by the detection loop.
// JSON field names match the config.json layout.
type Config struct {
	ScoreThreshold  int `json:"score_threshold"`
	PollingInterval int `json:"polling_interval"` // seconds
	APITimeout      int `json:"api_timeout"`      // seconds
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		ScoreThreshold:  81,
		PollingInterval: 30,
		APITimeout:      30,
	}
}

// Validate checks all values against their allowed ranges.
// Out-of-range values are rejected here, never at call time.
func (c Config) Validate() error {
	if c.ScoreThreshold < MinThreshold || c.ScoreThreshold > MaxThreshold {
		return fmt.Errorf("%w: score_threshold %d out of range [%d,%d]",
			ErrInvalid, c.ScoreThreshold, MinThreshold, MaxThreshold)
	}
	if c.PollingInterval < MinInterval || c.PollingInterval > MaxInterval {
		return fmt.Errorf("%w: polling_interval %d out of range [%d,%d]",
			ErrInvalid, c.PollingInterval, MinInterval, MaxInterval)
	}
	if c.APITimeout < MinTimeout || c.APITimeout > MaxTimeout {
		return fmt.Errorf("%w: api_timeout %d out of range [%d,%d]",
			ErrInvalid, c.APITimeout, MinTimeout, MaxTimeout)
	}
	return nil
}

// Interval returns the polling interval as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.PollingInterval) * time.Second
}

// Timeout returns the oracle timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.APITimeout) * time.Second
}

// Load reads configuration from path. A missing file yields defaults;
// an unreadable or invalid file is an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save validates and writes configuration to path atomically
// (temp file + rename, never an in-place partial write).
func Save(path string, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Env holds endpoint settings read from the environment.
// These are deployment concerns, kept out of config.json.
type Env struct {
	RugcheckBase  string
	RPCEndpoint   string
	WSEndpoint    string
	PostgresDSN   string
	ClickhouseDSN string
}

// LoadEnv reads endpoint settings from the environment, after overlaying
// an optional .env file (missing file is fine).
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		RugcheckBase:  os.Getenv("RUGCHECK_API_BASE"),
		RPCEndpoint:   os.Getenv("SOLANA_RPC_ENDPOINT"),
		WSEndpoint:    os.Getenv("SOLANA_WS_ENDPOINT"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN: os.Getenv("CLICKHOUSE_DSN"),
	}
}
