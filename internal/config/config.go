// Package config loads the TOML configuration for the relay tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const DefaultBaudRate = 115200

// SerialConfig holds settings for the serial link to the relay.
type SerialConfig struct {
	Device      string `toml:"device"`
	Baud        int    `toml:"baud"`
	ReadTimeout string `toml:"read_timeout"`
	IdleSleep   string `toml:"idle_sleep"`
}

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Config is the root configuration structure.
type Config struct {
	Serial  SerialConfig  `toml:"serial"`
	Logging LoggingConfig `toml:"logging"`
}

func Default() Config {
	return Config{
		Serial: SerialConfig{
			Device:      "",
			Baud:        DefaultBaudRate,
			ReadTimeout: "100ms",
			IdleSleep:   "50ms",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a TOML config file, applying defaults for unset values. A
// missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.FillMissingDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) FillMissingDefaults() {
	if c.Serial.Baud <= 0 {
		c.Serial.Baud = DefaultBaudRate
	}
	if c.Serial.ReadTimeout == "" {
		c.Serial.ReadTimeout = "100ms"
	}
	if c.Serial.IdleSleep == "" {
		c.Serial.IdleSleep = "50ms"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c Config) Validate() error {
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial baud must be positive: %d", c.Serial.Baud)
	}
	if _, err := c.Serial.ParseReadTimeout(); err != nil {
		return err
	}
	if _, err := c.Serial.ParseIdleSleep(); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unknown log level: %q", c.Logging.Level)
	}
}

// ParseReadTimeout parses the per-read serial timeout.
func (s *SerialConfig) ParseReadTimeout() (time.Duration, error) {
	return parsePositiveDuration("serial read_timeout", s.ReadTimeout, 100*time.Millisecond)
}

// ParseIdleSleep parses the idle back-off between empty reads.
func (s *SerialConfig) ParseIdleSleep() (time.Duration, error) {
	return parsePositiveDuration("serial idle_sleep", s.IdleSleep, 50*time.Millisecond)
}

func parsePositiveDuration(name, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive: %s", name, d)
	}

	return d, nil
}
