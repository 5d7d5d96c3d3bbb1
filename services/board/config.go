package board

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sensehat-go/types"
)

// Config is the optional on-disk bring-up configuration. Device addresses are
// fixed by the hardware and deliberately absent.
//
//	selector: i2c           # enumeration selector
//	controller: I2C1        # pin a controller; empty = first enumerated
//	mode: sequential        # or concurrent
//	log_level: info
type Config struct {
	Selector   string `yaml:"selector"`
	Controller string `yaml:"controller"`
	Mode       string `yaml:"mode"`
	LogLevel   string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Selector: types.SelectorI2C,
		Mode:     Sequential.String(),
		LogLevel: "info",
	}
}

// ParseConfig decodes YAML over the defaults and validates the result.
func ParseConfig(raw []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads path; an empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(raw)
}

func (c Config) Validate() error {
	if c.Selector == "" {
		return fmt.Errorf("config: selector must not be empty")
	}
	if _, err := ParseMode(c.Mode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}
