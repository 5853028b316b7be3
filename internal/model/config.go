// Package model defines shared configuration and message structures used to
// initialize the SignalBridge system.
package model

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the root structure loaded from configs/config.yml.
// It contains the serial link settings, the web server settings and the
// fixed set of intersections the controller reports on.
type Config struct {
	Serial        SerialConfig `yaml:"serial"`
	HTTP          HTTPConfig   `yaml:"http"`
	Intersections []string     `yaml:"intersections"` // recognized intersection names
	LogLines      int          `yaml:"log_lines"`     // serial log ring capacity
}

// SerialConfig defines how the controller serial port is opened.
type SerialConfig struct {
	Port          string `yaml:"port"`            // e.g. /dev/ttyACM0
	Baud          int    `yaml:"baud"`            // controller firmware runs at 115200
	ReadTimeoutMs int    `yaml:"read_timeout_ms"` // reader loop liveness interval
	SettleMs      int    `yaml:"settle_ms"`       // firmware boot delay after open
}

// HTTPConfig defines the web dashboard listen address.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// LoadConfig reads the YAML configuration at path and fills in defaults for
// every field left unset.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Serial.Baud == 0 {
		c.Serial.Baud = 115200
	}
	if c.Serial.ReadTimeoutMs == 0 {
		c.Serial.ReadTimeoutMs = 1000
	}
	if c.Serial.SettleMs == 0 {
		c.Serial.SettleMs = 2000
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":5000"
	}
	if len(c.Intersections) == 0 {
		c.Intersections = []string{"NORTH", "SW", "SE", "NW", "NE"}
	}
	if c.LogLines == 0 {
		c.LogLines = 50
	}
}

// ReadTimeout returns the serial read timeout as a duration.
func (c SerialConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMs) * time.Millisecond
}

// Settle returns the post-open firmware boot delay as a duration.
func (c SerialConfig) Settle() time.Duration {
	return time.Duration(c.SettleMs) * time.Millisecond
}
