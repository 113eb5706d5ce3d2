package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Load reads path, applies environment overrides and defaults, then
// validates and normalizes the result.
func Load(path string) (*Config, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// ReadFile reads path; an empty path reads nothing.
func ReadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return data, nil
}

// Parse is Load on an in-memory document.
func Parse(data []byte) (*Config, error) {
	cfg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := Finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode unmarshals data and applies environment overrides. The result
// still needs Finish.
func Decode(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var o Overrides
	if err := env.Parse(&o); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	o.Apply(&cfg)
	return &cfg, nil
}

// Finish applies defaults, validates and normalizes cfg.
func Finish(cfg *Config) error {
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return err
	}
	Normalize(cfg)
	return nil
}

// Apply copies every set override into cfg.
func (o Overrides) Apply(cfg *Config) {
	if o.Device != "" {
		cfg.Board.Device = o.Device
	}
	if o.Baud != 0 {
		cfg.Board.Baud = o.Baud
	}
	if o.Address != "" {
		cfg.Board.Address = o.Address
	}
	if o.MQTTBroker != "" {
		cfg.MQTT.Broker = o.MQTTBroker
	}
	if o.APIListen != "" {
		cfg.API.Listen = o.APIListen
	}
}
