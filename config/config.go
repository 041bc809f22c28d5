package config

import (
	"encoding/json"
	"fmt"
	"os"

	"escctl/core"
)

// LoadConfig parses a JSON configuration and returns a validated core.Config
func LoadConfig(jsonData []byte) (*core.Config, error) {
	var config core.Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Apply defaults
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads and parses a JSON configuration file
func LoadFile(path string) (*core.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadConfig(data)
}

// Marshal renders a configuration as indented JSON
func Marshal(config *core.Config) ([]byte, error) {
	return json.MarshalIndent(config, "", "  ")
}

// DefaultBoardConfig returns the configuration of the four channel ESC board
func DefaultBoardConfig() *core.Config {
	config := core.DefaultConfig()
	return &config
}

// RP2040Config returns the configuration used by the rp2040 target, whose
// pulse timer counts microseconds
func RP2040Config() *core.Config {
	config := core.Config{
		PulseTickFreq:  1000000,
		PulseBaseTicks: 1000,
	}
	config.ApplyDefaults()
	return &config
}
