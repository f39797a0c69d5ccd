package router

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a routing configuration from a YAML file:
//
//	rules:
//	  - condition: ctx.user.admin == true
//	    page: pages/admin
//	fallback: pages/home
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses a YAML routing configuration
func ParseConfig(data []byte) (*Config, error) {
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse routes: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid routes: %w", err)
	}

	return config, nil
}
