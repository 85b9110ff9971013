package app

import (
	"errors"
	"fmt"
)

// Config holds everything an App needs to load and run a grid.
type Config struct {
	GridPath    string // grid file or directory
	ModulesPath string // optional manifests overriding the built-in ones

	LogFormat   string
	LogLevel    string
	WorkerCount int
	MetricsFile string
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", cfg.WorkerCount)
	}
	return &cfg, nil
}
