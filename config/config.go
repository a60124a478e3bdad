package config

import (
	"fmt"
	"os"
	"time"

	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"
)

const (
	defaultTicksPerSec  = 100
	defaultShutdownWait = 5 * time.Second
	defaultInterval     = 5 * time.Second
)

// AdjustConfig derives virtual fields and applies defaults. It must run
// before the config is handed to New.
func (cfg *Cache) AdjustConfig() error {
	if cfg.Budget.Enabled() {
		if cfg.Budget.MaxSize == "" {
			if cfg.Budget.MaxSizeBytes == 0 {
				cfg.Budget.MaxSizeBytes = -1
			}
		} else {
			size, err := units.RAMInBytes(cfg.Budget.MaxSize)
			if err != nil {
				return fmt.Errorf("parse budget max_size %q: %w", cfg.Budget.MaxSize, err)
			}
			cfg.Budget.MaxSizeBytes = size
		}
	}

	if cfg.Scheduler.TicksPerSec <= 0 {
		cfg.Scheduler.TicksPerSec = defaultTicksPerSec
	}
	if cfg.Scheduler.ShutdownWait <= 0 {
		cfg.Scheduler.ShutdownWait = defaultShutdownWait
	}
	if cfg.Telemetry.Interval <= 0 {
		cfg.Telemetry.Interval = defaultInterval
	}

	return nil
}

func LoadConfig(path string) (*Cache, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Cache
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	if err = cfg.AdjustConfig(); err != nil {
		return nil, err
	}

	return cfg, nil
}
