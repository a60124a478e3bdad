package config

import "time"

type TelemetryCfg struct {
	StatLogsEnabled bool          `yaml:"stat_logs_enabled"`
	Interval        time.Duration `yaml:"interval"`
}
