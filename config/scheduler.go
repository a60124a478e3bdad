package config

import "time"

type SchedulerCfg struct {
	// TicksPerSec defines how many cache steps the runner may take per
	// second while there is work to do. Each step evicts at most until the
	// budget holds and dispatches at most one page, so this bounds how
	// aggressively background rendering competes with the application.
	TicksPerSec int `yaml:"ticks_per_sec"`

	// ShutdownWait bounds how long Close waits for in-flight render jobs
	// before tearing the stores down anyway.
	ShutdownWait time.Duration `yaml:"shutdown_wait"`
}
