package config

// Cache groups configuration of all cache subsystems.
// Each optional component can be disabled by leaving it nil.
type Cache struct {
	// Budget bounds how much memory and how many pages the whole cache
	// group may hold. If nil, the cache is unbounded (not recommended for
	// large documents).
	Budget *BudgetCfg `yaml:"budget"`

	// Scheduler tunes the background step runner pacing and shutdown
	// behavior.
	Scheduler SchedulerCfg `yaml:"scheduler"`

	// Render configures the external-command render backend. If nil, the
	// application must inject its own renderer on Attach.
	Render *RenderCfg `yaml:"render"`

	// Telemetry configures periodic stat logging.
	Telemetry TelemetryCfg `yaml:"telemetry"`
}
