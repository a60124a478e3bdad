package config

// BudgetCfg bounds the cache group. Both limits apply at once: eviction runs
// until the group fits under MaxSizeBytes and the reference consumer holds
// at most MaxPages entries.
type BudgetCfg struct {
	// MaxSize is a human readable byte limit ("256MiB", "1g"). An empty
	// string leaves the byte budget unbounded. "0" disables caching
	// entirely: every store is flushed and the scheduler stops.
	MaxSize string `yaml:"max_size"`

	// MaxSizeBytes is derived from MaxSize during initialization.
	// Negative means unbounded. It is not read from YAML.
	MaxSizeBytes int64

	// MaxPages limits how many pages are kept per consumer. Negative means
	// "as many as the document has". Zero disables caching.
	MaxPages int `yaml:"max_pages"`
}

func (cfg *BudgetCfg) Enabled() bool {
	return cfg != nil
}
