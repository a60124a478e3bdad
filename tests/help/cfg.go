package help

import (
	"time"

	"github.com/slidekit/go-slide-cache/config"
)

func Cfg() *config.Cache {
	c := &config.Cache{
		Budget: &config.BudgetCfg{
			MaxSizeBytes: -1,
			MaxPages:     -1,
		},
		Scheduler: config.SchedulerCfg{
			TicksPerSec:  1000,
			ShutdownWait: 2 * time.Second,
		},
		Telemetry: config.TelemetryCfg{
			StatLogsEnabled: false,
			Interval:        time.Second,
		},
	}
	if err := c.AdjustConfig(); err != nil {
		panic(err)
	}
	return c
}

func PageBudgetCfg(maxPages int) *config.Cache {
	c := Cfg()
	c.Budget.MaxPages = maxPages
	return c
}

func ByteBudgetCfg(maxBytes int64) *config.Cache {
	c := Cfg()
	c.Budget.MaxSizeBytes = maxBytes
	return c
}
