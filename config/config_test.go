package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeCfg(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeCfg(t, `
budget:
  max_size: "4mb"
  max_pages: 100
scheduler:
  ticks_per_sec: 250
  shutdown_wait: 3s
render:
  command: "mutool"
  args: ["draw", "-o", "-", "%file", "%page"]
  file: "/tmp/deck.pdf"
  timeout: 30s
telemetry:
  stat_logs_enabled: true
  interval: 10s
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.True(t, cfg.Budget.Enabled())
	require.Equal(t, int64(4*1024*1024), cfg.Budget.MaxSizeBytes)
	require.Equal(t, 100, cfg.Budget.MaxPages)

	require.Equal(t, 250, cfg.Scheduler.TicksPerSec)
	require.Equal(t, 3*time.Second, cfg.Scheduler.ShutdownWait)

	require.True(t, cfg.Render.Enabled())
	require.Equal(t, "mutool", cfg.Render.Command)
	require.Equal(t, "/tmp/deck.pdf", cfg.Render.File)
	require.Equal(t, 30*time.Second, cfg.Render.Timeout)

	require.True(t, cfg.Telemetry.StatLogsEnabled)
	require.Equal(t, 10*time.Second, cfg.Telemetry.Interval)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeCfg(t, `
budget:
  max_pages: -1
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// empty max_size leaves the byte budget unbounded
	require.Equal(t, int64(-1), cfg.Budget.MaxSizeBytes)
	require.Equal(t, 100, cfg.Scheduler.TicksPerSec)
	require.Equal(t, 5*time.Second, cfg.Scheduler.ShutdownWait)
	require.Equal(t, 5*time.Second, cfg.Telemetry.Interval)

	require.Nil(t, cfg.Render)
	require.False(t, cfg.Render.Enabled())
}

func TestLoadConfigInvalidSize(t *testing.T) {
	path := writeCfg(t, `
budget:
  max_size: "lots"
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "max_size")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestAdjustConfigDisabledBudget(t *testing.T) {
	cfg := &Cache{}
	require.NoError(t, cfg.AdjustConfig())
	require.False(t, cfg.Budget.Enabled())
}

func TestAdjustConfigZeroSize(t *testing.T) {
	cfg := &Cache{Budget: &BudgetCfg{MaxSize: "0"}}
	require.NoError(t, cfg.AdjustConfig())
	require.Zero(t, cfg.Budget.MaxSizeBytes)
}
