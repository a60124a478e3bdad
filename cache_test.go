package slidecache

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/slidekit/go-slide-cache/config"
	"github.com/slidekit/go-slide-cache/model"
	"github.com/slidekit/go-slide-cache/render"
)

// TestCache_Close cancels context and stops background workers.
func TestCache_Close(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Cache{
		Budget: &config.BudgetCfg{
			MaxSizeBytes: 10 * 1024 * 1024,
			MaxPages:     -1,
		},
		Scheduler: config.SchedulerCfg{
			TicksPerSec:  100,
			ShutdownWait: time.Second,
		},
	}
	require.NoError(t, cfg.AdjustConfig())

	cache := New(ctx, cfg, slog.Default())
	cache.Attach("main", 2.0, model.CropFull,
		render.RendererFunc(func(_ context.Context, req render.Request) (*model.Blob, error) {
			return model.NewBlob(req.Page, req.Resolution, req.Crop, []byte{1}), nil
		}))

	// Close should not panic
	err := cache.Close()
	require.NoError(t, err)

	// Close should be idempotent
	err = cache.Close()
	require.NoError(t, err)
}
