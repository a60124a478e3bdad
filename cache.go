// Package slidecache implements a bounded, multi-consumer, background
// populated image cache for paginated documents. Several on-screen widgets
// (main view, previews, notes) each get their own store and render worker;
// one orchestrator keeps the group aligned with the reader's position,
// renders upcoming pages in the background and evicts pages that fell out
// of the retention window.
package slidecache

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/slidekit/go-slide-cache/config"
	"github.com/slidekit/go-slide-cache/internal/dump"
	"github.com/slidekit/go-slide-cache/internal/orchestrator"
	"github.com/slidekit/go-slide-cache/internal/store"
	"github.com/slidekit/go-slide-cache/internal/telemetry"
	"github.com/slidekit/go-slide-cache/internal/worker"
	"github.com/slidekit/go-slide-cache/model"
	"github.com/slidekit/go-slide-cache/render"
)

type SlideCache interface {
	Attach(name string, resolution float64, crop model.CropMode, r render.Renderer) *Consumer
	Load(pages int)
	SetCurrentPage(page int)
	SetBudget(maxBytes int64, maxPages int)
	Stats() (bytes, pages int64)
	Metrics() Metrics
	Dump(ctx context.Context, dir string) error
	io.Closer
}

// Metrics aggregates the group's counters for diagnostics/UI.
type Metrics struct {
	Dispatched     int64
	Rendered       int64
	RenderFailures int64
	EvictedPages   int64
	EvictedBytes   int64
	WindowResets   int64
	DropsStale     int64
	DropsDuplicate int64
}

type Cache struct {
	ctx    context.Context
	cls    context.CancelFunc
	cfg    *config.Cache
	logger *slog.Logger

	orch      *orchestrator.Orchestrator
	telemetry telemetry.Logger

	mu        sync.Mutex
	consumers []*Consumer
}

// New builds the cache group and starts its background runner. Consumers
// are attached afterwards, then Load binds the document.
func New(ctx context.Context, cfg *config.Cache, logger *slog.Logger) *Cache {
	ctx, cancel := context.WithCancel(ctx)

	maxBytes, maxPages := int64(-1), -1
	if cfg.Budget.Enabled() {
		maxBytes, maxPages = cfg.Budget.MaxSizeBytes, cfg.Budget.MaxPages
	}

	orch := orchestrator.New(ctx, logger, maxBytes, maxPages)
	c := &Cache{
		ctx:    ctx,
		cls:    cancel,
		cfg:    cfg,
		logger: logger,
		orch:   orch,
	}
	c.telemetry = telemetry.New(ctx, cfg, logger, orch, c.stores)

	go orch.Run(cfg.Scheduler.TicksPerSec)
	return c
}

// Attach registers a consumer (one widget/resolution context). The first
// attached consumer is the reference one; attach the main view first.
// Passing a nil renderer uses the external-command backend from the config.
func (c *Cache) Attach(name string, resolution float64, crop model.CropMode, r render.Renderer) *Consumer {
	if r == nil && c.cfg.Render.Enabled() {
		r = render.NewCommand(c.cfg.Render)
	}

	st := store.New(name, resolution, crop)
	w := worker.New(c.ctx, name, st, r, c.logger, c.orch.OnComplete)

	cons := &Consumer{name: name, store: st, worker: w, orch: c.orch}

	c.mu.Lock()
	c.consumers = append(c.consumers, cons)
	c.mu.Unlock()

	c.orch.Attach(st, w)
	c.logger.Info("consumer attached", "name", name, "resolution", resolution, "crop", crop.String())
	return cons
}

// Load (re)loads a document with the given total page count. All stores
// are cleared; pages render again against the new document.
func (c *Cache) Load(pages int) {
	c.orch.Load(pages)
	c.logger.Info("document loaded", "pages", pages)
}

// SetCurrentPage tracks navigation and resumes background rendering.
func (c *Cache) SetCurrentPage(page int) {
	c.orch.SetCurrentPage(page)
}

// SetBudget updates the byte/page limits. Negative means unbounded, zero
// flushes everything and disables caching.
func (c *Cache) SetBudget(maxBytes int64, maxPages int) {
	c.orch.SetBudget(maxBytes, maxPages)
}

// Stats returns the aggregate byte usage and the reference consumer's
// cached page count.
func (c *Cache) Stats() (bytes, pages int64) {
	return c.orch.Stats()
}

func (c *Cache) Metrics() Metrics {
	dispatched, rendered, failures, evictedPages, evictedBytes, resets := c.orch.Metrics()
	m := Metrics{
		Dispatched:     dispatched,
		Rendered:       rendered,
		RenderFailures: failures,
		EvictedPages:   evictedPages,
		EvictedBytes:   evictedBytes,
		WindowResets:   resets,
	}
	for _, st := range c.stores() {
		stale, duplicate := st.Drops()
		m.DropsStale += stale
		m.DropsDuplicate += duplicate
	}
	return m
}

// Dump exports all cached images to a versioned directory tree under dir.
func (c *Cache) Dump(ctx context.Context, dir string) error {
	return dump.Export(ctx, dir, c.stores())
}

// Close stops the runner, waits (bounded) for in-flight render jobs and
// clears every store.
func (c *Cache) Close() error {
	c.cls()
	c.orch.Shutdown(c.cfg.Scheduler.ShutdownWait)
	return c.telemetry.Close()
}

func (c *Cache) stores() []*store.Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	stores := make([]*store.Store, 0, len(c.consumers))
	for _, cons := range c.consumers {
		stores = append(stores, cons.store)
	}
	return stores
}
