package slidecache

import (
	"github.com/slidekit/go-slide-cache/internal/orchestrator"
	"github.com/slidekit/go-slide-cache/internal/store"
	"github.com/slidekit/go-slide-cache/internal/worker"
	"github.com/slidekit/go-slide-cache/model"
	"github.com/slidekit/go-slide-cache/render"
)

// Consumer is the per-widget handle: lookups for the display layer plus
// the resize and backend-swap entry points.
type Consumer struct {
	name   string
	store  *store.Store
	worker *worker.Worker
	orch   *orchestrator.Orchestrator
}

func (c *Consumer) Name() string { return c.name }

// Lookup returns the cached blob for a page, if present. Never renders.
// The blob is immutable and shared; callers must not modify its bytes.
func (c *Consumer) Lookup(page int) (*model.Blob, bool) {
	return c.store.Lookup(page)
}

// Stats reports this consumer's cached bytes and page count.
func (c *Consumer) Stats() (bytes, pages int64) {
	return c.store.Mem(), c.store.Len()
}

// SetResolution handles a widget resize: if the resolution actually
// changed, the store is cleared (old images are useless) and the window
// resets so rendering restarts around the reader.
func (c *Consumer) SetResolution(resolution float64) {
	c.orch.OnResolutionChange(c.store, resolution)
}

// SetRenderer swaps the render backend for this consumer. Cached blobs
// remain valid; only future renders go through the new backend.
func (c *Consumer) SetRenderer(r render.Renderer) {
	c.worker.SetRenderer(r)
}
