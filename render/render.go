// Package render defines the backend contract: something that turns a page
// index plus a resolution and crop mode into a compressed image. The cache
// engine never rasterizes anything itself; backends are injected per
// consumer and may be swapped at runtime.
package render

import (
	"context"

	"github.com/slidekit/go-slide-cache/model"
)

// Request identifies one render invocation. Resolution is in pixels per
// document unit; Crop selects the page half for split presentations.
type Request struct {
	Page       int
	Resolution float64
	Crop       model.CropMode
}

// Renderer produces the compressed image for a request. Implementations
// must be safe to call from a background goroutine and should honor ctx
// cancellation. Errors are non-fatal to the cache: the page simply stays
// uncached and is retried on a later step.
type Renderer interface {
	Render(ctx context.Context, req Request) (*model.Blob, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, req Request) (*model.Blob, error)

func (f RendererFunc) Render(ctx context.Context, req Request) (*model.Blob, error) {
	return f(ctx, req)
}
