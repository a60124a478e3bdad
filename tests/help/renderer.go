package help

import (
	"context"
	"fmt"
	"sync"

	"github.com/slidekit/go-slide-cache/model"
	"github.com/slidekit/go-slide-cache/render"
)

// Renderer returns a backend producing a deterministic payload of pageSize
// bytes per page. The payload depends only on the page index, so repeated
// renders of the same page are bit-identical.
func Renderer(pageSize int) render.Renderer {
	return render.RendererFunc(func(ctx context.Context, req render.Request) (*model.Blob, error) {
		payload := make([]byte, pageSize)
		for i := range payload {
			payload[i] = byte(req.Page + i)
		}
		return model.NewBlob(req.Page, req.Resolution, req.Crop, payload), nil
	})
}

// CountingRenderer wraps Renderer and tracks how many times each page was
// rendered.
type CountingRenderer struct {
	mu       sync.Mutex
	counts   map[int]int
	delegate render.Renderer
}

func NewCountingRenderer(pageSize int) *CountingRenderer {
	return &CountingRenderer{
		counts:   make(map[int]int),
		delegate: Renderer(pageSize),
	}
}

func (r *CountingRenderer) Render(ctx context.Context, req render.Request) (*model.Blob, error) {
	r.mu.Lock()
	r.counts[req.Page]++
	r.mu.Unlock()
	return r.delegate.Render(ctx, req)
}

func (r *CountingRenderer) Count(page int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[page]
}

// FlakyRenderer fails the first `failures` render attempts of failPage and
// succeeds otherwise.
type FlakyRenderer struct {
	mu       sync.Mutex
	failPage int
	failures int
	delegate render.Renderer
}

func NewFlakyRenderer(pageSize, failPage, failures int) *FlakyRenderer {
	return &FlakyRenderer{
		failPage: failPage,
		failures: failures,
		delegate: Renderer(pageSize),
	}
}

func (r *FlakyRenderer) Render(ctx context.Context, req render.Request) (*model.Blob, error) {
	if req.Page == r.failPage {
		r.mu.Lock()
		if r.failures > 0 {
			r.failures--
			r.mu.Unlock()
			return nil, fmt.Errorf("transient render failure for page %d", req.Page)
		}
		r.mu.Unlock()
	}
	return r.delegate.Render(ctx, req)
}
