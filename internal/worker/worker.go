// Package worker runs render jobs off the orchestrator goroutine. One
// worker is bound to one store and executes at most one render at a time;
// a request is rejected, not queued, while a render is in flight.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/slidekit/go-slide-cache/internal/store"
	"github.com/slidekit/go-slide-cache/model"
	"github.com/slidekit/go-slide-cache/render"
)

var ErrWorkerBusy = errors.New("render worker is busy")

const (
	stateIdle int32 = iota
	stateRendering
)

type Worker struct {
	ctx    context.Context
	name   string
	store  *store.Store
	logger *slog.Logger
	onDone func(page int, err error)

	renderer atomic.Pointer[rendererBox]
	state    atomic.Int32
	wg       sync.WaitGroup
}

// rendererBox exists because atomic.Pointer needs a concrete type to hold
// the Renderer interface value.
type rendererBox struct{ r render.Renderer }

// New binds a worker to its store. onDone is invoked exactly once per
// accepted request, after the result landed in the store (or failed), and
// runs on the worker goroutine.
func New(ctx context.Context, name string, st *store.Store, r render.Renderer, logger *slog.Logger, onDone func(page int, err error)) *Worker {
	w := &Worker{
		ctx:    ctx,
		name:   name,
		store:  st,
		logger: logger,
		onDone: onDone,
	}
	w.renderer.Store(&rendererBox{r: r})
	return w
}

// SetRenderer swaps the backend. Existing cached blobs stay valid: they are
// finished representations of already-rendered pages.
func (w *Worker) SetRenderer(r render.Renderer) {
	w.renderer.Store(&rendererBox{r: r})
}

func (w *Worker) IsRendering() bool {
	return w.state.Load() == stateRendering
}

// Request accepts a render job for the given page, or returns ErrWorkerBusy
// while a previous job is still running. The store's resolution, crop and
// generation are captured now so a clear between dispatch and completion
// invalidates the result.
func (w *Worker) Request(page int) error {
	if !w.state.CompareAndSwap(stateIdle, stateRendering) {
		return ErrWorkerBusy
	}

	resolution, crop, gen := w.store.Snapshot()
	w.wg.Add(1)
	go w.render(page, resolution, crop, gen)
	return nil
}

func (w *Worker) render(page int, resolution float64, crop model.CropMode, gen uint64) {
	defer w.wg.Done()

	jobID := uuid.New()
	start := time.Now()

	blob, err := w.renderer.Load().r.Render(w.ctx, render.Request{
		Page:       page,
		Resolution: resolution,
		Crop:       crop,
	})
	if err != nil {
		// Non-fatal: the page stays uncached and the next scheduling step
		// retries it.
		w.logger.Warn("render failed",
			"job", jobID.String(), "consumer", w.name, "page", page, "err", err)
		w.state.Store(stateIdle)
		w.onDone(page, err)
		return
	}

	added := w.store.Insert(blob, gen)
	w.logger.Debug("page rendered",
		"job", jobID.String(), "consumer", w.name, "page", page,
		"bytes_added", added, "elapsed", time.Since(start).String())

	w.state.Store(stateIdle)
	w.onDone(page, nil)
}

// Wait blocks until the in-flight job (if any) finished, or the timeout
// elapsed. Returns false on timeout.
func (w *Worker) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	after := time.NewTimer(timeout)
	defer after.Stop()

	select {
	case <-done:
		return true
	case <-after.C:
		return false
	}
}
