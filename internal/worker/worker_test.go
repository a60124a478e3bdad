package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/slidekit/go-slide-cache/internal/store"
	"github.com/slidekit/go-slide-cache/model"
	"github.com/slidekit/go-slide-cache/render"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gatedRenderer blocks every render until the gate channel is closed.
type gatedRenderer struct {
	gate <-chan struct{}
	err  error
}

func (r *gatedRenderer) Render(ctx context.Context, req render.Request) (*model.Blob, error) {
	select {
	case <-r.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if r.err != nil {
		return nil, r.err
	}
	return model.NewBlob(req.Page, req.Resolution, req.Crop, []byte{1, 2, 3}), nil
}

func TestWorkerRendersIntoStore(t *testing.T) {
	st := store.New("main", 2.0, model.CropFull)
	done := make(chan error, 1)
	gate := make(chan struct{})
	close(gate)

	w := New(context.Background(), "main", st, &gatedRenderer{gate: gate}, testLogger(), func(page int, err error) {
		done <- err
	})

	require.NoError(t, w.Request(4))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("render did not complete")
	}

	require.True(t, w.Wait(time.Second))
	require.True(t, st.Contains(4))
	require.False(t, w.IsRendering())
}

func TestWorkerRejectsWhileBusy(t *testing.T) {
	st := store.New("main", 2.0, model.CropFull)
	done := make(chan error, 1)
	gate := make(chan struct{})

	w := New(context.Background(), "main", st, &gatedRenderer{gate: gate}, testLogger(), func(page int, err error) {
		done <- err
	})

	require.NoError(t, w.Request(0))
	require.True(t, w.IsRendering())
	require.ErrorIs(t, w.Request(1), ErrWorkerBusy)

	close(gate)
	<-done
	require.True(t, w.Wait(time.Second))

	// idle again, a new request is accepted
	require.NoError(t, w.Request(1))
	<-done
	require.True(t, w.Wait(time.Second))
	require.True(t, st.Contains(0))
	require.True(t, st.Contains(1))
}

func TestWorkerReportsRenderFailure(t *testing.T) {
	st := store.New("main", 2.0, model.CropFull)
	done := make(chan error, 1)
	gate := make(chan struct{})
	close(gate)

	renderErr := errors.New("rasterizer crashed")
	w := New(context.Background(), "main", st, &gatedRenderer{gate: gate, err: renderErr}, testLogger(), func(page int, err error) {
		done <- err
	})

	require.NoError(t, w.Request(0))

	select {
	case err := <-done:
		require.ErrorIs(t, err, renderErr)
	case <-time.After(5 * time.Second):
		t.Fatal("completion callback never fired")
	}

	require.True(t, w.Wait(time.Second))
	require.False(t, st.Contains(0))
	require.False(t, w.IsRendering())
}

func TestWorkerStaleInsertAfterClear(t *testing.T) {
	st := store.New("main", 2.0, model.CropFull)
	done := make(chan error, 1)
	gate := make(chan struct{})

	w := New(context.Background(), "main", st, &gatedRenderer{gate: gate}, testLogger(), func(page int, err error) {
		done <- err
	})

	require.NoError(t, w.Request(2))

	// the store is cleared while the job renders
	st.Clear()
	close(gate)
	<-done
	require.True(t, w.Wait(time.Second))

	require.False(t, st.Contains(2))
	stale, _ := st.Drops()
	require.Equal(t, int64(1), stale)
}

func TestWorkerSetRenderer(t *testing.T) {
	st := store.New("main", 2.0, model.CropFull)
	done := make(chan error, 1)
	gate := make(chan struct{})
	close(gate)

	w := New(context.Background(), "main", st, &gatedRenderer{gate: gate, err: errors.New("broken backend")}, testLogger(), func(page int, err error) {
		done <- err
	})

	require.NoError(t, w.Request(0))
	require.Error(t, <-done)
	require.True(t, w.Wait(time.Second))

	w.SetRenderer(&gatedRenderer{gate: gate})
	require.NoError(t, w.Request(0))
	require.NoError(t, <-done)
	require.True(t, w.Wait(time.Second))
	require.True(t, st.Contains(0))
}
