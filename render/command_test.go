package render

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/slidekit/go-slide-cache/config"
	"github.com/slidekit/go-slide-cache/model"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests shell out to /bin/sh")
	}
}

func TestCommandRender(t *testing.T) {
	requireShell(t)

	cmd := NewCommand(&config.RenderCfg{
		Command: "/bin/sh",
		Args:    []string{"-c", "printf 'img:%page'"},
	})

	blob, err := cmd.Render(context.Background(), Request{Page: 3, Resolution: 2.0, Crop: model.CropLeftHalf})
	require.NoError(t, err)

	// page numbers are 1-based on the command line
	require.Equal(t, []byte("img:4"), blob.Bytes())
	require.Equal(t, 3, blob.Page())
	require.Equal(t, 2.0, blob.Resolution())
	require.Equal(t, model.CropLeftHalf, blob.Crop())
}

func TestCommandRenderFailureCarriesStderr(t *testing.T) {
	requireShell(t)

	cmd := NewCommand(&config.RenderCfg{
		Command: "/bin/sh",
		Args:    []string{"-c", "echo 'page not found' >&2; exit 1"},
	})

	_, err := cmd.Render(context.Background(), Request{Page: 0, Resolution: 1.0})
	require.Error(t, err)
	require.Contains(t, err.Error(), "page not found")
}

func TestCommandRenderEmptyOutput(t *testing.T) {
	requireShell(t)

	cmd := NewCommand(&config.RenderCfg{
		Command: "/bin/sh",
		Args:    []string{"-c", "true"},
	})

	_, err := cmd.Render(context.Background(), Request{Page: 0, Resolution: 1.0})
	require.ErrorIs(t, err, ErrEmptyOutput)
}

func TestCommandRenderTimeout(t *testing.T) {
	requireShell(t)

	cmd := NewCommand(&config.RenderCfg{
		Command: "/bin/sh",
		Args:    []string{"-c", "sleep 10"},
		Timeout: 50 * time.Millisecond,
	})

	start := time.Now()
	_, err := cmd.Render(context.Background(), Request{Page: 0, Resolution: 1.0})
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestCommandExpandArgs(t *testing.T) {
	cmd := NewCommand(&config.RenderCfg{
		Command: "mutool",
		Args:    []string{"draw", "-r", "%resolution", "-o", "-", "%file", "%page"},
		File:    "/tmp/deck.pdf",
	})

	args := cmd.expandArgs(Request{Page: 9, Resolution: 1.5})
	require.Equal(t, []string{"draw", "-r", "1.5", "-o", "-", "/tmp/deck.pdf", "10"}, args)
}

func TestCommandExpandArgsTokenSet(t *testing.T) {
	cmd := NewCommand(&config.RenderCfg{
		Command: "renderer",
		Args:    []string{"%file", "%page", "%resolution", "%width", "--flag"},
		File:    "deck.pdf",
	})

	// only %file, %page and %resolution are recognized; anything else is
	// handed to the command verbatim
	args := cmd.expandArgs(Request{Page: 0, Resolution: 2.0})
	require.Equal(t, []string{"deck.pdf", "1", "2", "%width", "--flag"}, args)
}

func TestRendererFunc(t *testing.T) {
	r := RendererFunc(func(_ context.Context, req Request) (*model.Blob, error) {
		return model.NewBlob(req.Page, req.Resolution, req.Crop, []byte{1}), nil
	})

	blob, err := r.Render(context.Background(), Request{Page: 1, Resolution: 1.0})
	require.NoError(t, err)
	require.Equal(t, 1, blob.Page())
}
