// Package dump exports the cached images of a group to disk, one PNG per
// page per consumer, under versioned directories. Meant for diagnostics
// ("what exactly is cached right now") and for harvesting rendered slides
// without re-running the renderer.
package dump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/slidekit/go-slide-cache/internal/store"
)

const defaultMaxVersions = 3

// Export writes every cached blob to dir/v<N>/<consumer>/page-XXXX.png and
// rotates old version directories. Pages are written as they are at call
// time; an export racing ongoing cache updates is a consistent-enough
// snapshot for diagnostics, not a transaction.
func Export(ctx context.Context, dir string, stores []*store.Store) error {
	start := time.Now()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create base dump dir: %w", err)
	}
	versionDir := filepath.Join(dir, fmt.Sprintf("v%d", nextVersionDir(dir)))

	var written, failures int
	for _, st := range stores {
		consumerDir := filepath.Join(versionDir, st.Name())
		if err := os.MkdirAll(consumerDir, 0o755); err != nil {
			return fmt.Errorf("create consumer dump dir %s: %w", consumerDir, err)
		}

		pages := st.Pages()
		sort.Ints(pages)
		for _, page := range pages {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			blob, hit := st.Lookup(page)
			if !hit {
				// evicted between Pages and Lookup
				continue
			}
			name := filepath.Join(consumerDir, fmt.Sprintf("page-%04d.png", page))
			if err := os.WriteFile(name, blob.Bytes(), 0o644); err != nil {
				log.Err(err).Str("file", name).Msg("[dump] write error")
				failures++
				continue
			}
			written++
		}
	}

	rotateVersionDirs(dir, defaultMaxVersions)

	log.Info().
		Int("written", written).
		Int("fails", failures).
		Str("elapsed", time.Since(start).String()).
		Msg("image dump finished")

	if failures > 0 {
		return fmt.Errorf("dump finished with %d errors", failures)
	}
	return nil
}

// nextVersionDir picks the next sequential version number.
func nextVersionDir(baseDir string) int {
	entries, _ := filepath.Glob(filepath.Join(baseDir, "v*"))
	maxV := 0
	for _, dir := range entries {
		name := filepath.Base(dir)
		if !strings.HasPrefix(name, "v") {
			continue
		}
		var v int
		fmt.Sscanf(name, "v%d", &v)
		if v > maxV {
			maxV = v
		}
	}
	return maxV + 1
}

// rotateVersionDirs keeps only the newest `max` dirs, removes the rest.
func rotateVersionDirs(baseDir string, max int) {
	entries, _ := filepath.Glob(filepath.Join(baseDir, "v*"))
	if len(entries) <= max {
		return
	}
	sort.Slice(entries, func(i, j int) bool {
		fi, _ := os.Stat(entries[i])
		fj, _ := os.Stat(entries[j])
		return fi.ModTime().After(fj.ModTime())
	})
	for _, dir := range entries[max:] {
		os.RemoveAll(dir)
		log.Info().Msgf("[dump] removed old dump dir: %s", dir)
	}
}
