package orchestrator

// window is the contiguous-region bookkeeping: [firstCached, lastCached] is
// the run of pages considered worth retaining (empty when lastCached <
// firstCached), [firstDelete, lastDelete] the outer bounds beyond which a
// page is a priority eviction victim.
type window struct {
	current     int
	firstCached int
	lastCached  int
	firstDelete int
	lastDelete  int
}

// reset collapses the cached region to an empty run anchored at the reader
// and stretches the delete boundaries over the whole document. Triggered by
// jump navigation, reload and resize.
func (w *window) reset(current, pages int) {
	w.current = current
	w.firstCached = current
	w.lastCached = current - 1
	w.firstDelete = 0
	w.lastDelete = pages - 1
}

func (w *window) contains(page int) bool {
	return w.firstCached <= page && page <= w.lastCached
}

// inconsistent reports that navigation moved outside the tracked region or
// the boundaries crossed; stepping on such a window would evict and render
// on corrupt assumptions.
func (w *window) inconsistent() bool {
	return w.lastCached > w.lastDelete ||
		w.firstCached < w.firstDelete ||
		w.firstCached > w.current ||
		w.lastCached < w.current-1
}

// widen pushes the delete boundaries outward after in-region navigation so
// eviction starts outside the cached run. The tail boundary gets the full
// cached count of slack, the head boundary half of it.
func (w *window) widen(count, pages int) {
	if last := w.current + count; last > w.lastDelete {
		w.lastDelete = last
	}
	if w.lastDelete >= pages {
		w.lastDelete = pages - 1
	}
	if first := w.current - count/2; first < w.firstDelete {
		w.firstDelete = first
	}
	if w.firstDelete < 0 {
		w.firstDelete = 0
	}
}

// Window is an exported snapshot for diagnostics and tests.
type Window struct {
	Current     int
	FirstCached int
	LastCached  int
	FirstDelete int
	LastDelete  int
}

func (w *window) snapshot() Window {
	return Window{
		Current:     w.current,
		FirstCached: w.firstCached,
		LastCached:  w.lastCached,
		FirstDelete: w.firstDelete,
		LastDelete:  w.lastDelete,
	}
}
