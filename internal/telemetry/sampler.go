package telemetry

import (
	"github.com/slidekit/go-slide-cache/internal/orchestrator"
	"github.com/slidekit/go-slide-cache/internal/store"
)

type sampler struct {
	orch   *orchestrator.Orchestrator
	stores func() []*store.Store
}

func newSampler(o *orchestrator.Orchestrator, stores func() []*store.Store) sampler {
	return sampler{orch: o, stores: stores}
}

// snapshot holds cumulative counters (monotonic).
type snapshot struct {
	dispatched     uint64
	rendered       uint64
	renderFailures uint64
	evictedPages   uint64
	evictedBytes   uint64
	windowResets   uint64

	dropsStale     uint64
	dropsDuplicate uint64
}

func (s sampler) snapshot() snapshot {
	dispatched, rendered, failures, evictedPages, evictedBytes, resets := s.orch.Metrics()

	var stale, duplicate int64
	for _, st := range s.stores() {
		sd, dd := st.Drops()
		stale += sd
		duplicate += dd
	}

	return snapshot{
		dispatched:     uint64(max(dispatched, 0)),
		rendered:       uint64(max(rendered, 0)),
		renderFailures: uint64(max(failures, 0)),
		evictedPages:   uint64(max(evictedPages, 0)),
		evictedBytes:   uint64(max(evictedBytes, 0)),
		windowResets:   uint64(max(resets, 0)),

		dropsStale:     uint64(max(stale, 0)),
		dropsDuplicate: uint64(max(duplicate, 0)),
	}
}

// deltaSnapshot converts cumulative snapshots to per-interval deltas.
// If counters reset (cur < prev), it treats cur as the delta.
func deltaSnapshot(prev, cur snapshot) snapshot {
	return snapshot{
		dispatched:     delta(prev.dispatched, cur.dispatched),
		rendered:       delta(prev.rendered, cur.rendered),
		renderFailures: delta(prev.renderFailures, cur.renderFailures),
		evictedPages:   delta(prev.evictedPages, cur.evictedPages),
		evictedBytes:   delta(prev.evictedBytes, cur.evictedBytes),
		windowResets:   delta(prev.windowResets, cur.windowResets),

		dropsStale:     delta(prev.dropsStale, cur.dropsStale),
		dropsDuplicate: delta(prev.dropsDuplicate, cur.dropsDuplicate),
	}
}

func delta(prev, cur uint64) uint64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
