package orchestrator

import "sync/atomic"

type counters struct {
	dispatched     atomic.Int64
	rendered       atomic.Int64
	renderFailures atomic.Int64
	evictedPages   atomic.Int64
	evictedBytes   atomic.Int64
	windowResets   atomic.Int64
}

func newCounters() *counters {
	return &counters{}
}

func (c *counters) snapshot() (dispatched, rendered, renderFailures, evictedPages, evictedBytes, windowResets int64) {
	return c.dispatched.Load(), c.rendered.Load(), c.renderFailures.Load(),
		c.evictedPages.Load(), c.evictedBytes.Load(), c.windowResets.Load()
}
