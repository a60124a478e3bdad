// Package orchestrator coordinates a group of (store, worker) pairs that
// track the same navigation sequence. All window and budget bookkeeping for
// the group lives here, once; the stores stay dumb maps and the workers
// stay single-job executors.
//
// The step function is the algorithmic heart. Invoked repeatedly by the
// runner, each step first evicts boundary pages until the byte and page
// budgets hold, then either dispatches render jobs for one missing page
// across the group or reports that nothing is left to do. A step is
// non-blocking and completes in bounded time; while render jobs are in
// flight every further step is a no-op, so eviction always observes a
// stable store state.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/slidekit/go-slide-cache/internal/store"
	"github.com/slidekit/go-slide-cache/internal/worker"
)

// ErrInconsistentWindow signals that the window bounds violate their
// invariants, typically after an unexpected navigation pattern. The step
// stops instead of evicting or rendering on corrupt assumptions; the caller
// resets by navigating (SetCurrentPage).
var ErrInconsistentWindow = errors.New("cache window is inconsistent, navigation reset required")

// State reports what a step did.
type State int32

const (
	// StateIdle: fully satisfied, budget-blocked, disabled, or stopped on
	// an inconsistent window. The runner sleeps until the next wake.
	StateIdle State = iota
	// StateBusy: render jobs are in flight, the step was a no-op.
	StateBusy
	// StateDispatched: render jobs for one page were handed to workers.
	StateDispatched
)

type pair struct {
	store  *store.Store
	worker *worker.Worker
}

type Orchestrator struct {
	ctx    context.Context
	logger *slog.Logger

	mu    sync.Mutex
	pairs []pair
	pages int

	// maxBytes < 0 means unbounded. rawMaxPages < 0 means "total pages";
	// the effective page budget is computed against the loaded document.
	maxBytes    int64
	rawMaxPages int
	disabled    bool

	win   window
	used  int64 // bytes across all stores, refreshed at step start
	count int64 // reference store entry count

	pendingPage int
	inflight    int

	counters *counters
	wake     chan struct{}
}

func New(ctx context.Context, logger *slog.Logger, maxBytes int64, maxPages int) *Orchestrator {
	o := &Orchestrator{
		ctx:      ctx,
		logger:   logger,
		counters: newCounters(),
		wake:     make(chan struct{}, 1),
	}
	o.setBudgetLocked(maxBytes, maxPages)
	return o
}

// Attach adds a (store, worker) pair to the group. The first attached store
// is the reference store: the page-count budget and the cached-count
// bookkeeping are measured against it, and eviction visits it first.
func (o *Orchestrator) Attach(st *store.Store, w *worker.Worker) {
	o.mu.Lock()
	o.pairs = append(o.pairs, pair{store: st, worker: w})
	o.mu.Unlock()
	o.Wake()
}

// Load (re)loads a document with the given page count: every store is
// cleared and the window collapses at page zero.
func (o *Orchestrator) Load(pages int) {
	o.mu.Lock()
	if pages < 0 {
		pages = 0
	}
	o.pages = pages
	for _, p := range o.pairs {
		p.store.Clear()
	}
	o.win.reset(0, pages)
	o.mu.Unlock()
	o.Wake()
}

func (o *Orchestrator) Pages() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pages
}

// SetBudget updates the limits. A negative byte budget is unbounded, a
// negative page budget means "as many pages as the document has". A zero in
// either triggers an immediate full flush and disables caching until a
// usable budget is set again.
func (o *Orchestrator) SetBudget(maxBytes int64, maxPages int) {
	o.mu.Lock()
	o.setBudgetLocked(maxBytes, maxPages)
	o.mu.Unlock()
	o.Wake()
}

func (o *Orchestrator) setBudgetLocked(maxBytes int64, maxPages int) {
	o.maxBytes = maxBytes
	o.rawMaxPages = maxPages

	if maxBytes == 0 || maxPages == 0 {
		o.disabled = true
		for _, p := range o.pairs {
			p.store.Clear()
		}
		o.win.reset(o.win.current, o.pages)
		o.logger.Info("caching disabled, stores flushed")
		return
	}
	o.disabled = false
}

// SetCurrentPage moves the reader. A jump outside the cached region resets
// the window; navigation inside it widens the delete boundaries so the run
// just read stays protected.
func (o *Orchestrator) SetCurrentPage(page int) {
	o.mu.Lock()
	if page < 0 {
		page = 0
	}
	if o.pages > 0 && page >= o.pages {
		page = o.pages - 1
	}

	o.win.current = page
	if !o.win.contains(page) {
		o.win.reset(page, o.pages)
		o.counters.windowResets.Add(1)
		o.logger.Debug("cache window reset",
			"current", page, "first_delete", o.win.firstDelete, "last_delete", o.win.lastDelete)
	} else {
		o.win.widen(int(o.referenceLen()), o.pages)
	}
	o.mu.Unlock()
	o.Wake()
}

// OnResolutionChange clears every store whose cached images no longer match
// and resets the window. A no-op for stores already at the resolution.
func (o *Orchestrator) OnResolutionChange(st *store.Store, resolution float64) {
	changed := st.SetResolution(resolution)
	if !changed {
		return
	}
	o.mu.Lock()
	o.win.reset(o.win.current, o.pages)
	o.counters.windowResets.Add(1)
	o.mu.Unlock()
	o.Wake()
}

// Step runs one eviction+scheduling decision. Safe to invoke from any
// goroutine and re-entrant in the sense required by a cooperative tick: a
// call while jobs are in flight does nothing and reports StateBusy.
func (o *Orchestrator) Step() (State, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step()
}

func (o *Orchestrator) step() (State, error) {
	if o.disabled || o.pages == 0 || len(o.pairs) == 0 {
		return StateIdle, nil
	}
	if o.inflight > 0 {
		return StateBusy, nil
	}

	o.refreshUsage()
	if o.count >= int64(o.pages) {
		// fully cached
		return StateIdle, nil
	}
	if o.win.inconsistent() {
		return StateIdle, ErrInconsistentWindow
	}

	// Eviction phase: free space until both budgets hold.
	for o.overBudget() {
		if o.win.firstDelete > o.win.lastDelete {
			// nothing left between the boundaries to free
			return StateIdle, ErrInconsistentWindow
		}
		o.evictBoundary()
		if o.win.lastCached > o.win.lastDelete || o.win.firstCached < o.win.firstDelete {
			return StateIdle, ErrInconsistentWindow
		}
	}

	// Scheduling phase.
	if o.win.lastCached+1 == o.pages {
		// The document tail is cached; fill backward only with slack left.
		if o.backwardSlack() {
			return o.dispatch(o.win.firstCached - 1)
		}
		return StateIdle, nil
	}
	if o.forwardGuardFires() {
		// The next forward page would immediately need eviction again.
		return StateIdle, nil
	}
	return o.dispatch(o.win.lastCached + 1)
}

// evictBoundary frees one page index at the preferred delete boundary and
// advances that boundary, clamping the cached-region bounds.
func (o *Orchestrator) evictBoundary() {
	if o.win.lastDelete > tailSkewCurrentWeight*o.win.current-tailSkewHeadWeight*o.win.firstDelete {
		o.evictPage(o.win.lastDelete)
		o.win.lastDelete--
		if o.win.lastCached > o.win.lastDelete {
			o.win.lastCached = o.win.lastDelete
		}
	} else {
		o.evictPage(o.win.firstDelete)
		o.win.firstDelete++
		if o.win.firstCached < o.win.firstDelete {
			o.win.firstCached = o.win.firstDelete
		}
	}
}

// evictPage removes the page from the group, reference store first. Once
// the budget is satisfied the remaining stores keep their copy; pressure
// will come back for it if it ever matters.
func (o *Orchestrator) evictPage(page int) {
	for i, p := range o.pairs {
		freed := p.store.Evict(page)
		if freed > 0 {
			o.used -= freed
			o.counters.evictedBytes.Add(freed)
			if i == 0 {
				o.count--
				o.counters.evictedPages.Add(1)
			}
		}
		if !o.overBudget() {
			return
		}
	}
}

// dispatch hands the page to every worker whose store misses it. When every
// store already held the page, the region is advanced and another step runs
// immediately instead of idling forever.
func (o *Orchestrator) dispatch(page int) (State, error) {
	dispatched, rejected := 0, 0
	for _, p := range o.pairs {
		if p.store.Contains(page) {
			continue
		}
		if err := p.worker.Request(page); err != nil {
			// Steps only run with zero jobs in flight, so a busy worker
			// here means the group is being driven from outside the runner.
			o.logger.Warn("dispatch rejected", "page", page, "err", err)
			rejected++
			continue
		}
		dispatched++
	}

	if dispatched == 0 {
		if rejected > 0 {
			// A store still misses the page; do not mark it cached. The
			// page is retried on a later step once the worker frees up.
			return StateBusy, nil
		}
		o.advance(page)
		return o.step()
	}

	o.pendingPage = page
	o.inflight = dispatched
	o.counters.dispatched.Add(int64(dispatched))
	return StateDispatched, nil
}

// advance grows the cached region by the freshly covered page.
func (o *Orchestrator) advance(page int) {
	if page == o.win.lastCached+1 {
		o.win.lastCached++
	} else if page == o.win.firstCached-1 {
		o.win.firstCached--
	}
	if o.referenceLen() >= int64(o.pages) {
		o.win.firstCached = 0
		o.win.lastCached = o.pages - 1
		o.logger.Info("all pages rendered to cache", "pages", o.pages, "bytes", o.memBytes())
	}
}

// OnComplete is the completion event consumed from every worker. When the
// last in-flight job of the pending page reports, the window advances (if
// the reference store actually got the page) and the runner is re-armed.
func (o *Orchestrator) OnComplete(page int, err error) {
	o.mu.Lock()
	if err != nil {
		o.counters.renderFailures.Add(1)
	} else {
		o.counters.rendered.Add(1)
	}

	if o.pendingPage == page && o.inflight > 0 {
		o.inflight--
		if o.inflight == 0 {
			if len(o.pairs) > 0 && o.pairs[0].store.Contains(page) {
				o.advance(page)
			}
			o.wakeLocked()
		}
	}
	o.mu.Unlock()
}

// Shutdown waits (bounded) for in-flight jobs, then clears every store.
// A job that outlives the timeout is logged and its eventual insert is
// discarded by the stores' generation re-check.
func (o *Orchestrator) Shutdown(timeout time.Duration) {
	o.mu.Lock()
	pairs := make([]pair, len(o.pairs))
	copy(pairs, o.pairs)
	o.mu.Unlock()

	deadline := time.Now().Add(timeout)
	for _, p := range pairs {
		remain := time.Until(deadline)
		if remain <= 0 || !p.worker.Wait(remain) {
			o.logger.Warn("render worker did not finish before teardown", "consumer", p.store.Name())
		}
	}

	o.mu.Lock()
	for _, p := range o.pairs {
		p.store.Clear()
	}
	o.mu.Unlock()
}

// Wake re-arms the runner. Non-blocking; redundant wakes collapse.
func (o *Orchestrator) Wake() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *Orchestrator) wakeLocked() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// Stats returns the aggregate byte usage and the reference store's entry
// count.
func (o *Orchestrator) Stats() (bytes, pages int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.memBytes(), o.referenceLen()
}

// Metrics returns the orchestrator counters snapshot.
func (o *Orchestrator) Metrics() (dispatched, rendered, renderFailures, evictedPages, evictedBytes, windowResets int64) {
	return o.counters.snapshot()
}

// Window returns a snapshot of the region bookkeeping.
func (o *Orchestrator) Window() Window {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.win.snapshot()
}

/**
 * Bookkeeping helpers, all called under mu.
 */

func (o *Orchestrator) refreshUsage() {
	if o.maxBytes < 0 {
		o.used = unboundedUsage
	} else {
		o.used = o.memBytes()
	}
	o.count = o.referenceLen()
}

func (o *Orchestrator) memBytes() int64 {
	var sum int64
	for _, p := range o.pairs {
		sum += p.store.Mem()
	}
	return sum
}

func (o *Orchestrator) referenceLen() int64 {
	if len(o.pairs) == 0 {
		return 0
	}
	return o.pairs[0].store.Len()
}

func (o *Orchestrator) effMaxPages() int {
	if o.rawMaxPages < 0 || o.rawMaxPages > o.pages {
		return o.pages
	}
	return o.rawMaxPages
}

func (o *Orchestrator) overBudget() bool {
	if o.used > o.maxBytes {
		return true
	}
	maxPages := o.effMaxPages()
	return maxPages < o.pages && o.count > int64(maxPages)
}

// backwardSlack reports whether backward filling may continue: the head
// boundary leaves room and both budgets are below two thirds utilization.
func (o *Orchestrator) backwardSlack() bool {
	maxPages := o.effMaxPages()
	return o.win.firstCached > o.win.firstDelete &&
		(maxPages == o.pages || int64(slackNum*maxPages) > slackDen*o.count) &&
		slackNum*o.maxBytes > slackDen*o.used
}

// forwardGuardFires reports that rendering the next forward page would be
// thrashing: the lookahead already covers its share of the page budget and
// there is no byte headroom left for another page.
func (o *Orchestrator) forwardGuardFires() bool {
	maxPages := int64(o.effMaxPages())
	ahead := int64(o.win.lastCached - o.win.current + 1)
	return (o.win.lastCached == o.win.lastDelete || slackDen*ahead >= slackNum*maxPages) &&
		(o.count >= maxPages || (o.maxBytes-o.used)*o.count < headroomFactor*o.used)
}
