package orchestrator

import (
	"errors"

	"github.com/slidekit/go-slide-cache/internal/shared/rate"
)

// Run drives the step function until the context closes. The loop sleeps
// until something re-arms it (navigation, budget change, attach, load, job
// completion) and paces the steps through a rate limiter so background
// cache work never monopolizes the process. Exactly one Run loop should be
// active per orchestrator; tests drive Step directly instead.
func (o *Orchestrator) Run(ticksPerSec int) {
	jitter := rate.NewJitter(o.ctx, ticksPerSec)

	for {
		select {
		case <-o.ctx.Done():
			return
		case <-o.wake:
		}

		select {
		case <-o.ctx.Done():
			return
		case <-jitter.Chan():
		}

		if _, err := o.Step(); err != nil {
			if errors.Is(err, ErrInconsistentWindow) {
				// Stop scheduling; the next SetCurrentPage resets the
				// window and wakes the loop again.
				o.logger.Warn("cache step stopped", "err", err)
				continue
			}
			o.logger.Error("cache step failed", "err", err)
		}
	}
}
