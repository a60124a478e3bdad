package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/slidekit/go-slide-cache/config"
	"github.com/slidekit/go-slide-cache/internal/orchestrator"
	"github.com/slidekit/go-slide-cache/internal/shared/bytes"
	"github.com/slidekit/go-slide-cache/internal/store"
)

type Logger interface {
	Close() error
}

type Logs struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Cache
	logger   *slog.Logger
	orch     *orchestrator.Orchestrator
	stores   func() []*store.Store
	interval time.Duration
}

func New(
	ctx context.Context,
	cfg *config.Cache,
	logger *slog.Logger,
	orch *orchestrator.Orchestrator,
	stores func() []*store.Store,
) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	return (&Logs{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		orch:     orch,
		stores:   stores,
		interval: cfg.Telemetry.Interval,
	}).run()
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.cfg != nil && l.cfg.Telemetry.StatLogsEnabled {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	var byteLimit = "INF"
	var pageLimit = "INF"
	if l.cfg.Budget.Enabled() {
		if l.cfg.Budget.MaxSizeBytes >= 0 {
			byteLimit = bytes.FmtMem(uint64(l.cfg.Budget.MaxSizeBytes))
		}
		if l.cfg.Budget.MaxPages >= 0 {
			pageLimit = strconv.Itoa(l.cfg.Budget.MaxPages)
		}
	}

	s := newSampler(l.orch, l.stores)
	prev := s.snapshot()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := s.snapshot()
			d := deltaSnapshot(prev, cur)
			prev = cur

			common := []any{"interval", l.interval.String()}
			groupBytes, groupPages := l.orch.Stats()
			win := l.orch.Window()

			l.logger.Info("render_scheduler",
				append(common,
					"dispatched", int64(d.dispatched),
					"rendered", int64(d.rendered),
					"failures", int64(d.renderFailures),
					"window_resets", int64(d.windowResets),
				)...,
			)

			if d.evictedPages > 0 || d.evictedBytes > 0 {
				l.logger.Info("evictor",
					append(common,
						"freed_pages", int64(d.evictedPages),
						"freed_bytes", bytes.FmtMem(d.evictedBytes),
					)...,
				)
			}

			if d.dropsStale > 0 || d.dropsDuplicate > 0 {
				l.logger.Info("stale_inserts",
					append(common,
						"stale", int64(d.dropsStale),
						"duplicate", int64(d.dropsDuplicate),
					)...,
				)
			}

			storeAttrs := append(common,
				"size", bytes.FmtMem(uint64(groupBytes)),
				"pages", groupPages,
				"byte_limit", byteLimit,
				"page_limit", pageLimit,
				"window", winString(win),
			)
			for _, st := range l.stores() {
				storeAttrs = append(storeAttrs,
					st.Name(), bytes.FmtMem(uint64(st.Mem())),
				)
			}
			l.logger.Info("storage", storeAttrs...)
		}
	}
}

func winString(w orchestrator.Window) string {
	return fmt.Sprintf("[%d %d %d %d %d]", w.FirstDelete, w.FirstCached, w.Current, w.LastCached, w.LastDelete)
}
