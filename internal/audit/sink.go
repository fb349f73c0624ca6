// AngelaMos | 2026
// sink.go

package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elyterrax/marketplace-api/internal/config"
	"github.com/elyterrax/marketplace-api/internal/metrics"
)

const (
	defaultWorkers = 2
	writeTimeout   = 3 * time.Second
	drainTimeout   = 5 * time.Second
)

type Writer interface {
	Insert(ctx context.Context, entry Entry) error
}

// Sink is a bounded queue of request entries drained by a fixed set of
// workers. Record never blocks: when the queue is full the entry is
// dropped and counted.
type Sink struct {
	queue   chan Entry
	writer  Writer
	workers int
	enabled bool
	logger  *slog.Logger

	written atomic.Int64
	dropped atomic.Int64
	failed  atomic.Int64
}

func NewSink(cfg config.AuditConfig, writer Writer, logger *slog.Logger) *Sink {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 1
	}

	return &Sink{
		queue:   make(chan Entry, size),
		writer:  writer,
		workers: workers,
		enabled: cfg.Enabled,
		logger:  logger,
	}
}

func (s *Sink) Record(entry Entry) bool {
	if !s.enabled {
		return false
	}

	select {
	case s.queue <- entry:
		metrics.AuditQueueDepth.Set(float64(len(s.queue)))
		return true
	default:
		n := s.dropped.Add(1)
		metrics.AuditEntriesTotal.WithLabelValues("dropped").Inc()
		// log every 100th drop
		if n%100 == 1 {
			s.logger.Warn("audit queue full, dropping entry",
				"dropped_total", n,
				"endpoint", entry.Endpoint,
			)
		}
		return false
	}
}

// Run starts the workers and blocks until ctx is done. On cancellation the
// queue is drained with a bounded deadline before returning.
func (s *Sink) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < s.workers; i++ {
		g.Go(func() error {
			s.work(gctx)
			return nil
		})
	}

	err := g.Wait()
	s.drain(context.WithoutCancel(ctx))
	return err
}

func (s *Sink) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry := <-s.queue:
			s.write(ctx, entry)
		}
	}
}

func (s *Sink) drain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()

	for {
		select {
		case entry := <-s.queue:
			s.write(ctx, entry)
		default:
			return
		}
		if ctx.Err() != nil {
			s.logger.Warn("audit drain deadline reached",
				"remaining", len(s.queue),
			)
			return
		}
	}
}

func (s *Sink) write(ctx context.Context, entry Entry) {
	metrics.AuditQueueDepth.Set(float64(len(s.queue)))

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := s.writer.Insert(wctx, entry); err != nil {
		s.failed.Add(1)
		metrics.AuditEntriesTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("audit write failed",
			"error", err,
			"endpoint", entry.Endpoint,
		)
		return
	}

	s.written.Add(1)
	metrics.AuditEntriesTotal.WithLabelValues("written").Inc()
}

func (s *Sink) Stats() Stats {
	return Stats{
		Enabled:  s.enabled,
		Queued:   len(s.queue),
		Capacity: cap(s.queue),
		Written:  s.written.Load(),
		Dropped:  s.dropped.Load(),
		Failed:   s.failed.Load(),
	}
}
