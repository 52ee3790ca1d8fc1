package poll

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agrilink/agrilink-backend/pkg/logger"
	"github.com/agrilink/agrilink-backend/pkg/metrics"
)

// Apply commits a completed fetch's result to local state. Separating the
// network read from the commit lets the scheduler discard results that lost
// the race against a newer fetch.
type Apply func()

// Source is one polled data source.
type Source interface {
	Name() string
	Interval() time.Duration
	Fetch(ctx context.Context) (Apply, error)
}

// Scheduler drives the fixed-interval refresh of a single source. Periodic
// ticks that fire while a fetch is still in flight are suppressed; manual
// refreshes run out-of-band without resetting the timer's phase. Results are
// applied last-completion-wins: a fetch that resolves after a newer one has
// already been applied is discarded.
type Scheduler struct {
	source  Source
	logg    *logger.Logger
	metrics *metrics.FetchMetrics

	inFlight atomic.Bool
	seq      atomic.Uint64

	mu      sync.Mutex
	applied uint64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler builds a scheduler for the source. Metrics are optional.
func NewScheduler(source Source, logg *logger.Logger, fetchMetrics *metrics.FetchMetrics) (*Scheduler, error) {
	if source == nil {
		return nil, fmt.Errorf("source required")
	}
	if source.Interval() <= 0 {
		return nil, fmt.Errorf("source %q needs a positive interval", source.Name())
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Scheduler{
		source:  source,
		logg:    logg,
		metrics: fetchMetrics,
	}, nil
}

// Start begins the periodic loop with an immediate first fetch. It returns an
// error when the scheduler is already running.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.done != nil {
		return fmt.Errorf("scheduler for %q already started", s.source.Name())
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(runCtx)
	return nil
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

// Refresh runs an out-of-band fetch immediately and returns its error to the
// caller so the UI can surface success or failure transiently. The periodic
// timer keeps its phase.
func (s *Scheduler) Refresh(ctx context.Context) error {
	return s.run(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	s.tick(ctx)

	ticker := time.NewTicker(s.source.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ctx = s.logg.WithField(context.Background(), "source", s.source.Name())
			s.logg.Info(ctx, "poll scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs a periodic fetch unless one is already in flight. Periodic
// failures are logged, never surfaced; the next tick retries.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.inFlight.Store(false)
		if err := s.run(ctx); err != nil {
			logCtx := s.logg.WithField(ctx, "source", s.source.Name())
			s.logg.Error(logCtx, "periodic fetch failed", err)
		}
	}()
}

func (s *Scheduler) run(ctx context.Context) error {
	seq := s.seq.Add(1)
	start := time.Now()

	apply, err := s.source.Fetch(ctx)
	duration := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveDuration(s.source.Name(), duration)
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncFailure(s.source.Name())
		}
		return err
	}

	s.commit(seq, apply)
	return nil
}

// commit applies a completed fetch unless a newer one already did.
func (s *Scheduler) commit(seq uint64, apply Apply) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		// A newer fetch completed first; this result is stale.
		if s.metrics != nil {
			s.metrics.IncStale(s.source.Name())
		}
		return false
	}
	s.applied = seq
	if apply != nil {
		apply()
	}
	if s.metrics != nil {
		s.metrics.IncSuccess(s.source.Name())
	}
	return true
}

// FuncSource adapts plain functions into a Source.
type FuncSource struct {
	SourceName    string
	FetchInterval time.Duration
	FetchFunc     func(ctx context.Context) (Apply, error)
}

func (f FuncSource) Name() string            { return f.SourceName }
func (f FuncSource) Interval() time.Duration { return f.FetchInterval }
func (f FuncSource) Fetch(ctx context.Context) (Apply, error) {
	return f.FetchFunc(ctx)
}
